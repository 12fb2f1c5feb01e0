package flashsale

import "flashsale-backend/internal/shopify"

// Annotate joins a page of catalog products with the persisted sale records,
// matching by product gid. Output preserves the catalog's length and order;
// products without a record get a nil SaleInfo. Pure transform, no I/O.
func Annotate(products []shopify.Product, records []SaleRecord) []AnnotatedProduct {
	byID := make(map[string]*SaleRecord, len(records))
	for i := range records {
		byID[records[i].ProductID] = &records[i]
	}

	out := make([]AnnotatedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, AnnotatedProduct{
			Product:  p,
			SaleInfo: byID[p.ID],
		})
	}
	return out
}
