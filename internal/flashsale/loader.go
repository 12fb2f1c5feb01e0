package flashsale

import (
	"context"
	"log"

	"flashsale-backend/internal/shopify"
)

// ProductReader fetches a page of catalog products.
type ProductReader interface {
	ListProducts(ctx context.Context, first int) ([]shopify.Product, error)
}

// SaleLister reads the full sale-record set.
type SaleLister interface {
	All(ctx context.Context) ([]SaleRecord, error)
}

// LoadAnnotatedProducts is the read path behind the product list. A catalog
// outage degrades to an empty list rather than failing the page; the sale
// table being unreadable is still an error, since it is ours.
func LoadAnnotatedProducts(ctx context.Context, catalog ProductReader, store SaleLister, pageSize int) ([]AnnotatedProduct, error) {
	products, err := catalog.ListProducts(ctx, pageSize)
	if err != nil {
		log.Printf("flash-sale loader: catalog read failed, serving empty list: %v", err)
		products = nil
	}

	records, err := store.All(ctx)
	if err != nil {
		return nil, err
	}

	return Annotate(products, records), nil
}
