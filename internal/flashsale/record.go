// Package flashsale holds the sale configuration attached to individual
// products: the persisted records, the per-read join against live catalog
// data, and the write path that keeps the catalog's metafield in step.
package flashsale

import (
	"fmt"

	"flashsale-backend/internal/shopify"
)

// SaleRecord is one product's flash-sale configuration. At most one record
// exists per product id. ProductName is a write-time snapshot of the catalog
// title and may go stale; the annotated list always carries the live title
// alongside it.
type SaleRecord struct {
	ProductID   string `dynamodbav:"ProductId" json:"productId"`
	ProductName string `dynamodbav:"ProductName" json:"productName"`
	EndsAt      string `dynamodbav:"EndsAt" json:"endsAt"` // RFC3339
	UpdatedAt   string `dynamodbav:"UpdatedAt" json:"updatedAt"`
}

// AnnotatedProduct is the per-read join of a catalog product with its sale
// record, if any. Never persisted.
type AnnotatedProduct struct {
	shopify.Product
	SaleInfo *SaleRecord `json:"saleInfo"`
}

// ProductGID converts the numeric id carried by webhook payloads into the
// admin-API gid that keys sale records.
func ProductGID(numericID int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", numericID)
}
