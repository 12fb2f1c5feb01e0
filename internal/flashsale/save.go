package flashsale

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SaleUpserter is the local half of a sale write.
type SaleUpserter interface {
	Upsert(ctx context.Context, productID, productName, endsAt string) error
}

// MetafieldWriter is the remote half: mirroring the end date onto the
// catalog product.
type MetafieldWriter interface {
	SetFlashSaleMetafield(ctx context.Context, productID, value string) error
}

type SaveInput struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	EndsAt      string `json:"endsAt"`
}

// Save validates the edit, commits it locally, then mirrors the end date to
// the catalog. Local durability always precedes remote propagation, so a
// remote failure can never leave the catalog ahead of our table. When the
// remote write fails the local record stays put and the caller gets a
// *PropagationError.
func Save(ctx context.Context, store SaleUpserter, remote MetafieldWriter, in SaveInput) error {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return ErrMissingProductID
	}

	endsAt, err := parseEndsAt(in.EndsAt)
	if err != nil {
		return err
	}

	if err := store.Upsert(ctx, productID, in.ProductName, endsAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert sale record for %s: %w", productID, err)
	}

	// The metafield carries the date string as submitted, not the parsed form.
	if err := remote.SetFlashSaleMetafield(ctx, productID, strings.TrimSpace(in.EndsAt)); err != nil {
		return &PropagationError{ProductID: productID, Err: err}
	}

	return nil
}

// parseEndsAt accepts the date-only form the admin UI submits, or a full
// RFC3339 timestamp. Anything else is rejected before any mutation.
func parseEndsAt(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
}
