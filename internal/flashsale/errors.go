package flashsale

import (
	"errors"
	"fmt"
)

// Validation failures reject the write before any mutation.
var (
	ErrMissingProductID = errors.New("productId is required")
	ErrInvalidDate      = errors.New("endsAt is not a recognized date")
)

// PropagationError means the metafield write failed after the local upsert
// already committed. The local record is retained; the caller must surface
// the failure so the user can retry the remote half.
type PropagationError struct {
	ProductID string
	Err       error
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagate flash sale to catalog for %s: %v", e.ProductID, e.Err)
}

func (e *PropagationError) Unwrap() error { return e.Err }
