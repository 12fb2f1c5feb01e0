package shopify

import (
	"context"
	"fmt"
)

// Metafield coordinates under which the sale end date is mirrored onto the
// product, so the storefront can read it without touching our tables.
const (
	FlashSaleNamespace = "akira"
	FlashSaleKey       = "flash_sale"
)

type metafieldsSetResult struct {
	MetafieldsSet struct {
		Metafields []struct {
			ID string `json:"id"`
		} `json:"metafields"`
		UserErrors []struct {
			Field   []string `json:"field"`
			Message string   `json:"message"`
		} `json:"userErrors"`
	} `json:"metafieldsSet"`
}

const metafieldsSetMutation = `
mutation setFlashSale($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields { id }
    userErrors { field message }
  }
}`

// SetFlashSaleMetafield writes the raw end-date string to the product's
// flash-sale metafield. Any transport, GraphQL, or user error is a failure;
// the caller decides what that means for already-committed local state.
func SetFlashSaleMetafield(ctx context.Context, c Client, productID, value string) error {
	vars := map[string]any{
		"metafields": []map[string]any{
			{
				"ownerId":   productID,
				"namespace": FlashSaleNamespace,
				"key":       FlashSaleKey,
				"type":      "single_line_text_field",
				"value":     value,
			},
		},
	}

	resp, status, err := PostGraphQL[metafieldsSetResult](ctx, c, metafieldsSetMutation, vars)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("shopify metafieldsSet: http %d", status)
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("shopify metafieldsSet: %s", resp.Errors[0].Message)
	}
	if ue := resp.Data.MetafieldsSet.UserErrors; len(ue) > 0 {
		return fmt.Errorf("shopify metafieldsSet rejected: %s", ue[0].Message)
	}
	return nil
}
