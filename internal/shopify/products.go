package shopify

import (
	"context"
	"fmt"
)

// Product is the admin-API view of a catalog entry. The catalog owns this
// data; we never persist it beyond the denormalized name on a sale record.
type Product struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	Status        string `json:"status"`
	FeaturedImage *struct {
		URL     string `json:"url"`
		AltText string `json:"altText"`
	} `json:"featuredImage"`
}

type productsPage struct {
	Products struct {
		Nodes []Product `json:"nodes"`
	} `json:"products"`
}

const productsQuery = `
query getProducts($first: Int!) {
  products(first: $first) {
    nodes {
      id
      title
      handle
      status
      featuredImage { url altText }
    }
  }
}`

// ListProducts fetches the first page of the shop's catalog. A malformed or
// empty response decodes to zero products, which is not an error.
func ListProducts(ctx context.Context, c Client, first int) ([]Product, error) {
	resp, status, err := PostGraphQL[productsPage](ctx, c, productsQuery, map[string]any{
		"first": first,
	})
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("shopify products query: http %d", status)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("shopify products query: %s", resp.Errors[0].Message)
	}
	return resp.Data.Products.Nodes, nil
}
