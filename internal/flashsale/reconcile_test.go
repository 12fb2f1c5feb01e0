package flashsale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashsale-backend/internal/shopify"
)

func makeProduct(id, title string) shopify.Product {
	return shopify.Product{
		ID:     id,
		Title:  title,
		Handle: title,
		Status: "ACTIVE",
	}
}

func TestAnnotate_MatchesByProductID(t *testing.T) {
	products := []shopify.Product{
		makeProduct("gid://shopify/Product/1", "Shirt"),
		makeProduct("gid://shopify/Product/2", "Mug"),
		makeProduct("gid://shopify/Product/3", "Poster"),
	}
	records := []SaleRecord{
		{ProductID: "gid://shopify/Product/2", ProductName: "Mug", EndsAt: "2025-12-31T00:00:00Z"},
		{ProductID: "gid://shopify/Product/99", ProductName: "Gone", EndsAt: "2025-01-01T00:00:00Z"},
	}

	out := Annotate(products, records)

	require.Len(t, out, len(products), "output must preserve input length")
	for i := range out {
		assert.Equal(t, products[i].ID, out[i].ID, "output must preserve input order")
	}

	assert.Nil(t, out[0].SaleInfo)
	require.NotNil(t, out[1].SaleInfo)
	assert.Equal(t, "2025-12-31T00:00:00Z", out[1].SaleInfo.EndsAt)
	assert.Nil(t, out[2].SaleInfo)
}

func TestAnnotate_EmptyProducts(t *testing.T) {
	records := []SaleRecord{
		{ProductID: "gid://shopify/Product/1", EndsAt: "2025-12-31T00:00:00Z"},
	}

	out := Annotate(nil, records)

	require.NotNil(t, out, "degraded catalog must still yield an empty list, not nil")
	assert.Empty(t, out)
}

func TestAnnotate_NoRecords(t *testing.T) {
	products := []shopify.Product{makeProduct("gid://shopify/Product/1", "Shirt")}

	out := Annotate(products, nil)

	require.Len(t, out, 1)
	assert.Nil(t, out[0].SaleInfo, "absence of a match is a nil sale reference, not an error")
}

func TestProductGID(t *testing.T) {
	assert.Equal(t, "gid://shopify/Product/123", ProductGID(123))
}
