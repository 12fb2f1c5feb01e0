package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Client is an authenticated handle on one shop's admin GraphQL API.
// Handlers build it from the shop's stored session; core logic receives it
// as an explicit parameter.
type Client struct {
	Shop        string // my-store.myshopify.com
	APIVersion  string
	AccessToken string

	// HTTP overrides the transport in tests. Nil means http.DefaultClient.
	HTTP *http.Client
}

func APIVersion() string {
	v := strings.TrimSpace(os.Getenv("SHOPIFY_API_VERSION"))
	if v == "" {
		v = "2026-01"
	}
	return v
}

type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

func (c Client) endpoint() string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.Shop, c.APIVersion)
}

func (c Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func PostGraphQL[T any](ctx context.Context, c Client, query string, variables any) (*GraphQLResponse[T], int, error) {
	body := map[string]any{
		"query":     query,
		"variables": variables,
	}
	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(b))
	req.Header.Set("content-type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.AccessToken)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)

	var out GraphQLResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, res.StatusCode, err
	}

	return &out, res.StatusCode, nil
}
