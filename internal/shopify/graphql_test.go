package shopify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testClient(fn rtFunc) Client {
	return Client{
		Shop:        "test-store.myshopify.com",
		APIVersion:  "2026-01",
		AccessToken: "shpat_test",
		HTTP:        &http.Client{Transport: fn},
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestPostGraphQL_RequestShape(t *testing.T) {
	var got *http.Request
	c := testClient(func(r *http.Request) (*http.Response, error) {
		got = r
		return jsonResponse(200, `{"data":{}}`), nil
	})

	type empty struct{}
	_, status, err := PostGraphQL[empty](context.Background(), c, "query { shop { name } }", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, status)

	require.NotNil(t, got)
	assert.Equal(t, "https://test-store.myshopify.com/admin/api/2026-01/graphql.json", got.URL.String())
	assert.Equal(t, "shpat_test", got.Header.Get("X-Shopify-Access-Token"))
	assert.Equal(t, "application/json", got.Header.Get("content-type"))
}

func TestPostGraphQL_DecodesErrors(t *testing.T) {
	c := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`), nil
	})

	type empty struct{}
	resp, _, err := PostGraphQL[empty](context.Background(), c, "query {}", nil)
	require.NoError(t, err)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Throttled", resp.Errors[0].Message)
	assert.Equal(t, "THROTTLED", resp.Errors[0].Extensions.Code)
}
