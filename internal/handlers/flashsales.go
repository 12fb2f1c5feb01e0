package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"flashsale-backend/internal/db"
	"flashsale-backend/internal/flashsale"
	"flashsale-backend/internal/ops"
	"flashsale-backend/internal/shopify"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// FlashSalesHandler serves the merchant-admin API. Route by path + method.
func FlashSalesHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	switch req.RawPath {
	case "/flash-sales/products":
		if req.RequestContext.HTTP.Method == "GET" {
			return listFlashSaleProducts(ctx, req)
		}
		return errResp(405, "method not allowed")
	case "/flash-sales":
		if req.RequestContext.HTTP.Method == "POST" {
			return saveFlashSale(ctx, req)
		}
		return errResp(405, "method not allowed")
	default:
		return errResp(404, "not found")
	}
}

// catalogReader / catalogWriter adapt the shopify client to the narrow
// interfaces the flashsale package works against.
type catalogReader struct{ c shopify.Client }

func (r catalogReader) ListProducts(ctx context.Context, first int) ([]shopify.Product, error) {
	return shopify.ListProducts(ctx, r.c, first)
}

type catalogWriter struct{ c shopify.Client }

func (w catalogWriter) SetFlashSaleMetafield(ctx context.Context, productID, value string) error {
	return shopify.SetFlashSaleMetafield(ctx, w.c, productID, value)
}

func listFlashSaleProducts(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	shop := strings.ToLower(strings.TrimSpace(req.QueryStringParameters["shop"]))
	if !isValidShopDomain(shop) {
		return errResp(400, "invalid shop (expected like your-store.myshopify.com)")
	}

	ddb, err := db.NewDynamoClient(ctx)
	if err != nil {
		return errResp(500, "failed to init dynamodb")
	}

	client, err := shopify.LoadOfflineSession(ctx, ddb, shop)
	if err != nil {
		return errResp(500, err.Error())
	}

	store, err := flashsale.NewStore(ddb)
	if err != nil {
		return errResp(500, err.Error())
	}

	items, err := flashsale.LoadAnnotatedProducts(ctx, catalogReader{client}, store, productsPageSize())
	if err != nil {
		log.Printf("flash-sales: load sale records failed: %v", err)
		return errResp(500, "failed to load sale records")
	}

	return jsonResp(200, map[string]any{
		"shop":     shop,
		"products": items,
	})
}

func saveFlashSale(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	shop := strings.ToLower(strings.TrimSpace(req.QueryStringParameters["shop"]))
	if !isValidShopDomain(shop) {
		return errResp(400, "invalid shop (expected like your-store.myshopify.com)")
	}

	var in flashsale.SaveInput
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return errResp(400, "invalid json body")
	}

	ddb, err := db.NewDynamoClient(ctx)
	if err != nil {
		return errResp(500, "failed to init dynamodb")
	}

	client, err := shopify.LoadOfflineSession(ctx, ddb, shop)
	if err != nil {
		return errResp(500, err.Error())
	}

	store, err := flashsale.NewStore(ddb)
	if err != nil {
		return errResp(500, err.Error())
	}

	err = flashsale.Save(ctx, store, catalogWriter{client}, in)

	var propErr *flashsale.PropagationError
	switch {
	case err == nil:
		return jsonResp(200, map[string]any{
			"ok":        true,
			"productId": strings.TrimSpace(in.ProductID),
		})
	case errors.Is(err, flashsale.ErrMissingProductID), errors.Is(err, flashsale.ErrInvalidDate):
		return errResp(400, err.Error())
	case errors.As(err, &propErr):
		// Local record is committed; only the catalog mirror is behind.
		log.Printf("flash-sales: %v", propErr)
		alertPropagationFailure(ctx, shop, propErr)
		return jsonResp(502, map[string]any{
			"error":     "flash sale saved, but updating the product metafield failed; retry to re-sync",
			"saved":     true,
			"productId": propErr.ProductID,
		})
	default:
		log.Printf("flash-sales: save failed: %v", err)
		return errResp(500, "failed to save flash sale")
	}
}

func alertPropagationFailure(ctx context.Context, shop string, propErr *flashsale.PropagationError) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("flash-sales: alert skipped, aws config: %v", err)
		return
	}
	snsClient := sns.NewFromConfig(awsCfg)
	if err := ops.NotifyPropagationFailure(ctx, snsClient, shop, propErr.ProductID, propErr.Err); err != nil {
		log.Printf("flash-sales: alert publish failed: %v", err)
	}
}

func productsPageSize() int {
	if s := strings.TrimSpace(os.Getenv("PRODUCTS_PAGE_SIZE")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 50 {
			return n
		}
	}
	return 10
}

/** Helpers **/

func jsonResp(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type":                "application/json",
			"access-control-allow-origin": "*",
		},
		Body: string(b),
	}, nil
}

func errResp(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	return jsonResp(status, map[string]any{
		"error": msg,
	})
}

func isValidShopDomain(shop string) bool {
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return false
	}
	if strings.Contains(shop, "/") || strings.Contains(shop, " ") {
		return false
	}
	return len(shop) >= len("a.myshopify.com")
}
