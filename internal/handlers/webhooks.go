package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"os"
	"strings"

	"flashsale-backend/internal/db"
	"flashsale-backend/internal/flashsale"
	"flashsale-backend/internal/shopify"

	"github.com/aws/aws-lambda-go/events"
)

// Topics this app subscribes to. Anything else delivered here is a
// subscription mistake and is rejected, not ignored.
const (
	topicProductsDelete = "PRODUCTS_DELETE"
	topicAppUninstalled = "APP_UNINSTALLED"
)

// WebhooksHandler receives Shopify HTTPS webhook deliveries: verify the body
// HMAC, then dispatch by topic.
func WebhooksHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	secret := os.Getenv("SHOPIFY_API_SECRET")
	if secret == "" {
		return errResp(500, "SHOPIFY_API_SECRET not set")
	}

	body, err := rawBody(req)
	if err != nil {
		return errResp(400, "invalid request body encoding")
	}

	if !shopify.VerifyWebhookHMAC(body, secret, header(req, shopify.HeaderHmacSHA256)) {
		return errResp(401, "invalid webhook hmac")
	}

	topic := shopify.NormalizeTopic(header(req, shopify.HeaderTopic))
	shop := strings.ToLower(strings.TrimSpace(header(req, shopify.HeaderShopDomain)))

	switch topic {
	case topicProductsDelete:
		return handleProductDeleted(ctx, body)

	case topicAppUninstalled:
		return handleAppUninstalled(ctx, shop)

	default:
		// Fail closed: a topic we never subscribed to is a client error,
		// not something to swallow.
		return errResp(404, "unhandled webhook topic")
	}
}

func handleProductDeleted(ctx context.Context, body []byte) (events.APIGatewayV2HTTPResponse, error) {
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return errResp(400, "invalid webhook payload")
	}
	if payload.ID == 0 {
		return jsonResp(200, map[string]any{"ok": true})
	}

	ddb, err := db.NewDynamoClient(ctx)
	if err != nil {
		return errResp(500, "failed to init dynamodb")
	}
	store, err := flashsale.NewStore(ddb)
	if err != nil {
		return errResp(500, err.Error())
	}

	productID := flashsale.ProductGID(payload.ID)
	if err := store.Delete(ctx, productID); err != nil {
		log.Printf("webhooks: orphan cleanup for %s failed: %v", productID, err)
		return errResp(500, "failed to delete sale record")
	}
	log.Printf("webhooks: removed flash-sale config for deleted product %s", productID)

	return jsonResp(200, map[string]any{"ok": true})
}

func handleAppUninstalled(ctx context.Context, shop string) (events.APIGatewayV2HTTPResponse, error) {
	if shop == "" {
		return jsonResp(200, map[string]any{"ok": true})
	}

	ddb, err := db.NewDynamoClient(ctx)
	if err != nil {
		return errResp(500, "failed to init dynamodb")
	}

	n, err := shopify.DeleteSessionsForShop(ctx, ddb, shop)
	if err != nil {
		log.Printf("webhooks: delete sessions for %s failed: %v", shop, err)
		return errResp(500, "failed to delete sessions")
	}
	log.Printf("webhooks: removed %d session(s) for uninstalled shop %s", n, shop)

	return jsonResp(200, map[string]any{"ok": true})
}

// rawBody returns the exact bytes Shopify signed. API Gateway base64-encodes
// binary bodies, so decode before verifying.
func rawBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

// header does a case-insensitive lookup; API Gateway lowercases incoming
// header names but tests and local invokes may not.
func header(req events.APIGatewayV2HTTPRequest, name string) string {
	if v, ok := req.Headers[name]; ok {
		return v
	}
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
