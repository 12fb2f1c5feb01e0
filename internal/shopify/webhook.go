package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Webhook delivery headers set by Shopify.
const (
	HeaderTopic      = "x-shopify-topic"
	HeaderShopDomain = "x-shopify-shop-domain"
	HeaderHmacSHA256 = "x-shopify-hmac-sha256"
)

// VerifyWebhookHMAC checks the base64 HMAC-SHA256 that Shopify computes over
// the raw request body for HTTPS webhook deliveries.
func VerifyWebhookHMAC(body []byte, secret, provided string) bool {
	if secret == "" || strings.TrimSpace(provided) == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(provided)))
}

// NormalizeTopic maps wire-format topics ("products/delete") onto the
// canonical names used for dispatch ("PRODUCTS_DELETE"). Already-canonical
// input passes through unchanged.
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(topic)
	t = strings.ReplaceAll(t, "/", "_")
	return strings.ToUpper(t)
}
