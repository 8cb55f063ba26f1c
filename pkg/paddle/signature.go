package paddle

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

// VerifyWebhookSignature checks the keyed hash Paddle computes over the raw
// webhook body. The comparison is constant time. A payload whose signature
// does not verify must never be parsed.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c.webhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha1.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// SignWebhookBody computes the signature Paddle would attach to the given
// body. Exported for tests and local webhook replay tooling.
func (c *Client) SignWebhookBody(body []byte) string {
	mac := hmac.New(sha1.New, []byte(c.webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
