// Package paddle wraps the subset of the Paddle (classic) vendor API this
// service needs: hosted checkout URLs, subscription cancellation, and
// webhook signature verification.
package paddle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	productionAPIURL      = "https://api.paddle.com"
	sandboxAPIURL         = "https://sandbox-api.paddle.com"
	productionCheckoutURL = "https://checkout.paddle.com"
	sandboxCheckoutURL    = "https://sandbox-checkout.paddle.com"
)

type Client struct {
	vendorID       string
	vendorAuthCode string
	webhookSecret  string
	apiURL         string
	checkoutURL    string
	httpClient     *http.Client
}

func NewClient(vendorID, vendorAuthCode, webhookSecret string, production bool) *Client {
	apiURL := sandboxAPIURL
	checkoutURL := sandboxCheckoutURL
	if production {
		apiURL = productionAPIURL
		checkoutURL = productionCheckoutURL
	}
	return &Client{
		vendorID:       vendorID,
		vendorAuthCode: vendorAuthCode,
		webhookSecret:  webhookSecret,
		apiURL:         apiURL,
		checkoutURL:    checkoutURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CheckoutURL builds a hosted checkout link for the given plan. The metadata
// map travels through Paddle untouched in the passthrough field and comes
// back on every webhook for this purchase.
func (c *Client) CheckoutURL(planID, email, successURL, cancelURL string, metadata map[string]interface{}) (string, error) {
	passthrough, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("paddle: failed to encode passthrough: %w", err)
	}

	params := url.Values{}
	params.Set("vendor", c.vendorID)
	params.Set("product", planID)
	params.Set("email", email)
	params.Set("passthrough", string(passthrough))
	params.Set("success_url", successURL)
	params.Set("cancel_url", cancelURL)

	return fmt.Sprintf("%s/checkout.html?%s", c.checkoutURL, params.Encode()), nil
}

// CancelSubscription asks Paddle to cancel the subscription. The local status
// change arrives later through the subscription_cancelled webhook; this call
// writes nothing locally.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	form := url.Values{}
	form.Set("vendor_id", c.vendorID)
	form.Set("vendor_auth_code", c.vendorAuthCode)
	form.Set("subscription_id", subscriptionID)

	endpoint := c.apiURL + "/subscription/users_cancel"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paddle: cancel request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("paddle: failed to decode cancel response: %w", err)
	}
	if !body.Success {
		return fmt.Errorf("paddle: cancel rejected: %s", body.Error.Message)
	}
	return nil
}
