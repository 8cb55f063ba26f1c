package paddle

import (
	"strings"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	client := NewClient("12345", "auth-code", "test-webhook-secret", false)
	body := []byte(`{"alert_name":"subscription_created","subscription_id":"sub_1"}`)

	sig := client.SignWebhookBody(body)

	t.Run("valid signature accepted", func(t *testing.T) {
		if !client.VerifyWebhookSignature(body, sig) {
			t.Error("expected valid signature to verify")
		}
	})

	t.Run("tampered body rejected", func(t *testing.T) {
		tampered := []byte(`{"alert_name":"subscription_created","subscription_id":"sub_2"}`)
		if client.VerifyWebhookSignature(tampered, sig) {
			t.Error("expected tampered body to fail verification")
		}
	})

	t.Run("wrong signature rejected", func(t *testing.T) {
		if client.VerifyWebhookSignature(body, "deadbeef") {
			t.Error("expected bogus signature to fail verification")
		}
	})

	t.Run("empty signature rejected", func(t *testing.T) {
		if client.VerifyWebhookSignature(body, "") {
			t.Error("expected empty signature to fail verification")
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewClient("12345", "auth-code", "different-secret", false)
		if other.VerifyWebhookSignature(body, sig) {
			t.Error("expected signature from another secret to fail verification")
		}
	})
}

func TestCheckoutURL(t *testing.T) {
	client := NewClient("12345", "auth-code", "secret", false)

	u, err := client.CheckoutURL("847201", "a@b.com", "https://app.example.com/billing/success", "https://app.example.com/billing/cancel", map[string]interface{}{
		"userId": "u-1",
	})
	if err != nil {
		t.Fatalf("CheckoutURL returned error: %v", err)
	}

	if got, want := u[:len(sandboxCheckoutURL)], sandboxCheckoutURL; got != want {
		t.Errorf("checkout host = %s, want %s", got, want)
	}
	for _, fragment := range []string{"vendor=12345", "product=847201", "passthrough="} {
		if !strings.Contains(u, fragment) {
			t.Errorf("checkout URL missing %q: %s", fragment, u)
		}
	}
}
