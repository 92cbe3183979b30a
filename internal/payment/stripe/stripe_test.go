package stripe

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func signedHeader(secret string, ts time.Time, body []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), computeSignature(secret, ts.Unix(), body))
}

func TestVerifyWebhookAcceptsValidSignature(t *testing.T) {
	client := newTestClient(t)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_123","metadata":{"order_id":"42","order_no":"CRX20260101120000000001"}}}}`)
	now := time.Now()

	event, err := client.VerifyWebhook(signedHeader("whsec_test", now, body), body, now)
	if err != nil {
		t.Fatalf("VerifyWebhook: %v", err)
	}
	if event.Type != "payment_intent.succeeded" {
		t.Fatalf("event type = %q", event.Type)
	}
	if event.PaymentIntentID != "pi_123" {
		t.Fatalf("payment intent id = %q", event.PaymentIntentID)
	}
	if event.OrderID != 42 {
		t.Fatalf("order id = %d", event.OrderID)
	}
	if event.OrderNo != "CRX20260101120000000001" {
		t.Fatalf("order no = %q", event.OrderNo)
	}
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	client := newTestClient(t)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_123"}}}`)
	now := time.Now()

	_, err := client.VerifyWebhook(signedHeader("whsec_other", now, body), body, now)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyWebhookRejectsTamperedBody(t *testing.T) {
	client := newTestClient(t)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_123"}}}`)
	now := time.Now()
	header := signedHeader("whsec_test", now, body)

	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_999"}}}`)
	_, err := client.VerifyWebhook(header, tampered, now)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyWebhookRejectsStaleTimestamp(t *testing.T) {
	client := newTestClient(t)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_123"}}}`)
	signedAt := time.Now().Add(-10 * time.Minute)

	_, err := client.VerifyWebhook(signedHeader("whsec_test", signedAt, body), body, time.Now())
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyWebhookReadsCheckoutSessionRefs(t *testing.T) {
	client := newTestClient(t)
	body := []byte(`{"id":"evt_2","type":"checkout.session.completed","data":{"object":{"object":"checkout.session","id":"cs_123","payment_intent":"pi_456","metadata":{"order_id":"7"}}}}`)
	now := time.Now()

	event, err := client.VerifyWebhook(signedHeader("whsec_test", now, body), body, now)
	if err != nil {
		t.Fatalf("VerifyWebhook: %v", err)
	}
	if event.SessionID != "cs_123" {
		t.Fatalf("session id = %q", event.SessionID)
	}
	if event.PaymentIntentID != "pi_456" {
		t.Fatalf("payment intent id = %q", event.PaymentIntentID)
	}
	if event.OrderID != 7 {
		t.Fatalf("order id = %d", event.OrderID)
	}
}

func TestToMinorAmount(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     int64
		wantErr  bool
	}{
		{"12.50", "USD", 1250, false},
		{"0.99", "usd", 99, false},
		{"1200", "JPY", 1200, false},
		{"0", "USD", 0, true},
		{"-5", "USD", 0, true},
		{"abc", "USD", 0, true},
	}
	for _, tc := range cases {
		got, err := toMinorAmount(tc.amount, tc.currency)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("toMinorAmount(%q, %q): expected error", tc.amount, tc.currency)
			}
			continue
		}
		if err != nil {
			t.Fatalf("toMinorAmount(%q, %q): %v", tc.amount, tc.currency, err)
		}
		if got != tc.want {
			t.Fatalf("toMinorAmount(%q, %q) = %d, want %d", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestFromMinorAmount(t *testing.T) {
	if got := FromMinorAmount(1250, "USD"); got != "12.50" {
		t.Fatalf("FromMinorAmount(1250, USD) = %q", got)
	}
	if got := FromMinorAmount(1200, "JPY"); got != "1200" {
		t.Fatalf("FromMinorAmount(1200, JPY) = %q", got)
	}
}
