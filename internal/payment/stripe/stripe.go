// Package stripe is a thin client for the two Stripe flows the storefront
// uses: PaymentIntents for on-site card entry and Checkout Sessions for
// hosted payment pages. It speaks the form-encoded REST API directly and
// verifies webhook signatures the way stripe-go does.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrRequestFailed    = errors.New("stripe request failed")
	ErrResponseInvalid  = errors.New("stripe response invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
)

const (
	defaultAPIBase          = "https://api.stripe.com"
	defaultTimeout          = 12 * time.Second
	defaultWebhookTolerance = 300 * time.Second
)

// Currencies whose minor unit equals the major unit.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// Config holds the account keys and endpoints.
type Config struct {
	SecretKey        string
	WebhookSecret    string
	APIBase          string
	SuccessURL       string
	CancelURL        string
	WebhookTolerance time.Duration
}

// Client calls the Stripe REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client. The API base and webhook tolerance fall back to
// their defaults when unset.
func NewClient(cfg Config) (*Client, error) {
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.WebhookSecret = strings.TrimSpace(cfg.WebhookSecret)
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: secret key is required", ErrConfigInvalid)
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if _, err := url.ParseRequestURI(cfg.APIBase); err != nil {
		return nil, fmt.Errorf("%w: api base is invalid", ErrConfigInvalid)
	}
	if cfg.WebhookTolerance <= 0 {
		cfg.WebhookTolerance = defaultWebhookTolerance
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// PaymentIntentInput describes an on-site card payment to open.
type PaymentIntentInput struct {
	OrderID     uint
	OrderNo     string
	Amount      string
	Currency    string
	Description string
}

// PaymentIntent is the subset of the PaymentIntent object the storefront
// needs.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Raw          map[string]interface{}
}

// CreatePaymentIntent opens a PaymentIntent carrying the order reference in
// its metadata, so webhooks can find the order even when the stored intent
// id was lost.
func (c *Client) CreatePaymentIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntent, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrConfigInvalid)
	}
	minor, err := toMinorAmount(input.Amount, currency)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[order_id]", strconv.FormatUint(uint64(input.OrderID), 10))
	form.Set("metadata[order_no]", input.OrderNo)
	if desc := strings.TrimSpace(input.Description); desc != "" {
		form.Set("description", desc)
	}

	raw, err := c.postForm(ctx, "/v1/payment_intents", form)
	if err != nil {
		return nil, err
	}
	intent := &PaymentIntent{
		ID:           readString(raw, "id"),
		ClientSecret: readString(raw, "client_secret"),
		Status:       readString(raw, "status"),
		Raw:          raw,
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing intent id or client secret", ErrResponseInvalid)
	}
	return intent, nil
}

// CheckoutSessionInput describes a hosted checkout page to open.
type CheckoutSessionInput struct {
	OrderID     uint
	OrderNo     string
	Amount      string
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the subset of the Checkout Session object the
// storefront needs.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	Status          string
	Raw             map[string]interface{}
}

// CreateCheckoutSession opens a hosted checkout session for a single
// order-total line item.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrConfigInvalid)
	}
	minor, err := toMinorAmount(input.Amount, currency)
	if err != nil {
		return nil, err
	}

	successURL := strings.TrimSpace(input.SuccessURL)
	if successURL == "" {
		successURL = c.cfg.SuccessURL
	}
	cancelURL := strings.TrimSpace(input.CancelURL)
	if cancelURL == "" {
		cancelURL = c.cfg.CancelURL
	}
	if successURL == "" || cancelURL == "" {
		return nil, fmt.Errorf("%w: success and cancel urls are required", ErrConfigInvalid)
	}
	subject := strings.TrimSpace(input.Description)
	if subject == "" {
		subject = input.OrderNo
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("client_reference_id", input.OrderNo)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(minor, 10))
	form.Set("line_items[0][price_data][product_data][name]", subject)
	form.Set("metadata[order_id]", strconv.FormatUint(uint64(input.OrderID), 10))
	form.Set("metadata[order_no]", input.OrderNo)
	form.Set("payment_intent_data[metadata][order_id]", strconv.FormatUint(uint64(input.OrderID), 10))
	form.Set("payment_intent_data[metadata][order_no]", input.OrderNo)

	raw, err := c.postForm(ctx, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	session := &CheckoutSession{
		ID:              readString(raw, "id"),
		URL:             readString(raw, "url"),
		PaymentIntentID: readPaymentIntentID(raw),
		Status:          readString(raw, "status"),
		Raw:             raw,
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("%w: missing session id or url", ErrResponseInvalid)
	}
	return session, nil
}

// GetPaymentIntent fetches the current state of a PaymentIntent.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, fmt.Errorf("%w: intent id is required", ErrConfigInvalid)
	}
	raw, err := c.get(ctx, "/v1/payment_intents/"+url.PathEscape(intentID))
	if err != nil {
		return nil, err
	}
	intent := &PaymentIntent{
		ID:           readString(raw, "id"),
		ClientSecret: readString(raw, "client_secret"),
		Status:       readString(raw, "status"),
		Raw:          raw,
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: missing intent id", ErrResponseInvalid)
	}
	return intent, nil
}

// Event is a verified webhook event.
type Event struct {
	ID              string
	Type            string
	OrderID         uint
	OrderNo         string
	PaymentIntentID string
	SessionID       string
	Raw             map[string]interface{}
	Object          map[string]interface{}
}

// VerifyWebhook checks the Stripe-Signature header against the raw body and
// decodes the event. The timestamp must fall within the configured
// tolerance to block replayed deliveries.
func (c *Client) VerifyWebhook(signatureHeader string, body []byte, now time.Time) (*Event, error) {
	if c.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret is required", ErrConfigInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	if now.IsZero() {
		now = time.Now()
	}

	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}
	if delta := math.Abs(float64(now.Unix() - timestamp)); delta > c.cfg.WebhookTolerance.Seconds() {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	expected := computeSignature(c.cfg.WebhookSecret, timestamp, body)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(strings.ToLower(sig)), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}

	raw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	event := &Event{
		ID:   readString(raw, "id"),
		Type: readString(raw, "type"),
		Raw:  raw,
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}

	data, ok := raw["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: missing data object", ErrResponseInvalid)
	}
	object, ok := data["object"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}
	event.Object = object

	metadata := readMap(object, "metadata")
	event.OrderID = parseOrderID(metadata)
	event.OrderNo = readString(metadata, "order_no")

	switch readString(object, "object") {
	case "checkout.session":
		event.SessionID = readString(object, "id")
		event.PaymentIntentID = readPaymentIntentID(object)
	case "payment_intent":
		event.PaymentIntentID = readString(object, "id")
	}
	return event, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (map[string]interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (map[string]interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBase+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]interface{}, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrResponseInvalid, req.URL.Path, resp.StatusCode)
	}
	return decodeRawMap(body)
}

func toMinorAmount(amount string, currency string) (int64, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("%w: amount is invalid", ErrConfigInvalid)
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}
	minor := parsed.Shift(int32(currencyScale(currency))).Round(0)
	return minor.IntPart(), nil
}

// FromMinorAmount renders a minor-unit amount as a decimal string.
func FromMinorAmount(minor int64, currency string) string {
	scale := currencyScale(currency)
	return decimal.NewFromInt(minor).Shift(int32(-scale)).StringFixed(int32(scale))
}

func currencyScale(currency string) int {
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return 0
	}
	return 2
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	payload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

func parseSignatureHeader(signatureHeader string) (int64, []string, error) {
	timestamp := int64(0)
	signatures := make([]string, 0)
	for _, part := range strings.Split(signatureHeader, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.TrimSpace(kv[0]) {
		case "t":
			parsed, err := strconv.ParseInt(strings.TrimSpace(kv[1]), 10, 64)
			if err != nil || parsed <= 0 {
				return 0, nil, fmt.Errorf("%w: invalid timestamp", ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			if value := strings.TrimSpace(kv[1]); value != "" {
				signatures = append(signatures, strings.ToLower(value))
			}
		}
	}
	if timestamp <= 0 {
		return 0, nil, fmt.Errorf("%w: timestamp is missing", ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: v1 signature is missing", ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

func parseOrderID(metadata map[string]interface{}) uint {
	raw := readString(metadata, "order_id")
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readPaymentIntentID(raw map[string]interface{}) string {
	value, ok := raw["payment_intent"]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]interface{}:
		return readString(typed, "id")
	default:
		return ""
	}
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	typed, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(typed)
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil {
		return nil
	}
	value, ok := raw[key].(map[string]interface{})
	if !ok {
		return nil
	}
	return value
}
