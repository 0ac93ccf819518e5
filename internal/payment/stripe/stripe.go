package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrRequestFailed    = errors.New("stripe request failed")
	ErrResponseInvalid  = errors.New("stripe response invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
	ErrMetadataInvalid  = errors.New("stripe checkout metadata invalid")
)

const (
	defaultTimeout           = 12 * time.Second
	defaultWebhookToleranceS = 300
	defaultCurrency          = "usd"
)

// Config Stripe 渠道配置。
type Config struct {
	SecretKey               string
	WebhookSecret           string
	APIBaseURL              string
	WebhookToleranceSeconds int
	PaymentMethodTypes      []string
	Currency                string
	MaxNetworkRetries       int64
	HTTPClient              *http.Client
	Logger                  stripego.LeveledLoggerInterface
}

// LineItem 单个结算项。
type LineItem struct {
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int64
}

// CheckoutInput 创建 Checkout Session 输入。
type CheckoutInput struct {
	Item          LineItem
	Currency      string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      CheckoutMetadata
}

// CheckoutResult 创建 Checkout Session 返回。
type CheckoutResult struct {
	SessionID string
	URL       string
}

// Event 已验签的 Stripe 事件。
type Event struct {
	ID      string
	Type    string
	Created int64
	Object  json.RawMessage
}

// CheckoutSession checkout.session.* 事件中的会话对象（仅保留对账所需字段）。
type CheckoutSession struct {
	ID            string          `json:"id"`
	AmountTotal   int64           `json:"amount_total"`
	Currency      string          `json:"currency"`
	PaymentStatus string          `json:"payment_status"`
	CustomerEmail string          `json:"customer_email"`
	Metadata      json.RawMessage `json:"metadata"`
}

// Gateway Stripe 网关。
type Gateway struct {
	cfg Config
	api *client.API
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	if base := strings.TrimSpace(cfg.APIBaseURL); base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
		}
	}
	return nil
}

// NewGateway 创建 Stripe 网关。
func NewGateway(cfg Config) (*Gateway, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	backendConfig := &stripego.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripego.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.Logger != nil {
		backendConfig.LeveledLogger = cfg.Logger
	}
	if cfg.APIBaseURL != "" {
		backendConfig.URL = stripego.String(cfg.APIBaseURL)
	}
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, backendConfig)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripego.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &Gateway{cfg: cfg, api: api}, nil
}

// Currency 返回默认结算币种。
func (g *Gateway) Currency() string {
	return g.cfg.Currency
}

// CreateCheckoutSession 创建 Stripe Checkout Session。
func (g *Gateway) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = g.cfg.Currency
	}
	if input.Item.UnitAmount < 0 {
		return nil, fmt.Errorf("%w: unit amount must not be negative", ErrConfigInvalid)
	}
	quantity := input.Item.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	productData := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripego.String(input.Item.Name),
	}
	if image := strings.TrimSpace(input.Item.ImageURL); image != "" {
		productData.Images = stripego.StringSlice([]string{image})
	}

	params := &stripego.CheckoutSessionParams{
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice(g.cfg.PaymentMethodTypes),
		SuccessURL:         stripego.String(input.SuccessURL),
		CancelURL:          stripego.String(input.CancelURL),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripego.String(currency),
					ProductData: productData,
					UnitAmount:  stripego.Int64(input.Item.UnitAmount),
				},
				Quantity: stripego.Int64(quantity),
			},
		},
	}
	params.Context = ctx
	if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		params.CustomerEmail = stripego.String(email)
	}
	for key, value := range input.Metadata.ToMap() {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, stripeErr.Msg)
		}
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if session == nil || strings.TrimSpace(session.ID) == "" || strings.TrimSpace(session.URL) == "" {
		return nil, fmt.Errorf("%w: missing session id or url", ErrResponseInvalid)
	}
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// VerifyWebhook 校验签名并解析事件信封。
func (g *Gateway) VerifyWebhook(body []byte, signatureHeader string) (*Event, error) {
	return VerifyWebhook(g.cfg.WebhookSecret, g.cfg.WebhookToleranceSeconds, body, signatureHeader)
}

// VerifyWebhook 使用给定 secret 校验 Stripe-Signature 并解析事件。
func VerifyWebhook(secret string, toleranceSeconds int, body []byte, signatureHeader string) (*Event, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, fmt.Errorf("%w: Stripe-Signature is required", ErrSignatureInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrSignatureInvalid)
	}
	if toleranceSeconds <= 0 {
		toleranceSeconds = defaultWebhookToleranceS
	}
	tolerance := time.Duration(toleranceSeconds) * time.Second
	if err := webhook.ValidatePayloadWithTolerance(body, signatureHeader, secret, tolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return ParseEvent(body)
}

// ParseEvent 解析已验签（或已入库）的事件体。
func ParseEvent(body []byte) (*Event, error) {
	var envelope stripego.Event
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode event failed", ErrResponseInvalid)
	}
	eventType := strings.TrimSpace(string(envelope.Type))
	if eventType == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}
	event := &Event{
		ID:      strings.TrimSpace(envelope.ID),
		Type:    eventType,
		Created: envelope.Created,
	}
	if envelope.Data != nil {
		event.Object = envelope.Data.Raw
	}
	return event, nil
}

// DecodeCheckoutSession 解析事件中的 checkout session 对象。
func DecodeCheckoutSession(raw json.RawMessage) (*CheckoutSession, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}
	var session CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session failed", ErrResponseInvalid)
	}
	session.ID = strings.TrimSpace(session.ID)
	session.Currency = strings.ToLower(strings.TrimSpace(session.Currency))
	if session.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrResponseInvalid)
	}
	return &session, nil
}

func (c *Config) normalize() {
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.Currency = strings.ToLower(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	if c.WebhookToleranceSeconds <= 0 {
		c.WebhookToleranceSeconds = defaultWebhookToleranceS
	}
	if c.MaxNetworkRetries < 0 {
		c.MaxNetworkRetries = 0
	}
	normalized := make([]string, 0, len(c.PaymentMethodTypes))
	for _, item := range c.PaymentMethodTypes {
		trimmed := strings.ToLower(strings.TrimSpace(item))
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	if len(normalized) == 0 {
		normalized = []string{"card"}
	}
	sort.Strings(normalized)
	c.PaymentMethodTypes = normalized
}
