package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sonali-vishwakarma08/bakery-api/config"
)

const (
	paypalSandboxBase = "https://api-m.sandbox.paypal.com"
	paypalLiveBase    = "https://api-m.paypal.com"
)

// PayPalGateway talks to the PayPal REST v2 checkout API.
type PayPalGateway struct {
	clientID   string
	secret     string
	webhookID  string
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalGateway(cfg config.PayPalConfig) *PayPalGateway {
	base := paypalLiveBase
	if cfg.Mode != "live" {
		base = paypalSandboxBase
	}
	return &PayPalGateway{
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
		webhookID:  cfg.WebhookID,
		baseURL:    base,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// token returns a cached OAuth2 access token, refreshing when expired.
func (g *PayPalGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.accessToken != "" && time.Now().Before(g.tokenExpiry) {
		return g.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.clientID, g.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &GatewayError{Message: fmt.Sprintf("failed to reach PayPal: %v", err), Retryable: true}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", gatewayErrorFrom(resp.StatusCode, body)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	g.accessToken = tok.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return g.accessToken, nil
}

func (g *PayPalGateway) call(ctx context.Context, method, path string, payload, out interface{}) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Message: fmt.Sprintf("failed to reach PayPal: %v", err), Retryable: true}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gatewayErrorFrom(resp.StatusCode, body)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse PayPal response: %w", err)
		}
	}
	return nil
}

// gatewayErrorFrom extracts PayPal's error name or the first issue code
// from an error payload. 5xx responses are marked retryable.
func gatewayErrorFrom(status int, body []byte) error {
	var payload struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Details []struct {
			Issue       string `json:"issue"`
			Description string `json:"description"`
		} `json:"details"`
	}
	_ = json.Unmarshal(body, &payload)

	code := payload.Name
	message := payload.Message
	if len(payload.Details) > 0 {
		code = payload.Details[0].Issue
		if payload.Details[0].Description != "" {
			message = payload.Details[0].Description
		}
	}
	if message == "" {
		message = fmt.Sprintf("PayPal API error (%d)", status)
	}
	return &GatewayError{Code: code, Message: message, Retryable: status >= 500}
}

func (g *PayPalGateway) CreateOrder(ctx context.Context, amount float64, currency, reference string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": reference,
			"amount": map[string]string{
				"currency_code": currency,
				"value":         fmt.Sprintf("%.2f", amount),
			},
		}},
	}

	var resp struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := g.call(ctx, http.MethodPost, "/v2/checkout/orders", payload, &resp); err != nil {
		return nil, err
	}

	order := &GatewayOrder{ID: resp.ID}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			order.ApproveURL = link.Href
		}
	}
	if order.ID == "" {
		return nil, &GatewayError{Message: "PayPal returned an empty order id"}
	}
	return order, nil
}

func (g *PayPalGateway) CaptureOrder(ctx context.Context, gatewayOrderID string) (*CaptureResult, error) {
	var resp struct {
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", gatewayOrderID)
	if err := g.call(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}

	result := &CaptureResult{Status: resp.Status}
	for _, pu := range resp.PurchaseUnits {
		for _, cap := range pu.Payments.Captures {
			result.CaptureID = cap.ID
			if cap.Status != "" {
				result.Status = cap.Status
			}
		}
	}
	return result, nil
}

func (g *PayPalGateway) RefundCapture(ctx context.Context, captureID string, amount float64, currency, reason string) (string, error) {
	payload := map[string]interface{}{
		"note_to_payer": reason,
	}
	if amount > 0 {
		payload["amount"] = map[string]string{
			"currency_code": currency,
			"value":         fmt.Sprintf("%.2f", amount),
		}
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/v2/payments/captures/%s/refund", captureID)
	if err := g.call(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return "", err
	}
	if resp.Status != "COMPLETED" && resp.Status != "PENDING" {
		return "", &GatewayError{Code: resp.Status, Message: "refund was not accepted"}
	}
	return resp.ID, nil
}

// VerifyWebhookSignature asks PayPal to confirm an event delivery came
// from them, using the transmission headers they attach.
func (g *PayPalGateway) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) (bool, error) {
	var event json.RawMessage = body
	payload := map[string]interface{}{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        g.webhookID,
		"webhook_event":     event,
	}

	var resp struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := g.call(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", payload, &resp); err != nil {
		return false, err
	}
	return resp.VerificationStatus == "SUCCESS", nil
}
