package paymentControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// GatewayOrder is a freshly opened gateway order awaiting buyer approval.
type GatewayOrder struct {
	ID         string
	ApproveURL string
}

// CaptureResult is the outcome of finalizing a gateway order.
type CaptureResult struct {
	Status    string // "COMPLETED" on success
	CaptureID string
}

// Gateway abstracts the payment processor so the workflow can be tested
// without touching the network.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, reference string) (*GatewayOrder, error)
	CaptureOrder(ctx context.Context, gatewayOrderID string) (*CaptureResult, error)
	RefundCapture(ctx context.Context, captureID string, amount float64, currency, reason string) (string, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) (bool, error)
}

// GatewayError carries the gateway's error code alongside a message.
// Retryable errors (network failures, gateway 5xx) may be attempted again.
type GatewayError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
	}
	return "gateway error: " + e.Message
}

const codeInstrumentDeclined = "INSTRUMENT_DECLINED"

// sanitizeGatewayError maps a gateway failure to a user-facing message.
// Card declines get a specific message; everything else is generic so
// internal details never leak to the client.
func sanitizeGatewayError(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Code == codeInstrumentDeclined {
		return "Your payment method was declined. Please try a different one."
	}
	return "Payment could not be completed. Please try again."
}

func isRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Retryable
	}
	// plain transport errors are worth retrying
	return true
}
