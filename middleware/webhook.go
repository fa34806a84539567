package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sonali-vishwakarma08/bakery-api/utils"
)

// WebhookVerifier confirms that a gateway event delivery is authentic.
type WebhookVerifier interface {
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) (bool, error)
}

// PayPalWebhookAuth verifies webhook signatures against the gateway.
// Verification is skipped in sandbox mode, where simulated events carry
// no usable signature.
func PayPalWebhookAuth(verifier WebhookVerifier, mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mode == "sandbox" || mode == "dev" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
			c.Abort()
			return
		}
		// the handler needs the body again
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ok, err := verifier.VerifyWebhookSignature(c.Request.Context(), c.Request.Header, body)
		if err != nil {
			utils.GetLogger().Error("webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not verify webhook signature"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			c.Abort()
			return
		}
		c.Next()
	}
}
