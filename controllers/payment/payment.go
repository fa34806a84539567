package paymentControllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	orderControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/order"
	"github.com/sonali-vishwakarma08/bakery-api/models"
	"github.com/sonali-vishwakarma08/bakery-api/utils"
)

const (
	captureAttempts = 3
	captureBackoff  = 2 * time.Second
)

// -------- Request Structs --------

type CreatePaymentRequest struct {
	OrderCode string `json:"order_code" binding:"required"`
	Method    string `json:"method"`
}

type VerifyPaymentRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
}

type RefundPaymentRequest struct {
	PaymentID uint    `json:"payment_id" binding:"required"`
	Amount    float64 `json:"amount"` // 0 = full refund
	Reason    string  `json:"reason"`
}

type PaymentActionRequest struct {
	PaymentID uint `json:"payment_id" binding:"required"`
}

// -------- Handlers --------

// CreatePaymentHandler opens a gateway order for an existing bakery order
// and records the payment attempt.
func CreatePaymentHandler(db *gorm.DB, gw Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "code = ?", req.OrderCode).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		amount := order.FinalAmount
		if amount == 0 {
			for _, item := range order.Items {
				amount += item.UnitPrice * float64(item.Quantity)
			}
		}
		if amount < 0.01 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be at least $0.01"})
			return
		}

		settings, err := models.GetSettings(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
			return
		}

		gwOrder, err := gw.CreateOrder(c.Request.Context(), amount, settings.Currency, order.Code)
		if err != nil {
			utils.GetLogger().Error("gateway order creation failed",
				zap.String("order_code", order.Code), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeGatewayError(err)})
			return
		}

		payment := models.Payment{
			OrderID:        order.ID,
			UserID:         order.UserID,
			Gateway:        "paypal",
			GatewayOrderID: gwOrder.ID,
			Amount:         amount,
			Currency:       settings.Currency,
			Method:         req.Method,
			PaymentStatus:  models.PaymentStatusCreated,
		}
		if err := db.Create(&payment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save payment"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"payment":          payment,
			"gateway_order_id": gwOrder.ID,
			"approve_url":      gwOrder.ApproveURL,
		})
	}
}

// VerifyPaymentHandler captures the gateway charge after buyer approval.
// Capture is retried on transient failure, and a payment that already
// succeeded is never downgraded by a later error.
func VerifyPaymentHandler(db *gorm.DB, gw Gateway, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var payment models.Payment
		if err := db.First(&payment, "gateway_order_id = ?", req.GatewayOrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		if payment.PaymentStatus == models.PaymentStatusSuccess {
			c.JSON(http.StatusOK, gin.H{"message": "Payment already verified", "payment": payment})
			return
		}

		utils.PaymentAttemptsTotal.Inc()
		result, err := captureWithRetry(c.Request.Context(), gw, payment.GatewayOrderID)
		if err != nil {
			markPaymentFailed(db, &payment, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeGatewayError(err)})
			return
		}
		if result.Status != "COMPLETED" {
			payment.PaymentStatus = models.PaymentStatusPending
			payment.FailureReason = "capture status " + result.Status
			_ = db.Save(&payment).Error
			utils.PaymentFailedTotal.Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment is not completed yet"})
			return
		}

		order, err := settlePayment(db, &payment, result.CaptureID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
			return
		}

		utils.PaymentSuccessTotal.Inc()
		notifier.NotifyOrderStatus(c.Request.Context(), order)
		orderControllers.BroadcastOrderUpdate(*order)
		c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "payment": payment})
	}
}

// WebhookHandler is the out-of-band confirmation path, so server-side
// state does not depend on the client calling verify. Processing is
// idempotent per gateway event id.
func WebhookHandler(db *gorm.DB, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
			return
		}

		var event struct {
			ID        string `json:"id"`
			EventType string `json:"event_type"`
			Resource  struct {
				ID                string `json:"id"`
				SupplementaryData struct {
					RelatedIDs struct {
						OrderID string `json:"order_id"`
					} `json:"related_ids"`
				} `json:"supplementary_data"`
			} `json:"resource"`
		}
		if err := json.Unmarshal(body, &event); err != nil || event.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
			return
		}

		// dedupe on event id: a redelivered event is acknowledged, not reprocessed
		var seen models.WebhookEvent
		if err := db.First(&seen, "event_id = ?", event.ID).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Event already processed"})
			return
		}

		gatewayOrderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
		if gatewayOrderID == "" {
			gatewayOrderID = event.Resource.ID
		}

		var payment models.Payment
		if err := db.First(&payment, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
			// not a payment we know; acknowledge so the gateway stops retrying
			c.JSON(http.StatusOK, gin.H{"message": "No matching payment"})
			return
		}

		logger := utils.GetLogger()
		switch event.EventType {
		case "CHECKOUT.ORDER.COMPLETED", "PAYMENT.CAPTURE.COMPLETED":
			if payment.PaymentStatus != models.PaymentStatusSuccess {
				captureID := payment.CaptureID
				if event.EventType == "PAYMENT.CAPTURE.COMPLETED" {
					captureID = event.Resource.ID
				}
				order, err := settlePayment(db, &payment, captureID)
				if err != nil {
					logger.Error("webhook settlement failed",
						zap.String("event_id", event.ID), zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
					return
				}
				utils.PaymentSuccessTotal.Inc()
				notifier.NotifyOrderStatus(c.Request.Context(), order)
				orderControllers.BroadcastOrderUpdate(*order)
			}
		case "CHECKOUT.ORDER.APPROVED":
			// buyer approval only; funds move when the capture lands
			logger.Info("checkout approved, awaiting capture",
				zap.String("gateway_order_id", gatewayOrderID))
		case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.FAILED":
			markPaymentFailed(db, &payment, errors.New("capture "+event.EventType))
		default:
			logger.Info("ignoring webhook event", zap.String("event_type", event.EventType))
		}

		_ = db.Create(&models.WebhookEvent{
			EventID:     event.ID,
			EventType:   event.EventType,
			ProcessedAt: time.Now(),
		}).Error

		c.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
	}
}

// RefundPaymentHandler refunds a successful payment, fully or partially,
// and cancels the linked order.
func RefundPaymentHandler(db *gorm.DB, gw Gateway, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefundPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var payment models.Payment
		if err := db.First(&payment, req.PaymentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		if payment.PaymentStatus != models.PaymentStatusSuccess {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only successful payments can be refunded"})
			return
		}
		if req.Amount < 0 || req.Amount > payment.Amount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refund amount"})
			return
		}

		refundID, err := gw.RefundCapture(c.Request.Context(), payment.CaptureID, req.Amount, payment.Currency, req.Reason)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeGatewayError(err)})
			return
		}

		newStatus := models.PaymentStatusRefunded
		refunded := payment.Amount
		if req.Amount > 0 && req.Amount < payment.Amount {
			newStatus = models.PaymentStatusPartiallyRefunded
			refunded = req.Amount
		}
		payment.PaymentStatus = newStatus
		payment.RefundID = refundID
		payment.RefundAmount = refunded
		payment.RefundReason = req.Reason
		if err := db.Save(&payment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save refund"})
			return
		}
		utils.PaymentRefundsTotal.Inc()

		order, err := orderControllers.Cancel(db, payment.OrderID)
		if err != nil {
			// refund went through; an undeliverable cancel (e.g. already
			// delivered) is logged rather than rolled back
			utils.GetLogger().Warn("refund recorded but order not cancelled",
				zap.Uint("order_id", payment.OrderID), zap.Error(err))
		} else {
			notifier.NotifyOrderStatus(c.Request.Context(), order)
			orderControllers.BroadcastOrderUpdate(*order)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Payment refunded", "payment": payment})
	}
}

// CancelPaymentHandler abandons a non-successful payment attempt and
// cancels the linked order.
func CancelPaymentHandler(db *gorm.DB, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var payment models.Payment
		if err := db.First(&payment, req.PaymentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		switch payment.PaymentStatus {
		case models.PaymentStatusCreated, models.PaymentStatusPending, models.PaymentStatusFailed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment cannot be cancelled in its current state"})
			return
		}

		if payment.PaymentStatus != models.PaymentStatusFailed {
			payment.PaymentStatus = models.PaymentStatusFailed
			payment.FailureReason = "cancelled by user"
			if err := db.Save(&payment).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save payment"})
				return
			}
		}

		order, err := orderControllers.Cancel(db, payment.OrderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel order"})
			return
		}
		notifier.NotifyOrderStatus(c.Request.Context(), order)
		orderControllers.BroadcastOrderUpdate(*order)

		c.JSON(http.StatusOK, gin.H{"message": "Payment cancelled", "payment": payment})
	}
}

// RetryPaymentHandler opens a fresh gateway order for a failed payment,
// resetting the same payment row back to created.
func RetryPaymentHandler(db *gorm.DB, gw Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var payment models.Payment
		if err := db.Preload("Order").First(&payment, req.PaymentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		if payment.PaymentStatus != models.PaymentStatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only failed payments can be retried"})
			return
		}

		gwOrder, err := gw.CreateOrder(c.Request.Context(), payment.Amount, payment.Currency, payment.Order.Code)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeGatewayError(err)})
			return
		}

		payment.GatewayOrderID = gwOrder.ID
		payment.PaymentStatus = models.PaymentStatusCreated
		payment.CaptureID = ""
		payment.IsVerified = false
		payment.PaidAt = nil
		payment.FailureReason = ""
		if err := db.Save(&payment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save payment"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"payment":          payment,
			"gateway_order_id": gwOrder.ID,
			"approve_url":      gwOrder.ApproveURL,
		})
	}
}

// GetOrderPaymentsHandler lists payment attempts for one order (admin).
func GetOrderPaymentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var payments []models.Payment
		if err := db.Where("order_id = ?", orderID).
			Order("created_at DESC").Find(&payments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch payments"})
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

// -------- Core Logic --------

// captureWithRetry attempts the gateway capture up to captureAttempts
// times with a fixed backoff, retrying only transient failures. A capture
// must never be silently lost to a network blip.
func captureWithRetry(ctx context.Context, gw Gateway, gatewayOrderID string) (*CaptureResult, error) {
	var lastErr error
	for attempt := 1; attempt <= captureAttempts; attempt++ {
		result, err := gw.CaptureOrder(ctx, gatewayOrderID)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == captureAttempts {
			break
		}
		utils.GetLogger().Warn("capture attempt failed, retrying",
			zap.String("gateway_order_id", gatewayOrderID),
			zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(captureBackoff):
		}
	}
	return nil, lastErr
}

// settlePayment records a completed capture and confirms the linked order.
func settlePayment(db *gorm.DB, payment *models.Payment, captureID string) (*models.Order, error) {
	now := time.Now()
	payment.PaymentStatus = models.PaymentStatusSuccess
	payment.IsVerified = true
	payment.PaidAt = &now
	payment.CaptureID = captureID
	payment.FailureReason = ""
	if err := db.Save(payment).Error; err != nil {
		return nil, err
	}
	return orderControllers.MarkPaid(db, payment.OrderID)
}

// markPaymentFailed records a failure unless the payment already
// succeeded; a success is never overwritten by a later error.
func markPaymentFailed(db *gorm.DB, payment *models.Payment, cause error) {
	if payment.PaymentStatus == models.PaymentStatusSuccess {
		return
	}
	payment.PaymentStatus = models.PaymentStatusFailed
	payment.FailureReason = cause.Error()
	if err := db.Save(payment).Error; err != nil {
		utils.GetLogger().Error("failed to mark payment as failed",
			zap.Uint("payment_id", payment.ID), zap.Error(err))
	}
	utils.PaymentFailedTotal.Inc()
}
