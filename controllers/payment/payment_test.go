package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// -------- Mock Gateway --------

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount float64, currency, reference string) (*GatewayOrder, error) {
	args := m.Called(ctx, amount, currency, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayOrder), args.Error(1)
}

func (m *mockGateway) CaptureOrder(ctx context.Context, gatewayOrderID string) (*CaptureResult, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CaptureResult), args.Error(1)
}

func (m *mockGateway) RefundCapture(ctx context.Context, captureID string, amount float64, currency, reason string) (string, error) {
	args := m.Called(ctx, captureID, amount, currency, reason)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) (bool, error) {
	args := m.Called(ctx, headers, body)
	return args.Bool(0), args.Error(1)
}

// -------- Fixtures --------

func setupPaymentDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.PushToken{}, &models.Product{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
		&models.WebhookEvent{}, &models.Notification{}, &models.Setting{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, finalAmount float64) models.Order {
	t.Helper()
	user := models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	order := models.Order{
		Code:          "ORD-20250908-" + uuid.NewString()[:8],
		UserID:        user.ID,
		TotalAmount:   finalAmount,
		FinalAmount:   finalAmount,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatePending,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testNotifier(db *gorm.DB) *notificationControllers.Dispatcher {
	return notificationControllers.NewDispatcher(db, nil, nil)
}

// -------- Tests --------

func TestCreatePaymentRejectsZeroAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 0)
	gw := new(mockGateway)

	r := gin.New()
	r.POST("/payments", CreatePaymentHandler(db, gw))

	w := postJSON(r, "/payments", CreatePaymentRequest{OrderCode: order.Code})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "amount must be at least $0.01")
	gw.AssertNotCalled(t, "CreateOrder")
}

func TestCreatePaymentOpensGatewayOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 285)
	gw := new(mockGateway)
	gw.On("CreateOrder", mock.Anything, 285.0, "USD", order.Code).
		Return(&GatewayOrder{ID: "GW-1", ApproveURL: "https://paypal.test/approve/GW-1"}, nil)

	r := gin.New()
	r.POST("/payments", CreatePaymentHandler(db, gw))

	w := postJSON(r, "/payments", CreatePaymentRequest{OrderCode: order.Code, Method: "paypal"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payment models.Payment
	require.NoError(t, db.First(&payment, "gateway_order_id = ?", "GW-1").Error)
	assert.Equal(t, models.PaymentStatusCreated, payment.PaymentStatus)
	assert.Equal(t, 285.0, payment.Amount)
	assert.Equal(t, order.ID, payment.OrderID)
	gw.AssertExpectations(t)
}

func TestVerifyPaymentSettlesOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 100)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-2", Amount: 100, Currency: "USD",
		PaymentStatus: models.PaymentStatusCreated,
	}
	require.NoError(t, db.Create(&payment).Error)

	gw := new(mockGateway)
	gw.On("CaptureOrder", mock.Anything, "GW-2").
		Return(&CaptureResult{Status: "COMPLETED", CaptureID: "CAP-2"}, nil).Once()

	r := gin.New()
	r.POST("/payments/verify", VerifyPaymentHandler(db, gw, testNotifier(db)))

	w := postJSON(r, "/payments/verify", VerifyPaymentRequest{GatewayOrderID: "GW-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSuccess, got.PaymentStatus)
	assert.Equal(t, "CAP-2", got.CaptureID)
	assert.True(t, got.IsVerified)
	require.NotNil(t, got.PaidAt)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusConfirmed, gotOrder.Status)
	assert.Equal(t, models.PaymentStateSuccess, gotOrder.PaymentStatus)

	// a second verify is idempotent and never hits the gateway again
	w = postJSON(r, "/payments/verify", VerifyPaymentRequest{GatewayOrderID: "GW-2"})
	assert.Equal(t, http.StatusOK, w.Code)
	gw.AssertNumberOfCalls(t, "CaptureOrder", 1)
}

func TestVerifyPaymentRetriesTransientFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 50)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-3", Amount: 50, Currency: "USD",
		PaymentStatus: models.PaymentStatusCreated,
	}
	require.NoError(t, db.Create(&payment).Error)

	gw := new(mockGateway)
	gw.On("CaptureOrder", mock.Anything, "GW-3").
		Return(nil, &GatewayError{Code: "INTERNAL_SERVER_ERROR", Retryable: true}).Once()
	gw.On("CaptureOrder", mock.Anything, "GW-3").
		Return(&CaptureResult{Status: "COMPLETED", CaptureID: "CAP-3"}, nil).Once()

	r := gin.New()
	r.POST("/payments/verify", VerifyPaymentHandler(db, gw, testNotifier(db)))

	w := postJSON(r, "/payments/verify", VerifyPaymentRequest{GatewayOrderID: "GW-3"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gw.AssertNumberOfCalls(t, "CaptureOrder", 2)

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSuccess, got.PaymentStatus)
}

func TestVerifyPaymentDeclinedNotRetried(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 50)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-4", Amount: 50, Currency: "USD",
		PaymentStatus: models.PaymentStatusCreated,
	}
	require.NoError(t, db.Create(&payment).Error)

	gw := new(mockGateway)
	gw.On("CaptureOrder", mock.Anything, "GW-4").
		Return(nil, &GatewayError{Code: "INSTRUMENT_DECLINED", Retryable: false}).Once()

	r := gin.New()
	r.POST("/payments/verify", VerifyPaymentHandler(db, gw, testNotifier(db)))

	w := postJSON(r, "/payments/verify", VerifyPaymentRequest{GatewayOrderID: "GW-4"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "declined")
	gw.AssertNumberOfCalls(t, "CaptureOrder", 1)

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)
}

func TestWebhookSettlesAndDedupes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 75)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-5", Amount: 75, Currency: "USD",
		PaymentStatus: models.PaymentStatusCreated,
	}
	require.NoError(t, db.Create(&payment).Error)

	r := gin.New()
	r.POST("/payments/webhook", WebhookHandler(db, testNotifier(db)))

	event := map[string]interface{}{
		"id":         "WH-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": map[string]interface{}{
			"id": "CAP-5",
			"supplementary_data": map[string]interface{}{
				"related_ids": map[string]interface{}{"order_id": "GW-5"},
			},
		},
	}

	w := postJSON(r, "/payments/webhook", event)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSuccess, got.PaymentStatus)
	assert.Equal(t, "CAP-5", got.CaptureID)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusConfirmed, gotOrder.Status)

	// redelivery of the same event id is acknowledged without reprocessing
	w = postJSON(r, "/payments/webhook", event)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already processed")

	var events int64
	db.Model(&models.WebhookEvent{}).Count(&events)
	assert.Equal(t, int64(1), events)
}

func TestWebhookApprovedDoesNotSettle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 75)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-9", Amount: 75, Currency: "USD",
		PaymentStatus: models.PaymentStatusCreated,
	}
	require.NoError(t, db.Create(&payment).Error)

	r := gin.New()
	r.POST("/payments/webhook", WebhookHandler(db, testNotifier(db)))

	// buyer approval precedes capture; no funds have moved yet
	w := postJSON(r, "/payments/webhook", map[string]interface{}{
		"id":         "WH-3",
		"event_type": "CHECKOUT.ORDER.APPROVED",
		"resource": map[string]interface{}{
			"id": "GW-9",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCreated, got.PaymentStatus)
	assert.False(t, got.IsVerified)
	assert.Empty(t, got.CaptureID)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, gotOrder.Status)
	assert.Equal(t, models.PaymentStatePending, gotOrder.PaymentStatus)
}

func TestWebhookCaptureDeniedMarksFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 75)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-6", Amount: 75, Currency: "USD",
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	r := gin.New()
	r.POST("/payments/webhook", WebhookHandler(db, testNotifier(db)))

	w := postJSON(r, "/payments/webhook", map[string]interface{}{
		"id":         "WH-2",
		"event_type": "PAYMENT.CAPTURE.DENIED",
		"resource": map[string]interface{}{
			"id": "CAP-6",
			"supplementary_data": map[string]interface{}{
				"related_ids": map[string]interface{}{"order_id": "GW-6"},
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)
}

func TestRefundPartialAndFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 100)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-7", CaptureID: "CAP-7",
		Amount: 100, Currency: "USD",
		PaymentStatus: models.PaymentStatusSuccess,
	}
	require.NoError(t, db.Create(&payment).Error)

	gw := new(mockGateway)
	gw.On("RefundCapture", mock.Anything, "CAP-7", 40.0, "USD", "damaged").
		Return("REF-7", nil).Once()

	r := gin.New()
	r.POST("/payments/refund", RefundPaymentHandler(db, gw, testNotifier(db)))

	w := postJSON(r, "/payments/refund", RefundPaymentRequest{
		PaymentID: payment.ID, Amount: 40, Reason: "damaged",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPartiallyRefunded, got.PaymentStatus)
	assert.Equal(t, 40.0, got.RefundAmount)
	assert.Equal(t, "REF-7", got.RefundID)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, gotOrder.Status)

	// refunding a non-success payment is rejected
	w = postJSON(r, "/payments/refund", RefundPaymentRequest{PaymentID: payment.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	gw.AssertExpectations(t)
}

func TestRetryPaymentResetsFailedAttempt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupPaymentDB(t)
	order := seedOrder(t, db, 60)
	payment := models.Payment{
		OrderID: order.ID, UserID: order.UserID,
		GatewayOrderID: "GW-8", Amount: 60, Currency: "USD",
		PaymentStatus: models.PaymentStatusFailed,
		FailureReason: "capture PAYMENT.CAPTURE.DENIED",
	}
	require.NoError(t, db.Create(&payment).Error)

	gw := new(mockGateway)
	gw.On("CreateOrder", mock.Anything, 60.0, "USD", order.Code).
		Return(&GatewayOrder{ID: "GW-8b", ApproveURL: "https://paypal.test/approve/GW-8b"}, nil).Once()

	r := gin.New()
	r.POST("/payments/retry", RetryPaymentHandler(db, gw))

	w := postJSON(r, "/payments/retry", PaymentActionRequest{PaymentID: payment.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCreated, got.PaymentStatus)
	assert.Equal(t, "GW-8b", got.GatewayOrderID)
	assert.Empty(t, got.CaptureID)
	assert.Empty(t, got.FailureReason)
	assert.Nil(t, got.PaidAt)
	gw.AssertExpectations(t)
}

func TestSanitizeGatewayError(t *testing.T) {
	declined := &GatewayError{Code: "INSTRUMENT_DECLINED", Message: "declined"}
	assert.Contains(t, sanitizeGatewayError(declined), "declined")

	internal := &GatewayError{Code: "INTERNAL_SERVER_ERROR", Message: "stack trace details"}
	msg := sanitizeGatewayError(internal)
	assert.NotContains(t, msg, "stack trace")

	assert.NotEmpty(t, sanitizeGatewayError(errors.New("dial tcp: timeout")))
}
