package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
	"github.com/sonali-vishwakarma08/bakery-api/utils"
)

// -------- Request Structs --------

type OrderItemRequest struct {
	ProductID     uint    `json:"product" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	Flavor        string  `json:"flavor"`
	Weight        float64 `json:"weight"`
	CustomMessage string  `json:"custom_message"`
	// Price is accepted for backwards compatibility with older clients
	// but never trusted; unit prices always come from the product record.
	Price float64 `json:"price"`
}

type CreateOrderRequest struct {
	UserID        uint               `json:"user_id"`
	Items         []OrderItemRequest `json:"items"`
	CouponCode    string             `json:"coupon_code"`
	PaymentMethod string             `json:"payment_method"` // "paypal", "cod"
	Address       *models.Address    `json:"address"`
}

type UpdateOrderRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
}

// -------- Errors --------

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("insufficient stock")
)

// -------- Helpers --------

// generateOrderCode returns a unique human-readable order code,
// e.g. ORD-20250908-ab12cd34.
func generateOrderCode() string {
	return "ORD-" + time.Now().Format("20060102") + "-" + uuid.NewString()[:8]
}

// -------- Core Logic --------

// CreateOrder validates the items, prices them from live product records,
// applies an optional coupon and persists the order. Stock deduction,
// coupon redemption and the order insert all happen in one transaction.
func CreateOrder(db *gorm.DB, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var total float64
		var orderItems []models.OrderItem

		for _, item := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
				}
				return err
			}
			if !product.IsAvailable {
				return fmt.Errorf("product is not available: %s", product.Name)
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
			}

			product.Stock -= item.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			total += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:     product.ID,
				ProductName:   product.Name,
				UnitPrice:     product.Price,
				Quantity:      item.Quantity,
				Flavor:        item.Flavor,
				Weight:        item.Weight,
				CustomMessage: item.CustomMessage,
			})
		}

		var discount float64
		var couponID *uint
		if req.CouponCode != "" {
			var coupon models.Coupon
			code := strings.ToUpper(strings.TrimSpace(req.CouponCode))
			if err := tx.First(&coupon, "code = ?", code).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.New("invalid coupon code")
				}
				return err
			}
			if err := coupon.Validate(total, time.Now()); err != nil {
				return err
			}
			discount = coupon.Discount(total)
			coupon.UsedCount++
			if err := tx.Save(&coupon).Error; err != nil {
				return err
			}
			couponID = &coupon.ID
		}

		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			return errors.New("user not found")
		}
		address := user.Address
		if req.Address != nil {
			address = *req.Address
		}

		order = models.Order{
			Code:           generateOrderCode(),
			UserID:         req.UserID,
			Items:          orderItems,
			TotalAmount:    total,
			DiscountAmount: discount,
			FinalAmount:    total - discount,
			Status:         models.OrderStatusPending,
			PaymentStatus:  models.PaymentStatePending,
			PaymentMethod:  req.PaymentMethod,
			CouponID:       couponID,
			Address:        address,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	utils.OrdersCreatedTotal.Inc()
	if err := db.Preload("User").Preload("Items.Product").Preload("Coupon").
		First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel moves an order to cancelled and restores the stock it consumed.
// Used by admin status updates and by payment refund/cancel compensation.
func Cancel(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return nil // already cancelled, nothing to do
		}
		if !order.Status.CanTransition(models.OrderStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition,
				order.Status, models.OrderStatusCancelled)
		}
		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		order.Status = models.OrderStatusCancelled
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	utils.OrdersCancelledTotal.Inc()
	return &order, nil
}

// MarkPaid records a successful payment against the order and confirms it.
// Called from the payment workflow; a fully paid order never regresses.
func MarkPaid(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	order.PaymentStatus = models.PaymentStateSuccess
	if order.Status.CanTransition(models.OrderStatusConfirmed) {
		order.Status = models.OrderStatusConfirmed
	}
	if err := db.Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// CreateOrderHandler places a new order for the authenticated user.
func CreateOrderHandler(db *gorm.DB, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if userID, ok := middleware.CurrentUserID(c); ok {
			role, _ := c.Get("role")
			// only admins may place orders on behalf of another user
			if req.UserID == 0 || role != string(models.RoleAdmin) {
				req.UserID = userID
			}
		}

		order, err := CreateOrder(db, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrEmptyOrder):
				utils.OrdersFailedTotal.WithLabelValues("empty_items").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrProductNotFound):
				utils.OrdersFailedTotal.WithLabelValues("unknown_product").Inc()
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				utils.OrdersFailedTotal.WithLabelValues("validation").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		notifier.NotifyOrderStatus(c.Request.Context(), order)
		BroadcastOrderUpdate(*order)
		c.JSON(http.StatusCreated, order)
	}
}

// GetAllOrdersHandler lists orders for the admin panel with optional
// status/payment filters and page/limit pagination.
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit < 1 || limit > 200 {
			limit = 50
		}

		query := db.Model(&models.Order{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if ps := c.Query("payment_status"); ps != "" {
			query = query.Where("payment_status = ?", ps)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var orders []models.Order
		if err := query.
			Preload("User").Preload("Items.Product").Preload("Coupon").
			Order("created_at DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
	}
}

// GetUserOrdersHandler lists the authenticated user's own orders.
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items.Product").
			Preload("Coupon").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderHandler fetches a single order by numeric id or order code.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var order models.Order
		if err := db.
			Preload("User").
			Preload("Items.Product").
			Preload("Coupon").
			Preload("DeliveryUser").
			Where("id = ? OR code = ?", id, id).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderHandler applies admin changes to status, payment status or
// payment method. Status changes are validated against the transition
// graph, so a delivered order can never be dragged back to pending.
func UpdateOrderHandler(db *gorm.DB, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		statusChanged := false
		if req.Status != "" {
			newStatus, err := models.ParseOrderStatus(req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if newStatus != order.Status {
				if !order.Status.CanTransition(newStatus) {
					c.JSON(http.StatusBadRequest, gin.H{
						"error": fmt.Sprintf("cannot transition order from %s to %s", order.Status, newStatus),
					})
					return
				}
				if newStatus == models.OrderStatusCancelled {
					cancelled, err := Cancel(db, order.ID)
					if err != nil {
						c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
						return
					}
					order = *cancelled
				} else {
					order.Status = newStatus
				}
				statusChanged = true
			}
		}
		if req.PaymentStatus != "" {
			ps, err := models.ParsePaymentState(req.PaymentStatus)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order.PaymentStatus = ps
		}
		if req.PaymentMethod != "" {
			order.PaymentMethod = req.PaymentMethod
		}

		if err := db.Save(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
			return
		}

		if statusChanged {
			notifier.NotifyOrderStatus(c.Request.Context(), &order)
			BroadcastOrderUpdate(order)
		}
		c.JSON(http.StatusOK, order)
	}
}

// DeleteOrderHandler hard-deletes an order and its items (admin only).
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", orderID).
				Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", orderID).Delete(&models.Order{}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
