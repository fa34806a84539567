package notificationControllers

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
	"github.com/sonali-vishwakarma08/bakery-api/utils"
)

// Pusher delivers one push message to one device token.
type Pusher interface {
	Push(ctx context.Context, token, title, body string) error
}

// Mailer delivers one email.
type Mailer interface {
	Mail(to, subject, body string) error
}

// Dispatcher writes notification rows and fans them out over push and
// email. Push and mail are both optional; a nil client disables that
// channel.
type Dispatcher struct {
	db     *gorm.DB
	pusher Pusher
	mailer Mailer
	logger *zap.Logger
}

func NewDispatcher(db *gorm.DB, pusher Pusher, mailer Mailer) *Dispatcher {
	return &Dispatcher{
		db:     db,
		pusher: pusher,
		mailer: mailer,
		logger: utils.GetLogger(),
	}
}

// Send writes one notification row for a specific user and attempts
// push/email delivery. Delivery failures are logged, never fatal.
func (d *Dispatcher) Send(ctx context.Context, userID uint, n models.Notification) (*models.Notification, error) {
	n.UserID = &userID
	if n.Type == "" {
		n.Type = models.NotificationTypeSystem
	}
	if err := d.db.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	utils.NotificationsSentTotal.WithLabelValues(string(n.Type)).Inc()

	var user models.User
	if err := d.db.Preload("PushTokens").First(&user, userID).Error; err != nil {
		d.logger.Warn("notification saved but recipient lookup failed",
			zap.Uint("user_id", userID), zap.Error(err))
		return &n, nil
	}
	d.deliver(ctx, &user, &n)
	return &n, nil
}

// Broadcast writes one canonical row (user nil, target_role set) plus a
// delivery copy per active user of the role. Fan-out is sequential per
// recipient; a failed push token never fails the others.
func (d *Dispatcher) Broadcast(ctx context.Context, role models.Role, n models.Notification, email bool) (*models.Notification, int, error) {
	n.UserID = nil
	n.TargetRole = role
	n.IsDeliveryCopy = false
	if n.Type == "" {
		n.Type = models.NotificationTypeSystem
	}
	if err := d.db.Create(&n).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to save broadcast: %w", err)
	}
	utils.NotificationsSentTotal.WithLabelValues(string(n.Type)).Inc()

	var users []models.User
	if err := d.db.Preload("PushTokens").
		Where("role = ? AND is_active = ?", role, true).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load recipients: %w", err)
	}

	delivered := 0
	for i := range users {
		copyRow := models.Notification{
			UserID:         &users[i].ID,
			TargetRole:     role,
			Title:          n.Title,
			Message:        n.Message,
			Type:           n.Type,
			Priority:       n.Priority,
			IsDeliveryCopy: true,
			BroadcastID:    &n.ID,
			OrderID:        n.OrderID,
		}
		if err := d.db.Create(&copyRow).Error; err != nil {
			d.logger.Error("failed to save delivery copy",
				zap.Uint("user_id", users[i].ID), zap.Error(err))
			continue
		}
		if email {
			d.deliver(ctx, &users[i], &copyRow)
		} else {
			d.push(ctx, &users[i], &copyRow)
		}
		delivered++
	}
	return &n, delivered, nil
}

// NotifyOrderStatus sends the canned per-status message for an order.
func (d *Dispatcher) NotifyOrderStatus(ctx context.Context, order *models.Order) {
	title, msg := orderStatusMessage(order)
	n := models.Notification{
		Title:   title,
		Message: msg,
		Type:    models.NotificationTypeOrder,
		OrderID: &order.ID,
	}
	if _, err := d.Send(ctx, order.UserID, n); err != nil {
		d.logger.Error("failed to send order notification",
			zap.String("order_code", order.Code), zap.Error(err))
	}
}

func (d *Dispatcher) deliver(ctx context.Context, user *models.User, n *models.Notification) {
	d.push(ctx, user, n)
	if d.mailer != nil && user.Email != "" {
		if err := d.mailer.Mail(user.Email, n.Title, n.Message); err != nil {
			d.logger.Warn("email delivery failed",
				zap.String("email", user.Email), zap.Error(err))
		}
	}
}

func (d *Dispatcher) push(ctx context.Context, user *models.User, n *models.Notification) {
	if d.pusher == nil {
		return
	}
	for _, t := range user.PushTokens {
		if err := d.pusher.Push(ctx, t.Token, n.Title, n.Message); err != nil {
			utils.PushDeliveriesFailed.Inc()
			d.logger.Warn("push delivery failed",
				zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
}

func orderStatusMessage(order *models.Order) (string, string) {
	switch order.Status {
	case models.OrderStatusPending:
		return "Order placed", fmt.Sprintf("Your order %s has been placed. We'll confirm it shortly.", order.Code)
	case models.OrderStatusConfirmed:
		return "Order confirmed", fmt.Sprintf("Your order %s is confirmed and queued for baking.", order.Code)
	case models.OrderStatusBaking:
		return "In the oven", fmt.Sprintf("Your order %s is being baked fresh.", order.Code)
	case models.OrderStatusPacked:
		return "Order packed", fmt.Sprintf("Your order %s is packed and ready for dispatch.", order.Code)
	case models.OrderStatusOutForDelivery:
		return "Out for delivery", fmt.Sprintf("Your order %s is on its way.", order.Code)
	case models.OrderStatusDelivered:
		return "Order delivered", fmt.Sprintf("Your order %s has been delivered. Enjoy!", order.Code)
	case models.OrderStatusCancelled:
		return "Order cancelled", fmt.Sprintf("Your order %s has been cancelled.", order.Code)
	default:
		return "Order update", fmt.Sprintf("Your order %s was updated.", order.Code)
	}
}
