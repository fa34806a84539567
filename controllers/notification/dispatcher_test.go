package notificationControllers

import (
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
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

type fakePusher struct {
	pushed    []string
	failToken string
}

func (f *fakePusher) Push(ctx context.Context, token, title, body string) error {
	if token == f.failToken {
		return errors.New("unregistered token")
	}
	f.pushed = append(f.pushed, token)
	return nil
}

func setupNotificationDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.PushToken{}, &models.Notification{},
	))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, email, token string) models.User {
	t.Helper()
	user := models.User{
		Name: "Customer", Email: email, PasswordHash: "x",
		Role: models.RoleCustomer, IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	if token != "" {
		require.NoError(t, db.Create(&models.PushToken{UserID: user.ID, Token: token}).Error)
	}
	return user
}

func TestSendWritesRowAndPushes(t *testing.T) {
	db := setupNotificationDB(t)
	pusher := &fakePusher{}
	d := NewDispatcher(db, pusher, nil)
	user := seedCustomer(t, db, "a@example.com", "tok-a")

	n, err := d.Send(context.Background(), user.ID, models.Notification{
		Title: "Order confirmed", Message: "Your order is confirmed.",
	})
	require.NoError(t, err)
	require.NotNil(t, n.UserID)
	assert.Equal(t, user.ID, *n.UserID)
	assert.Equal(t, models.NotificationTypeSystem, n.Type)
	assert.Equal(t, []string{"tok-a"}, pusher.pushed)
}

func TestBroadcastFansOutWithDeliveryCopies(t *testing.T) {
	db := setupNotificationDB(t)
	pusher := &fakePusher{failToken: "tok-dead"}
	d := NewDispatcher(db, pusher, nil)

	seedCustomer(t, db, "a@example.com", "tok-a")
	seedCustomer(t, db, "b@example.com", "tok-dead")
	seedCustomer(t, db, "c@example.com", "tok-c")

	inactive := seedCustomer(t, db, "gone@example.com", "tok-gone")
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	staff := models.User{Name: "Driver", Email: "d@example.com", PasswordHash: "x",
		Role: models.RoleStaff, IsActive: true}
	require.NoError(t, db.Create(&staff).Error)

	n, delivered, err := d.Broadcast(context.Background(), models.RoleCustomer, models.Notification{
		Title: "Weekend sale", Message: "20% off all cakes.",
		Type: models.NotificationTypePromo,
	}, false)
	require.NoError(t, err)

	// only the three active customers receive copies
	assert.Equal(t, 3, delivered)
	assert.Nil(t, n.UserID)
	assert.Equal(t, models.RoleCustomer, n.TargetRole)

	var copies int64
	db.Model(&models.Notification{}).Where("is_delivery_copy = ?", true).Count(&copies)
	assert.Equal(t, int64(3), copies)

	// one canonical row plus the copies
	var total int64
	db.Model(&models.Notification{}).Count(&total)
	assert.Equal(t, int64(4), total)

	// one dead token does not stop the other pushes
	assert.ElementsMatch(t, []string{"tok-a", "tok-c"}, pusher.pushed)
}

func TestGetAllHandlerExcludesDeliveryCopies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupNotificationDB(t)
	d := NewDispatcher(db, nil, nil)

	seedCustomer(t, db, "a@example.com", "")
	seedCustomer(t, db, "b@example.com", "")

	_, _, err := d.Broadcast(context.Background(), models.RoleCustomer, models.Notification{
		Title: "Holiday hours",
	}, false)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin/notifications", GetAllHandler(db))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/notifications", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].UserID)
	assert.False(t, got[0].IsDeliveryCopy)
}

func TestDeleteBroadcastRemovesOnlyItsOwnCopies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupNotificationDB(t)
	d := NewDispatcher(db, nil, nil)

	seedCustomer(t, db, "a@example.com", "")
	seedCustomer(t, db, "b@example.com", "")

	// two broadcasts with the same title to the same role
	first, _, err := d.Broadcast(context.Background(), models.RoleCustomer, models.Notification{
		Title: "Weekend sale",
	}, false)
	require.NoError(t, err)
	second, _, err := d.Broadcast(context.Background(), models.RoleCustomer, models.Notification{
		Title: "Weekend sale",
	}, false)
	require.NoError(t, err)

	r := gin.New()
	r.DELETE("/admin/notifications/:id", DeleteHandler(db))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/admin/notifications/%d", first.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var firstCopies int64
	db.Model(&models.Notification{}).Where("broadcast_id = ?", first.ID).Count(&firstCopies)
	assert.Equal(t, int64(0), firstCopies)

	// the later broadcast and its copies survive
	var canonical models.Notification
	require.NoError(t, db.First(&canonical, second.ID).Error)
	var secondCopies int64
	db.Model(&models.Notification{}).Where("broadcast_id = ?", second.ID).Count(&secondCopies)
	assert.Equal(t, int64(2), secondCopies)
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupNotificationDB(t)
	d := NewDispatcher(db, nil, nil)

	alice := seedCustomer(t, db, "alice@example.com", "")
	bob := seedCustomer(t, db, "bob@example.com", "")

	n, err := d.Send(context.Background(), alice.ID, models.Notification{Title: "Hi"})
	require.NoError(t, err)

	r := gin.New()
	r.PUT("/notifications/:id/read", func(c *gin.Context) {
		c.Set("user_id", bob.ID)
	}, MarkReadHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/notifications/%d/read", n.ID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var got models.Notification
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.False(t, got.IsRead)
}
