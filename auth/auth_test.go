package auth

import (
	"bytes"
	"encoding/json"
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

	"github.com/sonali-vishwakarma08/bakery-api/config"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

var testAuthConfig = config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1}

func setupAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	r := gin.New()
	r.POST("/auth/register", RegisterHandler(db, testAuthConfig))
	r.POST("/auth/login", LoginHandler(db, testAuthConfig))
	return r, db
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r, db := setupAuthRouter(t)

	w := postJSON(r, "/auth/register", RegisterRequest{
		Name: "Asha", Email: "Asha@Example.com", Password: "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "asha@example.com").Error)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	// duplicate email is rejected
	w = postJSON(r, "/auth/register", RegisterRequest{
		Name: "Asha Again", Email: "asha@example.com", Password: "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// login with correct credentials returns a token usable on the middleware
	w = postJSON(r, "/auth/login", LoginRequest{Email: "asha@example.com", Password: "supersecret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	protected := gin.New()
	protected.GET("/user", middleware.ValidateToken(testAuthConfig.JWTSecret), func(c *gin.Context) {
		id, ok := middleware.CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	r, db := setupAuthRouter(t)

	w := postJSON(r, "/auth/register", RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Password: "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// wrong password
	w = postJSON(r, "/auth/login", LoginRequest{Email: "asha@example.com", Password: "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// unknown email
	w = postJSON(r, "/auth/login", LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// deactivated account
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "asha@example.com").Update("is_active", false).Error)
	w = postJSON(r, "/auth/login", LoginRequest{Email: "asha@example.com", Password: "supersecret"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
