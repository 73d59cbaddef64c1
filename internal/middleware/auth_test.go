package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceai/internal/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func authRequest(t *testing.T, header string) (*httptest.ResponseRecorder, *uuid.UUID, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var tenantID, userID *uuid.UUID
	r := gin.New()
	r.Use(Auth(&config.JWTConfig{Secret: testSecret}))
	r.GET("/", func(c *gin.Context) {
		if v, ok := c.Get(ContextKeyTenantID); ok {
			id := v.(uuid.UUID)
			tenantID = &id
		}
		userID = GetUserID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, tenantID, userID
}

func TestAuth_ValidToken(t *testing.T) {
	tenant := uuid.New()
	user := uuid.New()
	token := signToken(t, &Claims{
		TenantID: tenant.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	w, tenantID, userID := authRequest(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, tenantID)
	assert.Equal(t, tenant, *tenantID)
	require.NotNil(t, userID)
	assert.Equal(t, user, *userID)
}

func TestAuth_MissingHeader(t *testing.T) {
	w, _, _ := authRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	w, _, _ := authRequest(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	w, _, _ := authRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	w, _, _ := authRequest(t, "Bearer "+s)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
