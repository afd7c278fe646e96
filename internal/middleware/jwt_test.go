package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthRequired())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	r := authRouter()
	token := signToken(t, jwt.MapClaims{
		"user_id": "client-1",
		"role":    "customer",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := perform(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"client-1"`)
	assert.Contains(t, w.Body.String(), `"role":"customer"`)
}

func TestAuthRequiredRejets(t *testing.T) {
	r := authRouter()

	// Header absent
	w := perform(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")

	// Mauvais format
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	// Token illisible
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer pas.un.jwt")
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
}

func TestAuthRequiredTokenExpire(t *testing.T) {
	r := authRouter()
	token := signToken(t, jwt.MapClaims{
		"user_id": "client-1",
		"exp":     float64(time.Now().Add(-time.Hour).Unix()),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
}

func TestAuthRequiredSansUserID(t *testing.T) {
	r := authRouter()
	token := signToken(t, jwt.MapClaims{
		"exp": float64(time.Now().Add(time.Hour).Unix()),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("role", "customer")
	})
	r.GET("/admin", RequireAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := perform(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}
