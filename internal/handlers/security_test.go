package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina_back_office/internal/security"
)

const testSecret = "secret-de-test"

func csrfTestRouter(store security.TokenStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/csrf", IssueCSRFToken(store, testSecret))
	r.POST("/api/csrf/revoke", RevokeCSRFToken(store))
	return r
}

func cookieValue(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value, c.MaxAge >= 0
		}
	}
	return "", false
}

func TestIssueCSRFTokenSessionAnonyme(t *testing.T) {
	store := security.NewMemoryTokenStore(0)
	r := csrfTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	// Le cookie double-submit porte le même token que le body
	cookieToken, _ := cookieValue(w, "csrf-token")
	assert.Equal(t, body.Token, cookieToken)

	// Une session anonyme reçoit son cookie session-id, et le token lui est lié
	sessionID, _ := cookieValue(w, "session-id")
	require.NotEmpty(t, sessionID)
	assert.True(t, security.VerifyToken(body.Token, sessionID, testSecret))

	stored, ok := store.Get(context.Background(), sessionID)
	require.True(t, ok)
	assert.Equal(t, body.Token, stored)
}

func TestIssueCSRFTokenSessionExistante(t *testing.T) {
	store := security.NewMemoryTokenStore(0)
	r := csrfTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	req.AddCookie(&http.Cookie{Name: "session-id", Value: "session-connue"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, security.VerifyToken(body.Token, "session-connue", testSecret))

	// Pas de nouveau cookie session-id quand la session existe déjà
	_, found := cookieValue(w, "session-id")
	assert.False(t, found)
}

func TestRevokeCSRFToken(t *testing.T) {
	store := security.NewMemoryTokenStore(0)
	require.NoError(t, store.Set(context.Background(), "session-1", "token-1", CSRFTokenTTL))
	r := csrfTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/csrf/revoke", nil)
	req.AddCookie(&http.Cookie{Name: "session-id", Value: "session-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := store.Get(context.Background(), "session-1")
	assert.False(t, ok, "le token de la session est supprimé du store")

	// Le cookie csrf-token est écrasé avec MaxAge négatif
	for _, c := range w.Result().Cookies() {
		if c.Name == "csrf-token" {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
}
