package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lumina_back_office/internal/models"
	"lumina_back_office/internal/security"
	"lumina_back_office/internal/utils"
)

const (
	CSRFCookieName = "csrf-token"
	CSRFHeaderName = "x-csrf-token"
	CSRFBodyField  = "csrfToken"
)

// CSRF valide le pattern double-submit sur les méthodes mutantes : le token
// doit être présent à la fois dans le cookie et dans le header (ou le body),
// correspondre exactement, et être encore actif dans le store — un token
// révoqué au logout ou expiré est refusé même si sa signature est valide.
// La comparaison cryptographique est en temps constant dans
// security.VerifyToken.
func CSRF(store security.TokenStore, secret string, allowList []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowList))
	for _, route := range allowList {
		allowed[route] = true
	}

	return func(c *gin.Context) {
		// Seules les méthodes mutantes sont concernées
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}
		if allowed[c.FullPath()] {
			c.Next()
			return
		}

		cookieToken, err := c.Cookie(CSRFCookieName)
		if err != nil || cookieToken == "" {
			rejectCSRF(c, "cookie CSRF absent")
			return
		}

		submitted := c.GetHeader(CSRFHeaderName)
		if submitted == "" {
			submitted = csrfTokenFromBody(c)
		}
		if submitted == "" {
			rejectCSRF(c, "token CSRF non soumis")
			return
		}

		sessionID := sessionIdentifier(c)
		if sessionID == "" {
			rejectCSRF(c, "session introuvable")
			return
		}

		if submitted != cookieToken || !security.VerifyToken(submitted, sessionID, secret) {
			rejectCSRF(c, "token CSRF invalide")
			return
		}

		// Le store est l'autorité sur la vie du token : absent (révoqué au
		// logout, expiré, balayé) ou différent → refus
		stored, ok := store.Get(c.Request.Context(), sessionID)
		if !ok || stored != submitted {
			rejectCSRF(c, "token CSRF révoqué ou expiré")
			return
		}

		c.Next()
	}
}

// sessionIdentifier : le cookie de session posé à l'émission du token. La
// validation CSRF tourne avant l'authentification, l'identité JWT n'est donc
// jamais disponible à cet étage.
func sessionIdentifier(c *gin.Context) string {
	sessionID, _ := c.Cookie("session-id")
	return sessionID
}

// csrfTokenFromBody lit le champ csrfToken du body JSON sans le consommer
func csrfTokenFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var payload struct {
		Token string `json:"csrfToken"`
	}
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		return ""
	}
	return payload.Token
}

func rejectCSRF(c *gin.Context, reason string) {
	utils.LogSecurityEvent(c, utils.EventCSRFFailure, utils.SeverityHigh, reason)
	c.JSON(http.StatusForbidden, gin.H{
		"code":  models.CodeCSRFFailed,
		"error": "Validation CSRF échouée",
	})
	c.Abort()
}
