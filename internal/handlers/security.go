package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lumina_back_office/internal/models"
	"lumina_back_office/internal/security"
)

// TTL des tokens CSRF
const CSRFTokenTTL = 2 * time.Hour

// IssueCSRFToken délivre un token CSRF lié à la session : posé en cookie
// (pattern double-submit) et renvoyé dans le body pour le header x-csrf-token.
// L'endpoint tourne hors authentification : la session est portée par le
// cookie session-id, créé ici au premier passage.
func IssueCSRFToken(store security.TokenStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie("session-id")
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie("session-id", sessionID, int(CSRFTokenTTL.Seconds()), "/", "", false, true)
		}

		token := security.GenerateToken(sessionID, secret)
		if err := store.Set(context.Background(), sessionID, token, CSRFTokenTTL); err != nil {
			log.Printf("⚠️ Erreur stockage token CSRF: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur génération token"})
			return
		}

		// Le cookie doit être lisible par le front pour le renvoyer en header
		c.SetCookie("csrf-token", token, int(CSRFTokenTTL.Seconds()), "/", "", false, false)
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	}
}

// RevokeCSRFToken invalide le token de la session (logout)
func RevokeCSRFToken(store security.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie("session-id")
		if sessionID != "" {
			store.Delete(context.Background(), sessionID)
		}
		c.SetCookie("csrf-token", "", -1, "/", "", false, false)
		c.JSON(http.StatusOK, gin.H{"message": "Token révoqué"})
	}
}
