package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lumina_back_office/internal/models"
)

// Marqueurs d'injection refusés dans les query params et le body
var injectionMarkers = []string{
	"<script",
	"</script",
	"javascript:",
	"vbscript:",
	"onerror=",
	"onload=",
	"onclick=",
	"data:text/html",
	"<iframe",
	"document.cookie",
}

// SanitizeInput inspecte les query params et le body JSON à la recherche de
// marqueurs d'injection. En cas de violation la chaîne est court-circuitée
// avec un 400 ; sinon le body est restitué intact pour les handlers suivants.
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Query params
		for _, values := range c.Request.URL.Query() {
			for _, v := range values {
				if containsInjection(v) {
					rejectInput(c)
					return
				}
			}
		}

		// Body (uniquement s'il y en a un)
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			bodyBytes, err := io.ReadAll(c.Request.Body)
			if err != nil {
				rejectInput(c)
				return
			}
			if containsInjection(string(bodyBytes)) {
				rejectInput(c)
				return
			}
			// Remettre le body pour les handlers suivants
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()
	}
}

func containsInjection(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func rejectInput(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":  models.CodeBadInput,
		"error": "Contenu de requête refusé",
	})
	c.Abort()
}
