package middleware

import "github.com/gin-gonic/gin"

// Jeu de headers de durcissement, identique pour toutes les réponses
var hardeningHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"X-XSS-Protection":             "1; mode=block",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Cross-Origin-Embedder-Policy": "require-corp",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Permissions-Policy":           "camera=(), microphone=(), geolocation=()",
}

// SecurityHeaders pose les headers de durcissement avant d'invoquer la suite
// de la chaîne : même une réponse court-circuitée (rate limit, CSRF, erreur)
// part durcie.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range hardeningHeaders {
			c.Header(name, value)
		}
		c.Next()
	}
}
