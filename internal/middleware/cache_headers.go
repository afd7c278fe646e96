package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Stratégies Cache-Control nommées, consommées par les déclarations de routes
var cacheStrategies = map[string]string{
	"no-cache":      "no-store, no-cache, must-revalidate",
	"short":         "public, max-age=300",
	"medium":        "public, max-age=3600",
	"long":          "public, max-age=86400",
	"static":        "public, max-age=31536000, immutable",
	"api-dynamic":   "public, max-age=30, must-revalidate",
	"api-static":    "public, max-age=900",
	"user-specific": "private, max-age=300",
}

// CacheHeaders calcule un ETag (SHA-256 du body sérialisé, avant compression)
// et négocie les requêtes conditionnelles : If-None-Match identique → réponse
// 304 sans body, qui conserve l'ETag et les directives Cache-Control. Sinon la
// réponse complète part avec la stratégie Cache-Control nommée et un Vary
// couvrant la négociation de contenu. L'ETag est le seul validateur : sans
// date de modification portée par l'entité, un Last-Modified synthétique
// validerait à tort du contenu modifié via If-Modified-Since.
func CacheHeaders(strategy string) gin.HandlerFunc {
	directive, ok := cacheStrategies[strategy]
	if !ok {
		directive = cacheStrategies["no-cache"]
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		buf := newBodyBuffer(c.Writer)
		c.Writer = buf
		c.Next()
		c.Writer = buf.ResponseWriter

		body := buf.body.Bytes()
		status := buf.Status()
		if status != http.StatusOK || len(body) == 0 {
			buf.flush(body)
			return
		}

		sum := sha256.Sum256(body)
		etag := fmt.Sprintf(`"%s"`, hex.EncodeToString(sum[:16]))

		buf.Header().Set("ETag", etag)
		buf.Header().Set("Cache-Control", directive)
		buf.Header().Set("Vary", "Accept, Accept-Encoding, Accept-Language")

		if notModified(c.Request, etag) {
			buf.Header().Del("Content-Type")
			buf.Header().Del("Content-Length")
			buf.status = http.StatusNotModified
			buf.flush(nil)
			return
		}

		buf.flush(body)
	}
}

// notModified applique If-None-Match contre l'ETag courant
func notModified(r *http.Request, etag string) bool {
	inm := r.Header.Get("If-None-Match")
	if inm == "" {
		return false
	}
	for _, candidate := range strings.Split(inm, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
