package middleware

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// Taille minimale de body avant tentative de compression
const DefaultCompressMinSize = 1024

// Encodages supportés, par ordre de préférence
var encodingPriority = []string{"br", "gzip", "deflate"}

// Types de contenu compressibles
var compressibleTypes = []string{
	"text/",
	"application/json",
	"application/javascript",
	"application/xml",
	"image/svg+xml",
}

// Compress négocie l'encodage via Accept-Encoding (br > gzip > deflate) et ne
// compresse que si : méthode cacheable, content-type textuel, body assez
// grand, et résultat strictement plus petit que l'original. Dans tous les
// autres cas les octets d'origine partent tels quels — jamais de réponse
// gonflée par la compression.
func Compress(minSize int) gin.HandlerFunc {
	if minSize <= 0 {
		minSize = DefaultCompressMinSize
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" {
			c.Next()
			return
		}

		buf := newBodyBuffer(c.Writer)
		c.Writer = buf
		c.Next()
		c.Writer = buf.ResponseWriter

		body := buf.body.Bytes()
		if len(body) < minSize || !isCompressible(buf.Header().Get("Content-Type")) {
			buf.flush(body)
			return
		}

		compressed, err := encodeBody(body, encoding)
		if err != nil || len(compressed) >= len(body) {
			// Dégradation silencieuse : l'original part non compressé
			buf.flush(body)
			return
		}

		buf.Header().Set("Content-Encoding", encoding)
		buf.Header().Set("Content-Length", fmt.Sprintf("%d", len(compressed)))
		buf.Header().Del("Accept-Ranges")
		buf.flush(compressed)
	}
}

// negotiateEncoding choisit le premier encodage supporté accepté par le client
func negotiateEncoding(acceptEncoding string) string {
	if acceptEncoding == "" {
		return ""
	}
	accepted := make(map[string]bool)
	for _, part := range strings.Split(acceptEncoding, ",") {
		token := part
		q := ""
		if name, params, ok := strings.Cut(part, ";"); ok {
			token = name
			q = strings.TrimSpace(params)
		}
		token = strings.ToLower(strings.TrimSpace(token))
		if q == "q=0" || q == "q=0.0" {
			continue
		}
		accepted[token] = true
	}
	for _, enc := range encodingPriority {
		if accepted[enc] || accepted["*"] {
			return enc
		}
	}
	return ""
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

func encodeBody(body []byte, encoding string) ([]byte, error) {
	var out bytes.Buffer
	switch encoding {
	case "br":
		w := brotli.NewWriter(&out)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case "gzip":
		w := gzip.NewWriter(&out)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case "deflate":
		w, err := flate.NewWriter(&out, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("encodage non supporté: %s", encoding)
	}
	return out.Bytes(), nil
}
