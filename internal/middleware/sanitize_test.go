package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeRouter() *gin.Engine {
	r := gin.New()
	r.Use(SanitizeInput())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	r.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestSanitizeQueryRefusee(t *testing.T) {
	r := sanitizeRouter()

	for _, q := range []string{
		"q=%3Cscript%3Ealert(1)%3C/script%3E",
		"q=javascript:alert(1)",
		"q=x%22%20onerror=alert(1)",
		"q=%3Ciframe%20src=x%3E",
	} {
		req := httptest.NewRequest(http.MethodGet, "/echo?"+q, nil)
		w := perform(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Contains(t, w.Body.String(), "bad_input")
	}
}

func TestSanitizeBodyRefuse(t *testing.T) {
	r := sanitizeRouter()

	body := `{"note": "<SCRIPT>document.location='http://evil'</SCRIPT>"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	w := perform(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "la détection est insensible à la casse")
}

// Un body propre traverse le filtre intact et reste lisible par le handler
func TestSanitizeBodyPropreRestitue(t *testing.T) {
	r := sanitizeRouter()

	body := `{"note": "livraison au 3e étage, merci"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	w := perform(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())
}

func TestSanitizeSansBody(t *testing.T) {
	r := sanitizeRouter()
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	assert.Equal(t, http.StatusOK, perform(r, req).Code)
}
