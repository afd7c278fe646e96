package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Chaîne réelle : Compress global, CacheHeaders par route. CacheHeaders étant
// l'étage intérieur, l'ETag est calculé sur le body non compressé puis la
// compression s'applique au résultat.
func pipelineRouter() *gin.Engine {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.Use(Compress(1024))
	r.GET("/data", CacheHeaders("api-static"), func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(compressiblePayload))
	})
	return r
}

func TestPipelineETagAvantCompression(t *testing.T) {
	r := pipelineRouter()

	plain := perform(r, httptest.NewRequest(http.MethodGet, "/data", nil))
	require.Equal(t, http.StatusOK, plain.Code)
	etag := plain.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	compressed := perform(r, req)

	// Même ETag avec ou sans compression : il identifie la représentation source
	assert.Equal(t, etag, compressed.Header().Get("ETag"))
	require.Equal(t, "gzip", compressed.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(compressed.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, compressiblePayload, string(decoded))
}

// Un 304 négocié par l'étage cache ne passe pas par la compression
func TestPipeline304NonCompresse(t *testing.T) {
	r := pipelineRouter()
	etag := perform(r, httptest.NewRequest(http.MethodGet, "/data", nil)).Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("If-None-Match", etag)
	w := perform(r, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	// Les headers de durcissement couvrent aussi le 304
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
