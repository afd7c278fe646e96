package middleware

import (
	"bytes"

	"github.com/gin-gonic/gin"
)

// bodyBuffer capture le body de la réponse au lieu de l'écrire sur la
// connexion, pour que les étages compression et ETag puissent transformer
// la réponse complète avant émission.
type bodyBuffer struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func newBodyBuffer(w gin.ResponseWriter) *bodyBuffer {
	return &bodyBuffer{ResponseWriter: w, body: &bytes.Buffer{}, status: 0}
}

func (w *bodyBuffer) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyBuffer) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// WriteHeader est différé : le code est retenu et émis au flush final,
// une fois Content-Length et Content-Encoding connus
func (w *bodyBuffer) WriteHeader(code int) {
	w.status = code
}

func (w *bodyBuffer) WriteHeaderNow() {}

func (w *bodyBuffer) Status() int {
	if w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *bodyBuffer) Size() int {
	return w.body.Len()
}

func (w *bodyBuffer) Written() bool {
	return w.status != 0 || w.body.Len() > 0
}

// flush écrit le statut et le body retenus sur le writer sous-jacent
func (w *bodyBuffer) flush(body []byte) {
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}
	if len(body) > 0 {
		w.ResponseWriter.Write(body)
	}
}
