package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Format de token CSRF double-submit : {salt}.{hash}
// avec hash = SHA-256("salt-sessionID-secret")

// GenerateToken produit un token lié à la session
func GenerateToken(sessionID, secret string) string {
	salt := strings.ReplaceAll(uuid.NewString(), "-", "")
	return salt + "." + hashToken(salt, sessionID, secret)
}

// VerifyToken vérifie qu'un token a bien été émis pour cette session.
// Comparaison en temps constant pour éviter les canaux auxiliaires temporels.
func VerifyToken(token, sessionID, secret string) bool {
	salt, hash, ok := strings.Cut(token, ".")
	if !ok || salt == "" || hash == "" {
		return false
	}
	expected := hashToken(salt, sessionID, secret)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expected)) == 1
}

func hashToken(salt, sessionID, secret string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", salt, sessionID, secret)))
	return hex.EncodeToString(sum[:])
}
