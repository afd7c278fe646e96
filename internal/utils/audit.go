package utils

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"lumina_back_office/internal/database"
)

// Sévérités des événements de sécurité
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Événements de sécurité prédéfinis
const (
	EventCSRFFailure      = "csrf_failure"
	EventPrivilegeDenied  = "privilege_denied"
	EventRateLimitReached = "rate_limit_reached"
	EventInputRejected    = "input_rejected"
)

// LogSecurityEvent trace un événement de sécurité : une ligne de log
// immédiate, et une insertion asynchrone en base quand elle est disponible.
// Jamais bloquant pour la requête en cours.
func LogSecurityEvent(c *gin.Context, event, severity, detail string) {
	ip := c.ClientIP()
	path := c.Request.URL.Path
	userID := c.GetString("user_id")

	log.Printf("🔒 Événement sécurité [%s] %s: %s (ip=%s path=%s user=%s)",
		severity, event, detail, ip, path, userID)

	if database.Scylla == nil {
		return
	}

	userAgent := c.GetHeader("User-Agent")
	go func() {
		session, err := database.GetOrdersSession()
		if err != nil {
			return
		}
		err = session.Query(`
			INSERT INTO security_events (id, event, severity, detail, user_id, ip_address, user_agent, path, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, gocql.TimeUUID(), event, severity, detail, userID, ip, userAgent, path, time.Now()).Exec()
		if err != nil {
			log.Printf("⚠️ Erreur enregistrement événement sécurité: %v", err)
		}
	}()
}

// LogOrderAction trace une action d'administration sur une commande
func LogOrderAction(c *gin.Context, orderID, action, detail string) {
	userID := c.GetString("user_id")
	log.Printf("📝 Action commande %s: %s par %s (%s)", orderID, action, userID, detail)

	if database.Scylla == nil {
		return
	}

	ip := c.ClientIP()
	go func() {
		session, err := database.GetOrdersSession()
		if err != nil {
			return
		}
		err = session.Query(`
			INSERT INTO order_audit (id, order_id, action, detail, user_id, ip_address, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, gocql.TimeUUID(), orderID, action, detail, userID, ip, time.Now()).Exec()
		if err != nil {
			log.Printf("⚠️ Erreur enregistrement audit commande: %v", err)
		}
	}()
}
