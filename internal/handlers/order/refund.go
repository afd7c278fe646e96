package order

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"

	"lumina_back_office/internal/database"
	"lumina_back_office/internal/models"
	"lumina_back_office/internal/utils"
)

// RequestRefund permet à un client de demander un remboursement
func RequestRefund(c *gin.Context) {
	userID := c.GetString("user_id")

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Motif requis (10 à 500 caractères)"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur connexion base de données"})
		return
	}

	found, err := loadOrder(session, gocql.UUID(orderUUID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": models.CodeNotFound, "error": "Commande introuvable"})
		return
	}

	if found.CustomerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"code": models.CodeForbidden, "error": "Cette commande ne vous appartient pas"})
		return
	}

	// Remboursable uniquement après livraison ou retour
	if found.Status != models.StatusDelivered && found.Status != models.StatusReturned {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Cette commande n'est pas éligible au remboursement"})
		return
	}

	// Une seule demande par commande
	var existingID gocql.UUID
	err = session.Query(`SELECT refund_id FROM refund_requests WHERE order_id = ? ALLOW FILTERING`,
		found.OrderID).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"code": models.CodeDuplicateEntry, "error": "Une demande de remboursement existe déjà pour cette commande"})
		return
	}

	refundID := gocql.TimeUUID()
	now := time.Now()
	err = session.Query(`
		INSERT INTO refund_requests (refund_id, order_id, customer_id, reason, status, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, refundID, found.OrderID, userID, req.Reason, "pending", found.Totals.Total, now).Exec()
	if err != nil {
		log.Printf("❌ Erreur création demande remboursement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur création demande"})
		return
	}

	log.Printf("💰 Demande de remboursement %s créée pour la commande %s", refundID, found.OrderNumber)
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Demande de remboursement créée",
		"refund_id": refundID,
		"amount":    found.Totals.Total,
	})
}

// ProcessRefund traite une demande de remboursement (admin).
// L'approbation déclenche le remboursement Stripe puis la transition de la
// commande vers refunded quand elle est légale.
func ProcessRefund(c *gin.Context) {
	refundUUID, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID remboursement invalide"})
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"` // approve, reject
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Action != "approve" && req.Action != "reject") {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Action requise: approve ou reject"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur connexion base de données"})
		return
	}

	var orderID gocql.UUID
	var amount float64
	var status, paymentIntentID string
	err = session.Query(`SELECT order_id, amount, status, payment_intent_id FROM refund_requests WHERE refund_id = ?`,
		gocql.UUID(refundUUID)).Scan(&orderID, &amount, &status, &paymentIntentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": models.CodeNotFound, "error": "Demande de remboursement introuvable"})
		return
	}
	if status != "pending" {
		c.JSON(http.StatusConflict, gin.H{"code": models.CodeDuplicateEntry, "error": "Demande déjà traitée"})
		return
	}

	actor := c.GetString("user_id")
	now := time.Now()

	if req.Action == "reject" {
		session.Query(`UPDATE refund_requests SET status = ?, updated_at = ? WHERE refund_id = ?`,
			"rejected", now, gocql.UUID(refundUUID)).Exec()
		utils.LogOrderAction(c, orderID.String(), "refund_rejected", refundUUID.String())
		c.JSON(http.StatusOK, gin.H{"message": "Demande de remboursement rejetée"})
		return
	}

	// Remboursement Stripe
	if paymentIntentID != "" {
		_, err := refund.New(&stripe.RefundParams{
			PaymentIntent: stripe.String(paymentIntentID),
			Amount:        stripe.Int64(int64(amount * 100)),
			Reason:        stripe.String("requested_by_customer"),
		})
		if err != nil {
			log.Printf("❌ Erreur remboursement Stripe: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur remboursement Stripe"})
			return
		}
	}

	found, err := loadOrder(session, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": models.CodeNotFound, "error": "Commande introuvable"})
		return
	}

	if err := found.ApplyRefund(amount); err != nil {
		respondError(c, err)
		return
	}
	// delivered et returned admettent tous deux la transition vers refunded
	if found.CanTransitionTo(models.StatusRefunded) {
		if err := found.Transition(models.StatusRefunded, "Remboursement approuvé", actor, models.Metadata{
			"refund_id": refundUUID.String(),
			"amount":    amount,
		}); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := saveOrder(session, found); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur sauvegarde commande"})
		return
	}

	session.Query(`UPDATE refund_requests SET status = ?, updated_at = ? WHERE refund_id = ?`,
		"approved", now, gocql.UUID(refundUUID)).Exec()

	utils.LogOrderAction(c, orderID.String(), "refund_approved", refundUUID.String())
	log.Printf("💰 Remboursement %s approuvé (%.2f) pour la commande %s", refundUUID, amount, found.OrderNumber)

	c.JSON(http.StatusOK, gin.H{"message": "Remboursement approuvé", "order": found})
}
