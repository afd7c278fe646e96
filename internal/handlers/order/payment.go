package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"lumina_back_office/internal/database"
	"lumina_back_office/internal/models"
	"lumina_back_office/internal/utils"
)

// UpdatePayment enregistre un encaissement ou un changement de statut de
// paiement (admin). Le solde dû est recalculé avec les totaux.
func UpdatePayment(c *gin.Context) {
	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
		return
	}

	var req struct {
		Amount        float64 `json:"amount"`
		PaymentStatus string  `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Données invalides"})
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

	if err := found.ApplyPayment(req.Amount, models.PaymentStatus(req.PaymentStatus)); err != nil {
		respondError(c, err)
		return
	}

	if err := saveOrder(session, found); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur sauvegarde commande"})
		return
	}

	utils.LogOrderAction(c, found.OrderID.String(), "payment_update", string(found.PaymentStatus))
	c.JSON(http.StatusOK, gin.H{"message": "Paiement mis à jour", "totals": found.Totals, "payment_status": found.PaymentStatus})
}
