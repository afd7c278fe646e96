package order

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"lumina_back_office/internal/database"
	"lumina_back_office/internal/models"
	"lumina_back_office/internal/utils"
)

// UpdateShipping met à jour les informations d'expédition (admin).
// Ajouter un numéro de suivi fait passer la commande en shipped, renseigner
// une date de livraison effective la fait passer en delivered — toujours via
// Transition, jamais par affectation directe du statut.
func UpdateShipping(c *gin.Context) {
	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
		return
	}

	var req struct {
		Method           string     `json:"method"`
		Carrier          string     `json:"carrier"`
		TrackingNumber   string     `json:"tracking_number"`
		Cost             *float64   `json:"cost"`
		ActualDeliveryAt *time.Time `json:"actual_delivery_at"`
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

	actor := c.GetString("user_id")

	if req.Method != "" {
		found.ShippingInfo.Method = req.Method
	}
	if req.Cost != nil {
		found.ShippingInfo.Cost = *req.Cost
	}

	if req.TrackingNumber != "" && found.ShippingInfo.TrackingNumber == "" {
		if err := found.MarkShippedViaTracking(req.Carrier, req.TrackingNumber, actor); err != nil {
			respondError(c, err)
			return
		}
	} else if req.Carrier != "" {
		found.ShippingInfo.Carrier = req.Carrier
	}

	if req.ActualDeliveryAt != nil {
		if err := found.MarkDeliveredViaActualDate(*req.ActualDeliveryAt, actor); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := saveOrder(session, found); err != nil {
		log.Printf("❌ Erreur sauvegarde expédition %s: %v", found.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur sauvegarde commande"})
		return
	}

	utils.LogOrderAction(c, found.OrderID.String(), "shipping_update", found.ShippingInfo.TrackingNumber)
	notifyTransition(found, found.Status)

	c.JSON(http.StatusOK, gin.H{"message": "Expédition mise à jour", "order": found})
}

// ShippingQuote calcule un devis d'expédition — fonction pure, pas de base
func ShippingQuote(c *gin.Context) {
	var req struct {
		Weight     float64           `json:"weight"`
		Dimensions models.Dimensions `json:"dimensions"`
		Method     string            `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Méthode d'expédition requise"})
		return
	}

	cost, err := models.CalculateShipping(req.Weight, req.Dimensions, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"method": req.Method,
		"cost":   cost,
	})
}
