package order

import (
	"context"
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

// CreateOrder crée une commande depuis la soumission du checkout.
// Les commandes vides sont refusées dès la validation du modèle.
func CreateOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"code": models.CodeUnauthorized, "error": "Utilisateur non authentifié"})
		return
	}

	var req struct {
		Items     []models.OrderItem  `json:"items"`
		Discounts []models.Adjustment `json:"discounts"`
		Taxes     []models.Adjustment `json:"taxes"`
		Shipping  struct {
			Method     string            `json:"method"`
			Dimensions models.Dimensions `json:"dimensions"`
		} `json:"shipping"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Données invalides", "details": err.Error()})
		return
	}

	newOrder, err := models.NewOrder(userID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	newOrder.Discounts = req.Discounts
	newOrder.Taxes = req.Taxes

	if req.Shipping.Method != "" {
		newOrder.ShippingInfo.Method = req.Shipping.Method
		newOrder.ShippingInfo.Dimensions = req.Shipping.Dimensions
		newOrder.RecomputeTotals() // pour connaître le poids agrégé
		cost, err := models.CalculateShipping(newOrder.ShippingInfo.Weight, req.Shipping.Dimensions, req.Shipping.Method)
		if err != nil {
			respondError(c, err)
			return
		}
		newOrder.ShippingInfo.Cost = cost
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur connexion base de données"})
		return
	}

	if err := saveOrder(session, newOrder); err != nil {
		log.Printf("❌ Erreur création commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur création commande"})
		return
	}

	log.Printf("🛒 Commande %s créée pour %s (total %.2f)", newOrder.OrderNumber, userID, newOrder.Totals.Total)
	c.JSON(http.StatusCreated, newOrder)
}

// GetMyOrders liste les commandes de l'utilisateur connecté
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"code": models.CodeUnauthorized, "error": "Utilisateur non authentifié"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(database.StmtSelectOrdersByCustomer, userID).Iter()

	type summary struct {
		OrderID     gocql.UUID `json:"id"`
		OrderNumber string     `json:"order_number"`
		Status      string     `json:"status"`
		Total       float64    `json:"total"`
		CreatedAt   time.Time  `json:"created_at"`
	}

	var orders []summary
	var s summary
	for iter.Scan(&s.OrderID, &s.OrderNumber, &s.Status, &s.Total, &s.CreatedAt) {
		orders = append(orders, s)
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID retourne une commande complète, via le cache quand il est chaud
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur connexion base de données"})
		return
	}

	var found models.Order
	fetch := func() (any, error) {
		return loadOrder(session, gocql.UUID(orderUUID))
	}

	if Cache != nil {
		err = Cache.GetOrSet(context.Background(), "order:"+orderUUID.String(), 5*time.Minute,
			[]string{"orders:" + userID}, fetch, &found)
	} else {
		var loaded *models.Order
		loaded, err = loadOrder(session, gocql.UUID(orderUUID))
		if loaded != nil {
			found = *loaded
		}
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": models.CodeNotFound, "error": "Commande introuvable"})
		return
	}

	// Sécurité : la commande doit appartenir à l'utilisateur, sauf admin
	if found.CustomerID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"code": models.CodeForbidden, "error": "Cette commande ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, found)
}

// UpdateStatus est l'endpoint de transition de statut (admin).
// 400 statut invalide, 404 commande inconnue, 400 transition illégale
// nommant le statut courant et le statut demandé.
func UpdateStatus(c *gin.Context) {
	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
		return
	}

	var req struct {
		Status   string          `json:"status" binding:"required"`
		Note     string          `json:"note"`
		Metadata models.Metadata `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Statut requis"})
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
	if err := found.Transition(models.OrderStatus(req.Status), req.Note, actor, req.Metadata); err != nil {
		respondError(c, err)
		return
	}

	if err := saveOrder(session, found); err != nil {
		log.Printf("❌ Erreur sauvegarde commande %s: %v", found.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur sauvegarde commande"})
		return
	}

	utils.LogOrderAction(c, found.OrderID.String(), "status_change", req.Status)
	notifyTransition(found, models.OrderStatus(req.Status))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Statut mis à jour",
		"status":   found.Status,
		"timeline": found.Timeline,
		"order":    found,
	})
}

// CancelOrder annule une commande (client propriétaire ou admin)
func CancelOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	c.ShouldBindJSON(&req)

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

	if found.CustomerID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"code": models.CodeForbidden, "error": "Cette commande ne vous appartient pas"})
		return
	}

	if err := found.Cancel(userID, req.Note); err != nil {
		respondError(c, err)
		return
	}

	if err := saveOrder(session, found); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur sauvegarde commande"})
		return
	}

	utils.LogOrderAction(c, found.OrderID.String(), "cancel", req.Note)
	c.JSON(http.StatusOK, gin.H{"message": "Commande annulée", "order": found})
}

// ReturnEligibility indique si la commande est encore retournable
func ReturnEligibility(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "ID commande invalide"})
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

	if found.CustomerID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"code": models.CodeForbidden, "error": "Cette commande ne vous appartient pas"})
		return
	}

	eligible := found.IsReturnEligible(time.Now())
	resp := gin.H{"eligible": eligible}
	if found.DeliveredAt != nil {
		resp["delivered_at"] = found.DeliveredAt
		resp["window_ends_at"] = found.DeliveredAt.Add(models.ReturnWindow)
	}
	c.JSON(http.StatusOK, resp)
}

// notifyTransition envoie les notifications liées aux statuts expédié/livré
func notifyTransition(o *models.Order, status models.OrderStatus) {
	email := customerEmail(o.CustomerID)
	if email == "" {
		return
	}
	switch status {
	case models.StatusShipped:
		utils.SendShippingNotification(email, o)
	case models.StatusDelivered:
		utils.SendDeliveryNotification(email, o)
	}
}

// customerEmail résout l'adresse du client depuis le profil stocké en base
func customerEmail(customerID string) string {
	session, err := database.GetOrdersSession()
	if err != nil {
		return ""
	}
	var email string
	if err := session.Query(`SELECT email FROM customer_contacts WHERE customer_id = ?`, customerID).Scan(&email); err != nil {
		return ""
	}
	return email
}
