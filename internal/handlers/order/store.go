package order

import (
	"bytes"
	"context"
	"encoding/json"
	"log"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gocql/gocql"

	"lumina_back_office/internal/cache"
	"lumina_back_office/internal/database"
	"lumina_back_office/internal/models"
)

// Cache partagé des handlers commandes, injecté au démarrage
var Cache *cache.Store

// loadOrder relit le document complet d'une commande
func loadOrder(session *gocql.Session, orderID gocql.UUID) (*models.Order, error) {
	var document string
	err := session.Query(database.StmtSelectOrderDocument, orderID).Scan(&document)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal([]byte(document), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// saveOrder recalcule les totaux puis écrit le document complet.
// Les colonnes plates (statuts) servent aux filtres, le document JSON porte
// l'agrégat. L'indexation Elastic et l'invalidation du cache suivent.
func saveOrder(session *gocql.Session, order *models.Order) error {
	order.RecomputeTotals()

	document, err := json.Marshal(order)
	if err != nil {
		return err
	}

	err = session.Query(database.StmtInsertOrder,
		order.OrderID, order.OrderNumber, order.CustomerID, string(order.Status),
		string(order.PaymentStatus), string(document), order.CreatedAt, order.UpdatedAt).Exec()
	if err != nil {
		return err
	}

	// Table de lecture par client
	err = session.Query(database.StmtInsertOrderByCustomer,
		order.CustomerID, order.OrderID, order.OrderNumber, string(order.Status),
		order.Totals.Total, order.CreatedAt).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur écriture orders_by_customer: %v", err)
	}

	if Cache != nil {
		Cache.Invalidate(context.Background(), "order:"+order.OrderID.String())
		Cache.InvalidateTag(context.Background(), "orders:"+order.CustomerID)
	}

	indexOrder(order)
	return nil
}

// indexOrder pousse la commande dans Elasticsearch pour la recherche admin.
// Best effort : une erreur est loggée, jamais remontée à la requête.
func indexOrder(order *models.Order) {
	if database.Elastic == nil {
		return
	}

	data, _ := json.Marshal(order)
	req := esapi.IndexRequest{
		Index:      "orders",
		DocumentID: order.OrderID.String(),
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", order.OrderNumber, res.String())
	}
}
