package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

// Textes CQL du chemin chaud des commandes, partagés entre les handlers.
// gocql prépare chaque statement côté serveur à la première exécution et le
// met en cache par texte : centraliser les textes garantit une seule entrée
// de cache par requête, quel que soit le handler qui l'exécute.
const (
	StmtSelectOrderDocument = `SELECT document FROM orders WHERE order_id = ?`

	StmtSelectOrdersByCustomer = `SELECT order_id, order_number, status, total, created_at
		FROM orders_by_customer WHERE customer_id = ?`

	StmtInsertOrder = `INSERT INTO orders (order_id, order_number, customer_id, status, payment_status, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	StmtInsertOrderByCustomer = `INSERT INTO orders_by_customer (customer_id, order_id, order_number, status, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
)

var warmOnce sync.Once

// InitPreparedStatements réchauffe le cache de prepared statements : les
// SELECT du chemin chaud sont exécutés une fois à vide pour payer la
// préparation au démarrage plutôt que sur la première requête utilisateur.
// Les INSERT sont préparés à la première écriture réelle.
func InitPreparedStatements() {
	warmOnce.Do(func() {
		session, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Préparation des requêtes impossible: %v", err)
			return
		}

		if err := session.Query(StmtSelectOrderDocument, gocql.UUID{}).Exec(); err != nil {
			log.Printf("⚠️ Préparation SELECT orders: %v", err)
		}
		if err := session.Query(StmtSelectOrdersByCustomer, "").Exec(); err != nil {
			log.Printf("⚠️ Préparation SELECT orders_by_customer: %v", err)
		}

		log.Println("✅ Requêtes commandes préparées")
	})
}
