package order

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gin-gonic/gin"

	"lumina_back_office/internal/database"
	"lumina_back_office/internal/models"
)

// SearchOrders recherche des commandes dans Elasticsearch (admin) par numéro
// de commande, client ou statut
func SearchOrders(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": models.CodeValidation, "error": "Paramètre q requis"})
		return
	}
	if database.Elastic == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": models.CodeInternalError, "error": "Recherche indisponible"})
		return
	}

	var buf bytes.Buffer
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"order_number", "customer_id", "status", "items.name"},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur encodage requête"})
		return
	}

	req := esapi.SearchRequest{
		Index: []string{"orders"},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur requête Elastic:", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": models.CodeInternalError, "error": "Recherche indisponible"})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		c.JSON(http.StatusOK, gin.H{"orders": []any{}})
		return
	}

	var r map[string]any
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": models.CodeInternalError, "error": "Erreur décodage réponse"})
		return
	}

	results := []any{}
	if hitsData, ok := r["hits"].(map[string]any); ok {
		if hitsArray, ok := hitsData["hits"].([]any); ok {
			for _, hit := range hitsArray {
				if hitMap, ok := hit.(map[string]any); ok {
					if source, ok := hitMap["_source"]; ok {
						results = append(results, source)
					}
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"orders": results})
}
