package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"lumina_back_office/internal/models"
)

const (
	// Limites par défaut des endpoints API
	APIMaxRequests = 100
	APIWindow      = 1 * time.Minute
)

// RateLimit limite le nombre de requêtes par IP dans une fenêtre fixe.
// Le compteur vit dans Redis (INCR atomique) : deux requêtes simultanées ne
// se sous-comptent jamais, et chaque IP a sa propre clé — le trafic d'un
// client ne throttle jamais les autres. L'expiration n'est posée qu'à la
// création de la clé : la fenêtre est fixe, le trafic continu ne la prolonge
// pas et le compteur repart bien de zéro à chaque fenêtre.
func RateLimit(client *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Redis indisponible : on laisse passer plutôt que de bloquer tout le trafic
			log.Printf("⚠️ Rate limit indisponible: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("⚠️ Expiration rate limit: %v", err)
			}
		}
		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":        models.CodeRateLimited,
				"error":       "Trop de requêtes. Réessayez plus tard",
				"retry_after": int(window.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
