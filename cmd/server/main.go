package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"lumina_back_office/internal/cache"
	"lumina_back_office/internal/config"
	"lumina_back_office/internal/database"
	"lumina_back_office/internal/handlers/order"
	"lumina_back_office/internal/routes"
	"lumina_back_office/internal/security"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("⚠️ Clé Stripe absente — remboursements Stripe désactivés")
	} else {
		log.Println("✅ Stripe initialisé")
	}

	if os.Getenv("CSRF_SECRET") == "" {
		log.Fatal("❌ CSRF_SECRET manquant dans .env")
	}

	database.ConnectDatabases()
	database.InitPreparedStatements()

	// Cache des handlers : Redis en primaire, map locale en secours
	order.Cache = cache.New(database.Redis)

	tokenStore := newCSRFStore()
	security.StartSweeper(context.Background(), tokenStore, 5*time.Minute)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_URL")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-csrf-token"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r, tokenStore)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Back office Lumina lancé sur le port", port)
	r.Run(":" + port)
}

// newCSRFStore choisit le stockage des tokens CSRF : Redis quand il est là
// (multi-instances), sinon la map en mémoire (mono-instance)
func newCSRFStore() security.TokenStore {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if database.Redis != nil && database.Redis.Ping(ctx).Err() == nil {
		log.Println("✅ Tokens CSRF stockés dans Redis")
		return security.NewRedisTokenStore(database.Redis)
	}
	log.Println("⚠️ Tokens CSRF stockés en mémoire (instance unique)")
	return security.NewMemoryTokenStore(10000)
}
