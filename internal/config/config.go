package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// GetInt lit une variable d'environnement entière avec valeur par défaut
func GetInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d utilisée", key, raw, fallback)
	}
	return fallback
}

// GetDuration lit une durée (format time.ParseDuration) avec valeur par défaut
func GetDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %s utilisée", key, raw, fallback)
	}
	return fallback
}
