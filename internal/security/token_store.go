package security

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore : stockage session → token CSRF avec expiration.
// Injecté explicitement dans le pipeline, jamais de singleton global.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) (string, bool)
	Set(ctx context.Context, sessionID, token string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
	Sweep(ctx context.Context)
}

// --- Implémentation Redis (multi-instances) ---

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) key(sessionID string) string {
	return "csrf:" + sessionID
}

func (s *RedisTokenStore) Get(ctx context.Context, sessionID string) (string, bool) {
	token, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		return "", false
	}
	return token, true
}

func (s *RedisTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(sessionID), token, ttl).Err()
}

func (s *RedisTokenStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// Sweep : Redis expire les clés lui-même, rien à faire
func (s *RedisTokenStore) Sweep(ctx context.Context) {}

// --- Implémentation mémoire (mono-instance, fallback) ---

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryTokenStore : map bornée protégée par mutex, balayage périodique.
// Le balayage peut supprimer un token en cours de validation : la validation
// échoue alors et le client redemande un token. Course acceptée.
type MemoryTokenStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
}

func NewMemoryTokenStore(maxEntries int) *MemoryTokenStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryTokenStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
	}
}

func (s *MemoryTokenStore) Get(ctx context.Context, sessionID string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.token, true
}

func (s *MemoryTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Map pleine : on évacue d'abord les entrées expirées
	if len(s.entries) >= s.maxEntries {
		now := time.Now()
		for id, entry := range s.entries {
			if now.After(entry.expiresAt) {
				delete(s.entries, id)
			}
		}
	}
	s.entries[sessionID] = memoryEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep supprime toutes les entrées expirées
func (s *MemoryTokenStore) Sweep(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}

// StartSweeper lance le balayage périodique sur un timer indépendant des
// goroutines de requête. S'arrête quand le contexte est annulé.
func StartSweeper(ctx context.Context, store TokenStore, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.Sweep(ctx)
			}
		}
	}()
	log.Printf("🧹 Balayage des tokens CSRF lancé (intervalle %s)", interval)
}
