package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store : cache-aside à deux niveaux. Redis en primaire, map locale en
// secours. Toute défaillance du backend se comporte comme un cache miss —
// une opération de cache ne fait jamais échouer une requête.
type Store struct {
	client *redis.Client
	local  *localCache
}

// New construit un Store. client peut être nil : tout passe alors en local.
func New(client *redis.Client) *Store {
	return &Store{
		client: client,
		local:  newLocalCache(5 * time.Minute),
	}
}

// GetOrSet applique le pattern cache-aside : lecture du cache sous la clé
// donnée, sinon appel de fetch puis peuplement du cache avec le résultat.
// dest reçoit la valeur JSON-décodée. Les tags permettent l'invalidation
// groupée ultérieure.
func (s *Store) GetOrSet(ctx context.Context, key string, ttl time.Duration, tags []string, fetch func() (any, error), dest any) error {
	if data, ok := s.get(ctx, key); ok {
		if err := json.Unmarshal(data, dest); err == nil {
			return nil
		}
		// Entrée corrompue : on la laisse expirer et on repart de la source
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.set(ctx, key, data, ttl, tags)

	return json.Unmarshal(data, dest)
}

// Invalidate supprime des clés précises
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s.client != nil {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			log.Printf("⚠️ Invalidation cache Redis échouée: %v", err)
		}
	}
	s.local.delete(keys...)
}

// InvalidateTag supprime toutes les clés associées à un tag
func (s *Store) InvalidateTag(ctx context.Context, tag string) {
	if s.client != nil {
		tagKey := "cachetag:" + tag
		keys, err := s.client.SMembers(ctx, tagKey).Result()
		if err == nil && len(keys) > 0 {
			s.client.Del(ctx, append(keys, tagKey)...)
		} else if err != nil {
			log.Printf("⚠️ Lecture tag cache Redis échouée: %v", err)
		}
	}
	s.local.deleteTag(tag)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	if s.client != nil {
		data, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			return data, true
		}
		if err != redis.Nil {
			// Redis en panne : bascule transparente sur le cache local
			return s.local.get(key)
		}
		return nil, false
	}
	return s.local.get(key)
}

func (s *Store) set(ctx context.Context, key string, data []byte, ttl time.Duration, tags []string) {
	if s.client != nil {
		pipe := s.client.Pipeline()
		pipe.Set(ctx, key, data, ttl)
		for _, tag := range tags {
			tagKey := "cachetag:" + tag
			pipe.SAdd(ctx, tagKey, key)
			pipe.Expire(ctx, tagKey, ttl)
		}
		if _, err := pipe.Exec(ctx); err == nil {
			return
		}
		log.Println("⚠️ Écriture cache Redis échouée, bascule sur le cache local")
	}
	s.local.set(key, data, ttl, tags)
}
