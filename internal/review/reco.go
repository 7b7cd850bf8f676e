package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/oaklandbooks/bookstore-api/internal/redisx"
)

// Recommender serves recommendation lists cache-aside: Redis first, the
// collaborative query on a miss. Placing an order invalidates the caller's
// entry so the next fetch reflects the purchase.
type Recommender struct {
	repo  Repository
	cache *redis.Client
}

func NewRecommender(repo Repository, cache *redis.Client) *Recommender {
	return &Recommender{repo: repo, cache: cache}
}

func (rc *Recommender) Recommendations(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	key := fmt.Sprintf(redisx.KeyRecommendations, userID)

	if rc.cache != nil {
		raw, err := rc.cache.Get(ctx, key).Bytes()
		if err == nil {
			var cached []Recommendation
			if jerr := json.Unmarshal(raw, &cached); jerr == nil && len(cached) >= limit {
				return cached[:limit], nil
			}
		} else if err != redis.Nil {
			log.Printf("[reco] cache get: %v", err)
		}
	}

	recos, err := rc.repo.Recommendations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if rc.cache != nil {
		if raw, err := json.Marshal(recos); err == nil {
			if err := rc.cache.Set(ctx, key, raw, redisx.TTLRecommendations).Err(); err != nil {
				log.Printf("[reco] cache set: %v", err)
			}
		}
	}
	return recos, nil
}

// InvalidateRecommendations drops the cached list for one user.
func (rc *Recommender) InvalidateRecommendations(ctx context.Context, userID int64) error {
	if rc.cache == nil {
		return nil
	}
	return rc.cache.Del(ctx, fmt.Sprintf(redisx.KeyRecommendations, userID)).Err()
}
