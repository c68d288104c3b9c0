package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spotsense/spotscore/internal/cache"
)

// RankingCache provides caching for ranking data
type RankingCache struct {
	cache *cache.Cache
}

// NewRankingCache creates a new ranking cache
func NewRankingCache(ttl time.Duration) *RankingCache {
	return &RankingCache{
		cache: cache.NewCache(ttl),
	}
}

func (rc *RankingCache) key(limit int) string {
	return fmt.Sprintf("rankings:%d", limit)
}

// GetRankings retrieves cached ranking data
func (rc *RankingCache) GetRankings(limit int) (*RankingsResponse, bool) {
	data, found := rc.cache.Get(rc.key(limit))
	if !found {
		return nil, false
	}

	var response RankingsResponse
	if err := json.Unmarshal(data, &response); err != nil {
		slog.Error("Failed to unmarshal cached rankings", "error", err)
		return nil, false
	}
	return &response, true
}

// SetRankings caches ranking data
func (rc *RankingCache) SetRankings(limit int, response *RankingsResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal rankings for cache", "error", err)
		return
	}
	rc.cache.Set(rc.key(limit), data)
}

// Invalidate drops all cached rankings after a new score lands
func (rc *RankingCache) Invalidate() {
	rc.cache.Clear()
}
