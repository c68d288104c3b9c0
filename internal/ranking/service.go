// Package ranking maintains the "top work spots" read model over the latest
// persisted score snapshots. Purely a consumer of scores: nothing here feeds
// back into the scoring engine.
package ranking

import (
	"fmt"
	"time"

	"github.com/spotsense/spotscore/internal/database"
)

// Entry is one ranked spot
type Entry struct {
	Rank       int       `json:"rank"`
	SpotID     string    `json:"spot_id"`
	Score      int       `json:"score"`
	Confidence float64   `json:"confidence"`
	Stale      bool      `json:"stale"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RankingsResponse is the response for ranking queries
type RankingsResponse struct {
	Entries     []Entry   `json:"entries"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service handles ranking operations
type Service struct {
	repo  *database.Repository
	cache *RankingCache
}

// NewService creates a new ranking service
func NewService(repo *database.Repository) *Service {
	return &Service{
		repo:  repo,
		cache: NewRankingCache(5 * time.Minute),
	}
}

// TopSpots returns the highest scored spots, cached
func (s *Service) TopSpots(limit int) (*RankingsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if cached, ok := s.cache.GetRankings(limit); ok {
		return cached, nil
	}

	snapshots, err := s.repo.TopSpots(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}

	response := &RankingsResponse{
		Entries:     make([]Entry, 0, len(snapshots)),
		Total:       len(snapshots),
		GeneratedAt: time.Now().UTC(),
	}
	for i, snap := range snapshots {
		response.Entries = append(response.Entries, Entry{
			Rank:       i + 1,
			SpotID:     snap.SpotID,
			Score:      snap.Score,
			Confidence: snap.Confidence,
			Stale:      snap.Stale,
			UpdatedAt:  snap.UpdatedAt,
		})
	}

	s.cache.SetRankings(limit, response)
	return response, nil
}

// Invalidate drops cached rankings; called after a fresh score is persisted
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}
