package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spotsense/spotscore/internal/types"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// EnsureSpot registers a spot if it does not exist yet
func (r *Repository) EnsureSpot(id, name string) error {
	_, err := r.db.Exec(`
		INSERT INTO spots (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure spot: %w", err)
	}
	return nil
}

// SpotExists reports whether a spot is registered
func (r *Repository) SpotExists(id string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM spots WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query spot: %w", err)
	}
	return true, nil
}

// InsertCheckin stores one immutable check-in record
func (r *Repository) InsertCheckin(m types.RawCheckinMetric) (*Checkin, error) {
	c := NewCheckin(m)
	tags, err := marshalTags(c.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.stmt("insert_checkin").Exec(
		c.ID, c.SpotID, c.CreatedAt.UTC(), c.WifiSpeed, c.NoiseLevel,
		c.Busyness, c.LaptopFriendly, tags, c.PriceLevel,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert checkin: %w", err)
	}
	return c, nil
}

// CheckinsSince returns all check-ins for a spot newer than the cutoff,
// newest first
func (r *Repository) CheckinsSince(spotID string, since time.Time) ([]types.RawCheckinMetric, error) {
	rows, err := r.db.stmt("select_checkins").Query(spotID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query checkins: %w", err)
	}
	defer rows.Close()

	var out []types.RawCheckinMetric
	for rows.Next() {
		var c Checkin
		var tags string
		if err := rows.Scan(&c.ID, &c.SpotID, &c.CreatedAt, &c.WifiSpeed, &c.NoiseLevel,
			&c.Busyness, &c.LaptopFriendly, &tags, &c.PriceLevel); err != nil {
			return nil, fmt.Errorf("failed to scan checkin: %w", err)
		}
		c.Tags, err = unmarshalTags(tags)
		if err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		out = append(out, c.ToMetric())
	}
	return out, rows.Err()
}

// HourlyBusyness returns the historical average busyness per clock hour on
// the 0-100 scale, from all stored check-ins that carry a busyness reading,
// plus the number of hours that have any data. Hours with no data stay at
// zero.
func (r *Repository) HourlyBusyness(spotID string) ([24]float64, int, error) {
	var profile [24]float64
	covered := 0

	rows, err := r.db.Query(`
		SELECT CAST(strftime('%H', created_at) AS INTEGER) AS hour,
		       AVG((busyness - 1) * 25.0)
		FROM checkins
		WHERE spot_id = ? AND busyness IS NOT NULL
		GROUP BY hour
	`, spotID)
	if err != nil {
		return profile, 0, fmt.Errorf("failed to query hourly busyness: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour int
		var avg float64
		if err := rows.Scan(&hour, &avg); err != nil {
			return profile, 0, fmt.Errorf("failed to scan hourly busyness: %w", err)
		}
		if hour >= 0 && hour < 24 {
			profile[hour] = avg
			covered++
		}
	}
	return profile, covered, rows.Err()
}

// SaveSnapshot upserts the latest score for a spot
func (r *Repository) SaveSnapshot(s ScoreSnapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO score_snapshots (spot_id, score, confidence, stale, breakdown, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(spot_id) DO UPDATE SET
			score = excluded.score,
			confidence = excluded.confidence,
			stale = excluded.stale,
			breakdown = excluded.breakdown,
			updated_at = excluded.updated_at
	`, s.SpotID, s.Score, s.Confidence, s.Stale, s.Breakdown, s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the latest stored score for a spot
func (r *Repository) GetSnapshot(spotID string) (*ScoreSnapshot, error) {
	var s ScoreSnapshot
	err := r.db.QueryRow(`
		SELECT spot_id, score, confidence, stale, breakdown, updated_at
		FROM score_snapshots WHERE spot_id = ?
	`, spotID).Scan(&s.SpotID, &s.Score, &s.Confidence, &s.Stale, &s.Breakdown, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return &s, nil
}

// TopSpots returns the highest scored spots, freshest first among ties
func (r *Repository) TopSpots(limit int) ([]ScoreSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT spot_id, score, confidence, stale, breakdown, updated_at
		FROM score_snapshots
		ORDER BY score DESC, updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top spots: %w", err)
	}
	defer rows.Close()

	var out []ScoreSnapshot
	for rows.Next() {
		var s ScoreSnapshot
		if err := rows.Scan(&s.SpotID, &s.Score, &s.Confidence, &s.Stale, &s.Breakdown, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan top spot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneCheckins deletes check-ins older than the retention cutoff. Score
// snapshots are kept so rankings retain history even for quiet spots.
func (r *Repository) PruneCheckins(olderThan time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM checkins WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune check-ins: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
