package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/spotsense/spotscore/internal/types"
)

// Spot is a registered work spot
type Spot struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name,omitempty" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Checkin is the stored form of one check-in
type Checkin struct {
	ID             string    `json:"id" db:"id"`
	SpotID         string    `json:"spot_id" db:"spot_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	WifiSpeed      *int      `json:"wifi_speed,omitempty" db:"wifi_speed"`
	NoiseLevel     *int      `json:"noise_level,omitempty" db:"noise_level"`
	Busyness       *int      `json:"busyness,omitempty" db:"busyness"`
	LaptopFriendly *bool     `json:"laptop_friendly,omitempty" db:"laptop_friendly"`
	Tags           []string  `json:"tags,omitempty" db:"tags"`
	PriceLevel     *int      `json:"price_level,omitempty" db:"price_level"`
}

// NewCheckin creates a stored check-in from a raw metric with a generated ID
func NewCheckin(m types.RawCheckinMetric) *Checkin {
	return &Checkin{
		ID:             uuid.New().String(),
		SpotID:         m.SpotID,
		CreatedAt:      m.Timestamp,
		WifiSpeed:      m.WifiSpeed,
		NoiseLevel:     m.NoiseLevel,
		Busyness:       m.Busyness,
		LaptopFriendly: m.LaptopFriendly,
		Tags:           m.Tags,
		PriceLevel:     m.PriceLevel,
	}
}

// ToMetric converts the stored check-in back to the engine's input record
func (c *Checkin) ToMetric() types.RawCheckinMetric {
	return types.RawCheckinMetric{
		SpotID:         c.SpotID,
		Timestamp:      c.CreatedAt,
		WifiSpeed:      c.WifiSpeed,
		NoiseLevel:     c.NoiseLevel,
		Busyness:       c.Busyness,
		LaptopFriendly: c.LaptopFriendly,
		Tags:           c.Tags,
		PriceLevel:     c.PriceLevel,
	}
}

// marshalTags encodes the tag list for storage; empty stays NULL-ish
func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalTags(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ScoreSnapshot is the latest persisted breakdown for one spot, kept for the
// rankings read model. The engine itself never persists anything.
type ScoreSnapshot struct {
	SpotID     string    `json:"spot_id" db:"spot_id"`
	Score      int       `json:"score" db:"score"`
	Confidence float64   `json:"confidence" db:"confidence"`
	Stale      bool      `json:"stale" db:"stale"`
	Breakdown  string    `json:"breakdown" db:"breakdown"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
