package types

import "time"

// RawCheckinMetric is one user-submitted observation at a spot. Records are
// immutable once created; a newer check-in supersedes, nothing is mutated.
// Ordinal fields use a 1-5 scale and are nil when the user skipped them.
type RawCheckinMetric struct {
	SpotID         string    `json:"spot_id"`
	Timestamp      time.Time `json:"timestamp"`
	WifiSpeed      *int      `json:"wifi_speed,omitempty"`  // 1 (unusable) .. 5 (blazing)
	NoiseLevel     *int      `json:"noise_level,omitempty"` // 1 (silent) .. 5 (very loud)
	Busyness       *int      `json:"busyness,omitempty"`    // 1 (empty) .. 5 (packed)
	LaptopFriendly *bool     `json:"laptop_friendly,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	PriceLevel     *int      `json:"price_level,omitempty"` // 1 .. 4
}

// InferredReviewSignal is an NLP-derived signal extracted from review text,
// used when a spot has no or sparse check-ins. Always dampened downstream.
type InferredReviewSignal struct {
	SpotID          string    `json:"spot_id"`
	HasWifi         *bool     `json:"has_wifi,omitempty"`
	WifiConfidence  float64   `json:"wifi_confidence"`
	NoiseLabel      string    `json:"noise_label,omitempty"` // quiet | moderate | loud
	NoiseConfidence float64   `json:"noise_confidence"`
	StudySuitable   *bool     `json:"study_suitable,omitempty"`
	StudyConfidence float64   `json:"study_confidence"`
	InferredAt      time.Time `json:"inferred_at"`
}

// ExternalProviderRecord is normalized rating data from one provider
// (Yelp, Foursquare, Google), one record per provider per spot.
type ExternalProviderRecord struct {
	SpotID      string    `json:"spot_id"`
	Provider    string    `json:"provider"`
	Rating      float64   `json:"rating"` // 0 .. 5
	ReviewCount int       `json:"review_count"`
	PriceLevel  *int      `json:"price_level,omitempty"`
	Categories  []string  `json:"categories,omitempty"` // cafe, library, coworking, ...
	OpenNow     *bool     `json:"open_now,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// WeatherSignal is a single precipitation/condition observation for the
// spot's location and time. A nil signal means "no adjustment", never an error.
type WeatherSignal struct {
	Condition       string    `json:"condition"` // clear | rain | snow | ...
	PrecipitationMM float64   `json:"precipitation_mm"`
	ObservedAt      time.Time `json:"observed_at"`
}

// CheckinRequest is the body for recording a check-in.
type CheckinRequest struct {
	WifiSpeed      *int     `json:"wifi_speed"`
	NoiseLevel     *int     `json:"noise_level"`
	Busyness       *int     `json:"busyness"`
	LaptopFriendly *bool    `json:"laptop_friendly"`
	Tags           []string `json:"tags"`
	PriceLevel     *int     `json:"price_level"`
}

// ScoreRequest carries the externally supplied signals for one scoring call.
// Check-ins are read from the store; everything here is optional.
type ScoreRequest struct {
	Inferred  []InferredReviewSignal   `json:"inferred,omitempty"`
	Providers []ExternalProviderRecord `json:"providers,omitempty"`
	Weather   *WeatherSignal           `json:"weather,omitempty"`
}
