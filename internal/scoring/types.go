package scoring

// Factor is one of the nine independently scored dimensions of a work spot.
type Factor string

const (
	FactorWifi       Factor = "wifi"
	FactorNoise      Factor = "noise"
	FactorCrowd      Factor = "crowd"
	FactorLaptop     Factor = "laptop_friendly"
	FactorTags       Factor = "community_tags"
	FactorExternal   Factor = "external_rating"
	FactorVenueType  Factor = "venue_type"
	FactorOpenStatus Factor = "open_status"
	FactorMomentum   Factor = "momentum"
)

// Source tags where a factor's observations came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceInferred Source = "inferred"
	SourceBlended  Source = "blended"
	SourceExternal Source = "external"
)

// FactorScore is one scored dimension: a 0-100 sub-score plus the reliability
// weight it carries into the aggregate. Contribution is the renormalized
// share of the final score attributed to this factor, filled by the
// aggregator. Created fresh on every scoring call, never persisted here.
type FactorScore struct {
	Factor       Factor  `json:"factor"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Source       Source  `json:"source"`
	SampleSize   int     `json:"sample_size"`
}

// ScoreBreakdown is the aggregation output: the Work Score with full
// per-factor attribution. Stale is a data-recency signal independent of
// confidence; Open gates display only and never moves the score.
type ScoreBreakdown struct {
	Score      int           `json:"score"`
	Factors    []FactorScore `json:"factors"`
	Confidence float64       `json:"confidence"`
	Stale      bool          `json:"stale"`
	Open       *bool         `json:"open,omitempty"`
}

// CrowdForecastPoint is one hour of the forward busyness curve.
type CrowdForecastPoint struct {
	HourOffset int     `json:"hour_offset"`
	Busyness   float64 `json:"busyness"` // 0-100, higher = busier
	Basis      string  `json:"basis"`    // historical-average | weather-adjusted
}

const (
	BasisHistorical      = "historical-average"
	BasisWeatherAdjusted = "weather-adjusted"
)
