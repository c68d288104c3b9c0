package scoring

import (
	"fmt"
	"time"

	"github.com/spotsense/spotscore/internal/types"
)

// observation is a single normalized per-factor data point on the 0-100 scale.
// Confidence is the raw source confidence, before any dampening.
type observation struct {
	value      float64
	source     Source
	confidence float64
	at         time.Time
}

// observationSet is the normalized bag produced from one spot's raw records.
// A factor with zero observations is simply absent from the map: absence is
// not worst case and never zero-filled.
type observationSet struct {
	factors      map[Factor][]observation
	tagCounts    map[string]int
	providers    []types.ExternalProviderRecord
	checkinTimes []time.Time
}

func newObservationSet() *observationSet {
	return &observationSet{
		factors:   make(map[Factor][]observation),
		tagCounts: make(map[string]int),
	}
}

func (s *observationSet) add(f Factor, o observation) {
	s.factors[f] = append(s.factors[f], o)
}

// newest returns the most recent timestamp across all observations, or the
// zero time when the set is empty.
func (s *observationSet) newest() time.Time {
	var t time.Time
	for _, obs := range s.factors {
		for _, o := range obs {
			if o.at.After(t) {
				t = o.at
			}
		}
	}
	for _, p := range s.providers {
		if p.FetchedAt.After(t) {
			t = p.FetchedAt
		}
	}
	return t
}

// rescaleOrdinal maps the 1-5 check-in scale linearly onto 0-100.
func rescaleOrdinal(v int) float64 {
	return float64(v-1) / 4 * 100
}

// invertOrdinal maps the 1-5 scale onto 0-100 with 1 scoring highest, for
// factors where less is better (noise, crowding).
func invertOrdinal(v int) float64 {
	return float64(5-v) / 4 * 100
}

// Sub-scores assigned to NLP-inferred labels. Inferred wifi is availability
// only, not speed, so a positive signal lands well short of 100.
const (
	inferredWifiYes       = 80
	inferredWifiNo        = 20
	inferredStudyYes      = 80
	inferredStudyNo       = 25
	inferredNoiseQuiet    = 85
	inferredNoiseModerate = 55
	inferredNoiseLoud     = 20
)

// normalize converts the heterogeneous raw records for one spot into a single
// per-factor observation bag. Malformed records fail fast with a descriptive
// error; missing fields are dropped. Check-ins outside the window are ignored.
func normalize(checkins []types.RawCheckinMetric, inferred []types.InferredReviewSignal, providers []types.ExternalProviderRecord, now time.Time, window time.Duration) (*observationSet, error) {
	set := newObservationSet()
	cutoff := now.Add(-window)

	for i, c := range checkins {
		if err := validateCheckin(i, c); err != nil {
			return nil, err
		}
		if c.Timestamp.Before(cutoff) || c.Timestamp.After(now) {
			continue
		}
		set.checkinTimes = append(set.checkinTimes, c.Timestamp)

		if c.WifiSpeed != nil {
			set.add(FactorWifi, observation{value: rescaleOrdinal(*c.WifiSpeed), source: SourceLive, confidence: 1, at: c.Timestamp})
		}
		if c.NoiseLevel != nil {
			set.add(FactorNoise, observation{value: invertOrdinal(*c.NoiseLevel), source: SourceLive, confidence: 1, at: c.Timestamp})
		}
		if c.Busyness != nil {
			set.add(FactorCrowd, observation{value: invertOrdinal(*c.Busyness), source: SourceLive, confidence: 1, at: c.Timestamp})
		}
		if c.LaptopFriendly != nil {
			v := 0.0
			if *c.LaptopFriendly {
				v = 100
			}
			set.add(FactorLaptop, observation{value: v, source: SourceLive, confidence: 1, at: c.Timestamp})
		}
		for _, tag := range c.Tags {
			set.tagCounts[tag]++
		}
	}

	for i, sig := range inferred {
		if err := validateInferred(i, sig); err != nil {
			return nil, err
		}
		at := sig.InferredAt
		if at.IsZero() {
			at = now
		}
		if sig.HasWifi != nil {
			v := float64(inferredWifiNo)
			if *sig.HasWifi {
				v = inferredWifiYes
			}
			set.add(FactorWifi, observation{value: v, source: SourceInferred, confidence: sig.WifiConfidence, at: at})
		}
		if sig.NoiseLabel != "" {
			v, err := inferredNoiseValue(sig.NoiseLabel)
			if err != nil {
				return nil, fmt.Errorf("inferred signal %d: %w", i, err)
			}
			set.add(FactorNoise, observation{value: v, source: SourceInferred, confidence: sig.NoiseConfidence, at: at})
		}
		if sig.StudySuitable != nil {
			v := float64(inferredStudyNo)
			if *sig.StudySuitable {
				v = inferredStudyYes
			}
			set.add(FactorLaptop, observation{value: v, source: SourceInferred, confidence: sig.StudyConfidence, at: at})
		}
	}

	for i, p := range providers {
		if err := validateProvider(i, p); err != nil {
			return nil, err
		}
		set.providers = append(set.providers, p)
	}

	return set, nil
}

func inferredNoiseValue(label string) (float64, error) {
	switch label {
	case "quiet":
		return inferredNoiseQuiet, nil
	case "moderate":
		return inferredNoiseModerate, nil
	case "loud":
		return inferredNoiseLoud, nil
	}
	return 0, fmt.Errorf("unknown noise label %q", label)
}

// ValidateCheckin checks a single raw check-in without scoring it, so the
// intake path can reject malformed submissions before they are stored.
func ValidateCheckin(c types.RawCheckinMetric) error {
	if c.Timestamp.IsZero() {
		return fmt.Errorf("missing timestamp")
	}
	if err := validateOrdinal(c.WifiSpeed, "wifi_speed"); err != nil {
		return err
	}
	if err := validateOrdinal(c.NoiseLevel, "noise_level"); err != nil {
		return err
	}
	if err := validateOrdinal(c.Busyness, "busyness"); err != nil {
		return err
	}
	if c.PriceLevel != nil && (*c.PriceLevel < 1 || *c.PriceLevel > 4) {
		return fmt.Errorf("price_level %d out of range [1,4]", *c.PriceLevel)
	}
	return nil
}

func validateCheckin(i int, c types.RawCheckinMetric) error {
	if err := ValidateCheckin(c); err != nil {
		return fmt.Errorf("check-in %d: %w", i, err)
	}
	return nil
}

func validateOrdinal(v *int, field string) error {
	if v != nil && (*v < 1 || *v > 5) {
		return fmt.Errorf("%s %d out of range [1,5]", field, *v)
	}
	return nil
}

func validateInferred(i int, s types.InferredReviewSignal) error {
	for field, conf := range map[string]float64{
		"wifi_confidence":  s.WifiConfidence,
		"noise_confidence": s.NoiseConfidence,
		"study_confidence": s.StudyConfidence,
	} {
		if conf < 0 || conf > 1 {
			return fmt.Errorf("inferred signal %d: %s %.3f out of range [0,1]", i, field, conf)
		}
	}
	return nil
}

func validateProvider(i int, p types.ExternalProviderRecord) error {
	if p.Provider == "" {
		return fmt.Errorf("provider record %d: missing provider name", i)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("provider record %d: rating %.2f out of range [0,5]", i, p.Rating)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("provider record %d: negative review count %d", i, p.ReviewCount)
	}
	return nil
}
