package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotsense/spotscore/internal/types"
)

func TestScoreAllLiveWifi(t *testing.T) {
	e := NewEngine(Config{})

	// 20 check-ins all reporting wifi=5, spread over recent days, nothing else.
	var checkins []types.RawCheckinMetric
	for i := 0; i < 20; i++ {
		c := checkinAt(testNow.Add(-time.Duration(i*6) * time.Hour))
		c.WifiSpeed = intPtr(5)
		checkins = append(checkins, c)
	}

	bd, err := e.Score(Input{Checkins: checkins}, testNow)
	require.NoError(t, err)

	require.Len(t, bd.Factors, 1, "momentum lacks prior-window volume, so wifi stands alone")
	wifi := bd.Factors[0]
	assert.Equal(t, FactorWifi, wifi.Factor)
	assert.Equal(t, SourceLive, wifi.Source)
	assert.InDelta(t, 100, wifi.Value, 0.5)
	assert.Greater(t, wifi.Weight, 0.4, "a few dozen agreeing check-ins earn solid reliability")
	assert.Equal(t, 100, bd.Score)
	assert.False(t, bd.Stale)
}

func TestScoreInferredOnly(t *testing.T) {
	e := NewEngine(Config{})

	in := Input{
		Inferred: []types.InferredReviewSignal{{
			HasWifi:        boolPtr(true),
			WifiConfidence: 0.9,
			InferredAt:     testNow.Add(-2 * time.Hour),
		}},
	}
	bd, err := e.Score(in, testNow)
	require.NoError(t, err)

	require.Len(t, bd.Factors, 1)
	wifi := bd.Factors[0]
	assert.Equal(t, FactorWifi, wifi.Factor)
	assert.Equal(t, SourceInferred, wifi.Source)

	// Live-data equivalent: one check-in at the same time with full signal.
	c := checkinAt(testNow.Add(-2 * time.Hour))
	c.WifiSpeed = intPtr(5)
	liveBd, err := e.Score(Input{Checkins: []types.RawCheckinMetric{c}}, testNow)
	require.NoError(t, err)
	assert.LessOrEqual(t, wifi.Weight, InferredDampening*liveBd.Factors[0].Weight+1e-12)
}

func TestScoreNoData(t *testing.T) {
	e := NewEngine(Config{})
	_, err := e.Score(Input{}, testNow)
	assert.ErrorIs(t, err, ErrInsufficientData, "no data must be explicit, not a 0 or 50")
}

func TestScoreValidationFailsFast(t *testing.T) {
	e := NewEngine(Config{})

	c := checkinAt(testNow.Add(-time.Hour))
	c.Busyness = intPtr(9)
	_, err := e.Score(Input{Checkins: []types.RawCheckinMetric{c}}, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busyness 9 out of range")
}

func TestScoreRangeInvariant(t *testing.T) {
	e := NewEngine(Config{})

	inputs := []Input{
		{
			Checkins: func() []types.RawCheckinMetric {
				var cs []types.RawCheckinMetric
				for i := 0; i < 40; i++ {
					c := checkinAt(testNow.Add(-time.Duration(i*9) * time.Hour))
					c.WifiSpeed = intPtr(1 + i%5)
					c.NoiseLevel = intPtr(1 + (i*2)%5)
					c.Busyness = intPtr(1 + (i*3)%5)
					c.LaptopFriendly = boolPtr(i%2 == 0)
					c.Tags = []string{"quiet", "crowded"}[i%2 : i%2+1]
					cs = append(cs, c)
				}
				return cs
			}(),
			Providers: []types.ExternalProviderRecord{
				{Provider: "yelp", Rating: 4.5, ReviewCount: 120, Categories: []string{"cafe"}, OpenNow: boolPtr(true)},
				{Provider: "google", Rating: 3.9, ReviewCount: 900, OpenNow: boolPtr(true)},
			},
			Weather: &types.WeatherSignal{Condition: "rain", PrecipitationMM: 6},
		},
		{
			Inferred: []types.InferredReviewSignal{{
				NoiseLabel:      "loud",
				NoiseConfidence: 0.4,
			}},
		},
	}

	for _, in := range inputs {
		bd, err := e.Score(in, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bd.Score, 0)
		assert.LessOrEqual(t, bd.Score, 100)
		assert.GreaterOrEqual(t, bd.Confidence, 0.0)
		assert.LessOrEqual(t, bd.Confidence, 1.0)

		sum := 0.0
		for _, f := range bd.Factors {
			sum += f.Contribution
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestScoreWeatherShiftsCrowdOnly(t *testing.T) {
	e := NewEngine(Config{})

	var checkins []types.RawCheckinMetric
	for i := 0; i < 6; i++ {
		c := checkinAt(testNow.Add(-time.Duration(i*12) * time.Hour))
		c.Busyness = intPtr(3)
		c.WifiSpeed = intPtr(4)
		checkins = append(checkins, c)
	}

	dry, err := e.Score(Input{Checkins: checkins}, testNow)
	require.NoError(t, err)
	wet, err := e.Score(Input{
		Checkins: checkins,
		Weather:  &types.WeatherSignal{Condition: "rain", PrecipitationMM: 4},
	}, testNow)
	require.NoError(t, err)

	assert.Less(t, factorValue(t, wet, FactorCrowd), factorValue(t, dry, FactorCrowd),
		"rain raises expected occupancy, lowering crowd friendliness")
	assert.Equal(t, factorValue(t, wet, FactorWifi), factorValue(t, dry, FactorWifi),
		"weather must touch only the crowd factor")
}

func factorValue(t *testing.T, bd ScoreBreakdown, f Factor) float64 {
	t.Helper()
	for _, fs := range bd.Factors {
		if fs.Factor == f {
			return fs.Value
		}
	}
	t.Fatalf("factor %s not present in breakdown", f)
	return 0
}

func TestScoreStaleData(t *testing.T) {
	e := NewEngine(Config{})

	c := checkinAt(testNow.Add(-20 * 24 * time.Hour))
	c.WifiSpeed = intPtr(4)
	bd, err := e.Score(Input{Checkins: []types.RawCheckinMetric{c}}, testNow)
	require.NoError(t, err)
	assert.True(t, bd.Stale, "data older than the freshness threshold flags stale")
	assert.Greater(t, bd.Score, 0, "stale data still scores; staleness is a separate signal")
}
