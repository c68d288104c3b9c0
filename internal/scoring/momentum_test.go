package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timesIn spreads n timestamps evenly inside the window ending at `end`.
func timesIn(n int, end time.Time, window time.Duration) []time.Time {
	out := make([]time.Time, 0, n)
	step := window / time.Duration(n+1)
	for i := 1; i <= n; i++ {
		out = append(out, end.Add(-time.Duration(i)*step))
	}
	return out
}

func TestScoreMomentum(t *testing.T) {
	e := NewEngine(Config{})
	window := e.Config().MomentumWindow

	recentEnd := testNow
	priorEnd := testNow.Add(-window)

	tests := []struct {
		name   string
		recent int
		prior  int
		wantOk bool
		check  func(t *testing.T, fs FactorScore)
	}{
		{
			name:   "rising popularity scores above 50",
			recent: 12,
			prior:  4,
			wantOk: true,
			check: func(t *testing.T, fs FactorScore) {
				assert.Greater(t, fs.Value, 50.0)
			},
		},
		{
			name:   "falling popularity scores below 50",
			recent: 3,
			prior:  10,
			wantOk: true,
			check: func(t *testing.T, fs FactorScore) {
				assert.Less(t, fs.Value, 50.0)
			},
		},
		{
			name:   "steady volume scores 50",
			recent: 6,
			prior:  6,
			wantOk: true,
			check: func(t *testing.T, fs FactorScore) {
				assert.InDelta(t, 50.0, fs.Value, 1e-9)
			},
		},
		{
			name:   "sparse recent window excluded",
			recent: 2,
			prior:  10,
			wantOk: false,
		},
		{
			name:   "sparse prior window excluded",
			recent: 10,
			prior:  2,
			wantOk: false,
		},
		{
			name:   "no data excluded",
			recent: 0,
			prior:  0,
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checkins []time.Time
			checkins = append(checkins, timesIn(tt.recent, recentEnd, window)...)
			checkins = append(checkins, timesIn(tt.prior, priorEnd, window)...)

			fs, ok := e.scoreMomentum(checkins, testNow)
			assert.Equal(t, tt.wantOk, ok, "momentum presence")
			if tt.wantOk {
				require.Equal(t, FactorMomentum, fs.Factor)
				assert.Equal(t, tt.recent+tt.prior, fs.SampleSize)
				tt.check(t, fs)
			}
		})
	}
}

func TestScoreMomentumBounded(t *testing.T) {
	e := NewEngine(Config{})
	window := e.Config().MomentumWindow

	// Explosive growth still stays within the 0-100 scale.
	checkins := append(
		timesIn(500, testNow, window),
		timesIn(3, testNow.Add(-window), window)...,
	)
	fs, ok := e.scoreMomentum(checkins, testNow)
	require.True(t, ok)
	assert.LessOrEqual(t, fs.Value, 100.0)
	assert.Greater(t, fs.Value, 95.0)
}
