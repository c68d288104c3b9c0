package scoring

import (
	"time"

	"github.com/spotsense/spotscore/internal/types"
)

// forecastHours is the length of the forward busyness curve.
const forecastHours = 6

// HourlyProfile holds the historical average busyness (0-100, higher is
// busier) per clock hour at one spot.
type HourlyProfile [24]float64

// Forecast projects the next six clock hours from the historical profile,
// each point shifted by the same weather delta the crowd factor uses.
// Deterministic lookup plus adjustment, intentionally auditable: no model.
func (e *Engine) Forecast(profile HourlyProfile, start time.Time, weather *types.WeatherSignal) []CrowdForecastPoint {
	delta := e.CrowdDelta(weather)
	basis := BasisHistorical
	if delta != 0 {
		basis = BasisWeatherAdjusted
	}

	points := make([]CrowdForecastPoint, 0, forecastHours)
	for offset := 1; offset <= forecastHours; offset++ {
		hour := (start.Hour() + offset) % 24
		points = append(points, CrowdForecastPoint{
			HourOffset: offset,
			Busyness:   clamp(profile[hour]+delta, 0, 100),
			Basis:      basis,
		})
	}
	return points
}
