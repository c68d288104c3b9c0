package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured JSON logging with domain helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ScoreLogger logs one scoring invocation
func (l *Logger) ScoreLogger(spotID string, score int, confidence float64, stale bool, factorCount int, duration time.Duration, cacheHit bool) {
	l.Info("Spot Scored",
		"spot_id", spotID,
		"score", score,
		"confidence", confidence,
		"stale", stale,
		"factors", factorCount,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// CheckinLogger logs a recorded check-in
func (l *Logger) CheckinLogger(spotID string, tagCount int) {
	l.Debug("Check-in Recorded",
		"spot_id", spotID,
		"tags", tagCount,
	)
}

// ForecastLogger logs one forecast invocation
func (l *Logger) ForecastLogger(spotID string, weatherAdjusted bool, duration time.Duration) {
	l.Info("Forecast Computed",
		"spot_id", spotID,
		"weather_adjusted", weatherAdjusted,
		"duration_ms", duration.Milliseconds(),
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
