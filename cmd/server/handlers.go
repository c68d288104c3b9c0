package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spotsense/spotscore/internal/cache"
	"github.com/spotsense/spotscore/internal/config"
	"github.com/spotsense/spotscore/internal/database"
	apperrors "github.com/spotsense/spotscore/internal/errors"
	"github.com/spotsense/spotscore/internal/middleware"
	"github.com/spotsense/spotscore/internal/monitoring"
	"github.com/spotsense/spotscore/internal/ranking"
	"github.com/spotsense/spotscore/internal/ratelimit"
	"github.com/spotsense/spotscore/internal/scoring"
	"github.com/spotsense/spotscore/internal/types"
)

// server bundles the request handlers' dependencies
type server struct {
	cfg        config.Config
	db         *database.DB
	repo       *database.Repository
	engine     *scoring.Engine
	scoreCache *cache.Cache
	rankings   *ranking.Service
	limiter    *ratelimit.RateLimiter
	redis      *ratelimit.RedisClient
	metrics    *monitoring.Metrics
	logger     *monitoring.Logger
}

// newRouter wires up middleware and routes
func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(apperrors.ErrorHandler())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ValidateContentType())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Server.CorsOrigins) == 1 && s.cfg.Server.CorsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.Server.CorsOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Request-ID")
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	if s.limiter != nil {
		api.Use(s.limiter.IPRateLimitMiddleware())
	}
	api.GET("/metrics", s.handleMetrics)
	api.GET("/rankings", s.handleRankings)

	spots := api.Group("/spots")
	checkinHandlers := []gin.HandlerFunc{s.handleCheckin}
	if s.limiter != nil {
		checkinHandlers = append([]gin.HandlerFunc{s.limiter.CheckinRateLimitMiddleware()}, checkinHandlers...)
	}
	spots.POST("/:id/checkins", checkinHandlers...)
	spots.POST("/:id/score", s.handleScore)
	spots.GET("/:id/forecast", s.handleForecast)

	return r
}

// requestID attaches a request ID to every request, honoring one supplied by
// the caller
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func respondError(c *gin.Context, err *apperrors.AppError) {
	apperrors.LogError(c, err)
	c.JSON(err.HTTPStatus, err)
}

func spotIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, apperrors.NewValidationError("spot id cannot be empty", nil))
		return "", false
	}
	return id, true
}

// handleCheckin records one community check-in for a spot. The spot is
// created on first check-in.
func (s *server) handleCheckin(c *gin.Context) {
	spotID, ok := spotIDParam(c)
	if !ok {
		return
	}

	var req types.CheckinRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("malformed check-in body", err))
		return
	}

	m := types.RawCheckinMetric{
		SpotID:         spotID,
		Timestamp:      time.Now().UTC(),
		WifiSpeed:      req.WifiSpeed,
		NoiseLevel:     req.NoiseLevel,
		Busyness:       req.Busyness,
		LaptopFriendly: req.LaptopFriendly,
		Tags:           req.Tags,
		PriceLevel:     req.PriceLevel,
	}
	if err := scoring.ValidateCheckin(m); err != nil {
		respondError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}

	if err := s.repo.EnsureSpot(spotID, spotID); err != nil {
		respondError(c, apperrors.NewStorageError("failed to register spot", err))
		return
	}
	ck, err := s.repo.InsertCheckin(m)
	if err != nil {
		respondError(c, apperrors.NewStorageError("failed to store check-in", err))
		return
	}

	// New data invalidates cached scores
	s.scoreCache.Clear()

	s.logger.CheckinLogger(spotID, len(req.Tags))
	c.JSON(http.StatusCreated, gin.H{
		"checkin_id":  ck.ID,
		"spot_id":     spotID,
		"recorded_at": ck.CreatedAt.Format(time.RFC3339),
	})
}

// handleScore computes the Work Score for a spot from stored check-ins plus
// the caller-supplied inferred, provider and weather signals.
func (s *server) handleScore(c *gin.Context) {
	start := time.Now()
	spotID, ok := spotIDParam(c)
	if !ok {
		return
	}

	exists, err := s.repo.SpotExists(spotID)
	if err != nil {
		respondError(c, apperrors.NewStorageError("failed to look up spot", err))
		return
	}
	if !exists {
		respondError(c, apperrors.NewNotFoundError("spot", spotID))
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, apperrors.NewValidationError("failed to read request body", err))
		return
	}
	var req types.ScoreRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			respondError(c, apperrors.NewValidationError("malformed score request body", err))
			return
		}
	}

	// Cache key covers the spot and the full supplied signal payload
	key := cache.Key(spotID + ":" + string(raw))
	if data, found := s.scoreCache.Get(key); found {
		s.metrics.IncrementCacheHit()
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}
	s.metrics.IncrementCacheMiss()

	now := time.Now().UTC()
	checkins, err := s.repo.CheckinsSince(spotID, now.Add(-s.engine.Config().CheckinWindow))
	if err != nil {
		respondError(c, apperrors.NewStorageError("failed to load check-ins", err))
		return
	}

	bd, err := s.engine.Score(scoring.Input{
		Checkins:  checkins,
		Inferred:  req.Inferred,
		Providers: req.Providers,
		Weather:   req.Weather,
	}, now)
	if err != nil {
		if errors.Is(err, scoring.ErrInsufficientData) {
			s.metrics.IncrementNoDataResults()
			respondError(c, apperrors.NewInsufficientDataError(spotID))
			return
		}
		respondError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}
	s.metrics.IncrementScoresComputed()

	if breakdown, err := json.Marshal(bd); err == nil {
		if err := s.repo.SaveSnapshot(database.ScoreSnapshot{
			SpotID:     spotID,
			Score:      bd.Score,
			Confidence: bd.Confidence,
			Stale:      bd.Stale,
			Breakdown:  string(breakdown),
			UpdatedAt:  now,
		}); err != nil {
			// The score itself is still good; rankings just lag
			s.logger.SystemLogger("snapshot_save_failed", err.Error())
		} else {
			s.rankings.Invalidate()
		}
	}

	response := gin.H{
		"spot_id":      spotID,
		"generated_at": now.Format(time.RFC3339),
		"score":        bd.Score,
		"confidence":   bd.Confidence,
		"stale":        bd.Stale,
		"factors":      bd.Factors,
	}
	if bd.Open != nil {
		response["open"] = *bd.Open
	}
	data, err := json.Marshal(response)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to encode score response", err))
		return
	}
	s.scoreCache.Set(key, data)

	s.logger.ScoreLogger(spotID, bd.Score, bd.Confidence, bd.Stale, len(bd.Factors), time.Since(start), false)
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// handleForecast returns the 6-hour crowd forecast from the spot's stored
// hourly busyness profile, optionally adjusted by current weather
func (s *server) handleForecast(c *gin.Context) {
	start := time.Now()
	spotID, ok := spotIDParam(c)
	if !ok {
		return
	}

	exists, err := s.repo.SpotExists(spotID)
	if err != nil {
		respondError(c, apperrors.NewStorageError("failed to look up spot", err))
		return
	}
	if !exists {
		respondError(c, apperrors.NewNotFoundError("spot", spotID))
		return
	}

	profile, covered, err := s.repo.HourlyBusyness(spotID)
	if err != nil {
		respondError(c, apperrors.NewStorageError("failed to load busyness history", err))
		return
	}
	if covered == 0 {
		respondError(c, apperrors.NewInsufficientDataError(spotID))
		return
	}

	now := time.Now().UTC()
	var weather *types.WeatherSignal
	if cond, mmStr := c.Query("condition"), c.Query("precipitation_mm"); cond != "" || mmStr != "" {
		mm := 0.0
		if mmStr != "" {
			mm, err = strconv.ParseFloat(mmStr, 64)
			if err != nil || mm < 0 {
				respondError(c, apperrors.NewValidationError("precipitation_mm must be a non-negative number", err))
				return
			}
		}
		weather = &types.WeatherSignal{Condition: cond, PrecipitationMM: mm, ObservedAt: now}
	}

	points := s.engine.Forecast(scoring.HourlyProfile(profile), now, weather)

	s.logger.ForecastLogger(spotID, weather != nil, time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"spot_id":      spotID,
		"generated_at": now.Format(time.RFC3339),
		"points":       points,
	})
}

// handleRankings returns the top spots by latest persisted Work Score
func (s *server) handleRankings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		respondError(c, apperrors.NewValidationError("limit must be an integer", err))
		return
	}

	resp, err := s.rankings.TopSpots(limit)
	if err != nil {
		respondError(c, apperrors.NewStorageError("failed to load rankings", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"database":  s.db.PoolStats(),
		"redis":     s.redis.Status(c.Request.Context()),
	})
}

func (s *server) handleMetrics(c *gin.Context) {
	payload := gin.H{
		"metrics":       s.metrics.Snapshot(),
		"score_cache":   s.scoreCache.Stats(),
		"database_pool": s.db.PoolStats(),
	}
	if s.limiter != nil {
		payload["rate_limiter"] = s.limiter.GetStats()
	}
	c.JSON(http.StatusOK, payload)
}
