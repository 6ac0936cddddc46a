package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"QuantDesk/internal/domain/models"
	"QuantDesk/internal/domain/repository"
	"QuantDesk/internal/service/cache"
	"QuantDesk/pkg/logger"
)

// Provider fetches daily bars from an upstream market-data API.
type Provider interface {
	DailyBars(ctx context.Context, ticker string) ([]models.Bar, error)
}

// DefaultBarsTTL bounds upstream calls well inside the free-tier rate
// limit (25 calls/day).
const DefaultBarsTTL = 15 * time.Minute

// Service is the BarSource implementation: provider first, synthetic
// fallback on any upstream failure, results cached per ticker. Upstream
// errors are absorbed here and never reach callers.
type Service struct {
	provider Provider
	fallback *Generator
	cache    cache.BytesCache
	ttl      time.Duration
	log      *logger.Logger
	metrics  repository.Metrics
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithBarsTTL overrides the per-ticker cache lifetime.
func WithBarsTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService wires the bar source.
func NewService(provider Provider, fallback *Generator, c cache.BytesCache, log *logger.Logger, metrics repository.Metrics, opts ...ServiceOption) *Service {
	s := &Service{
		provider: provider,
		fallback: fallback,
		cache:    c,
		ttl:      DefaultBarsTTL,
		log:      log,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoricalBars returns the daily series for ticker, always non-empty.
func (s *Service) HistoricalBars(ctx context.Context, ticker string) ([]models.Bar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	key := "bars:" + ticker

	if raw, ok, err := s.cache.GetBytes(key); err == nil && ok {
		var bars []models.Bar
		if err := json.Unmarshal(raw, &bars); err == nil && len(bars) > 0 {
			return bars, nil
		}
	}

	bars, err := s.provider.DailyBars(ctx, ticker)
	if err != nil || len(bars) == 0 {
		s.log.Warn("upstream bars unavailable, using synthetic series",
			logger.String("ticker", ticker),
			logger.Error(err))
		s.metrics.RecordFallback(ticker)
		bars = s.fallback.Bars(ticker)
	}

	if raw, err := json.Marshal(bars); err == nil {
		if err := s.cache.SetBytes(key, raw, s.ttl); err != nil {
			s.log.Warn("bars cache write failed", logger.Error(err))
		}
	}
	return bars, nil
}

// CurrentPrice returns the latest close for ticker.
func (s *Service) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	bars, err := s.HistoricalBars(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("marketdata: empty series for %s", ticker)
	}
	return bars[len(bars)-1].Close, nil
}
