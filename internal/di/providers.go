package di

import (
	"context"
	"fmt"
	"time"

	"QuantDesk/internal/backtest"
	"QuantDesk/internal/domain/repository"
	"QuantDesk/internal/handler/api"
	"QuantDesk/internal/ledger"
	"QuantDesk/internal/marketdata"
	icache "QuantDesk/internal/service/cache"
	"QuantDesk/internal/service/metrics"
	"QuantDesk/internal/signal"
	"QuantDesk/internal/usecase"
	"QuantDesk/pkg/config"
	xhttp "QuantDesk/pkg/http"
	applogger "QuantDesk/pkg/logger"
	"QuantDesk/pkg/server"
	"QuantDesk/pkg/store"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
}

// ProvideClock supplies the wall clock.
func ProvideClock() repository.Clock {
	return repository.ClockFunc(time.Now)
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewRecorder()
}

// ProvideStore selects the persistence backend for the ledger.
func ProvideStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Portfolio.Store {
	case "redis":
		return store.NewRedisStore(
			store.WithRedisAddr(cfg.Redis.Addr),
			store.WithRedisPassword(cfg.Redis.Password),
			store.WithRedisDB(cfg.Redis.DB),
		)
	case "file":
		return store.NewFileStore(cfg.Portfolio.FileDir)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown portfolio store %q", cfg.Portfolio.Store)
	}
}

// ProvideLedger loads or initializes the persisted portfolio.
func ProvideLedger(st store.Store, clock repository.Clock, cfg *config.Config) (*ledger.Ledger, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := []ledger.Option{}
	if cfg.Portfolio.StartingCash > 0 {
		opts = append(opts, ledger.WithStartingCash(cfg.Portfolio.StartingCash))
	}
	return ledger.New(ctx, st, clock, opts...)
}

// ProvideBarSource wires the Alpha Vantage provider with its synthetic
// fallback and a per-ticker cache.
func ProvideBarSource(cfg *config.Config, clock repository.Clock, log *applogger.Logger, m repository.Metrics) repository.BarSource {
	timeout := cfg.MarketData.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := xhttp.NewClient(xhttp.WithTimeout(timeout))
	provider := marketdata.NewAlphaVantage(client, cfg.MarketData.APIKey)
	return marketdata.NewService(provider, marketdata.NewGenerator(clock), icache.NewTTLCache(), log, m,
		marketdata.WithBarsTTL(cfg.MarketData.BarsTTL))
}

// ProvideSignalEngine creates the rule engine with default periods.
func ProvideSignalEngine() *signal.Engine {
	return signal.New(signal.Config{})
}

// ProvideSimulator creates the walk-forward backtester.
func ProvideSimulator(engine *signal.Engine, cfg *config.Config) *backtest.Simulator {
	return backtest.New(engine, backtest.Config{
		InitialBalance: cfg.Backtest.InitialBalance,
	})
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(bars repository.BarSource, engine *signal.Engine, sim *backtest.Simulator, m repository.Metrics) *usecase.Analyzer {
	return usecase.NewAnalyzer(bars, engine, sim, m)
}

// ProvideTrading creates the order execution use case.
func ProvideTrading(l *ledger.Ledger, bars repository.BarSource, m repository.Metrics) *usecase.Trading {
	return usecase.NewTrading(l, bars, m)
}

// ProvideBytesCache selects the response cache backend.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideHandler creates the HTTP handler surface.
func ProvideHandler(log *applogger.Logger, analyzer *usecase.Analyzer, trading *usecase.Trading, cache icache.BytesCache) xhttp.Handler {
	return api.NewTradingHandler(log, analyzer, trading, cache)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *server.App {
	return server.New(cfg, log, handler)
}
