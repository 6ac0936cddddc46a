//go:build wireinject
// +build wireinject

package di

import (
	"QuantDesk/pkg/config"
	"QuantDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,

		// Persistence and market data
		ProvideStore,
		ProvideLedger,
		ProvideBarSource,
		ProvideBytesCache,

		// Trading core
		ProvideSignalEngine,
		ProvideSimulator,

		// Use cases
		ProvideAnalyzer,
		ProvideTrading,

		// HTTP surface
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil
}
