// Package di provides dependency injection configuration for the RankDeck server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/rankdeck/rankdeck-server/internal/config"
	"github.com/rankdeck/rankdeck-server/internal/di/providers"
	"github.com/rankdeck/rankdeck-server/internal/logger"
	"github.com/rankdeck/rankdeck-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideCardService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of the whole provider graph.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.CardService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
