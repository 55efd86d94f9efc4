// Package lookups serves the select lists registered by the other modules.
// It must be registered after them so every list is known by the time
// requests arrive.
package lookups

import (
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/lookups/handlers"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/shared/lists"
	"github.com/gaborage/go-bricks/app"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/messaging"
	"github.com/gaborage/go-bricks/server"
)

type Module struct {
	lists   *lists.Lists
	handler *handlers.LookupHandler
	logger  logger.Logger
}

// NewModule creates a new lookups module instance.
func NewModule(l *lists.Lists) *Module {
	return &Module{lists: l}
}

// Name returns the module name for registration.
func (m *Module) Name() string {
	return "lookups"
}

// Init initializes the module with application dependencies.
func (m *Module) Init(deps *app.ModuleDeps) error {
	m.logger = deps.Logger.WithFields(map[string]any{
		"module": "lookups",
	})

	m.logger.Info().Msg("Initializing lookups module")

	m.handler = handlers.NewLookupHandler(m.lists, m.logger)

	m.logger.Info().
		Int("lists", len(m.lists.Names())).
		Msg("Lookups module initialized successfully")

	return nil
}

// RegisterRoutes registers HTTP endpoints for lookup operations.
func (m *Module) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	m.handler.RegisterRoutes(hr, r)
}

// DeclareMessaging declares messaging infrastructure for this module.
func (m *Module) DeclareMessaging(_ *messaging.Declarations) {
	// No messaging needed for lookups module.
}

// RegisterJobs registers scheduled jobs for this module.
func (m *Module) RegisterJobs(_ app.JobRegistrar) error {
	return nil
}

// Shutdown stops the list cache.
func (m *Module) Shutdown() error {
	m.logger.Info().Msg("Shutting down lookups module")
	m.lists.Close()
	return nil
}
