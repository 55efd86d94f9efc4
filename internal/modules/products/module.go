package products

import (
	"context"
	"time"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/validation"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/handlers"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/job"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/repository"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/service"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/shared/lists"
	"github.com/gaborage/go-bricks/app"
	"github.com/gaborage/go-bricks/database"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/messaging"
	"github.com/gaborage/go-bricks/server"
)

const warmupInterval = 5 * time.Minute

// Module exposes product CRUD over the generic crud service.
type Module struct {
	cfg     *crud.Config
	lists   *lists.Lists
	rules   *validation.RuleSet
	handler *handlers.ProductHandler
	logger  logger.Logger
	getDB   func(context.Context) (database.Interface, error)
}

// NewModule creates a new products module instance
func NewModule(cfg *crud.Config, l *lists.Lists) *Module {
	return &Module{cfg: cfg, lists: l}
}

// Name returns the module name for registration
func (m *Module) Name() string {
	return "products"
}

// Init initializes the module with application dependencies
func (m *Module) Init(deps *app.ModuleDeps) error {
	m.logger = deps.Logger.WithFields(map[string]any{
		"module": "products",
	})

	m.logger.Info().Msg("Initializing products module")

	m.getDB = deps.DB

	engine, err := validation.NewEngine()
	if err != nil {
		return err
	}
	m.rules = validation.NewRuleSet(engine, service.Rules)

	// FindList does not touch criteria or sorting, so one instance serves every request.
	m.lists.Register(repository.ListName, repository.NewSQLProductRepository(m.getDB))

	m.handler = handlers.NewProductHandler(m.newService, m.logger)

	m.logger.Info().Int("pageSize", m.cfg.PageSize).Msg("Products module initialized successfully")

	return nil
}

func (m *Module) newService() handlers.ProductServiceInterface {
	return service.NewService(
		repository.NewSQLProductRepository(m.getDB),
		m.rules.Validator(),
		m.cfg.PageSize,
		m.logger,
		m.lists,
	)
}

// RegisterRoutes registers HTTP endpoints for product operations
func (m *Module) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	m.handler.RegisterProductRoutes(hr, r)
}

// DeclareMessaging declares messaging infrastructure for this module
func (m *Module) DeclareMessaging(_ *messaging.Declarations) {
	// No messaging needed for products module.
}

// RegisterJobs registers the select-list warm-up job.
func (m *Module) RegisterJobs(scheduler app.JobRegistrar) error {
	return scheduler.FixedRate("select-list-warmup", &job.WarmupJob{Lists: m.lists}, warmupInterval)
}

// Shutdown performs cleanup when the module is stopped
func (m *Module) Shutdown() error {
	return nil
}
