// Package categories serves category CRUD through the generic crud.Service,
// without a module-specific service layer.
package categories

import (
	"context"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/validation"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/domain"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/handlers"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/repository"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/shared/lists"
	"github.com/gaborage/go-bricks/app"
	"github.com/gaborage/go-bricks/database"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/messaging"
	"github.com/gaborage/go-bricks/server"
)

var rules = map[string]string{
	"name": "required,notblank,max=80",
}

// Module wires getDB → sqlrepo → crud.Service → CategoryHandler.
type Module struct {
	cfg     *crud.Config
	lists   *lists.Lists
	rules   *validation.RuleSet
	handler *handlers.CategoryHandler
	logger  logger.Logger
	getDB   func(context.Context) (database.Interface, error)
}

// NewModule creates a new categories module instance.
func NewModule(cfg *crud.Config, l *lists.Lists) *Module {
	return &Module{cfg: cfg, lists: l}
}

// Name returns the module name for registration.
func (m *Module) Name() string {
	return "categories"
}

// Init initializes the module with application dependencies.
func (m *Module) Init(deps *app.ModuleDeps) error {
	m.logger = deps.Logger.WithFields(map[string]any{
		"module": "categories",
	})

	m.logger.Info().Msg("Initializing categories module")

	m.getDB = deps.DB

	engine, err := validation.NewEngine()
	if err != nil {
		return err
	}
	m.rules = validation.NewRuleSet(engine, rules)

	m.lists.Register(repository.ListName, repository.NewSQLCategoryRepository(m.getDB))

	m.handler = handlers.NewCategoryHandler(
		m.newService,
		repository.SortableColumns,
		func() { m.lists.Invalidate(repository.ListName) },
		m.logger,
	)

	m.logger.Info().Msg("Categories module initialized successfully")

	return nil
}

func (m *Module) newService() handlers.CategoryService {
	svc := crud.NewService[domain.Category]()
	svc.SetRepository(repository.NewSQLCategoryRepository(m.getDB))
	svc.SetValidator(m.rules.Validator())
	svc.SetPerPage(m.cfg.PageSize)
	return svc
}

// RegisterRoutes registers HTTP endpoints for category operations.
func (m *Module) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	m.handler.RegisterRoutes(hr, r)
}

// DeclareMessaging declares messaging infrastructure for this module.
func (m *Module) DeclareMessaging(_ *messaging.Declarations) {
	// No messaging needed for categories module.
}

// RegisterJobs registers scheduled jobs for this module.
func (m *Module) RegisterJobs(_ app.JobRegistrar) error {
	// Lists are warmed by the products module job.
	return nil
}

// Shutdown performs cleanup when the module is stopped.
func (m *Module) Shutdown() error {
	return nil
}
