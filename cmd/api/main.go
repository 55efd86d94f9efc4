// Package main is the entry point for the go-bricks CRUD demo API.
package main

import (
	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/lookups"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/shared/lists"
	"github.com/gaborage/go-bricks/app"
	"github.com/gaborage/go-bricks/logger"
)

func main() {
	// Create application instance with environment-based configuration
	application, log, err := app.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	cfg, err := crud.LoadConfig(crud.DefaultConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load crud configuration")
	}

	log.Info().
		Int("pageSize", cfg.PageSize).
		Str("listCacheTTL", cfg.ListCache.TTL.String()).
		Msg("Crud configuration loaded")

	modulesToLoad := getModulesToLoad(cfg, lists.New(cfg, log))

	if err := registerModules(application, modulesToLoad, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register modules")
	}

	if err := application.Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
}

type ModuleConfig struct {
	Name    string
	Enabled bool
	Module  app.Module
}

// getModulesToLoad lists lookups last: it serves the lists the others register.
func getModulesToLoad(cfg *crud.Config, l *lists.Lists) []ModuleConfig {
	return []ModuleConfig{
		{
			Name:    "products",
			Enabled: true,
			Module:  products.NewModule(cfg, l),
		},
		{
			Name:    "categories",
			Enabled: true,
			Module:  categories.NewModule(cfg, l),
		},
		{
			Name:    "lookups",
			Enabled: true,
			Module:  lookups.NewModule(l),
		},
	}
}

func registerModules(appInstance *app.App, modules []ModuleConfig, log logger.Logger) error {
	for _, mod := range modules {
		if !mod.Enabled {
			log.Info().Str("module", mod.Name).Msg("Module is disabled, skipping registration")
			continue
		}

		log.Info().Str("module", mod.Name).Msg("Registering module")
		if err := appInstance.RegisterModule(mod.Module); err != nil {
			return err
		}
		log.Info().Str("module", mod.Name).Msg("Module registered successfully")
	}

	return nil
}
