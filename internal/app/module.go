// Package app assembles the Fx application graph.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/adapter/database"
	dbconfig "github.com/k8poc/backend/internal/adapter/database/config"
	gormadapter "github.com/k8poc/backend/internal/adapter/database/gorm"
	"github.com/k8poc/backend/internal/adapter/database/gorm/mysql"
	"github.com/k8poc/backend/internal/adapter/database/gorm/postgres"
	"github.com/k8poc/backend/internal/adapter/database/gorm/sqlite"
	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
)

// DBProviderModules maps a DB_ADAPTERS entry to the Fx module that registers its provider.
var DBProviderModules = map[string]fx.Option{
	postgres.DBType: postgres.Module,
	mysql.DBType:    mysql.Module,
	sqlite.DBType:   sqlite.Module,
}

// DBConnectionsParams defines the dependencies for NewDBConnections.
type DBConnectionsParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	// DBProviders is collected by Fx from the `group:"db_providers"` tag.
	DBProviders []database.DBProvider `group:"db_providers"`
}

// NewDBConnections opens every datasource under app.database so a bad connection fails
// startup, and closes all of them when the application stops. Dummy datasources open nothing.
// Datasources whose type has no registered provider are skipped with a warning, unless it is
// the primary one.
func NewDBConnections(p DBConnectionsParams) (map[string]database.DBConnection, error) {
	providerMap := make(map[string]database.DBProvider, len(p.DBProviders))
	for _, provider := range p.DBProviders {
		providerMap[provider.Type()] = provider
	}

	allConnections, err := openConnections(p.Cfg, providerMap)
	if err != nil {
		// Fx never runs OnStop for a failed constructor, so release what was opened so far.
		if closeErr := closeProviders(p.DBProviders); closeErr != nil {
			logger.Warnf("Failed to release database connections after startup error: %v", closeErr)
		}
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Infof("Closing all database connections...")
			return closeProviders(p.DBProviders)
		},
	})
	return allConnections, nil
}

func openConnections(cfg *config.Config, providerMap map[string]database.DBProvider) (map[string]database.DBConnection, error) {
	allConnections := make(map[string]database.DBConnection)
	for name := range cfg.App.DatabaseConfigs {
		dbCfg, err := dbconfig.Lookup(cfg.App.DatabaseConfigs, name)
		if err != nil {
			return nil, err
		}
		if dbCfg.Type == dbconfig.TypeDummy {
			logger.Infof("DB connection '%s' is configured as 'dummy'. No connection is opened.", name)
			continue
		}

		provider, ok := providerMap[dbCfg.Type]
		if !ok {
			if name == cfg.App.Datasource.Primary {
				return nil, fmt.Errorf("no DBProvider registered for primary datasource '%s' of type '%s' (check DB_ADAPTERS)", name, dbCfg.Type)
			}
			logger.Warnf("No DBProvider found for database type '%s' (Datasource: %s). Skipping connection.", dbCfg.Type, name)
			continue
		}

		conn, err := provider.GetConnection(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get connection for '%s' using provider '%s': %w", name, provider.Type(), err)
		}
		allConnections[name] = conn
		logger.Debugf("Initialized DB Connection for: %s (%s)", name, dbCfg.Type)
	}
	return allConnections, nil
}

// closeProviders closes every provider concurrently and aggregates the failures.
func closeProviders(providers []database.DBProvider) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result error
	)
	for _, provider := range providers {
		wg.Add(1)
		go func(p database.DBProvider) {
			defer wg.Done()
			if err := p.CloseAll(); err != nil {
				logger.Errorf("Failed to close connections for provider %s: %v", p.Type(), err)
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
		}(provider)
	}
	wg.Wait()
	return result
}

// logOpenConnections forces NewDBConnections to run during startup.
func logOpenConnections(conns map[string]database.DBConnection) {
	logger.Infof("%d database connection(s) ready.", len(conns))
}

// MigrationsFSParams defines the dependencies for NewMigrationsFS.
type MigrationsFSParams struct {
	fx.In
	// RawMigrationsFS is the embedded tree from main.go, rooted above resources/migrations.
	RawMigrationsFS fs.FS `name:"rawMigrationsFS"`
}

// NewMigrationsFS strips the resources/migrations prefix so the migrator can address
// the <dbType> directories directly.
func NewMigrationsFS(p MigrationsFSParams) (fs.FS, error) {
	subFS, err := fs.Sub(p.RawMigrationsFS, "resources/migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations directory: %w", err)
	}
	return subFS, nil
}

// Module wires the datasource layer: resolver, eager connections and the migrations FS.
var Module = fx.Options(
	gormadapter.Module,
	fx.Provide(NewDBConnections),
	fx.Invoke(logOpenConnections),
	fx.Provide(fx.Annotate(
		NewMigrationsFS,
		fx.ResultTags(`name:"migrationsFS"`),
	)),
)
