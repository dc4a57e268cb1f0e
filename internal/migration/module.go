package migration

import (
	"context"
	"fmt"
	"io/fs"

	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/adapter/database"
	dbconfig "github.com/k8poc/backend/internal/adapter/database/config"
	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
)

// HookParams are the Fx dependencies of RegisterMigrationHook.
type HookParams struct {
	fx.In
	Lifecycle    fx.Lifecycle
	Cfg          *config.Config
	Resolver     database.DBConnectionResolver
	MigrationsFS fs.FS `name:"migrationsFS"`
}

// MigratePrimary applies the migrations to the primary datasource unless migrations are
// disabled or the datasource is the in-memory "dummy" type.
func MigratePrimary(ctx context.Context, cfg *config.Config, resolver database.DBConnectionResolver, migrationsFS fs.FS) error {
	if !cfg.App.Datasource.MigrateOnStart {
		logger.Infof("Schema migration on start is disabled.")
		return nil
	}

	name := cfg.App.Datasource.Primary
	dbCfg, err := dbconfig.Lookup(cfg.App.DatabaseConfigs, name)
	if err != nil {
		return err
	}
	if dbCfg.Type == dbconfig.TypeDummy {
		logger.Debugf("Datasource '%s' is a dummy datasource. Skipping schema migration.", name)
		return nil
	}

	conn, err := resolver.ResolveDBConnection(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to resolve datasource '%s' for migration: %w", name, err)
	}
	return NewMigrator(conn, migrationsFS).Up(ctx)
}

// RegisterMigrationHook runs MigratePrimary when the application starts.
func RegisterMigrationHook(p HookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return MigratePrimary(ctx, p.Cfg, p.Resolver, p.MigrationsFS)
		},
	})
}

// Module registers the start-up migration. The named "migrationsFS" fs.FS must be supplied by the application.
var Module = fx.Options(
	fx.Invoke(RegisterMigrationHook),
)
