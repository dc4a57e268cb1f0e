package app

import (
	"context"
	"io/fs"
	"time"

	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
	"github.com/k8poc/backend/internal/management"
	"github.com/k8poc/backend/internal/metrics"
	"github.com/k8poc/backend/internal/migration"
	"github.com/k8poc/backend/internal/repository"
	"github.com/k8poc/backend/internal/server"
)

// Options returns the complete application graph for an already loaded configuration.
// rawMigrationsFS must contain resources/migrations/<dbType>/.
func Options(cfg *config.Config, rawMigrationsFS fs.FS, dbProviderOptions []fx.Option) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(fx.Annotated{
			Name:   "rawMigrationsFS",
			Target: func() fs.FS { return rawMigrationsFS },
		}),
		fx.Options(dbProviderOptions...),
		logger.Module,
		config.Module,
		metrics.Module,

		// Hook order matters: connections close last, migrations run before the listeners start.
		Module,
		repository.Module,
		migration.Module,
		server.Module,
		management.Module,
	)
}

// RunApplication loads the configuration, starts the graph and blocks until ctx is cancelled.
func RunApplication(ctx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, rawMigrationsFS fs.FS, dbProviderOptions []fx.Option) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	applySystemConfig(cfg)

	fxApp := fx.New(Options(cfg, rawMigrationsFS, dbProviderOptions))
	if err := fxApp.Err(); err != nil {
		logger.Fatalf("Failed to build application: %v", err)
	}

	startCtx, cancelStart := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		logger.Fatalf("Failed to start application: %v", err)
	}

	<-ctx.Done()
	logger.Infof("Shutting down...")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		logger.Errorf("Failed to stop application cleanly: %v", err)
	}
}

// applySystemConfig applies app.system: log level, log format and process timezone.
func applySystemConfig(cfg *config.Config) {
	logger.SetLogLevel(cfg.App.System.Logging.Level)
	logger.SetFormat(cfg.App.System.Logging.Format)
	logger.Infof("Log level set to: %s", cfg.App.System.Logging.Level)

	// Validate already checked the name.
	if loc, err := time.LoadLocation(cfg.App.System.Timezone); err == nil {
		time.Local = loc
	}
}
