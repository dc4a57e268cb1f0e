package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/app"
	"github.com/k8poc/backend/internal/logger"
)

// embeddedConfig is the application.yaml compiled into the binary.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// applicationMigrationsFS bundles the per-database migration scripts.
//
//go:embed all:resources/migrations
var applicationMigrationsFS embed.FS

// getDBProviderOptions selects the DB providers named in DB_ADAPTERS (comma-separated).
// Postgres, MySQL and SQLite are registered when it is unset.
func getDBProviderOptions() []fx.Option {
	adapters := os.Getenv("DB_ADAPTERS")
	if adapters == "" {
		adapters = "postgres,mysql,sqlite"
	}

	options := make([]fx.Option, 0)
	for _, adapterName := range strings.Split(adapters, ",") {
		adapterName = strings.TrimSpace(adapterName)
		if adapterName == "" {
			continue
		}
		if module, ok := app.DBProviderModules[adapterName]; ok {
			options = append(options, module)
			logger.Debugf("DB Provider '%s' selected and registered.", adapterName)
		} else {
			logger.Warnf("DB Provider '%s' is configured but not recognized/supported. Skipping.", adapterName)
		}
	}
	return options
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Shutting down...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app.RunApplication(ctx, envFilePath, embeddedConfig, applicationMigrationsFS, getDBProviderOptions())
	os.Exit(0)
}
