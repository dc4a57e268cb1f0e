// Package migration applies the embedded SQL schema migrations with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/k8poc/backend/internal/adapter/database"
	"github.com/k8poc/backend/internal/logger"
)

// MigrationsTable tracks the applied schema versions.
const MigrationsTable = "app_schema_migrations"

const (
	commandUp   = "up"
	commandDown = "down"
)

// Migrator applies migrations found under <dbType>/ in an fs.FS to a connection.
type Migrator struct {
	dbConn      database.DBConnection
	dbType      string
	migrationFS fs.FS
	tableName   string
}

// NewMigrator creates a Migrator for dbConn. The source directory is the connection's database type.
func NewMigrator(dbConn database.DBConnection, migrationFS fs.FS) *Migrator {
	return &Migrator{
		dbConn:      dbConn,
		dbType:      dbConn.Type(),
		migrationFS: migrationFS,
		tableName:   MigrationsTable,
	}
}

// getDatabaseDriver retrieves a golang-migrate driver based on the database type.
func (m *Migrator) getDatabaseDriver(sqlDB *sql.DB) (migratedb.Driver, error) {
	switch m.dbType {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: m.tableName})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: m.tableName})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: m.tableName})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.dbType)
	}
}

// newMigrateInstance builds a migrate.Migrate over the connection. release must be called when done.
func (m *Migrator) newMigrateInstance() (mInstance *migrate.Migrate, release func(), err error) {
	sqlDB, err := m.dbConn.GetSQLDB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(m.migrationFS, m.dbType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", m.dbType, err)
	}

	dbDriver, err := m.getDatabaseDriver(sqlDB)
	if err != nil {
		sourceDriver.Close()
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	release = func() {
		sourceDriver.Close()
		// The postgres and mysql drivers hold a dedicated *sql.Conn that must go back to the pool.
		// The sqlite driver's Close closes the shared *sql.DB instead, so it is left alone.
		if m.dbType != "sqlite" {
			dbDriver.Close()
		}
	}

	mInstance, err = migrate.NewWithInstance("iofs", sourceDriver, m.dbType, dbDriver)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mInstance, release, nil
}

func (m *Migrator) runMigration(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Infof("Executing migration '%s' (Path: %s, Table: %s)", command, m.dbType, m.tableName)

	mInstance, release, err := m.newMigrateInstance()
	if err != nil {
		return err
	}
	defer release()

	var migrateErr error
	switch command {
	case commandUp:
		migrateErr = mInstance.Up()
	case commandDown:
		migrateErr = mInstance.Down()
	default:
		return fmt.Errorf("unsupported migration command: %s", command)
	}

	if migrateErr != nil && !errors.Is(migrateErr, migrate.ErrNoChange) {
		if version, dirty, versionErr := mInstance.Version(); versionErr == nil {
			logger.Errorf("Migration '%s' failed at version %d (dirty: %t).", command, version, dirty)
		}
		return fmt.Errorf("migration failed for command '%s' (DB: %s): %w", command, m.dbType, migrateErr)
	}

	logger.Infof("Migration '%s' completed successfully.", command)
	return nil
}

// Up applies all pending migrations. Having nothing to apply is not an error.
func (m *Migrator) Up(ctx context.Context) error {
	return m.runMigration(ctx, commandUp)
}

// Down rolls back all applied migrations.
func (m *Migrator) Down(ctx context.Context) error {
	return m.runMigration(ctx, commandDown)
}

// Version reports the current schema version. ok is false when nothing has been applied.
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	mInstance, release, err := m.newMigrateInstance()
	if err != nil {
		return 0, false, false, err
	}
	defer release()

	version, dirty, err = mInstance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}
