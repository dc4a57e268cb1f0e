// Package database defines the datasource abstractions the repositories are written against.
// Concrete GORM implementations live in the gorm sub-package, one dialect per sub-package.
package database

import (
	"context"
	"database/sql"

	dbconfig "github.com/k8poc/backend/internal/adapter/database/config"
)

// Operations accepted by DBExecutor.ExecuteUpdate.
const (
	OperationCreate = "CREATE"
	OperationDelete = "DELETE"
)

// DBExecutor defines the read and write operations available on a connection.
type DBExecutor interface {
	// ExecuteUpdate performs a CREATE or DELETE. query is a column/value map combined with AND.
	ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (rowsAffected int64, err error)

	// ExecuteUpsert inserts model, resolving conflicts on conflictColumns by updating
	// updateColumns (DO NOTHING when updateColumns is empty).
	ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (rowsAffected int64, err error)

	// ExecuteQuery runs a SELECT with the given equality conditions into target.
	ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error

	// ExecuteQueryAdvanced runs a SELECT with optional ordering and limit (0 means no limit).
	ExecuteQueryAdvanced(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, limit int) error

	// Count counts the rows matching query in model's table.
	Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error)
}

// DBConnection represents one named, configured database connection.
type DBConnection interface {
	DBExecutor

	// Type returns the database type (e.g., "mysql", "postgres").
	Type() string
	// Name returns the connection name (e.g., "primary").
	Name() string
	// Close closes the connection pool.
	Close() error
	// IsTableNotExistError reports whether err means the target table is missing.
	IsTableNotExistError(err error) bool
	// RefreshConnection pings the pool to verify it is usable.
	RefreshConnection(ctx context.Context) error
	// Config returns the settings the connection was opened with.
	Config() dbconfig.DatabaseConfig
	// GetSQLDB returns the underlying *sql.DB, needed by the schema migrator.
	GetSQLDB() (*sql.DB, error)
	// SyncIdentity moves the auto-increment source of tableName.column past the highest stored
	// value. Dialects whose auto-increment already follows explicit inserts treat it as a no-op.
	SyncIdentity(ctx context.Context, tableName, column string) error
}

// DBConnectionResolver resolves a healthy connection by name.
type DBConnectionResolver interface {
	// ResolveDBConnection returns the named connection, reconnecting if its ping fails.
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
}

// DBProvider opens and caches connections of a single database type.
type DBProvider interface {
	// GetConnection retrieves a database connection with the specified name.
	GetConnection(name string) (DBConnection, error)
	// ForceReconnect closes and re-opens the named connection.
	ForceReconnect(name string) (DBConnection, error)
	// CloseAll closes all database connections managed by this provider.
	CloseAll() error
	// Type returns the type of database handled by this provider (e.g., "postgres", "mysql").
	Type() string
}

// DBProviderGroup is the Fx value group collecting every DBProvider.
const DBProviderGroup = "db_providers"
