package repository_test

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/k8poc/backend/internal/adapter/database"
	dbconfig "github.com/k8poc/backend/internal/adapter/database/config"
)

// MockDBResolver is a testify mock of database.DBConnectionResolver.
type MockDBResolver struct {
	mock.Mock
}

func (m *MockDBResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	args := m.Called(ctx, name)
	var conn database.DBConnection
	if c := args.Get(0); c != nil {
		conn = c.(database.DBConnection)
	}
	return conn, args.Error(1)
}

// MockDBConnection is a testify mock of database.DBConnection. Only the calls a test
// sets up with On are expected; any other call fails the test.
type MockDBConnection struct {
	mock.Mock
}

func (m *MockDBConnection) ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (int64, error) {
	args := m.Called(ctx, model, operation, tableName, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBConnection) ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (int64, error) {
	args := m.Called(ctx, model, tableName, conflictColumns, updateColumns)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBConnection) ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error {
	return m.Called(ctx, target, query).Error(0)
}

func (m *MockDBConnection) ExecuteQueryAdvanced(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, limit int) error {
	return m.Called(ctx, target, query, orderBy, limit).Error(0)
}

func (m *MockDBConnection) Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error) {
	args := m.Called(ctx, model, query)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBConnection) Type() string { return m.Called().String(0) }

func (m *MockDBConnection) Name() string { return m.Called().String(0) }

func (m *MockDBConnection) Close() error { return m.Called().Error(0) }

func (m *MockDBConnection) IsTableNotExistError(err error) bool { return m.Called(err).Bool(0) }

func (m *MockDBConnection) RefreshConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDBConnection) Config() dbconfig.DatabaseConfig {
	return m.Called().Get(0).(dbconfig.DatabaseConfig)
}

func (m *MockDBConnection) GetSQLDB() (*sql.DB, error) {
	args := m.Called()
	db, _ := args.Get(0).(*sql.DB)
	return db, args.Error(1)
}

func (m *MockDBConnection) SyncIdentity(ctx context.Context, tableName, column string) error {
	return m.Called(ctx, tableName, column).Error(0)
}

var _ database.DBConnection = (*MockDBConnection)(nil)
