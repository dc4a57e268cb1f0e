package repository_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k8poc/backend/internal/adapter/database"
	gormadapter "github.com/k8poc/backend/internal/adapter/database/gorm"
	_ "github.com/k8poc/backend/internal/adapter/database/gorm/sqlite"
	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/domain/entity"
	"github.com/k8poc/backend/internal/repository"
)

// newSQLiteRepository builds a GormEmployeeRepository on a private in-memory database with the employee table created.
func newSQLiteRepository(t *testing.T) repository.EmployeeRepository {
	t.Helper()

	cfg := config.NewConfig()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg.App.DatabaseConfigs = map[string]interface{}{
		config.DefaultPrimaryDatasource: map[string]interface{}{
			"type":     "sqlite",
			"database": "file:" + name + "?mode=memory&cache=shared",
			"pool":     map[string]interface{}{"max_open_conns": 1, "max_idle_conns": 1},
		},
	}
	provider := gormadapter.NewBaseProvider(cfg, "sqlite")
	t.Cleanup(func() { _ = provider.CloseAll() })

	conn, err := provider.GetConnection(config.DefaultPrimaryDatasource)
	require.NoError(t, err)
	require.NoError(t, conn.(*gormadapter.GormDBAdapter).GetGormDB().AutoMigrate(&entity.Employee{}))

	resolver := gormadapter.NewGormDBConnectionResolver(gormadapter.ResolverParams{
		DBProviders: []database.DBProvider{provider},
		Cfg:         cfg,
	})
	return repository.NewGormEmployeeRepository(resolver, config.DefaultPrimaryDatasource)
}

func implementations(t *testing.T) map[string]func(t *testing.T) repository.EmployeeRepository {
	return map[string]func(t *testing.T) repository.EmployeeRepository{
		"gorm_sqlite": newSQLiteRepository,
		"in_memory": func(*testing.T) repository.EmployeeRepository {
			return repository.NewInMemoryEmployeeRepository()
		},
	}
}

func TestEmployeeRepository_Contract(t *testing.T) {
	for name, newRepo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)

			first := &entity.Employee{}
			require.NoError(t, repo.Save(ctx, first))
			assert.NotZero(t, first.ID)

			second := &entity.Employee{}
			require.NoError(t, repo.Save(ctx, second))
			assert.Greater(t, second.ID, first.ID)

			found, err := repo.FindByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, first.ID, found.ID)

			exists, err := repo.ExistsByID(ctx, second.ID)
			require.NoError(t, err)
			assert.True(t, exists)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, first.ID, all[0].ID)
			assert.Equal(t, second.ID, all[1].ID)

			// Saving an already persisted employee keeps a single row.
			require.NoError(t, repo.Save(ctx, &entity.Employee{ID: first.ID}))
			count, err = repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			require.NoError(t, repo.DeleteByID(ctx, first.ID))
			exists, err = repo.ExistsByID(ctx, first.ID)
			require.NoError(t, err)
			assert.False(t, exists)

			count, err = repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestEmployeeRepository_NotFound(t *testing.T) {
	for name, newRepo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			_, err := repo.FindByID(ctx, 999)
			assert.ErrorIs(t, err, repository.ErrEmployeeNotFound)

			err = repo.DeleteByID(ctx, 999)
			assert.ErrorIs(t, err, repository.ErrEmployeeNotFound)

			exists, err := repo.ExistsByID(ctx, 999)
			require.NoError(t, err)
			assert.False(t, exists)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			assert.ErrorIs(t, repo.Save(ctx, nil), repository.ErrNilEmployee)
		})
	}
}

func TestEmployeeRepository_SaveWithExplicitID(t *testing.T) {
	for name, newRepo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			require.NoError(t, repo.Save(ctx, &entity.Employee{ID: 10}))
			found, err := repo.FindByID(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(10), found.ID)

			next := &entity.Employee{}
			require.NoError(t, repo.Save(ctx, next))
			assert.Greater(t, next.ID, int64(10))
		})
	}
}

func TestInMemoryEmployeeRepository_ConcurrentSave(t *testing.T) {
	repo := repository.NewInMemoryEmployeeRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, &entity.Employee{}))
		}()
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}

func TestGormEmployeeRepository_ResolveError(t *testing.T) {
	resolver := new(MockDBResolver)
	resolveErr := errors.New("connection refused")
	resolver.On("ResolveDBConnection", context.Background(), "primary").Return(nil, resolveErr)

	repo := repository.NewGormEmployeeRepository(resolver, "primary")
	_, err := repo.Count(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, resolveErr)
	assert.Contains(t, err.Error(), "failed to resolve DB connection 'primary'")
	resolver.AssertExpectations(t)
}

// resolverFor returns a resolver mock that hands out conn for "primary".
func resolverFor(conn database.DBConnection) *MockDBResolver {
	resolver := new(MockDBResolver)
	resolver.On("ResolveDBConnection", mock.Anything, "primary").Return(conn, nil)
	return resolver
}

func TestGormEmployeeRepository_SaveWithExplicitID_SyncsIdentity(t *testing.T) {
	ctx := context.Background()
	conn := new(MockDBConnection)
	conn.On("ExecuteUpsert", ctx, mock.Anything, entity.EmployeeTableName, []string{"id"}, []string(nil)).Return(int64(1), nil)
	conn.On("SyncIdentity", ctx, entity.EmployeeTableName, "id").Return(nil)

	repo := repository.NewGormEmployeeRepository(resolverFor(conn), "primary")
	require.NoError(t, repo.Save(ctx, &entity.Employee{ID: 10}))
	conn.AssertExpectations(t)
}

func TestGormEmployeeRepository_SaveExistingRow_SkipsIdentitySync(t *testing.T) {
	ctx := context.Background()
	conn := new(MockDBConnection)
	conn.On("ExecuteUpsert", ctx, mock.Anything, entity.EmployeeTableName, []string{"id"}, []string(nil)).Return(int64(0), nil)

	repo := repository.NewGormEmployeeRepository(resolverFor(conn), "primary")
	require.NoError(t, repo.Save(ctx, &entity.Employee{ID: 10}))
	conn.AssertExpectations(t)
	conn.AssertNotCalled(t, "SyncIdentity", mock.Anything, mock.Anything, mock.Anything)
}

func TestGormEmployeeRepository_SaveNew_SkipsIdentitySync(t *testing.T) {
	ctx := context.Background()
	conn := new(MockDBConnection)
	conn.On("ExecuteUpdate", ctx, mock.Anything, database.OperationCreate, entity.EmployeeTableName, map[string]interface{}(nil)).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Employee).ID = 1 }).
		Return(int64(1), nil)

	repo := repository.NewGormEmployeeRepository(resolverFor(conn), "primary")
	e := &entity.Employee{}
	require.NoError(t, repo.Save(ctx, e))
	assert.Equal(t, int64(1), e.ID)
	conn.AssertNotCalled(t, "SyncIdentity", mock.Anything, mock.Anything, mock.Anything)
}

func TestGormEmployeeRepository_SaveWithExplicitID_SyncError(t *testing.T) {
	ctx := context.Background()
	syncErr := errors.New("permission denied for sequence employee_id_seq")
	conn := new(MockDBConnection)
	conn.On("ExecuteUpsert", ctx, mock.Anything, entity.EmployeeTableName, []string{"id"}, []string(nil)).Return(int64(1), nil)
	conn.On("SyncIdentity", ctx, entity.EmployeeTableName, "id").Return(syncErr)

	repo := repository.NewGormEmployeeRepository(resolverFor(conn), "primary")
	err := repo.Save(ctx, &entity.Employee{ID: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, syncErr)
	assert.Contains(t, err.Error(), "failed to advance ID sequence")
}

func TestGormEmployeeRepository_FindByID_UsesEqualityQuery(t *testing.T) {
	ctx := context.Background()
	conn := new(MockDBConnection)
	conn.On("ExecuteQuery", ctx, mock.Anything, map[string]interface{}{"id": int64(3)}).
		Run(func(args mock.Arguments) {
			found := args.Get(1).(*[]entity.Employee)
			*found = append(*found, entity.Employee{ID: 3})
		}).
		Return(nil)

	repo := repository.NewGormEmployeeRepository(resolverFor(conn), "primary")
	e, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.ID)
	conn.AssertExpectations(t)
}
