package repository

import (
	"context"
	"fmt"

	"github.com/k8poc/backend/internal/adapter/database"
	"github.com/k8poc/backend/internal/domain/entity"
	"github.com/k8poc/backend/internal/exception"
)

const (
	moduleName = "repository"
	idColumn   = "id"
)

// GormEmployeeRepository implements EmployeeRepository over a named database connection.
type GormEmployeeRepository struct {
	dbResolver database.DBConnectionResolver
	// dbName is the connection used by this repository (e.g., "primary").
	dbName string
}

// NewGormEmployeeRepository creates a repository that resolves dbName on every call.
func NewGormEmployeeRepository(dbResolver database.DBConnectionResolver, dbName string) *GormEmployeeRepository {
	return &GormEmployeeRepository{
		dbResolver: dbResolver,
		dbName:     dbName,
	}
}

// getDBConnection resolves the latest healthy connection.
func (r *GormEmployeeRepository) getDBConnection(ctx context.Context) (database.DBConnection, error) {
	conn, err := r.dbResolver.ResolveDBConnection(ctx, r.dbName)
	if err != nil {
		return nil, exception.NewAppError(moduleName, fmt.Sprintf("failed to resolve DB connection '%s'", r.dbName), err)
	}
	return conn, nil
}

func (r *GormEmployeeRepository) Save(ctx context.Context, e *entity.Employee) error {
	const op = "GormEmployeeRepository.Save"
	if e == nil {
		return ErrNilEmployee
	}

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return err
	}

	if e.IsNew() {
		if _, err := conn.ExecuteUpdate(ctx, e, database.OperationCreate, entity.EmployeeTableName, nil); err != nil {
			return exception.NewAppError(op, "failed to insert employee", err)
		}
		return nil
	}

	// Employee has no columns besides its key, so saving a known ID only has to make sure the row exists.
	rowsAffected, err := conn.ExecuteUpsert(ctx, e, entity.EmployeeTableName, []string{idColumn}, nil)
	if err != nil {
		return exception.NewAppError(op, fmt.Sprintf("failed to save employee (ID: %d)", e.ID), err)
	}
	if rowsAffected > 0 {
		// A later Save of a new employee must not be handed an ID at or below this one.
		if err := conn.SyncIdentity(ctx, entity.EmployeeTableName, idColumn); err != nil {
			return exception.NewAppError(op, fmt.Sprintf("failed to advance ID sequence after saving employee (ID: %d)", e.ID), err)
		}
	}
	return nil
}

func (r *GormEmployeeRepository) FindByID(ctx context.Context, id int64) (*entity.Employee, error) {
	const op = "GormEmployeeRepository.FindByID"
	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	var found []entity.Employee
	if err := conn.ExecuteQuery(ctx, &found, map[string]interface{}{idColumn: id}); err != nil {
		return nil, exception.NewAppError(op, fmt.Sprintf("failed to find employee (ID: %d)", id), err)
	}
	if len(found) == 0 {
		return nil, ErrEmployeeNotFound
	}
	return &found[0], nil
}

func (r *GormEmployeeRepository) FindAll(ctx context.Context) ([]entity.Employee, error) {
	const op = "GormEmployeeRepository.FindAll"
	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	employees := []entity.Employee{}
	if err := conn.ExecuteQueryAdvanced(ctx, &employees, nil, "id ASC", 0); err != nil {
		return nil, exception.NewAppError(op, "failed to list employees", err)
	}
	return employees, nil
}

func (r *GormEmployeeRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const op = "GormEmployeeRepository.ExistsByID"
	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return false, err
	}

	count, err := conn.Count(ctx, &entity.Employee{}, map[string]interface{}{idColumn: id})
	if err != nil {
		return false, exception.NewAppError(op, fmt.Sprintf("failed to check employee (ID: %d)", id), err)
	}
	return count > 0, nil
}

func (r *GormEmployeeRepository) Count(ctx context.Context) (int64, error) {
	const op = "GormEmployeeRepository.Count"
	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return 0, err
	}

	count, err := conn.Count(ctx, &entity.Employee{}, nil)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return 0, exception.NewAppError(op, fmt.Sprintf("table '%s' does not exist; migrations have not run", entity.EmployeeTableName), err)
		}
		return 0, exception.NewAppError(op, "failed to count employees", err)
	}
	return count, nil
}

func (r *GormEmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	const op = "GormEmployeeRepository.DeleteByID"
	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return err
	}

	rowsAffected, err := conn.ExecuteUpdate(ctx, &entity.Employee{}, database.OperationDelete, entity.EmployeeTableName, map[string]interface{}{idColumn: id})
	if err != nil {
		return exception.NewAppError(op, fmt.Sprintf("failed to delete employee (ID: %d)", id), err)
	}
	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

var _ EmployeeRepository = (*GormEmployeeRepository)(nil)
