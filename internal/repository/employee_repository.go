// Package repository provides persistence for Employee records.
package repository

import (
	"context"
	"errors"

	"github.com/k8poc/backend/internal/domain/entity"
)

// ErrEmployeeNotFound is returned when no employee has the requested ID.
var ErrEmployeeNotFound = errors.New("employee not found")

// ErrNilEmployee is returned by Save when given a nil employee.
var ErrNilEmployee = errors.New("employee must not be nil")

// EmployeeRepository is the CRUD contract over Employee keyed by int64.
type EmployeeRepository interface {
	// Save inserts e when e.ID is zero and assigns the generated ID. Otherwise it stores e under its ID.
	Save(ctx context.Context, e *entity.Employee) error
	// FindByID returns ErrEmployeeNotFound when no row has the ID.
	FindByID(ctx context.Context, id int64) (*entity.Employee, error)
	// FindAll returns every employee ordered by ID ascending.
	FindAll(ctx context.Context) ([]entity.Employee, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	// DeleteByID returns ErrEmployeeNotFound when no row has the ID.
	DeleteByID(ctx context.Context, id int64) error
}
