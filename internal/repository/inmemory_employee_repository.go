package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/k8poc/backend/internal/domain/entity"
)

// InMemoryEmployeeRepository keeps employees in a map. It backs the "dummy" datasource type.
type InMemoryEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[int64]entity.Employee
	nextID    int64
}

// NewInMemoryEmployeeRepository returns an empty repository whose first generated ID is 1.
func NewInMemoryEmployeeRepository() *InMemoryEmployeeRepository {
	return &InMemoryEmployeeRepository{
		employees: make(map[int64]entity.Employee),
		nextID:    1,
	}
}

func (r *InMemoryEmployeeRepository) Save(_ context.Context, e *entity.Employee) error {
	if e == nil {
		return ErrNilEmployee
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.IsNew() {
		e.ID = r.nextID
	}
	if e.ID >= r.nextID {
		r.nextID = e.ID + 1
	}
	r.employees[e.ID] = *e
	return nil
}

func (r *InMemoryEmployeeRepository) FindByID(_ context.Context, id int64) (*entity.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return &e, nil
}

func (r *InMemoryEmployeeRepository) FindAll(_ context.Context) ([]entity.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]entity.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *InMemoryEmployeeRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.employees[id]
	return ok, nil
}

func (r *InMemoryEmployeeRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.employees)), nil
}

func (r *InMemoryEmployeeRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

var _ EmployeeRepository = (*InMemoryEmployeeRepository)(nil)
