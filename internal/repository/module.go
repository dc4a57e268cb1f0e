package repository

import (
	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/adapter/database"
	dbconfig "github.com/k8poc/backend/internal/adapter/database/config"
	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
)

// EmployeeRepositoryParams are the Fx dependencies of NewEmployeeRepository.
type EmployeeRepositoryParams struct {
	fx.In
	Cfg      *config.Config
	Resolver database.DBConnectionResolver
}

// NewEmployeeRepository returns the repository for the primary datasource.
// A "dummy" datasource gets the in-memory implementation.
func NewEmployeeRepository(p EmployeeRepositoryParams) (EmployeeRepository, error) {
	name := p.Cfg.App.Datasource.Primary
	dbCfg, err := dbconfig.Lookup(p.Cfg.App.DatabaseConfigs, name)
	if err != nil {
		return nil, err
	}
	if dbCfg.Type == dbconfig.TypeDummy {
		logger.Infof("Datasource '%s' is of type '%s'. Using in-memory EmployeeRepository.", name, dbCfg.Type)
		return NewInMemoryEmployeeRepository(), nil
	}
	logger.Debugf("Using GORM EmployeeRepository on datasource '%s' (%s).", name, dbCfg.Type)
	return NewGormEmployeeRepository(p.Resolver, name), nil
}

// Module provides EmployeeRepository.
var Module = fx.Options(
	fx.Provide(NewEmployeeRepository),
)
