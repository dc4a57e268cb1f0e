package gorm

import (
	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/adapter/database"
)

// Module provides the connection resolver. Concrete DB providers come from the dialect sub-packages.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGormDBConnectionResolver,
		fx.As(new(database.DBConnectionResolver)),
	)),
)
