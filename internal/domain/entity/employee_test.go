package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/k8poc/backend/internal/domain/entity"
)

func TestEmployee(t *testing.T) {
	assert.Equal(t, "employee", entity.Employee{}.TableName())
	assert.True(t, entity.Employee{}.IsNew())
	assert.False(t, entity.Employee{ID: 3}.IsNew())
}
