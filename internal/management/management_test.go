package management_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/domain/entity"
	"github.com/k8poc/backend/internal/exception"
	"github.com/k8poc/backend/internal/management"
	"github.com/k8poc/backend/internal/metrics"
	"github.com/k8poc/backend/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockEmployeeRepository is a testify mock of repository.EmployeeRepository.
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Save(ctx context.Context, e *entity.Employee) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id int64) (*entity.Employee, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*entity.Employee)
	return e, args.Error(1)
}

func (m *MockEmployeeRepository) FindAll(ctx context.Context) ([]entity.Employee, error) {
	args := m.Called(ctx)
	all, _ := args.Get(0).([]entity.Employee)
	return all, args.Error(1)
}

func (m *MockEmployeeRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmployeeRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ repository.EmployeeRepository = (*MockEmployeeRepository)(nil)

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	cfg := config.NewConfig().App.Management
	router := management.NewRouter(&cfg, management.NewHandler(repository.NewInMemoryEmployeeRepository()), nil)

	w := serve(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	cfg := config.NewConfig().App.Management
	repo := repository.NewInMemoryEmployeeRepository()
	require.NoError(t, repo.Save(context.Background(), &entity.Employee{}))
	router := management.NewRouter(&cfg, management.NewHandler(repo), nil)

	w := serve(router, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP","employees":1}`, w.Body.String())
}

func TestReady_DatasourceDown(t *testing.T) {
	cfg := config.NewConfig().App.Management
	repo := new(MockEmployeeRepository)
	repo.On("Count", mock.Anything).Return(int64(0),
		exception.NewAppError("repository", "failed to count employees", errors.New("dial tcp: connection refused")))
	router := management.NewRouter(&cfg, management.NewHandler(repo), nil)

	w := serve(router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","error":"failed to count employees"}`, w.Body.String())
	repo.AssertExpectations(t)
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := config.NewConfig().App.Management
	recorder := metrics.NewPrometheusRecorder()
	recorder.RecordRequest(context.Background(), http.MethodGet, "/", http.StatusOK, 0)

	router := management.NewRouter(&cfg, management.NewHandler(repository.NewInMemoryEmployeeRepository()), recorder.GetRegistry())

	w := serve(router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `http_requests_total{method="GET",route="/",status="200"} 1`))
}

func TestMetricsEndpoint_NotMountedWithoutRegistry(t *testing.T) {
	cfg := config.NewConfig().App.Management
	router := management.NewRouter(&cfg, management.NewHandler(repository.NewInMemoryEmployeeRepository()), nil)

	w := serve(router, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
