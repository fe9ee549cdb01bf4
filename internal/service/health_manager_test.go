package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedResource(repo *repository.MemoryResourcesRepo, id, endpoint string) {
	res := domain.MonitoredResource{
		ResourceID:            id,
		TenantID:              "t1",
		ResourceName:          "resource-" + id,
		IsActive:              true,
		LastHealthCheckStatus: domain.StatusUnknown,
	}
	if endpoint != "" {
		res.Endpoint = sql.NullString{String: endpoint, Valid: true}
	}
	repo.Seed(res)
}

func TestCheckByID_HealthyEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := repository.NewMemoryResourcesRepo()
	seedResource(repo, "r1", srv.URL)

	m := NewHealthCheckManager(repo, NewHTTPProber(2*time.Second, zap.NewNop()), zap.NewNop())
	result, err := m.CheckByID(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusHealthy, result.Status)
	assert.Equal(t, "HTTP 200", result.Message)
	assert.GreaterOrEqual(t, result.ResponseTimeMs, int64(0))
	assert.False(t, result.CheckedAt.IsZero())
}

func TestCheckByID_ServerErrorIsUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo := repository.NewMemoryResourcesRepo()
	seedResource(repo, "r1", srv.URL)

	m := NewHealthCheckManager(repo, NewHTTPProber(2*time.Second, zap.NewNop()), zap.NewNop())
	result, err := m.CheckByID(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnhealthy, result.Status)
	assert.Equal(t, "unexpected status HTTP 500", result.Message)
}

func TestCheckByID_UnreachableEndpoint(t *testing.T) {
	repo := repository.NewMemoryResourcesRepo()
	// closed port, connection refused
	seedResource(repo, "r1", "http://127.0.0.1:1")

	m := NewHealthCheckManager(repo, NewHTTPProber(time.Second, zap.NewNop()), zap.NewNop())
	result, err := m.CheckByID(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnhealthy, result.Status)
	assert.NotEmpty(t, result.Message)
}

func TestCheckByID_NoEndpointIsUnknown(t *testing.T) {
	repo := repository.NewMemoryResourcesRepo()
	seedResource(repo, "r1", "")

	m := NewHealthCheckManager(repo, NewHTTPProber(time.Second, zap.NewNop()), zap.NewNop())
	result, err := m.CheckByID(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusUnknown, result.Status)
	assert.Equal(t, "no endpoint configured", result.Message)
}

func TestCheckByID_NotFound(t *testing.T) {
	repo := repository.NewMemoryResourcesRepo()

	m := NewHealthCheckManager(repo, NewHTTPProber(time.Second, zap.NewNop()), zap.NewNop())
	_, err := m.CheckByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrResourceNotFound)
}
