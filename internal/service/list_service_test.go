package service

import (
	"context"
	"testing"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/filter"
	"flowcrm-data/internal/models"
	"flowcrm-data/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticLinks struct{}

func (staticLinks) ResolveIndirectIDs(context.Context, string, string, string, string, string) ([]string, error) {
	return []string{"agent-1"}, nil
}

// capturingRecords records the query it was asked to run and returns a
// fixed page.
type capturingRecords struct {
	lastQuery query.ExecutableQuery
	lastPage  int
	lastSize  int
}

func (r *capturingRecords) ExecuteList(_ context.Context, _ string, q query.ExecutableQuery, page, size int) ([]domain.Record, int, error) {
	r.lastQuery = q
	r.lastPage = page
	r.lastSize = size
	return []domain.Record{{ID: "rec-1", EntityType: domain.EntityConversations}}, 1, nil
}

func newTestListService(t *testing.T) (*ListService, *capturingRecords) {
	t.Helper()
	reg := filter.NewRegistry()
	filter.RegisterBuiltins(reg, staticLinks{})
	records := &capturingRecords{}
	return NewListService(filter.NewPipeline(reg, zap.NewNop()), records, zap.NewNop()), records
}

func TestListService_BuildsScopedQuery(t *testing.T) {
	svc, records := newTestListService(t)

	user := domain.UserContext{UserID: "u1", TenantID: "t1", TeamIDs: []string{"team-a"}}
	resp, err := svc.List(context.Background(), models.ListRequest{
		EntityType:    domain.EntityConversations,
		PrimaryFilter: "pending",
	}, user)
	require.NoError(t, err)

	assert.Contains(t, records.lastQuery.SQL, "c.tenant_id = $1")
	assert.Contains(t, records.lastQuery.SQL, "c.status = ")
	// defaults applied
	assert.Equal(t, 1, records.lastPage)
	assert.Equal(t, 20, records.lastSize)
	assert.Equal(t, 1, resp.Pagination.Count)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "rec-1", resp.Items[0].ID)
}

func TestListService_UnknownEntity(t *testing.T) {
	svc, _ := newTestListService(t)

	_, err := svc.List(context.Background(), models.ListRequest{EntityType: "invoices"}, domain.UserContext{
		UserID: "u1", TenantID: "t1",
	})
	assert.Error(t, err)
}

func TestListService_UnknownFilterPropagates(t *testing.T) {
	svc, _ := newTestListService(t)

	_, err := svc.List(context.Background(), models.ListRequest{
		EntityType:  domain.EntityConversations,
		BoolFilters: []string{"no-such-filter"},
	}, domain.UserContext{UserID: "u1", TenantID: "t1", TeamIDs: []string{"team-a"}})
	assert.ErrorIs(t, err, filter.ErrFilterNotFound)
}
