package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentavia/dentavia/internal/domain"
)

type fakeAuditRepo struct {
	mu      sync.Mutex
	created []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, entry)
	return nil
}

func (r *fakeAuditRepo) all() []*domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.AuditLog, len(r.created))
	copy(out, r.created)
	return out
}

func TestAuditLogAsyncPersistsAndCounts(t *testing.T) {
	repo := &fakeAuditRepo{}
	written := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_audit_written"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_audit_dropped"})
	svc := NewAuditService(repo, testLogger, written, dropped)

	userID := uuid.New()
	svc.LogAsync(context.Background(), AuditEntry{
		UserID:       userID,
		UserRole:     string(domain.RoleDoctor),
		Action:       string(domain.ActionUpdate),
		ResourceType: "/api/v1/appointments/:appointmentID/status",
		ResourceID:   uuid.NewString(),
		IPAddress:    "127.0.0.1",
		StatusCode:   200,
	})
	svc.LogAsync(context.Background(), AuditEntry{
		UserID:   userID,
		UserRole: string(domain.RoleDoctor),
		Action:   string(domain.ActionLogin),
	})
	svc.Shutdown()

	entries := repo.all()
	require.Len(t, entries, 2)
	assert.Equal(t, userID, entries[0].UserID)
	assert.Equal(t, domain.ActionUpdate, entries[0].Action)
	assert.Equal(t, float64(2), testutil.ToFloat64(written))
	assert.Equal(t, float64(0), testutil.ToFloat64(dropped))
}
