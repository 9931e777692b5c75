package invite

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/romitgit/tc-project-service/internal/infra/events"
	"github.com/romitgit/tc-project-service/internal/model"
)

type fakeInviteRecorder struct {
	mu       sync.Mutex
	created  []string
	failures []string
}

func (f *fakeInviteRecorder) RecordInviteCreated(role, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, role+"/"+status)
}

func (f *fakeInviteRecorder) RecordInviteFailure(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, reason)
}

func TestMetricsHandler(t *testing.T) {
	rec := &fakeInviteRecorder{}
	bus := events.NewBus(zap.NewNop())
	bus.Register(NewMetricsHandler(rec))

	bus.PublishAll(context.Background(), []events.Event{
		NewInviteCreatedEvent(&model.ProjectMemberInvite{
			ID: 1, ProjectID: 100, UserID: ptr(int64(7)),
			Role: model.ProjectMemberRoleCopilot, Status: model.InviteStatusRequested,
		}, "req-1"),
		NewInviteRejectedEvent(100, model.ProjectMemberRoleManager, model.InviteFailure{
			UserID: ptr(int64(8)), Message: msgCannotBeManager,
		}, "req-1"),
		NewInviteRejectedEvent(100, model.ProjectMemberRoleCopilot, model.InviteFailure{
			Email: ptr("a@b.com"), Message: msgEmailsCustomerOnly,
		}, "req-1"),
	})

	assert.Equal(t, []string{"copilot/requested"}, rec.created)
	assert.Equal(t, []string{ReasonNotManager, ReasonEmailCustomerOnly}, rec.failures)
}

func TestLoggingHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bus := events.NewBus(zap.NewNop())
	bus.Register(NewLoggingHandler(zap.New(core)))

	bus.Publish(context.Background(), NewInviteCreatedEvent(&model.ProjectMemberInvite{
		ID: 5, ProjectID: 100, Email: ptr("new@example.com"),
		Role: model.ProjectMemberRoleCustomer, Status: model.InviteStatusPending,
	}, "req-2"))

	entries := logs.FilterMessage("invite created").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "100", fields["project_id"])
		assert.Equal(t, "req-2", fields["correlation_id"])
		assert.Equal(t, int64(5), fields["invite_id"])
	}
}
