package identity

import (
	"context"
	"time"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

// LookupRecorder receives the outcome and latency of identity calls.
type LookupRecorder interface {
	RecordIdentityLookup(operation string, err error, duration time.Duration)
}

// InstrumentedIdentity times every call to the wrapped IdentityPort.
type InstrumentedIdentity struct {
	inner    outbound.IdentityPort
	recorder LookupRecorder
}

// NewInstrumentedIdentity creates a new instrumented identity port.
func NewInstrumentedIdentity(inner outbound.IdentityPort, recorder LookupRecorder) *InstrumentedIdentity {
	return &InstrumentedIdentity{inner: inner, recorder: recorder}
}

// Compile-time interface check
var _ outbound.IdentityPort = (*InstrumentedIdentity)(nil)

func (i *InstrumentedIdentity) LookupUserRoles(ctx context.Context, userID int64) ([]model.UserRole, error) {
	start := time.Now()
	roles, err := i.inner.LookupUserRoles(ctx, userID)
	i.recorder.RecordIdentityLookup("roles", err, time.Since(start))
	return roles, err
}

func (i *InstrumentedIdentity) LookupUsersByEmail(ctx context.Context, emails []string) ([]*model.IdentityUser, error) {
	start := time.Now()
	users, err := i.inner.LookupUsersByEmail(ctx, emails)
	i.recorder.RecordIdentityLookup("users_by_email", err, time.Since(start))
	return users, err
}
