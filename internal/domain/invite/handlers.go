package invite

import (
	"context"

	"go.uber.org/zap"

	"github.com/romitgit/tc-project-service/internal/infra/events"
)

// InviteRecorder receives invite outcome counts.
type InviteRecorder interface {
	RecordInviteCreated(role, status string)
	RecordInviteFailure(reason string)
}

// NewMetricsHandler returns a bus handler that counts created and rejected invites.
func NewMetricsHandler(recorder InviteRecorder) events.Handler {
	return events.NewHandlerFunc(
		[]string{InviteCreatedType, InviteRejectedType},
		func(_ context.Context, event events.Event) error {
			switch e := event.(type) {
			case *InviteCreatedEvent:
				recorder.RecordInviteCreated(string(e.Invite.Role), string(e.Invite.Status))
			case *InviteRejectedEvent:
				recorder.RecordInviteFailure(FailureReason(e.Failure))
			}
			return nil
		},
	)
}

// NewLoggingHandler returns a bus handler that debug-logs invite outcomes.
func NewLoggingHandler(logger *zap.Logger) events.Handler {
	log := logger.Named("invite-events")
	return events.NewHandlerFunc(
		[]string{InviteCreatedType, InviteRejectedType},
		func(_ context.Context, event events.Event) error {
			fields := []zap.Field{
				zap.String("event_id", event.EventID().String()),
				zap.String("project_id", event.AggregateID()),
				zap.String("correlation_id", event.CorrelationID()),
			}
			switch e := event.(type) {
			case *InviteCreatedEvent:
				log.Debug("invite created", append(fields,
					zap.Int64("invite_id", e.Invite.ID),
					zap.String("role", string(e.Invite.Role)),
					zap.String("status", string(e.Invite.Status)),
				)...)
			case *InviteRejectedEvent:
				log.Debug("invite rejected", append(fields,
					zap.String("subject", e.Failure.Subject()),
					zap.String("reason", FailureReason(e.Failure)),
				)...)
			}
			return nil
		},
	)
}
