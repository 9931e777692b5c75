package invite

import (
	"context"

	"go.uber.org/zap"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/utils/requestctx"
)

// Failure reasons carried on InviteRejectedEvent.
const (
	ReasonEmailCustomerOnly = "email_customer_only"
	ReasonNotManager        = "not_manager"
	ReasonEmailLookupFailed = "email_lookup_failed"
)

const taskInvitationEmailName = "invitation-email"

// dispatch notifies collaborators about the outcome of a committed request.
// Nothing here can fail the request.
func (d *Domain) dispatch(ctx context.Context, projectID int64, role model.ProjectMemberRole, records []*model.ProjectMemberInvite, failed []model.InviteFailure) {
	correlationID := requestctx.RequestID(ctx)
	// Records are committed; a client going away must not drop their events.
	ctx = context.WithoutCancel(ctx)

	for _, inv := range records {
		if d.bus != nil {
			d.bus.Publish(ctx, NewInviteCreatedEvent(inv, correlationID))
		}

		if err := d.publisher.Publish(ctx, TopicInviteCreated, inv, correlationID); err != nil {
			d.logger.Warn("failed to publish invite created",
				zap.Int64("project_id", projectID),
				zap.Int64("invite_id", inv.ID),
				zap.String("correlation_id", correlationID),
				zap.Error(err),
			)
		}

		if needsInvitationEmail(inv) {
			d.sendInvitation(projectID, inv, correlationID)
		}
	}

	if d.bus != nil {
		for _, f := range failed {
			d.bus.Publish(ctx, NewInviteRejectedEvent(projectID, role, f, correlationID))
		}
	}
}

// needsInvitationEmail reports whether the invitee has no account and the invite needs no approval.
func needsInvitationEmail(inv *model.ProjectMemberInvite) bool {
	return inv.UserID == nil && inv.Email != nil && inv.Status == model.InviteStatusPending
}

// sendInvitation hands the email to the background runner. The task outlives the request
// and its outcome is only logged.
func (d *Domain) sendInvitation(projectID int64, inv *model.ProjectMemberInvite, correlationID string) {
	withCorrelation := func(ctx context.Context) context.Context {
		return requestctx.WithRequestID(ctx, correlationID)
	}

	started := d.runner.Go(taskInvitationEmailName, withCorrelation, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.cfg.EmailDispatchTimeout)
		defer cancel()
		return d.mailer.SendInvitation(ctx, projectID, inv)
	})
	if !started {
		d.logger.Warn("invitation email not scheduled",
			zap.Int64("project_id", projectID),
			zap.Int64("invite_id", inv.ID),
			zap.String("correlation_id", correlationID),
		)
	}
}

// FailureReason classifies an itemized failure for metrics.
func FailureReason(f model.InviteFailure) string {
	switch f.Message {
	case msgEmailsCustomerOnly:
		return ReasonEmailCustomerOnly
	case msgCannotBeManager:
		return ReasonNotManager
	default:
		return ReasonEmailLookupFailed
	}
}
