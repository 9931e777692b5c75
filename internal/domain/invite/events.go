package invite

import (
	"strconv"

	"github.com/romitgit/tc-project-service/internal/infra/events"
	"github.com/romitgit/tc-project-service/internal/model"
)

// Event type constants.
const (
	InviteCreatedType  = "ProjectMemberInviteCreated"
	InviteRejectedType = "ProjectMemberInviteRejected"
)

// Bus topics.
const (
	TopicInviteCreated = "project.member.invite.created"
)

const aggregateProject = "Project"

// InviteCreatedEvent is emitted in-process for every persisted invite.
type InviteCreatedEvent struct {
	events.BaseEvent

	// Invite is the persisted record.
	Invite *model.ProjectMemberInvite `json:"invite"`
}

// NewInviteCreatedEvent creates a new InviteCreatedEvent.
func NewInviteCreatedEvent(invite *model.ProjectMemberInvite, correlationID string) *InviteCreatedEvent {
	return &InviteCreatedEvent{
		BaseEvent: events.NewBaseEvent(InviteCreatedType, strconv.FormatInt(invite.ProjectID, 10), aggregateProject, correlationID),
		Invite:    invite,
	}
}

// InviteRejectedEvent is emitted in-process for every itemized failure.
type InviteRejectedEvent struct {
	events.BaseEvent

	Role    model.ProjectMemberRole `json:"role"`
	Failure model.InviteFailure     `json:"failure"`
}

// NewInviteRejectedEvent creates a new InviteRejectedEvent.
func NewInviteRejectedEvent(projectID int64, role model.ProjectMemberRole, failure model.InviteFailure, correlationID string) *InviteRejectedEvent {
	return &InviteRejectedEvent{
		BaseEvent: events.NewBaseEvent(InviteRejectedType, strconv.FormatInt(projectID, 10), aggregateProject, correlationID),
		Role:      role,
		Failure:   failure,
	}
}
