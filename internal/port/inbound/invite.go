package inbound

import (
	"context"

	"github.com/romitgit/tc-project-service/internal/model"
)

// --- Request/Response Types ---

// CreateInvitesInput represents a bulk request to invite users into a project.
type CreateInvitesInput struct {
	UserIDs []int64                 `json:"userIds"`
	Emails  []string                `json:"emails"`
	Role    model.ProjectMemberRole `json:"role" binding:"required"`
}

// CreateInvitesOutput separates created invites from itemized failures.
type CreateInvitesOutput struct {
	Success []*model.ProjectMemberInvite `json:"success"`
	Failed  []model.InviteFailure        `json:"failed,omitempty"`
}

// HasFailures returns true if at least one candidate was rejected.
func (o *CreateInvitesOutput) HasFailures() bool {
	return o != nil && len(o.Failed) > 0
}

// ListInvitesOutput lists the open invites of a project.
type ListInvitesOutput struct {
	Invites []*model.ProjectMemberInvite `json:"invites"`
}

// --- Domain Interface ---

// InviteDomain defines the project member invite domain service interface.
type InviteDomain interface {
	// CreateInvites reconciles and creates invites for a project.
	CreateInvites(ctx context.Context, caller *model.Caller, projectID int64, in *CreateInvitesInput) (*CreateInvitesOutput, error)

	// ListOpenInvites lists pending and requested invites of a project.
	ListOpenInvites(ctx context.Context, projectID int64) (*ListInvitesOutput, error)
}
