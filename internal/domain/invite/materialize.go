package invite

import (
	"time"

	"github.com/romitgit/tc-project-service/internal/model"
)

// materializer builds invite records for one request.
type materializer struct {
	projectID int64
	role      model.ProjectMemberRole
	status    model.InviteStatus
	callerID  int64
	now       time.Time
}

func newMaterializer(projectID int64, caller *model.Caller, role model.ProjectMemberRole, now time.Time) *materializer {
	return &materializer{
		projectID: projectID,
		role:      role,
		status:    inviteStatus(caller, role),
		callerID:  caller.UserID,
		now:       now,
	}
}

// inviteStatus returns requested for copilot invites from callers without elevated roles, pending otherwise.
func inviteStatus(caller *model.Caller, role model.ProjectMemberRole) model.InviteStatus {
	if IsCopilotTier(role) && !caller.HasAnyRole(ElevatedUserRoles...) {
		return model.InviteStatusRequested
	}
	return model.InviteStatusPending
}

func (m *materializer) base() *model.ProjectMemberInvite {
	return &model.ProjectMemberInvite{
		ProjectID: m.projectID,
		Role:      m.role,
		Status:    m.status,
		CreatedBy: m.callerID,
		UpdatedBy: m.callerID,
		CreatedAt: m.now,
		UpdatedAt: m.now,
	}
}

func (m *materializer) forUser(userID int64) *model.ProjectMemberInvite {
	inv := m.base()
	inv.UserID = &userID
	return inv
}

func (m *materializer) forRegistered(c registeredCandidate) *model.ProjectMemberInvite {
	inv := m.base()
	userID := c.user.ID
	email := normalizeEmail(c.user.Email)
	inv.UserID = &userID
	inv.Email = &email
	return inv
}

func (m *materializer) forEmail(email string) *model.ProjectMemberInvite {
	inv := m.base()
	lower := normalizeEmail(email)
	inv.Email = &lower
	return inv
}
