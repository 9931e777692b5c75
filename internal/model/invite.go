package model

import (
	"strconv"
	"strings"
	"time"
)

// ProjectMemberRole represents the role a member holds inside a project.
type ProjectMemberRole string

const (
	ProjectMemberRoleCustomer          ProjectMemberRole = "customer"
	ProjectMemberRoleObserver          ProjectMemberRole = "observer"
	ProjectMemberRoleCopilot           ProjectMemberRole = "copilot"
	ProjectMemberRoleManager           ProjectMemberRole = "manager"
	ProjectMemberRoleAccountManager    ProjectMemberRole = "account_manager"
	ProjectMemberRoleProgramManager    ProjectMemberRole = "program_manager"
	ProjectMemberRoleAccountExecutive  ProjectMemberRole = "account_executive"
	ProjectMemberRoleSolutionArchitect ProjectMemberRole = "solution_architect"
	ProjectMemberRoleProjectManager    ProjectMemberRole = "project_manager"
)

// IsValid checks if the role is valid.
func (r ProjectMemberRole) IsValid() bool {
	switch r {
	case ProjectMemberRoleCustomer, ProjectMemberRoleObserver, ProjectMemberRoleCopilot,
		ProjectMemberRoleManager, ProjectMemberRoleAccountManager, ProjectMemberRoleProgramManager,
		ProjectMemberRoleAccountExecutive, ProjectMemberRoleSolutionArchitect, ProjectMemberRoleProjectManager:
		return true
	default:
		return false
	}
}

// UserRole is a platform-wide role held by a user in the identity service.
type UserRole string

const (
	UserRoleAdministrator          UserRole = "administrator"
	UserRoleConnectAdmin           UserRole = "Connect Admin"
	UserRoleConnectManager         UserRole = "Connect Manager"
	UserRoleConnectAccountManager  UserRole = "Connect Account Manager"
	UserRoleConnectCopilotManager  UserRole = "Connect Copilot Manager"
	UserRoleConnectCopilot         UserRole = "Connect Copilot"
	UserRoleBusinessDevelopmentRep UserRole = "Business Development Representative"
	UserRolePresales               UserRole = "Presales"
	UserRoleAccountExecutive       UserRole = "Account Executive"
	UserRoleProgramManager         UserRole = "Program Manager"
	UserRoleSolutionArchitect      UserRole = "Solution Architect"
	UserRoleProjectManager         UserRole = "Project Manager"
	UserRoleTopcoderUser           UserRole = "Topcoder User"
)

// InviteStatus represents the lifecycle state of a project member invite.
type InviteStatus string

const (
	InviteStatusPending         InviteStatus = "pending"
	InviteStatusRequested       InviteStatus = "requested"
	InviteStatusAccepted        InviteStatus = "accepted"
	InviteStatusRefused         InviteStatus = "refused"
	InviteStatusRequestRejected InviteStatus = "request_rejected"
	InviteStatusRequestApproved InviteStatus = "request_approved"
	InviteStatusCanceled        InviteStatus = "canceled"
)

// OpenInviteStatuses are the statuses that still block a new invite for the same identity.
var OpenInviteStatuses = []InviteStatus{InviteStatusPending, InviteStatusRequested}

// IsOpen returns true if the status still blocks a duplicate invite.
func (s InviteStatus) IsOpen() bool {
	return s == InviteStatusPending || s == InviteStatusRequested
}

// ProjectMember represents a user who already belongs to a project.
type ProjectMember struct {
	ID        int64             `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID int64             `json:"project_id" gorm:"not null;index"`
	UserID    int64             `json:"user_id" gorm:"not null"`
	Role      ProjectMemberRole `json:"role" gorm:"not null"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TableName returns the database table name.
func (ProjectMember) TableName() string {
	return "project_members"
}

// ProjectMemberInvite represents an invitation to join a project.
// Exactly one of UserID/Email identifies the invitee, or both when the email
// belongs to a registered account.
type ProjectMemberInvite struct {
	ID        int64             `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID int64             `json:"project_id" gorm:"not null;index"`
	UserID    *int64            `json:"user_id,omitempty"`
	Email     *string           `json:"email,omitempty"`
	Role      ProjectMemberRole `json:"role" gorm:"not null"`
	Status    InviteStatus      `json:"status" gorm:"not null;default:pending"`
	CreatedBy int64             `json:"created_by" gorm:"not null"`
	UpdatedBy int64             `json:"updated_by" gorm:"not null"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// TableName returns the database table name.
func (ProjectMemberInvite) TableName() string {
	return "project_member_invites"
}

// IsOpen returns true if the invite is still pending or awaiting approval.
func (i *ProjectMemberInvite) IsOpen() bool {
	return i.Status.IsOpen()
}

// InviteFailure is an itemized per-candidate rejection.
type InviteFailure struct {
	UserID  *int64  `json:"user_id,omitempty"`
	Email   *string `json:"email,omitempty"`
	Message string  `json:"message"`
}

// Subject returns a printable identity of the rejected candidate.
func (f InviteFailure) Subject() string {
	if f.Email != nil {
		return *f.Email
	}
	if f.UserID != nil {
		return strconv.FormatInt(*f.UserID, 10)
	}
	return ""
}

// IdentityUser is a registered account returned by the identity service.
type IdentityUser struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Handle string `json:"handle,omitempty"`
}

// Caller describes the authenticated user issuing a request.
type Caller struct {
	UserID int64      `json:"user_id"`
	Handle string     `json:"handle"`
	Email  string     `json:"email"`
	Roles  []UserRole `json:"roles"`
}

// HasAnyRole returns true if the caller holds at least one of the given roles.
func (c *Caller) HasAnyRole(roles ...UserRole) bool {
	if c == nil {
		return false
	}
	for _, have := range c.Roles {
		for _, want := range roles {
			if strings.EqualFold(string(have), string(want)) {
				return true
			}
		}
	}
	return false
}
