package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/romitgit/tc-project-service/internal/model"
)

// ErrCacheMiss is returned by cache ports when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// InviteDatabasePort defines project member invite persistence operations.
type InviteDatabasePort interface {
	// ListOpenByProject lists pending and requested invites of a project.
	ListOpenByProject(ctx context.Context, projectID int64) ([]*model.ProjectMemberInvite, error)

	// Create persists a new invite and assigns its ID.
	Create(ctx context.Context, invite *model.ProjectMemberInvite) error
}

// MemberDatabasePort defines read access to project membership.
type MemberDatabasePort interface {
	// ListByProject lists the current members of a project.
	ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectMember, error)
}

// IdentityPort defines lookups against the external identity service.
type IdentityPort interface {
	// LookupUserRoles returns the platform roles of a user.
	LookupUserRoles(ctx context.Context, userID int64) ([]model.UserRole, error)

	// LookupUsersByEmail returns the registered accounts matching the given emails.
	LookupUsersByEmail(ctx context.Context, emails []string) ([]*model.IdentityUser, error)
}

// RoleCachePort caches identity role lookups.
type RoleCachePort interface {
	// GetRoles returns cached roles or ErrCacheMiss.
	GetRoles(ctx context.Context, userID int64) ([]model.UserRole, error)

	// SetRoles stores roles for a user.
	SetRoles(ctx context.Context, userID int64, roles []model.UserRole) error
}

// EventPublisherPort publishes events to the message bus.
type EventPublisherPort interface {
	// Publish publishes payload on topic, tagged with the originating request's correlation id.
	Publish(ctx context.Context, topic string, payload any, correlationID string) error
}

// InvitationMailerPort sends invitation emails to unregistered invitees.
type InvitationMailerPort interface {
	// SendInvitation dispatches the invitation email for an invite.
	SendInvitation(ctx context.Context, projectID int64, invite *model.ProjectMemberInvite) error
}

// RateLimiterPort throttles requests within a sliding window.
type RateLimiterPort interface {
	// Allow records a hit for key and reports whether it fits within limit.
	// remaining is the number of hits still available in the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)
}
