package invite

import "errors"

// Domain errors for invite module.
var (
	// Request errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidProjectID = errors.New("invalid project id")
	ErrNoCandidates     = errors.New("either user ids or emails are required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidUserID    = errors.New("user ids must be positive integers")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrTooManyEmails    = errors.New("too many emails in one request")

	// Permission errors
	ErrMissingCaller = errors.New("caller is not authenticated")
	ErrForbiddenRole = errors.New("you are not allowed to invite user as")

	// Infrastructure errors
	ErrSnapshotFailed   = errors.New("failed to load project state")
	ErrRoleLookupFailed = errors.New("failed to look up user roles")
	ErrPersistFailed    = errors.New("failed to create invites")
)

// Itemized failure messages.
const (
	msgEmailsCustomerOnly = "emails can only be used for " + string(roleCustomerTier)
	msgCannotBeManager    = "cannot be added with a manager role to the project"
)
