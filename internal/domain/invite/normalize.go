package invite

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/inbound"
)

var validate = validator.New()

// normalizedRequest is a validated invite request with in-request duplicates collapsed.
type normalizedRequest struct {
	role    model.ProjectMemberRole
	userIDs []int64
	emails  []string
}

// normalizeRequest validates the shape of a raw request and applies the email role restriction.
// Emails requested for a non-customer role are returned as failures and dropped; user ids still proceed.
func normalizeRequest(in *inbound.CreateInvitesInput, maxEmails int) (*normalizedRequest, []model.InviteFailure, error) {
	if in == nil {
		return nil, nil, ErrInvalidRequest
	}
	if !in.Role.IsValid() {
		return nil, nil, ErrInvalidRole
	}

	req := &normalizedRequest{role: in.Role}

	seenIDs := make(map[int64]bool, len(in.UserIDs))
	for _, id := range in.UserIDs {
		if id <= 0 {
			return nil, nil, ErrInvalidUserID
		}
		if seenIDs[id] {
			continue
		}
		seenIDs[id] = true
		req.userIDs = append(req.userIDs, id)
	}

	seenEmails := make(map[string]bool, len(in.Emails))
	for _, raw := range in.Emails {
		email := strings.TrimSpace(raw)
		if err := validate.Var(email, "required,email"); err != nil {
			return nil, nil, ErrInvalidEmail
		}
		key := normalizeEmail(email)
		if seenEmails[key] {
			continue
		}
		seenEmails[key] = true
		req.emails = append(req.emails, email)
	}

	if len(req.userIDs) == 0 && len(req.emails) == 0 {
		return nil, nil, ErrNoCandidates
	}
	if maxEmails > 0 && len(req.emails) > maxEmails {
		return nil, nil, ErrTooManyEmails
	}

	var failed []model.InviteFailure
	if len(req.emails) > 0 && !IsCustomerTier(req.role) {
		for _, email := range req.emails {
			failed = append(failed, emailFailure(email, msgEmailsCustomerOnly))
		}
		req.emails = nil
	}

	return req, failed, nil
}

func emailFailure(email, message string) model.InviteFailure {
	return model.InviteFailure{Email: &email, Message: message}
}

func userFailure(userID int64, message string) model.InviteFailure {
	return model.InviteFailure{UserID: &userID, Message: message}
}
