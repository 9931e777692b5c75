package invite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/romitgit/tc-project-service/internal/model"
)

// roleLookup pairs a user-id candidate with the roles fetched for it.
type roleLookup struct {
	userID int64
	roles  []model.UserRole
}

// registeredCandidate is a candidate email that belongs to an existing account.
type registeredCandidate struct {
	email string
	user  *model.IdentityUser
}

// emailResolution partitions candidate emails by whether an account already exists.
type emailResolution struct {
	registered   []registeredCandidate
	unregistered []string
}

// registeredEmails lists every address that resolved to an account, both as requested and as stored.
func (r *emailResolution) registeredEmails() []string {
	emails := make([]string, 0, 2*len(r.registered))
	for _, c := range r.registered {
		emails = append(emails, c.email, c.user.Email)
	}
	return emails
}

// lookupRoles fetches the role set of every candidate concurrently.
// Any single failure fails the whole group; no partial results are returned.
func (d *Domain) lookupRoles(ctx context.Context, userIDs []int64) ([]*roleLookup, error) {
	lookups := make([]*roleLookup, len(userIDs))
	for i, id := range userIDs {
		lookups[i] = &roleLookup{userID: id}
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.LookupConcurrency)
	for _, l := range lookups {
		g.Go(func() error {
			roles, err := d.identity.LookupUserRoles(gctx, l.userID)
			if err != nil {
				return fmt.Errorf("user %d: %w", l.userID, err)
			}
			l.roles = roles
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.Error("role lookup failed",
			zap.Int("candidates", len(userIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrRoleLookupFailed, err)
	}

	d.logger.Debug("role lookup completed",
		zap.Int("candidates", len(userIDs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return lookups, nil
}

// lookupEmails resolves which candidate emails belong to registered accounts with one bulk call.
// A failed call turns every candidate email into an itemized failure and returns a nil resolution.
func (d *Domain) lookupEmails(ctx context.Context, emails []string) (*emailResolution, []model.InviteFailure) {
	users, err := d.identity.LookupUsersByEmail(ctx, emails)
	if err != nil {
		d.logger.Warn("email identity lookup failed",
			zap.Int("emails", len(emails)),
			zap.Error(err),
		)
		failed := make([]model.InviteFailure, 0, len(emails))
		for _, email := range emails {
			failed = append(failed, emailFailure(email, err.Error()))
		}
		return nil, failed
	}

	res := &emailResolution{}
	for _, email := range emails {
		if user := matchAccount(users, newEmailMatcher(email)); user != nil {
			res.registered = append(res.registered, registeredCandidate{email: email, user: user})
			continue
		}
		res.unregistered = append(res.unregistered, email)
	}
	return res, nil
}

// matchAccount finds the account whose stored email equals email under the baseline rule.
func matchAccount(users []*model.IdentityUser, email emailMatcher) *model.IdentityUser {
	for _, u := range users {
		if u != nil && u.ID > 0 && email.matches(u.Email, false) {
			return u
		}
	}
	return nil
}
