package invite

import "github.com/romitgit/tc-project-service/internal/model"

// snapshot is the read-only project state captured once per request before any fan-out.
type snapshot struct {
	members        map[int64]bool
	invitedUserIDs map[int64]bool
	inviteEmails   []emailMatcher
}

func newSnapshot(members []*model.ProjectMember, invites []*model.ProjectMemberInvite) *snapshot {
	s := &snapshot{
		members:        make(map[int64]bool, len(members)),
		invitedUserIDs: make(map[int64]bool, len(invites)),
	}
	for _, m := range members {
		s.members[m.UserID] = true
	}
	for _, inv := range invites {
		if !inv.IsOpen() {
			continue
		}
		if inv.UserID != nil {
			s.invitedUserIDs[*inv.UserID] = true
		}
		if inv.Email != nil {
			s.inviteEmails = append(s.inviteEmails, newEmailMatcher(*inv.Email))
		}
	}
	return s
}

// dedupUserIDs drops ids that are already members or already hold an open invite.
func (s *snapshot) dedupUserIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if s.members[id] || s.invitedUserIDs[id] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// hasInviteForEmail reports whether an open invite exists for email's equivalence class.
func (s *snapshot) hasInviteForEmail(email emailMatcher, canonicalize bool) bool {
	for _, existing := range s.inviteEmails {
		if existing.equivalent(email, canonicalize) {
			return true
		}
	}
	return false
}

// dedupRegistered drops registered candidates already invited (by email or account id),
// already members, or colliding with an account accepted earlier in this request.
func (s *snapshot) dedupRegistered(candidates []registeredCandidate, canonicalize bool, accepted []int64) []registeredCandidate {
	taken := make(map[int64]bool, len(accepted)+len(candidates))
	for _, id := range accepted {
		taken[id] = true
	}

	out := make([]registeredCandidate, 0, len(candidates))
	for _, c := range candidates {
		id := c.user.ID
		if taken[id] || s.members[id] || s.invitedUserIDs[id] {
			continue
		}
		if s.hasInviteForEmail(newEmailMatcher(c.user.Email), canonicalize) {
			continue
		}
		taken[id] = true
		out = append(out, c)
	}
	return out
}

// dedupUnregistered drops emails whose equivalence class already has an open invite,
// belongs to an account resolved in this request, or was accepted earlier in this request.
func (s *snapshot) dedupUnregistered(emails []string, canonicalize bool, registered []string) []string {
	taken := make([]emailMatcher, 0, len(registered)+len(emails))
	for _, email := range registered {
		taken = append(taken, newEmailMatcher(email))
	}

	out := make([]string, 0, len(emails))
	for _, email := range emails {
		m := newEmailMatcher(email)
		if s.hasInviteForEmail(m, canonicalize) || isTaken(taken, m, canonicalize) {
			continue
		}
		taken = append(taken, m)
		out = append(out, email)
	}
	return out
}

func isTaken(taken []emailMatcher, m emailMatcher, canonicalize bool) bool {
	for _, t := range taken {
		if t.equivalent(m, canonicalize) {
			return true
		}
	}
	return false
}
