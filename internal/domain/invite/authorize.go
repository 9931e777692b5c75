package invite

import (
	"fmt"

	"github.com/romitgit/tc-project-service/internal/model"
)

// authorizeRequest decides whether the caller may request role at all.
// Only callers holding a manager identity role may invite outside the customer tier.
func authorizeRequest(caller *model.Caller, role model.ProjectMemberRole) error {
	if IsCustomerTier(role) {
		return nil
	}
	if caller.HasAnyRole(ManagerUserRoles...) {
		return nil
	}
	return fmt.Errorf("%w %s", ErrForbiddenRole, role)
}

// gateManagerCandidates keeps candidates whose fetched roles intersect ManagerUserRoles.
// The rest become itemized failures.
func gateManagerCandidates(lookups []*roleLookup) ([]int64, []model.InviteFailure) {
	allowed := make([]int64, 0, len(lookups))
	var failed []model.InviteFailure
	for _, l := range lookups {
		if holdsManagerRole(l.roles) {
			allowed = append(allowed, l.userID)
			continue
		}
		failed = append(failed, userFailure(l.userID, msgCannotBeManager))
	}
	return allowed, failed
}
