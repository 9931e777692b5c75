package invite

import "github.com/romitgit/tc-project-service/internal/model"

// roleCustomerTier is the only project role that may be granted by email.
const roleCustomerTier = model.ProjectMemberRoleCustomer

// managerProjectRoles are the project roles that need elevated privilege to assign.
var managerProjectRoles = map[model.ProjectMemberRole]bool{
	model.ProjectMemberRoleManager:           true,
	model.ProjectMemberRoleAccountManager:    true,
	model.ProjectMemberRoleProgramManager:    true,
	model.ProjectMemberRoleAccountExecutive:  true,
	model.ProjectMemberRoleSolutionArchitect: true,
	model.ProjectMemberRoleProjectManager:    true,
}

// ManagerUserRoles are the identity roles that qualify a user for manager-tier project roles.
var ManagerUserRoles = []model.UserRole{
	model.UserRoleAdministrator,
	model.UserRoleConnectAdmin,
	model.UserRoleConnectManager,
	model.UserRoleConnectAccountManager,
	model.UserRoleBusinessDevelopmentRep,
	model.UserRolePresales,
	model.UserRoleAccountExecutive,
	model.UserRoleProgramManager,
	model.UserRoleSolutionArchitect,
	model.UserRoleProjectManager,
}

// ElevatedUserRoles may invite copilots without an approval step.
var ElevatedUserRoles = []model.UserRole{
	model.UserRoleAdministrator,
	model.UserRoleConnectAdmin,
	model.UserRoleConnectCopilotManager,
}

// IsCustomerTier reports whether the role can be granted to anyone.
func IsCustomerTier(r model.ProjectMemberRole) bool {
	return r == roleCustomerTier
}

// IsManagerTier reports whether the role requires the invitee to hold a manager identity role.
func IsManagerTier(r model.ProjectMemberRole) bool {
	return managerProjectRoles[r]
}

// IsCopilotTier reports whether invites with this role may need approval.
func IsCopilotTier(r model.ProjectMemberRole) bool {
	return r == model.ProjectMemberRoleCopilot
}

// holdsManagerRole reports whether roles intersect ManagerUserRoles.
func holdsManagerRole(roles []model.UserRole) bool {
	holder := &model.Caller{Roles: roles}
	return holder.HasAnyRole(ManagerUserRoles...)
}
