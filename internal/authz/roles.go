package authz

import "github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"

// roleHierarchy maps each role to the full set of roles it subsumes.
// The hierarchy is linear: super_admin > staff > ministry_leader >
// member > visitor.
var roleHierarchy = map[domain.Role][]domain.Role{
	domain.RoleSuperAdmin:     {domain.RoleStaff, domain.RoleMinistryLeader, domain.RoleMember, domain.RoleVisitor},
	domain.RoleStaff:          {domain.RoleMinistryLeader, domain.RoleMember, domain.RoleVisitor},
	domain.RoleMinistryLeader: {domain.RoleMember, domain.RoleVisitor},
	domain.RoleMember:         {domain.RoleVisitor},
	domain.RoleVisitor:        {},
}

var rolePermissions = map[domain.Role][]domain.Permission{
	domain.RoleSuperAdmin: {
		domain.PermManageUsers,
		domain.PermManageEvents,
		domain.PermManageSermons,
		domain.PermManageDonations,
		domain.PermViewAllPrayers,
		domain.PermJoinEvents,
		domain.PermCreatePrayers,
	},
	domain.RoleStaff: {
		domain.PermManageEvents,
		domain.PermManageSermons,
		domain.PermManageDonations,
		domain.PermViewAllPrayers,
		domain.PermJoinEvents,
		domain.PermCreatePrayers,
	},
	domain.RoleMinistryLeader: {
		domain.PermManageEvents,
		domain.PermViewAllPrayers,
		domain.PermJoinEvents,
		domain.PermCreatePrayers,
	},
	domain.RoleMember: {
		domain.PermJoinEvents,
		domain.PermCreatePrayers,
	},
	domain.RoleVisitor: {
		domain.PermJoinEvents,
	},
}

// EffectiveRoles returns the role itself plus every role it subsumes.
func EffectiveRoles(role domain.Role) []domain.Role {
	return append([]domain.Role{role}, roleHierarchy[role]...)
}

// RoleSubsumes reports whether role covers other, directly or through
// the hierarchy.
func RoleSubsumes(role, other domain.Role) bool {
	if role == other {
		return true
	}
	for _, r := range roleHierarchy[role] {
		if r == other {
			return true
		}
	}
	return false
}
