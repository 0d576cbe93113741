package domain

// Role is a user's position in the congregation. Roles form a strict
// hierarchy: each role subsumes everything below it (see authz).
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleStaff          Role = "staff"
	RoleMinistryLeader Role = "ministry_leader"
	RoleMember         Role = "member"
	RoleVisitor        Role = "visitor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleStaff, RoleMinistryLeader, RoleMember, RoleVisitor:
		return true
	}
	return false
}

// Permission is a named capability checked before an operation runs.
type Permission string

const (
	PermManageUsers     Permission = "manage_users"
	PermManageEvents    Permission = "manage_events"
	PermManageSermons   Permission = "manage_sermons"
	PermManageDonations Permission = "manage_donations"
	PermViewAllPrayers  Permission = "view_all_prayers"
	PermJoinEvents      Permission = "join_events"
	PermCreatePrayers   Permission = "create_prayers"
)
