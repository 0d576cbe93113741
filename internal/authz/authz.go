// Package authz decides whether a user may run an operation. Checks
// are pure reads over a fixed role hierarchy; the only state is a
// per-user cache of effective permissions, invalidated on role change.
package authz

import (
	"sync"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
)

// Requirements are the authorization preconditions of one operation.
type Requirements struct {
	RequireAuth         bool
	RequiredRoles       []domain.Role
	RequiredPermissions []domain.Permission
}

// OwnedResource lets an entity report its owning user. When a
// required permission is not held generally, owning the resource
// satisfies it instead.
type OwnedResource interface {
	OwnerID() string
}

type Authorizer struct {
	mu    sync.RWMutex
	cache map[string]map[domain.Permission]bool
}

func NewAuthorizer() *Authorizer {
	return &Authorizer{cache: make(map[string]map[domain.Permission]bool)}
}

// EffectivePermissions returns the union of permissions over the
// user's role and every role it subsumes, cached per user id.
func (a *Authorizer) EffectivePermissions(user *domain.User) map[domain.Permission]bool {
	a.mu.RLock()
	perms, ok := a.cache[user.ID]
	a.mu.RUnlock()
	if ok {
		return perms
	}

	perms = make(map[domain.Permission]bool)
	for _, role := range EffectiveRoles(user.Role) {
		for _, p := range rolePermissions[role] {
			perms[p] = true
		}
	}

	a.mu.Lock()
	a.cache[user.ID] = perms
	a.mu.Unlock()
	return perms
}

// ClearCache drops the cached permission set for one user. Must be
// called whenever a user's role or status changes.
func (a *Authorizer) ClearCache(userID string) {
	a.mu.Lock()
	delete(a.cache, userID)
	a.mu.Unlock()
}

func (a *Authorizer) ClearAll() {
	a.mu.Lock()
	a.cache = make(map[string]map[domain.Permission]bool)
	a.mu.Unlock()
}

// IsAuthorized runs the precondition chain: authentication, account
// state, role membership, then permissions. Resource ownership can
// stand in for a missing permission when a resource is supplied.
func (a *Authorizer) IsAuthorized(user *domain.User, req Requirements, resource OwnedResource) bool {
	if !req.RequireAuth {
		return true
	}
	if user == nil || !user.IsActive() {
		return false
	}

	if len(req.RequiredRoles) > 0 && !a.hasAnyRole(user, req.RequiredRoles) {
		return false
	}

	if len(req.RequiredPermissions) > 0 {
		owns := resource != nil && resource.OwnerID() != "" && resource.OwnerID() == user.ID
		perms := a.EffectivePermissions(user)
		for _, p := range req.RequiredPermissions {
			if owns {
				continue
			}
			if !perms[p] {
				return false
			}
		}
	}
	return true
}

func (a *Authorizer) hasAnyRole(user *domain.User, roles []domain.Role) bool {
	for _, required := range roles {
		if RoleSubsumes(user.Role, required) {
			return true
		}
	}
	return false
}
