package auth

import "github.com/goliatone/go-errors"

// Role is a named bundle of authorities
type Role string

const (
	// RoleUser is the default role assigned on signup
	RoleUser Role = "ROLE_USER"
	// RoleMod can manage user profiles
	RoleMod Role = "ROLE_MOD"
	// RoleAdmin can manage accounts
	RoleAdmin Role = "ROLE_ADMIN"
	// RoleSuperAdmin can manage accounts, roles and authorities
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

// Authority is a fine grained permission token
type Authority = string

const (
	AuthorityProfileRead       Authority = "profile:read"
	AuthorityProfileUpdate     Authority = "profile:update"
	AuthorityUserRead          Authority = "user:read"
	AuthorityUserCreate        Authority = "user:create"
	AuthorityUserUpdate        Authority = "user:update"
	AuthorityUserUpdateRole    Authority = "user:update:role"
	AuthorityUserUpdateAuth    Authority = "user:update:authorities"
	AuthorityUserDelete        Authority = "user:delete"
	AuthorityPreferencesRead   Authority = "user:preferences:read"
	AuthorityPreferencesUpdate Authority = "user:preferences:update"
)

// roleCatalog is the fixed role to authority mapping, loaded once and
// never mutated at runtime. Every enumerated role must have an entry.
var roleCatalog = map[Role][]Authority{
	RoleUser: {
		AuthorityProfileRead,
		AuthorityProfileUpdate,
		AuthorityPreferencesRead,
		AuthorityPreferencesUpdate,
	},
	RoleMod: {
		AuthorityProfileRead,
		AuthorityProfileUpdate,
		AuthorityPreferencesRead,
		AuthorityPreferencesUpdate,
		AuthorityUserRead,
	},
	RoleAdmin: {
		AuthorityProfileRead,
		AuthorityProfileUpdate,
		AuthorityPreferencesRead,
		AuthorityPreferencesUpdate,
		AuthorityUserRead,
		AuthorityUserCreate,
		AuthorityUserUpdate,
		AuthorityUserDelete,
	},
	RoleSuperAdmin: {
		AuthorityProfileRead,
		AuthorityProfileUpdate,
		AuthorityPreferencesRead,
		AuthorityPreferencesUpdate,
		AuthorityUserRead,
		AuthorityUserCreate,
		AuthorityUserUpdate,
		AuthorityUserUpdateRole,
		AuthorityUserUpdateAuth,
		AuthorityUserDelete,
	},
}

// AuthoritiesFor resolves the authority set granted to a role. The
// returned slice is a copy, callers may mutate it freely.
func AuthoritiesFor(role Role) ([]Authority, error) {
	authorities, ok := roleCatalog[role]
	if !ok {
		return nil, errors.New("role is not part of the catalog", errors.CategoryValidation).
			WithTextCode(TextCodeUnknownRole).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"role": string(role)})
	}

	out := make([]Authority, len(authorities))
	copy(out, authorities)
	return out, nil
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	_, ok := roleCatalog[r]
	return ok
}

// HasAuthority checks if the role grants a specific authority
func (r Role) HasAuthority(authority Authority) bool {
	for _, a := range roleCatalog[r] {
		if a == authority {
			return true
		}
	}
	return false
}

// AllRoles returns the enumerated roles
func AllRoles() []Role {
	return []Role{
		RoleUser,
		RoleMod,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
