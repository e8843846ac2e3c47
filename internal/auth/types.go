package auth

import "time"

// RoleName is the closed set of role kinds the service recognises.
type RoleName string

const (
	RoleAdmin     RoleName = "ADMIN"
	RoleUser      RoleName = "USER"
	RoleInvited   RoleName = "INVITED"
	RoleDeveloper RoleName = "DEVELOPER"
)

// KnownRoleNames lists every valid role kind in declaration order.
var KnownRoleNames = []RoleName{RoleAdmin, RoleUser, RoleInvited, RoleDeveloper}

// ValidRoleName reports whether name belongs to the closed role set.
func ValidRoleName(name string) bool {
	for _, r := range KnownRoleNames {
		if string(r) == name {
			return true
		}
	}
	return false
}

// Permission is a fine-grained capability identified by its immutable name.
type Permission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Role pairs a role kind with its eagerly resolved permission set.
// Authorization logic never sees a role whose permissions are unresolved.
type Role struct {
	ID          string       `json:"id"`
	Name        RoleName     `json:"name"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
}

// User is an account holder. PasswordHash is the only credential form the
// service ever stores; plaintext never leaves the login/register call stack.
type User struct {
	ID                    string    `json:"id"`
	Username              string    `json:"username"`
	PasswordHash          string    `json:"-"`
	Enabled               bool      `json:"enabled"`
	AccountNonExpired     bool      `json:"account_non_expired"`
	AccountNonLocked      bool      `json:"account_non_locked"`
	CredentialsNonExpired bool      `json:"credentials_non_expired"`
	Roles                 []Role    `json:"roles"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
