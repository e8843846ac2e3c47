package auth

import "context"

// Store describes the persistence operations the auth core depends on.
// Implementations must return roles with their permission sets already
// resolved; nothing downstream re-fetches permissions lazily.
type Store interface {
	// FindUserByUsername returns the user with its roles and permissions
	// resolved, or ErrNotFound.
	FindUserByUsername(ctx context.Context, username string) (*User, error)

	// FindRolesByNameIn returns the roles whose names appear in names.
	// Unknown names are silently dropped; an empty result is not an error
	// at this layer.
	FindRolesByNameIn(ctx context.Context, names []string) ([]Role, error)

	// SaveUser persists a new user together with its role associations and
	// returns the stored aggregate.
	SaveUser(ctx context.Context, user *User) (*User, error)
}
