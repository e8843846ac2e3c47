package pg

import (
	"context"
	"database/sql"

	"guardpost.dev/internal/auth"
	"guardpost.dev/internal/ids"
)

// demoPasswordHash is bcrypt("1234"), shared by the demo accounts.
const demoPasswordHash = "$2a$10$eTJOArN7.FlqkFsBKCOcYOWZsh9.FYtsPThL9K3K7kpzDQqAkOT92"

var demoUsers = []struct {
	username string
	roles    []auth.RoleName
}{
	{"Johan", []auth.RoleName{auth.RoleAdmin}},
	{"Kevin", []auth.RoleName{auth.RoleInvited}},
	{"Samuel", []auth.RoleName{auth.RoleInvited, auth.RoleDeveloper}},
}

// Seed provisions the builtin permission catalog, the closed role set with
// its permission grants, and a few demo accounts. Every statement is
// idempotent; reseeding an existing database is a no-op.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, perm := range auth.BuiltinPermissions {
		if _, err := db.ExecContext(ctx,
			`insert into permissions (id, name) values ($1,$2) on conflict (name) do nothing`,
			ids.New(), perm.Name); err != nil {
			return err
		}
	}

	for _, role := range auth.KnownRoleNames {
		if _, err := db.ExecContext(ctx,
			`insert into roles (id, name) values ($1,$2) on conflict (name) do nothing`,
			ids.New(), string(role)); err != nil {
			return err
		}
		for _, perm := range auth.BuiltinRolePermissions[role] {
			if _, err := db.ExecContext(ctx,
				`insert into roles_permissions (role_id, permission_id)
				 select r.id, p.id from roles r, permissions p
				 where r.name = $1 and p.name = $2
				 on conflict do nothing`,
				string(role), perm); err != nil {
				return err
			}
		}
	}

	for _, u := range demoUsers {
		if _, err := db.ExecContext(ctx,
			`insert into users (id, username, password_hash) values ($1,$2,$3)
			 on conflict (username) do nothing`,
			ids.New(), u.username, demoPasswordHash); err != nil {
			return err
		}
		for _, role := range u.roles {
			if _, err := db.ExecContext(ctx,
				`insert into users_roles (user_id, role_id)
				 select u.id, r.id from users u, roles r
				 where u.username = $1 and r.name = $2
				 on conflict do nothing`,
				u.username, string(role)); err != nil {
				return err
			}
		}
	}
	return nil
}
