package pg

import (
	"context"
	"database/sql"
)

// Schema statements, applied in order. Idempotent so EnsureSchema can run on
// every start.
var schemaStatements = []string{
	`create table if not exists users (
		id text primary key,
		username text unique not null,
		password_hash text not null,
		is_enabled boolean not null default true,
		account_non_expired boolean not null default true,
		account_non_locked boolean not null default true,
		credentials_non_expired boolean not null default true,
		created_at timestamptz not null default now(),
		updated_at timestamptz not null default now()
	)`,
	`create table if not exists roles (
		id text primary key,
		name text unique not null,
		created_at timestamptz not null default now()
	)`,
	`create table if not exists permissions (
		id text primary key,
		name text unique not null,
		created_at timestamptz not null default now()
	)`,
	`create table if not exists users_roles (
		user_id text not null references users(id) on delete cascade,
		role_id text not null references roles(id),
		primary key (user_id, role_id)
	)`,
	`create table if not exists roles_permissions (
		role_id text not null references roles(id) on delete cascade,
		permission_id text not null references permissions(id),
		primary key (role_id, permission_id)
	)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
