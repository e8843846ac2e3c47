package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"guardpost.dev/internal/auth"
	"guardpost.dev/internal/ids"
)

var _ auth.Store = (*Store)(nil)

// Store implements auth.Store on PostgreSQL via database/sql. Roles are
// always returned with their permission sets resolved in the same query.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindUserByUsername loads a user aggregate: the account row plus every role
// and each role's permissions.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, password_hash, is_enabled, account_non_expired,
		        account_non_locked, credentials_non_expired, created_at, updated_at
		 from users where username=$1`, username)

	var u auth.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Enabled,
		&u.AccountNonExpired, &u.AccountNonLocked, &u.CredentialsNonExpired,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select r.id, r.name, r.created_at, p.id, p.name, p.created_at
		 from roles r
		 join users_roles ur on ur.role_id = r.id
		 left join roles_permissions rp on rp.role_id = r.id
		 left join permissions p on p.id = rp.permission_id
		 where ur.user_id = $1
		 order by r.name, p.name`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles, err := collectRoles(rows)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

// FindRolesByNameIn returns the roles matching names, permissions resolved.
// Names outside the catalog simply produce no row.
func (s *Store) FindRolesByNameIn(ctx context.Context, names []string) ([]auth.Role, error) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(cleaned))
	args := make([]any, len(cleaned))
	for i, n := range cleaned {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = n
	}

	query := fmt.Sprintf(
		`select r.id, r.name, r.created_at, p.id, p.name, p.created_at
		 from roles r
		 left join roles_permissions rp on rp.role_id = r.id
		 left join permissions p on p.id = rp.permission_id
		 where r.name in (%s)
		 order by r.name, p.name`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRoles(rows)
}

// SaveUser inserts the user and its role links in one transaction and
// returns the stored aggregate.
func (s *Store) SaveUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = ids.New()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`insert into users (id, username, password_hash, is_enabled,
		                    account_non_expired, account_non_locked, credentials_non_expired)
		 values ($1,$2,$3,$4,$5,$6,$7)
		 returning created_at, updated_at`,
		stored.ID, stored.Username, stored.PasswordHash, stored.Enabled,
		stored.AccountNonExpired, stored.AccountNonLocked, stored.CredentialsNonExpired)
	if err := row.Scan(&stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, err
	}

	for _, role := range stored.Roles {
		if _, err := tx.ExecContext(ctx,
			`insert into users_roles (user_id, role_id) values ($1,$2) on conflict do nothing`,
			stored.ID, role.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &stored, nil
}

// collectRoles folds joined role/permission rows into role aggregates. Rows
// must arrive ordered by role name.
func collectRoles(rows *sql.Rows) ([]auth.Role, error) {
	var (
		roles   []auth.Role
		current *auth.Role
	)
	for rows.Next() {
		var (
			role      auth.Role
			permID    sql.NullString
			permName  sql.NullString
			permCreat sql.NullTime
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt,
			&permID, &permName, &permCreat); err != nil {
			return nil, err
		}
		if current == nil || current.ID != role.ID {
			roles = append(roles, role)
			current = &roles[len(roles)-1]
		}
		if permID.Valid {
			current.Permissions = append(current.Permissions, auth.Permission{
				ID:        permID.String,
				Name:      permName.String,
				CreatedAt: permCreat.Time,
			})
		}
	}
	return roles, rows.Err()
}
