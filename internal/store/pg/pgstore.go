// Package pg implements the persistence interfaces on PostgreSQL through
// database/sql with the pgx stdlib driver.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"buildsmart.in/internal/auth"
	"buildsmart.in/internal/site"
)

// Store implements the credential and resource repositories on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() auth.UserStore          { return &userStore{db: s.db} }
func (s *Store) Tasks() site.TaskStore          { return &taskStore{db: s.db} }
func (s *Store) Materials() site.MaterialStore  { return &materialStore{db: s.db} }
func (s *Store) Workforce() site.WorkforceStore { return &workforceStore{db: s.db} }
func (s *Store) Safety() site.SafetyStore       { return &safetyStore{db: s.db} }

// User store ---------------------------------------------------------------

type userStore struct{ db *sql.DB }

const userColumns = `id, name, email, password_hash, role, site, avatar, permissions,
	employee_id, department, phone, is_active, last_login, created_at, updated_at`

func (s *userStore) Create(ctx context.Context, u *auth.User) error {
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`insert into users(id, name, email, password_hash, role, site, avatar, permissions,
			employee_id, department, phone, is_active, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Site, u.Avatar, perms,
		u.EmployeeID, u.Department, u.Phone, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *userStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where lower(email)=lower($1)`, email)
	return scanUser(row)
}

func (s *userStore) List(ctx context.Context, filter auth.UserFilter) ([]*auth.User, error) {
	query := `select ` + userColumns + ` from users`
	var (
		conds []string
		args  []any
	)
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		conds = append(conds, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Site != "" {
		args = append(args, filter.Site)
		conds = append(conds, fmt.Sprintf("site=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ilike $%d or email ilike $%d or employee_id ilike $%d)", n, n, n))
	}
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by created_at desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *userStore) Update(ctx context.Context, u *auth.User) error {
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`update users set name=$2, email=$3, password_hash=$4, role=$5, site=$6, avatar=$7,
			permissions=$8, employee_id=$9, department=$10, phone=$11, is_active=$12,
			last_login=$13, updated_at=$14
		 where id=$1`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Site, u.Avatar, perms,
		u.EmployeeID, u.Department, u.Phone, u.IsActive, u.LastLogin, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u     auth.User
		role  string
		perms []byte
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Site, &u.Avatar,
		&perms, &u.EmployeeID, &u.Department, &u.Phone, &u.IsActive, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	u.Role = auth.Role(role)
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	return &u, nil
}
