package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-service/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,first_name,last_name,email,password_hash,role,tenant_id,created_at,updated_at"

// Create inserts a user and returns its ID.  The caller supplies an already
// hashed password.  Email uniqueness is enforced by the unique index; a
// duplicate-key error (MySQL 1062) maps to ErrEmailExists so that two
// concurrent registrations with the same email yield exactly one success.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, role, tenant_id) VALUES (?,?,?,?,?,?)",
		u.FirstName, u.LastName, NormalizeEmail(u.Email), u.PasswordHash, u.Role.String(), u.TenantID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// List returns one page of users plus the total count.
func (r *UserRepo) List(ctx context.Context, page, perPage int) ([]model.User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update rewrites the mutable profile fields.  The password is not touched
// here; credential changes go through a separate flow.
func (r *UserRepo) Update(ctx context.Context, id uint64, firstName, lastName, email string, role model.Role, tenantID *uint64) error {
	// RowsAffected is 0 both for a missing row and for a no-op update, so
	// existence is not checked here.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=?, role=?, tenant_id=? WHERE id=?",
		firstName, lastName, NormalizeEmail(email), role.String(), tenantID, id)
	if err != nil && strings.Contains(err.Error(), "1062") {
		return ErrEmailExists
	}
	return err
}

// Delete removes a user.  Refresh token rows cascade via the foreign key.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// NormalizeEmail applies the storage normalization policy: trim and
// lower-case.  Lookups use the same normalization so uniqueness holds
// regardless of caller casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u        model.User
		role     string
		tenantID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&role, &tenantID, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if tenantID.Valid {
		id := uint64(tenantID.Int64)
		u.TenantID = &id
	}
	return u, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
