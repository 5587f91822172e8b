package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/auth-service/internal/model"
)

type TenantRepo struct{ DB *sql.DB }

func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{DB: db} }

// Create inserts a tenant and returns its ID.
func (r *TenantRepo) Create(ctx context.Context, name, address string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tenants (name, address) VALUES (?,?)", name, address)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a tenant by id.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (model.Tenant, error) {
	var t model.Tenant
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,address,created_at,updated_at FROM tenants WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Tenant{}, ErrNotFound
	}
	return t, err
}

// List returns one page of tenants plus the total count.
func (r *TenantRepo) List(ctx context.Context, page, perPage int) ([]model.Tenant, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,address,created_at,updated_at FROM tenants ORDER BY id LIMIT ? OFFSET ?",
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tenants").Scan(&total); err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

// Update patches the provided fields; empty strings leave the column as is.
func (r *TenantRepo) Update(ctx context.Context, id uint64, name, address string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tenants SET name=COALESCE(NULLIF(?,''), name), address=COALESCE(NULLIF(?,''), address) WHERE id=?",
		name, address, id)
	return err
}

// Delete removes a tenant.
func (r *TenantRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tenants WHERE id=?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
