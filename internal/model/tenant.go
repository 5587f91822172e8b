package model

import "time"

// Tenant represents a row in the `tenants` table.  Users may optionally
// belong to a tenant via User.TenantID.
type Tenant struct {
	ID        uint64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
