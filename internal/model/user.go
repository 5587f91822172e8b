package model

import "time"

// User represents a row in the `users` table.  The password hash is opaque
// to every layer above the credential helpers and must never be serialized
// outward; handlers define their own response types without it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique, normalized (lower-cased, trimmed) email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of the closed Role set.
//  TenantID     – optional reference into the tenants table; nil for
//                 customers that belong to no tenant.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	TenantID     *uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
