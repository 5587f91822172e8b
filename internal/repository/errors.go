// Package repository implements the persistence layer on top of
// database/sql.  The sentinel errors defined here let the service and
// handler layers distinguish failure scenarios without inspecting driver
// errors themselves.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  For refresh token
// records absence doubles as revocation: a token whose row is gone is a
// revoked token.
var ErrNotFound = errors.New("record not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
