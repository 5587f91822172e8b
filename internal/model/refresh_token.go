package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  One row is
// created per issued refresh token and the row id is embedded into the
// signed token as its `jti` claim, which is how the store and the token
// stay correlated.  Deleting the row is the revocation mechanism; there is
// no revoked flag and rows are never updated in place.
//
// Fields:
//  ID        – primary key identifier, also the token's jti claim.
//  UserID    – owner of the token.
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	ExpiresAt time.Time
	CreatedAt time.Time
}
