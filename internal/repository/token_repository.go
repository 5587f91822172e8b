package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
)

// TokenRepo persists refresh token records.  One row exists per issued
// refresh token; the row id becomes the token's jti claim.  Rows are only
// ever created and deleted — deletion is revocation.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a record for userID expiring after ttl and returns it with
// its new id, ready to be embedded into a freshly signed refresh token.
func (r *TokenRepo) Create(ctx context.Context, userID uint64, ttl time.Duration) (model.RefreshToken, error) {
	exp := time.Now().UTC().Add(ttl)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, expires_at) VALUES (?,?)", userID, exp)
	if err != nil {
		return model.RefreshToken{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RefreshToken{}, err
	}
	return model.RefreshToken{ID: uint64(id), UserID: userID, ExpiresAt: exp}, nil
}

// Exists reports whether a live (non-expired) record with the given id is
// owned by userID.  The owner check makes cross-identity token reuse fail
// closed.
func (r *TokenRepo) Exists(ctx context.Context, id, userID uint64) (bool, error) {
	var found uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM refresh_tokens WHERE id=? AND user_id=? AND expires_at > UTC_TIMESTAMP() LIMIT 1",
		id, userID).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a record.  Deleting an id that no longer exists is not an
// error, which makes logout idempotent.
func (r *TokenRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE id=?", id)
	return err
}

// DeleteAllForUser revokes every session of a user at once.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}

// Rotate atomically replaces the record oldID with a fresh one for the same
// user.  The delete runs first and must remove exactly one row: when two
// concurrent refresh calls race on the same token, only one of them sees
// the row, so at most one rotation succeeds and the loser gets ErrNotFound.
// Running both statements in one transaction means a crash mid-rotation
// never leaves two live sessions.
func (r *TokenRepo) Rotate(ctx context.Context, userID, oldID uint64, ttl time.Duration) (model.RefreshToken, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.RefreshToken{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE id=? AND user_id=?", oldID, userID)
	if err != nil {
		return model.RefreshToken{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RefreshToken{}, err
	}
	if n == 0 {
		return model.RefreshToken{}, ErrNotFound
	}

	exp := time.Now().UTC().Add(ttl)
	ins, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, expires_at) VALUES (?,?)", userID, exp)
	if err != nil {
		return model.RefreshToken{}, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return model.RefreshToken{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RefreshToken{}, err
	}
	return model.RefreshToken{ID: uint64(id), UserID: userID, ExpiresAt: exp}, nil
}
