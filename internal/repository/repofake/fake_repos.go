// Package repofake provides in-memory substitutes for the SQL repositories,
// used by tests.  They mirror the real repositories' error contracts,
// including the duplicate-email and rotation race semantics.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
)

// FakeUserRepo is an in-memory users table.
type FakeUserRepo struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: map[uint64]model.User{}}
}

func (f *FakeUserRepo) Create(_ context.Context, u *model.User) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users[u.ID] = *u
	return u.ID, nil
}

func (f *FakeUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *FakeUserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// Remove deletes a user directly; tests use it to simulate an identity
// disappearing between issuance and refresh.
func (f *FakeUserRepo) Remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// Count reports how many users exist.
func (f *FakeUserRepo) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// FakeTokenRepo is an in-memory refresh_tokens table.
type FakeTokenRepo struct {
	mu      sync.Mutex
	nextID  uint64
	records map[uint64]model.RefreshToken
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{records: map[uint64]model.RefreshToken{}}
}

func (f *FakeTokenRepo) Create(_ context.Context, userID uint64, ttl time.Duration) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(userID, ttl), nil
}

func (f *FakeTokenRepo) createLocked(userID uint64, ttl time.Duration) model.RefreshToken {
	f.nextID++
	rec := model.RefreshToken{
		ID:        f.nextID,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
		CreatedAt: time.Now().UTC(),
	}
	f.records[rec.ID] = rec
	return rec
}

func (f *FakeTokenRepo) Exists(_ context.Context, id, userID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.UserID != userID {
		return false, nil
	}
	return rec.ExpiresAt.After(time.Now().UTC()), nil
}

func (f *FakeTokenRepo) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

// Rotate mirrors the SQL repository: the old record must exist and belong
// to userID or the rotation fails with ErrNotFound, so at most one of two
// racing rotations of the same token succeeds.
func (f *FakeTokenRepo) Rotate(_ context.Context, userID, oldID uint64, ttl time.Duration) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[oldID]
	if !ok || rec.UserID != userID {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	delete(f.records, oldID)
	return f.createLocked(userID, ttl), nil
}

// Count reports how many live records exist.
func (f *FakeTokenRepo) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// OwnedBy reports how many live records belong to userID.
func (f *FakeTokenRepo) OwnedBy(userID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.records {
		if rec.UserID == userID {
			n++
		}
	}
	return n
}
