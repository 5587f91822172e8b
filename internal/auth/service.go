// Package auth orchestrates the session lifecycle: it combines the
// credential helpers, the token signer and the refresh token store into the
// register/login/refresh/logout contract, enforcing single-use rotation of
// refresh tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/token"
	"github.com/iliyamo/auth-service/internal/utils"
)

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists refresh token records.  Absence of a record is
// revocation; there is no flag to flip.
type TokenStore interface {
	Create(ctx context.Context, userID uint64, ttl time.Duration) (model.RefreshToken, error)
	Rotate(ctx context.Context, userID, oldID uint64, ttl time.Duration) (model.RefreshToken, error)
	Exists(ctx context.Context, id, userID uint64) (bool, error)
	Delete(ctx context.Context, id uint64) error
}

// TokenPair is what every successful auth transition hands back: a
// short-lived access token and a long-lived refresh token.
type TokenPair struct {
	Access  token.Signed
	Refresh token.Signed
}

// Service is the session issuer/rotator.
type Service struct {
	users      UserStore
	tokens     TokenStore
	signer     *token.Signer
	bcryptCost int
	refreshTTL time.Duration
}

func NewService(users UserStore, tokens TokenStore, signer *token.Signer, bcryptCost int, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		signer:     signer,
		bcryptCost: bcryptCost,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput carries the validated registration fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates an identity with the default customer role and issues
// its first token pair.  A duplicate email yields ErrEmailTaken; the
// store-level unique index guarantees at most one of two concurrent
// registrations succeeds.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, TokenPair, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}

	u := model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        repository.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         model.RoleCustomer,
	}
	id, err := s.users.Create(ctx, &u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, TokenPair{}, ErrEmailTaken
		}
		return model.User{}, TokenPair{}, err
	}
	u.ID = id

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	log.Info().Uint64("id", u.ID).Msg("user registered")
	return u, pair, nil
}

// Login verifies the credentials and issues a fresh token pair.  Unknown
// email and wrong password both return ErrInvalidCredentials so the two
// cases are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	log.Info().Uint64("id", u.ID).Msg("user logged in")
	return u, pair, nil
}

// VerifyAccess checks an access token's signature and expiry.
func (s *Service) VerifyAccess(raw string) (token.Payload, error) {
	p, err := s.signer.ParseAccess(raw)
	if err != nil {
		return token.Payload{}, ErrInvalidCredentials
	}
	return p, nil
}

// VerifyRefresh checks a refresh token's signature and expiry, then
// resolves its jti against the store.  The record must exist and belong to
// the token's subject; anything else fails closed as ErrInvalidCredentials.
func (s *Service) VerifyRefresh(ctx context.Context, raw string) (token.Payload, error) {
	p, err := s.signer.ParseRefresh(raw)
	if err != nil {
		return token.Payload{}, ErrInvalidCredentials
	}
	ok, err := s.tokens.Exists(ctx, p.RecordID, p.UserID)
	if err != nil {
		return token.Payload{}, err
	}
	if !ok {
		return token.Payload{}, ErrInvalidCredentials
	}
	return p, nil
}

// Refresh exchanges a verified refresh token for a brand-new pair.  The old
// record is deleted and a new one created in a single atomic rotation, so
// each refresh token is single-use: replaying a rotated token finds no
// record and fails, and of two concurrent refresh calls at most one wins.
func (s *Service) Refresh(ctx context.Context, p token.Payload) (model.User, TokenPair, error) {
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, TokenPair{}, err
	}

	rec, err := s.tokens.Rotate(ctx, u.ID, p.RecordID, s.refreshTTL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race or the token was already rotated.
			return model.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.User{}, TokenPair{}, err
	}

	pair, err := s.signPair(u, rec.ID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	log.Info().Uint64("id", u.ID).Uint64("record_id", rec.ID).Msg("tokens refreshed")
	return u, pair, nil
}

// Logout revokes the presented refresh token by deleting its record.
// Deleting an already-gone record is a no-op, so logout is idempotent.
func (s *Service) Logout(ctx context.Context, p token.Payload) error {
	if err := s.tokens.Delete(ctx, p.RecordID); err != nil {
		return err
	}
	log.Info().Uint64("id", p.UserID).Uint64("record_id", p.RecordID).Msg("refresh token deleted")
	return nil
}

// User loads the identity behind a verified payload, for the self endpoint.
func (s *Service) User(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// issuePair persists a new refresh token record and signs both tokens.
func (s *Service) issuePair(ctx context.Context, u model.User) (TokenPair, error) {
	rec, err := s.tokens.Create(ctx, u.ID, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return s.signPair(u, rec.ID)
}

func (s *Service) signPair(u model.User, recordID uint64) (TokenPair, error) {
	p := token.Payload{UserID: u.ID, Role: u.Role}
	access, err := s.signer.SignAccess(p)
	if err != nil {
		return TokenPair{}, err
	}
	p.RecordID = recordID
	refresh, err := s.signer.SignRefresh(p)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
