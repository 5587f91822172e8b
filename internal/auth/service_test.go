package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository/repofake"
	"github.com/iliyamo/auth-service/internal/token"
)

const (
	testEmail    = "a@x.com"
	testPassword = "secret123"
)

type fixture struct {
	users  *repofake.FakeUserRepo
	tokens *repofake.FakeTokenRepo
	keys   config.KeyPair
	signer *token.Signer
	svc    *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := config.KeyPair{Private: key, Public: &key.PublicKey}

	signer, err := token.NewSigner(keys, "fixture-refresh-secret", time.Hour, 7*24*time.Hour)
	require.NoError(t, err)

	users := repofake.NewFakeUserRepo()
	tokens := repofake.NewFakeTokenRepo()
	return &fixture{
		users:  users,
		tokens: tokens,
		keys:   keys,
		signer: signer,
		svc:    auth.NewService(users, tokens, signer, bcrypt.MinCost, 7*24*time.Hour),
	}
}

func (f *fixture) register(t *testing.T) (model.User, auth.TokenPair) {
	t.Helper()
	u, pair, err := f.svc.Register(context.Background(), auth.RegisterInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     testEmail,
		Password:  testPassword,
	})
	require.NoError(t, err)
	return u, pair
}

func TestRegisterCreatesUserAndOneRecord(t *testing.T) {
	f := newFixture(t)

	u, pair := f.register(t)

	require.Equal(t, model.RoleCustomer, u.Role, "register assigns the default role")
	require.Equal(t, 1, f.users.Count())
	require.Equal(t, 1, f.tokens.OwnedBy(u.ID), "exactly one refresh token record")

	// The refresh token's jti must resolve to the stored record.
	p, err := f.signer.ParseRefresh(pair.Refresh.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, p.UserID)
	ok, err := f.tokens.Exists(context.Background(), p.RecordID, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	_, _, err := f.svc.Register(context.Background(), auth.RegisterInput{
		FirstName: "John",
		LastName:  "Doe",
		Email:     testEmail,
		Password:  "another-secret",
	})
	require.ErrorIs(t, err, auth.ErrEmailTaken)
	require.Equal(t, 1, f.users.Count(), "identity count stays 1")
}

func TestLoginIssuesVerifiableAccessToken(t *testing.T) {
	f := newFixture(t)
	u, _ := f.register(t)

	_, pair, err := f.svc.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	parsed, err := jwt.Parse(pair.Access.Token, func(tk *jwt.Token) (interface{}, error) {
		return f.keys.Public, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "1", claims["sub"])
	require.Equal(t, token.Issuer, claims["iss"])
	require.Equal(t, u.Role.String(), claims["role"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	_, _, wrongPass := f.svc.Login(context.Background(), testEmail, "wrong-password")
	_, _, noUser := f.svc.Login(context.Background(), "nobody@x.com", testPassword)

	require.ErrorIs(t, wrongPass, auth.ErrInvalidCredentials)
	require.ErrorIs(t, noUser, auth.ErrInvalidCredentials)
	require.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLoginNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	_, _, err := f.svc.Login(context.Background(), "  A@X.COM ", testPassword)
	require.NoError(t, err)
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	f := newFixture(t)
	u, pair := f.register(t)

	ctx := context.Background()
	p, err := f.svc.VerifyRefresh(ctx, pair.Refresh.Token)
	require.NoError(t, err)

	_, newPair, err := f.svc.Refresh(ctx, p)
	require.NoError(t, err)
	require.NotEqual(t, pair.Refresh.Token, newPair.Refresh.Token)
	require.Equal(t, 1, f.tokens.OwnedBy(u.ID), "rotation replaces the record, never accumulates")

	// Replaying the rotated token fails: its record is gone.
	_, err = f.svc.VerifyRefresh(ctx, pair.Refresh.Token)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, _, err = f.svc.Refresh(ctx, p)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// The new token still works.
	p2, err := f.svc.VerifyRefresh(ctx, newPair.Refresh.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, p2.UserID)
}

func TestRefreshFailsWhenUserGone(t *testing.T) {
	f := newFixture(t)
	u, pair := f.register(t)

	ctx := context.Background()
	p, err := f.svc.VerifyRefresh(ctx, pair.Refresh.Token)
	require.NoError(t, err)

	f.users.Remove(u.ID)

	_, _, err = f.svc.Refresh(ctx, p)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogoutRevokesRecord(t *testing.T) {
	f := newFixture(t)
	u, pair := f.register(t)

	ctx := context.Background()
	p, err := f.svc.VerifyRefresh(ctx, pair.Refresh.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, p))
	require.Equal(t, 0, f.tokens.OwnedBy(u.ID))

	// The token is now dead for both verification and refresh.
	_, err = f.svc.VerifyRefresh(ctx, pair.Refresh.Token)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Logging out again is a no-op, not an error.
	require.NoError(t, f.svc.Logout(ctx, p))
}

func TestVerifyRefreshRejectsCrossIdentityReuse(t *testing.T) {
	f := newFixture(t)
	u, _ := f.register(t)

	// Forge a token whose jti points at a record owned by someone else.
	other, err := f.tokens.Create(context.Background(), u.ID+1, 7*24*time.Hour)
	require.NoError(t, err)

	forged, err := f.signer.SignRefresh(token.Payload{UserID: u.ID, Role: u.Role, RecordID: other.ID})
	require.NoError(t, err)

	_, err = f.svc.VerifyRefresh(context.Background(), forged.Token)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
