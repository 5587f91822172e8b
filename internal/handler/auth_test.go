package handler_test

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/repository/repofake"
	"github.com/iliyamo/auth-service/internal/router"
	"github.com/iliyamo/auth-service/internal/token"
)

// newTestServer wires the real router against in-memory repositories.  The
// rate limiter is disabled and the user/tenant handlers get no repository:
// their routes are only exercised up to the auth middleware here.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := config.KeyPair{Private: key, Public: &key.PublicKey}

	signer, err := token.NewSigner(keys, "server-test-secret", time.Hour, 7*24*time.Hour)
	require.NoError(t, err)

	svc := auth.NewService(repofake.NewFakeUserRepo(), repofake.NewFakeTokenRepo(), signer, bcrypt.MinCost, 7*24*time.Hour)

	e := echo.New()
	e.Validator = handler.NewValidator()
	limiter := middleware.NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	router.Register(e,
		handler.NewAuthHandler(svc),
		handler.NewUserHandler(nil, bcrypt.MinCost),
		handler.NewTenantHandler(nil),
		svc, limiter)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

const registerBody = `{"firstName":"Jane","lastName":"Doe","email":"a@x.com","password":"secret123"}`

func TestRegisterSetsScriptInaccessibleCookies(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(t, rec, name)
		require.NotEmpty(t, ck.Value)
		require.True(t, ck.HttpOnly, "%s must be unreadable by page scripts", name)
		require.Equal(t, http.SameSiteStrictMode, ck.SameSite)
		require.True(t, ck.Expires.After(time.Now()), "%s must carry a max age", name)
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/auth/register", `{"firstName":"Jane","lastName":"Doe","email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmailIs409(t *testing.T) {
	e := newTestServer(t)

	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", registerBody).Code)
	require.Equal(t, http.StatusConflict, doJSON(e, http.MethodPost, "/auth/register", registerBody).Code)
}

func TestLoginFailuresAnswerIdentically(t *testing.T) {
	e := newTestServer(t)
	doJSON(e, http.MethodPost, "/auth/register", registerBody)

	wrongPass := doJSON(e, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong-password"}`)
	noUser := doJSON(e, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"secret123"}`)

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, noUser.Code)
	require.Equal(t, wrongPass.Body.String(), noUser.Body.String())
}

func TestRefreshRotatesAndOldTokenDies(t *testing.T) {
	e := newTestServer(t)
	reg := doJSON(e, http.MethodPost, "/auth/register", registerBody)
	oldRefresh := cookieByName(t, reg, "refreshToken")

	first := doJSON(e, http.MethodPost, "/auth/refresh", "", oldRefresh)
	require.Equal(t, http.StatusOK, first.Code)
	newRefresh := cookieByName(t, first, "refreshToken")
	require.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// Replaying the rotated token must fail: its record was deleted.
	replay := doJSON(e, http.MethodPost, "/auth/refresh", "", oldRefresh)
	require.Equal(t, http.StatusUnauthorized, replay.Code)

	// The rotated-in token keeps working.
	second := doJSON(e, http.MethodPost, "/auth/refresh", "", newRefresh)
	require.Equal(t, http.StatusOK, second.Code)
}

func TestLogoutClearsCookiesAndRevokes(t *testing.T) {
	e := newTestServer(t)
	reg := doJSON(e, http.MethodPost, "/auth/register", registerBody)
	refresh := cookieByName(t, reg, "refreshToken")

	out := doJSON(e, http.MethodPost, "/auth/logout", "", refresh)
	require.Equal(t, http.StatusNoContent, out.Code)
	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(t, out, name)
		require.Empty(t, ck.Value)
		require.Negative(t, ck.MaxAge)
	}

	// The presented token's record is gone, so a later refresh fails.
	rec := doJSON(e, http.MethodPost, "/auth/refresh", "", refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSelfReturnsUserWithoutPassword(t *testing.T) {
	e := newTestServer(t)
	reg := doJSON(e, http.MethodPost, "/auth/register", registerBody)
	access := cookieByName(t, reg, "accessToken")

	rec := doJSON(e, http.MethodGet, "/auth/self", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"email":"a@x.com"`)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestAdminRouteForbiddenForCustomer(t *testing.T) {
	e := newTestServer(t)
	reg := doJSON(e, http.MethodPost, "/auth/register", registerBody)
	access := cookieByName(t, reg, "accessToken")

	// Registered users are customers; the admin gate must answer 403,
	// not 401: the identity is fine, the role is not.
	rec := doJSON(e, http.MethodGet, "/users", "", access)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRouteUnauthorizedWithoutToken(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerHeaderWorksLikeCookie(t *testing.T) {
	e := newTestServer(t)
	reg := doJSON(e, http.MethodPost, "/auth/register", registerBody)
	access := cookieByName(t, reg, "accessToken")

	req := httptest.NewRequest(http.MethodGet, "/auth/self", nil)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
