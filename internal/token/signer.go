// Package token creates and verifies the two token kinds the service
// issues: RS256-signed access tokens verifiable by anyone holding the
// public key, and HS256-signed refresh tokens whose jti claim correlates
// them with a server-side record.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/auth-service/internal/config"
	"github.com/iliyamo/auth-service/internal/model"
)

// Issuer is the iss claim stamped into every token this service signs.
const Issuer = "auth-service"

var (
	// ErrNoKey and ErrNoSecret indicate missing key material.  They are
	// startup failures: a signer is never constructed without both halves.
	ErrNoKey    = errors.New("access token private key is not configured")
	ErrNoSecret = errors.New("refresh token secret is not configured")

	// ErrInvalidToken covers every verification failure: bad signature,
	// wrong algorithm, expired, malformed claims.  Callers get one error
	// kind so the cause cannot be probed from outside.
	ErrInvalidToken = errors.New("invalid token")
)

// Payload carries the verified identity claims of a token.  RecordID is the
// refresh token's jti (the refresh_tokens row id); it is zero for access
// tokens, which are stateless and carry no database-correlated id.
type Payload struct {
	UserID   uint64
	Role     model.Role
	RecordID uint64
}

// Signed is a serialized token along with its expiry, which callers need
// when setting cookie lifetimes.
type Signed struct {
	Token     string
	ExpiresAt time.Time
}

// Signer signs and verifies both token kinds.  It is immutable after
// construction and safe for concurrent use.
type Signer struct {
	keys          config.KeyPair
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewSigner validates the key material up front so that a misconfigured
// deployment fails at startup instead of on the first login.
func NewSigner(keys config.KeyPair, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Signer, error) {
	if keys.Private == nil || keys.Public == nil {
		return nil, ErrNoKey
	}
	if refreshSecret == "" {
		return nil, ErrNoSecret
	}
	return &Signer{
		keys:          keys,
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// SignAccess builds an RS256 access token for the payload's identity.
// Claims: sub (user id as string), role, iss, iat, exp = now + access TTL.
func (s *Signer) SignAccess(p Payload) (Signed, error) {
	now := time.Now().UTC()
	exp := now.Add(s.accessTTL)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(p.UserID, 10),
		"role": p.Role.String(),
		"iss":  Issuer,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := t.SignedString(s.keys.Private)
	if err != nil {
		return Signed{}, err
	}
	return Signed{Token: signed, ExpiresAt: exp}, nil
}

// SignRefresh builds an HS256 refresh token.  In addition to the access
// claims it sets jti to the string form of p.RecordID, tying the token to
// its refresh_tokens row for later revocation lookup.
func (s *Signer) SignRefresh(p Payload) (Signed, error) {
	if p.RecordID == 0 {
		return Signed{}, errors.New("refresh token requires a record id")
	}
	now := time.Now().UTC()
	exp := now.Add(s.refreshTTL)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(p.UserID, 10),
		"role": p.Role.String(),
		"iss":  Issuer,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
		"jti":  strconv.FormatUint(p.RecordID, 10),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.refreshSecret)
	if err != nil {
		return Signed{}, err
	}
	return Signed{Token: signed, ExpiresAt: exp}, nil
}

// ParseAccess verifies an access token under the public key and returns its
// payload.  Tokens signed with anything but RSA are rejected, so a refresh
// token can never pass as an access token.
func (s *Signer) ParseAccess(raw string) (Payload, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		return s.keys.Public, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Payload{}, ErrInvalidToken
	}
	return payloadFromClaims(tok, false)
}

// ParseRefresh verifies a refresh token under the shared secret.  The jti
// claim is mandatory; whether the record it names still exists is the
// store's concern, checked by the caller.
func (s *Signer) ParseRefresh(raw string) (Payload, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.refreshSecret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Payload{}, ErrInvalidToken
	}
	return payloadFromClaims(tok, true)
}

func payloadFromClaims(tok *jwt.Token, wantRecordID bool) (Payload, error) {
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Payload{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || uid == 0 {
		return Payload{}, ErrInvalidToken
	}

	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if !role.Valid() {
		return Payload{}, ErrInvalidToken
	}

	p := Payload{UserID: uid, Role: role}
	if wantRecordID {
		jti, _ := claims["jti"].(string)
		rid, err := strconv.ParseUint(jti, 10, 64)
		if err != nil || rid == 0 {
			return Payload{}, ErrInvalidToken
		}
		p.RecordID = rid
	}
	return p, nil
}
