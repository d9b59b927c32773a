// Package auth issues, renews, verifies and revokes session tokens.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/token"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
)

const (
	authService      = "auth-service"
	useCaseIssue     = "token.issue"
	useCaseRenew     = "token.renew"
	useCaseRevoke    = "token.revoke"
	useCaseRevokeAll = "token.revoke_all"

	DefaultTTL      = time.Hour
	DefaultRenewTTL = 24 * time.Hour
)

var (
	ErrBadCredentials = apperr.New(apperr.Auth, "could not find the specified user or the password did not match")
	ErrMalformedID    = apperr.New(apperr.Validation, "token id must be 20 lowercase alphanumeric characters")
)

type Options struct {
	TTL      time.Duration
	RenewTTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Service struct {
	users    user.Repository
	tokens   token.Repository
	hasher   *Hasher
	ids      application.IDGenerator
	ttl      time.Duration
	renewTTL time.Duration
	now      func() time.Time
	obs      application.Instruments
}

func NewService(
	users user.Repository,
	tokens token.Repository,
	hasher *Hasher,
	ids application.IDGenerator,
	tel observability.Observability,
	opts Options,
) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.RenewTTL <= 0 {
		opts.RenewTTL = DefaultRenewTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		ids:      ids,
		ttl:      opts.TTL,
		renewTTL: opts.RenewTTL,
		now:      opts.Clock,
		obs:      application.NewInstruments(tel, authService),
	}
}

// IssueToken exchanges a username and password for a new session token.
func (s *Service) IssueToken(ctx context.Context, username, password string) (_ *token.Token, err error) {
	username = strings.TrimSpace(username)
	ctx, call := s.obs.Begin(ctx, useCaseIssue, "IssueToken", attribute.String("user.name", username))
	defer func() { call.End(err) }()

	if username == "" || Normalize(password) == "" {
		call.Fail("CREDENTIALS_REQUIRED")
		return nil, apperr.New(apperr.Validation, "username and password are required")
	}

	u, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			call.Fail("USER_NOT_FOUND")
			return nil, ErrBadCredentials
		}
		call.Fail("USER_LOAD_FAILED")
		return nil, err
	}
	if !s.hasher.Matches(password, u.HashedPassword) {
		call.Fail("PASSWORD_MISMATCH")
		return nil, ErrBadCredentials
	}

	t := token.New(s.ids.NewID(), u.Username, s.now(), s.ttl)
	if err := s.tokens.Insert(ctx, t); err != nil {
		call.Fail("TOKEN_SAVE_FAILED")
		return nil, err
	}
	return t, nil
}

func (s *Service) GetToken(ctx context.Context, id string) (*token.Token, error) {
	if !token.WellFormedID(id) {
		return nil, ErrMalformedID
	}
	return s.tokens.Get(ctx, id)
}

// RenewToken moves an unexpired token's expiry to now plus the renewal window.
func (s *Service) RenewToken(ctx context.Context, id string) (_ *token.Token, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseRenew, "RenewToken")
	defer func() { call.End(err) }()

	t, err := s.GetToken(ctx, id)
	if err != nil {
		call.Fail("TOKEN_LOOKUP_FAILED")
		return nil, err
	}
	if err := t.Extend(s.now(), s.renewTTL); err != nil {
		call.Fail("TOKEN_EXPIRED")
		return nil, err
	}
	if err := s.tokens.Update(ctx, t); err != nil {
		call.Fail("TOKEN_SAVE_FAILED")
		return nil, err
	}
	return t, nil
}

// VerifyToken reports whether id names an unexpired token owned by username.
// Lookup failures of any kind yield false.
func (s *Service) VerifyToken(ctx context.Context, id, username string) bool {
	if !token.WellFormedID(id) || username == "" {
		return false
	}
	t, err := s.tokens.Get(ctx, id)
	if err != nil {
		return false
	}
	return t.Username == username && t.ValidAt(s.now())
}

// Authorize is VerifyToken as an error.
func (s *Service) Authorize(ctx context.Context, id, username string) error {
	if !s.VerifyToken(ctx, id, username) {
		return token.ErrInvalid
	}
	return nil
}

// Resolve returns the owner of a valid token.
func (s *Service) Resolve(ctx context.Context, id string) (string, error) {
	if !token.WellFormedID(id) {
		return "", token.ErrInvalid
	}
	t, err := s.tokens.Get(ctx, id)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return "", token.ErrInvalid
		}
		return "", err
	}
	if !t.ValidAt(s.now()) {
		return "", token.ErrInvalid
	}
	return t.Username, nil
}

// Revoke deletes a token. Revoking an unknown token fails with token.ErrNotFound.
func (s *Service) Revoke(ctx context.Context, id string) (err error) {
	ctx, call := s.obs.Begin(ctx, useCaseRevoke, "RevokeToken")
	defer func() { call.End(err) }()

	if !token.WellFormedID(id) {
		call.Fail("TOKEN_ID_INVALID")
		return ErrMalformedID
	}
	if err := s.tokens.Delete(ctx, id); err != nil {
		call.Fail("TOKEN_DELETE_FAILED")
		return err
	}
	return nil
}

// RevokeAllFor deletes every token owned by username and returns how many were removed.
func (s *Service) RevokeAllFor(ctx context.Context, username string) (n int, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseRevokeAll, "RevokeAllTokens", attribute.String("user.name", username))
	defer func() {
		call.Add(observability.F("revoked", n))
		call.End(err)
	}()

	all, err := s.tokens.List(ctx)
	if err != nil {
		call.Fail("TOKEN_LIST_FAILED")
		return 0, err
	}
	for _, t := range all {
		if t.Username != username {
			continue
		}
		if err := s.tokens.Delete(ctx, t.ID); err != nil && !errors.Is(err, token.ErrNotFound) {
			call.Fail("TOKEN_DELETE_FAILED")
			return n, err
		}
		n++
	}
	return n, nil
}
