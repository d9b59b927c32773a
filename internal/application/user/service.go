// Package user manages customer accounts.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	domoutbox "github.com/Zhima-Mochi/pizzeria/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
)

const (
	userService    = "user-service"
	useCaseCreate  = "user.create"
	useCaseGet     = "user.get"
	useCaseUpdate  = "user.update"
	useCaseDelete  = "user.delete"
	publishTimeout = 300 * time.Millisecond
)

var (
	ErrMissingFields = apperr.New(apperr.Validation, "missing required fields")
	ErrNothingToSet  = apperr.New(apperr.Validation, "missing fields to update")
)

// Hasher derives the stored password digest.
type Hasher interface {
	Hash(password string) (string, error)
}

// Authorizer checks that a token is valid for a username.
type Authorizer interface {
	Authorize(ctx context.Context, tokenID, username string) error
}

type Service struct {
	repo      domain.Repository
	hasher    Hasher
	auth      Authorizer
	publisher domoutbox.Publisher
	obs       application.Instruments
}

func NewService(
	repo domain.Repository,
	hasher Hasher,
	auth Authorizer,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	if publisher == nil {
		publisher = domoutbox.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		auth:      auth,
		publisher: publisher,
		obs:       application.NewInstruments(tel, userService),
	}
}

type CreateInput struct {
	Username string
	Password string
	Email    string
	Street   string
}

// UpdateInput changes the non-nil fields of an account.
type UpdateInput struct {
	Username string
	Email    *string
	Street   *string
	Password *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (_ *domain.Profile, err error) {
	username := strings.TrimSpace(in.Username)
	ctx, call := s.obs.Begin(ctx, useCaseCreate, "CreateUser", attribute.String("user.name", username))
	defer func() { call.End(err) }()

	password := strings.TrimSpace(in.Password)
	email := strings.TrimSpace(in.Email)
	street := strings.TrimSpace(in.Street)
	if username == "" || password == "" || street == "" || !domain.ValidEmail(email) {
		call.Fail("FIELDS_INVALID")
		return nil, ErrMissingFields
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		call.Fail("HASH_FAILED")
		return nil, err
	}
	u, err := domain.New(username, email, street, hash)
	if err != nil {
		call.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, err
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		call.Fail("USER_INSERT_FAILED")
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

func (s *Service) Get(ctx context.Context, tokenID, username string) (_ *domain.Profile, err error) {
	username = strings.TrimSpace(username)
	ctx, call := s.obs.Begin(ctx, useCaseGet, "GetUser", attribute.String("user.name", username))
	defer func() { call.End(err) }()

	if username == "" {
		call.Fail("USERNAME_REQUIRED")
		return nil, ErrMissingFields
	}
	if err := s.auth.Authorize(ctx, tokenID, username); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	u, err := s.repo.Get(ctx, username)
	if err != nil {
		call.Fail("USER_LOAD_FAILED")
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

func (s *Service) Update(ctx context.Context, tokenID string, in UpdateInput) (_ *domain.Profile, err error) {
	username := strings.TrimSpace(in.Username)
	ctx, call := s.obs.Begin(ctx, useCaseUpdate, "UpdateUser", attribute.String("user.name", username))
	defer func() { call.End(err) }()

	if username == "" {
		call.Fail("USERNAME_REQUIRED")
		return nil, ErrMissingFields
	}
	email, street, password := trimmed(in.Email), trimmed(in.Street), trimmed(in.Password)
	if email == nil && street == nil && password == nil {
		call.Fail("NOTHING_TO_UPDATE")
		return nil, ErrNothingToSet
	}
	if email != nil && !domain.ValidEmail(*email) {
		call.Fail("EMAIL_INVALID")
		return nil, domain.ErrInvalidEmail
	}
	if err := s.auth.Authorize(ctx, tokenID, username); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}

	u, err := s.repo.Get(ctx, username)
	if err != nil {
		call.Fail("USER_LOAD_FAILED")
		return nil, err
	}
	if email != nil {
		if err := u.SetEmail(*email); err != nil {
			call.Fail("EMAIL_INVALID")
			return nil, err
		}
	}
	if street != nil {
		if err := u.SetStreet(*street); err != nil {
			call.Fail("STREET_INVALID")
			return nil, err
		}
	}
	if password != nil {
		hash, err := s.hasher.Hash(*password)
		if err != nil {
			call.Fail("HASH_FAILED")
			return nil, err
		}
		u.SetPasswordHash(hash)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		call.Fail("USER_UPDATE_FAILED")
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

// Delete removes the account and announces it so dependent documents are
// cleaned up asynchronously.
func (s *Service) Delete(ctx context.Context, tokenID, username string) (err error) {
	username = strings.TrimSpace(username)
	ctx, call := s.obs.Begin(ctx, useCaseDelete, "DeleteUser", attribute.String("user.name", username))
	defer func() { call.End(err) }()

	if username == "" {
		call.Fail("USERNAME_REQUIRED")
		return ErrMissingFields
	}
	if err := s.auth.Authorize(ctx, tokenID, username); err != nil {
		call.Fail("UNAUTHORIZED")
		return err
	}
	u, err := s.repo.Get(ctx, username)
	if err != nil {
		call.Fail("USER_LOAD_FAILED")
		return err
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		call.Fail("USER_DELETE_FAILED")
		return err
	}

	evt := domain.NewDeletedEvent(u)
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if perr := s.publisher.Publish(pubCtx, evt); perr != nil {
		// The account is gone either way; leftovers are only orphaned documents.
		call.SetStatus("EVENT_PUBLISH_FAILED")
		call.Span().RecordError(perr)
		call.Logger().Warn("event_publish_failed",
			observability.F("event", evt.EventName()),
			observability.F("error", perr.Error()),
		)
	}
	return nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
