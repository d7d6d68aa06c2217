package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/notification"
)

// maxTokenLifetime caps *ExpiresIn values so now+lifetime stays far from
// time.Duration overflow.
const maxTokenLifetime = 10 * 365 * 24 * 60 * 60

// Service owns the authoritative session records. It turns relative token
// lifetimes into absolute expiries on write and derives the expiry flags on
// read, so devices never compare timestamps against their own clocks.
type Service struct {
	repo     Repository
	sealer   Sealer
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a session service. A nil sealer stores tokens in plain
// text and a nil notifier drops lifecycle events.
func NewService(repo Repository, sealer Sealer, notifier notification.Notifier, logger *slog.Logger) *Service {
	if sealer == nil {
		sealer = PlainSealer()
	}
	return &Service{
		repo:     repo,
		sealer:   sealer,
		notifier: notifier,
		logger:   logging.Component(logger, "session"),
		now:      time.Now,
	}
}

// Store persists a token pair, replacing and reactivating any previous
// session for the phone number.
func (s *Service) Store(ctx context.Context, in StoreInput) (Record, error) {
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validateStore(in); err != nil {
		return Record{}, err
	}

	access, err := s.sealer.Seal(in.PhoneNumber, in.Tokens.AccessToken)
	if err != nil {
		return Record{}, fmt.Errorf("seal access token: %w", err)
	}
	refresh, err := s.sealer.Seal(in.PhoneNumber, in.Tokens.RefreshToken)
	if err != nil {
		return Record{}, fmt.Errorf("seal refresh token: %w", err)
	}

	now := s.clock()
	rec := Record{
		PhoneNumber:           in.PhoneNumber,
		UserID:                in.UserID,
		CustomerID:            in.CustomerID,
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(time.Duration(in.Tokens.AccessTokenExpiresIn) * time.Second),
		RefreshTokenExpiresAt: now.Add(time.Duration(in.Tokens.RefreshTokenExpiresIn) * time.Second),
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("store session: %w", err)
	}

	s.notify(ctx, notification.KindSessionStored, rec.PhoneNumber, rec.UserID)
	rec.AccessToken = in.Tokens.AccessToken
	rec.RefreshToken = in.Tokens.RefreshToken
	return rec, nil
}

// Fetch returns the active session for phoneNumber with expiry flags derived
// at the current instant. A token is expired from its expiry instant onwards.
func (s *Service) Fetch(ctx context.Context, phoneNumber string) (View, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return View{}, fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}
	rec, err := s.repo.FindActive(ctx, phoneNumber)
	if err != nil {
		return View{}, err
	}

	if rec.AccessToken, err = s.sealer.Open(phoneNumber, rec.AccessToken); err != nil {
		return View{}, err
	}
	if rec.RefreshToken, err = s.sealer.Open(phoneNumber, rec.RefreshToken); err != nil {
		return View{}, err
	}

	now := s.clock()
	return View{
		Record:                rec,
		IsAccessTokenExpired:  !now.Before(rec.AccessTokenExpiresAt),
		IsRefreshTokenExpired: !now.Before(rec.RefreshTokenExpiresAt),
	}, nil
}

// Refresh replaces the access token of an active session. The refresh token
// and its expiry are untouched. Sessions whose refresh token has expired
// cannot be refreshed.
func (s *Service) Refresh(ctx context.Context, in RefreshInput) error {
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	switch {
	case in.PhoneNumber == "":
		return fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	case in.AccessToken == "":
		return fmt.Errorf("%w: access token is required", ErrInvalidInput)
	case in.AccessTokenExpiresIn <= 0:
		return fmt.Errorf("%w: access token lifetime must be positive", ErrInvalidInput)
	case in.AccessTokenExpiresIn > maxTokenLifetime:
		return fmt.Errorf("%w: access token lifetime exceeds %d seconds", ErrInvalidInput, maxTokenLifetime)
	}

	rec, err := s.repo.FindActive(ctx, in.PhoneNumber)
	if err != nil {
		return err
	}
	now := s.clock()
	if !now.Before(rec.RefreshTokenExpiresAt) {
		return ErrRefreshExpired
	}

	access, err := s.sealer.Seal(in.PhoneNumber, in.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	expiresAt := now.Add(time.Duration(in.AccessTokenExpiresIn) * time.Second)
	if err := s.repo.UpdateAccessToken(ctx, in.PhoneNumber, access, expiresAt, now); err != nil {
		return err
	}

	s.notify(ctx, notification.KindSessionRefreshed, in.PhoneNumber, rec.UserID)
	return nil
}

// Logout deactivates the session. Deactivated sessions are not returned by
// Fetch until a new token pair is stored.
func (s *Service) Logout(ctx context.Context, phoneNumber string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}
	if err := s.repo.Deactivate(ctx, phoneNumber, s.clock()); err != nil {
		return err
	}
	s.notify(ctx, notification.KindSessionLoggedOut, phoneNumber, 0)
	return nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) notify(ctx context.Context, kind, phoneNumber string, userID int64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notification.Message{Kind: kind, PhoneNumber: phoneNumber, UserID: userID}); err != nil {
		s.logger.Warn("session event delivery failed", "kind", kind, "error", err)
	}
}

func validateStore(in StoreInput) error {
	switch {
	case in.PhoneNumber == "":
		return fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	case in.UserID <= 0:
		return fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	case in.Tokens.AccessToken == "" || in.Tokens.RefreshToken == "":
		return fmt.Errorf("%w: access and refresh tokens are required", ErrInvalidInput)
	case in.Tokens.AccessTokenExpiresIn <= 0 || in.Tokens.RefreshTokenExpiresIn <= 0:
		return fmt.Errorf("%w: token lifetimes must be positive", ErrInvalidInput)
	case in.Tokens.AccessTokenExpiresIn > maxTokenLifetime || in.Tokens.RefreshTokenExpiresIn > maxTokenLifetime:
		return fmt.Errorf("%w: token lifetimes exceed %d seconds", ErrInvalidInput, maxTokenLifetime)
	}
	return nil
}
