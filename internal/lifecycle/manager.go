// Package lifecycle decides at process start whether a wallet session can be
// resumed without asking the user to log in again.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/unihub/walletsession/internal/gateway"
	"github.com/unihub/walletsession/internal/logging"
)

// State is the validity of a restored session.
type State int

const (
	// StateNoSession means nothing is cached or the backend has no record.
	StateNoSession State = iota
	// StateRefreshExpired means the record exists but cannot be resumed.
	StateRefreshExpired
	// StateNeedsRefresh means the refresh token is valid but the access token is not.
	StateNeedsRefresh
	// StateActive means both tokens are valid.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no_session"
	case StateRefreshExpired:
		return "refresh_expired"
	case StateNeedsRefresh:
		return "needs_refresh"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Valid reports whether a session in this state may be surfaced to callers.
func (s State) Valid() bool {
	return s == StateNeedsRefresh || s == StateActive
}

// ErrNoCachedPhone is the outcome error when the device has no cached identity.
var ErrNoCachedPhone = errors.New("no cached phone number")

// ErrRefreshExpired is the outcome error for sessions whose refresh token expired.
var ErrRefreshExpired = errors.New("refresh token expired")

// PhoneCache yields the phone number cached on the device.
type PhoneCache interface {
	CachedPhoneNumber(ctx context.Context) (string, bool)
}

// SessionFetcher reads the backend session record.
type SessionFetcher interface {
	FetchSession(ctx context.Context, phoneNumber string) (*gateway.Session, error)
}

// Outcome is the full result of a restore attempt.
type Outcome struct {
	Session *gateway.Session
	State   State
	Err     error
}

// Manager restores wallet sessions.
type Manager struct {
	cache   PhoneCache
	fetcher SessionFetcher
	logger  *slog.Logger
}

// NewManager builds a Manager.
func NewManager(cache PhoneCache, fetcher SessionFetcher, logger *slog.Logger) *Manager {
	return &Manager{cache: cache, fetcher: fetcher, logger: logging.Component(logger, "lifecycle")}
}

// RestoreSession returns the resumable session, or nil when the user must
// authenticate. The returned session may still report an expired access
// token; refreshing it before the first authenticated call is up to the caller.
func (m *Manager) RestoreSession(ctx context.Context) *gateway.Session {
	return m.Restore(ctx).Session
}

// Restore runs the restore sequence: cache read, backend fetch, refresh
// expiry check. Steps run strictly in order and each failure ends the
// sequence with a nil session.
func (m *Manager) Restore(ctx context.Context) Outcome {
	phone, ok := m.cache.CachedPhoneNumber(ctx)
	if !ok {
		m.logger.Info("no session to restore", "reason", ErrNoCachedPhone.Error())
		return Outcome{State: StateNoSession, Err: ErrNoCachedPhone}
	}

	session, err := m.fetcher.FetchSession(ctx, phone)
	if err != nil {
		m.logger.Info("no session to restore", "reason", "fetch failed", "error", err)
		return Outcome{State: StateNoSession, Err: err}
	}
	if session == nil {
		m.logger.Info("no session to restore", "reason", "backend returned no session")
		return Outcome{State: StateNoSession, Err: errors.New("backend returned no session")}
	}

	// The access flag is irrelevant once the refresh token is gone.
	if session.IsRefreshTokenExpired {
		m.logger.Info("session not restorable", "reason", ErrRefreshExpired.Error())
		return Outcome{State: StateRefreshExpired, Err: ErrRefreshExpired}
	}

	state := StateActive
	if session.IsAccessTokenExpired {
		state = StateNeedsRefresh
	}
	m.logger.Info("session restored", "state", state.String())
	return Outcome{Session: session, State: state}
}
