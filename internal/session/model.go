package session

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no active session exists for a phone number.
	ErrNotFound = errors.New("session not found")
	// ErrRefreshExpired is returned when an access token refresh is attempted
	// after the refresh token expired.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// Record is the persisted session. Expiries are absolute UTC times computed
// when the tokens are stored.
type Record struct {
	PhoneNumber           string
	UserID                int64
	CustomerID            string
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// View is a record as seen at a particular instant.
type View struct {
	Record
	IsAccessTokenExpired  bool
	IsRefreshTokenExpired bool
}

// TokenData is the token pair as issued by the wallet provider.
type TokenData struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresIn  int64
	RefreshTokenExpiresIn int64
}

// StoreInput captures the data required to persist a session.
type StoreInput struct {
	UserID      int64
	PhoneNumber string
	CustomerID  string
	Tokens      TokenData
}

// RefreshInput captures an access token replacement.
type RefreshInput struct {
	PhoneNumber          string
	AccessToken          string
	AccessTokenExpiresIn int64
}
