package gateway

import "time"

// TokenPair is the credential pair issued by the wallet provider on login.
// Lifetimes are relative, in seconds; the backend converts them to absolute
// expiries when the pair is stored.
type TokenPair struct {
	AccessToken           string `json:"accessToken"`
	RefreshToken          string `json:"refreshToken"`
	AccessTokenExpiresIn  int64  `json:"accessTokenExpiresIn"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn"`
}

// Session is the client's read-through copy of the backend session record.
// The expiry flags are computed by the backend at read time and are never
// recomputed on the device.
type Session struct {
	PhoneNumber           string    `json:"phoneNumber"`
	CustomerID            *string   `json:"customerId"`
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	IsAccessTokenExpired  bool      `json:"isAccessTokenExpired"`
	IsRefreshTokenExpired bool      `json:"isRefreshTokenExpired"`
}

type storeRequest struct {
	UserID      int64     `json:"userId"`
	PhoneNumber string    `json:"phoneNumber"`
	CustomerID  *string   `json:"customerId"`
	TokenData   TokenPair `json:"tokenData"`
}

type refreshRequest struct {
	PhoneNumber          string `json:"phoneNumber"`
	AccessToken          string `json:"accessToken"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn"`
}

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// envelope is the common response shape of every session endpoint.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Session *Session `json:"session,omitempty"`
	UserID  *int64   `json:"userId,omitempty"`
}
