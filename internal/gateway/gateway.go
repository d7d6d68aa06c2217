// Package gateway is the device-side client of the wallet session backend.
//
// Each method makes exactly one HTTP attempt and reports failure as a
// *walleterr.Error; nothing is retried and nothing panics. Callers that only
// need the success flag compare the returned error with nil.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/tokenstore"
	"github.com/unihub/walletsession/internal/walleterr"
)

const (
	defaultTimeout       = 30 * time.Second
	maxResponseBytes     = 1 << 20
	requestIDHeader      = "X-Request-ID"
	idempotencyKeyHeader = "Idempotency-Key"
)

// Config configures the gateway transport.
type Config struct {
	// BaseURL includes the API prefix, e.g. http://host/api.
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Gateway wraps the session store, fetch, refresh and logout endpoints and
// keeps the device cache in step with successful store and logout calls.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	cache      *tokenstore.Store
	logger     *slog.Logger
}

// New builds a gateway. cache receives identity writes after a successful
// store and is cleared after a successful logout.
func New(cfg Config, cache *tokenstore.Store, logger *slog.Logger) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if cache == nil {
		return nil, fmt.Errorf("token store is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Gateway{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		cache:      cache,
		logger:     logging.Component(logger, "gateway"),
	}, nil
}

// StoreSession persists a freshly issued token pair for phoneNumber. On
// success the device cache is updated with the identity; a cache write
// failure is logged and does not fail the call. On any failure the cache is
// left untouched.
func (g *Gateway) StoreSession(ctx context.Context, userID int64, phoneNumber, customerID string, tokens TokenPair) error {
	const op = "gateway.store_session"
	phoneNumber = NormalizePhone(phoneNumber)
	body := storeRequest{
		UserID:      userID,
		PhoneNumber: phoneNumber,
		CustomerID:  optional(customerID),
		TokenData:   tokens,
	}
	if _, err := g.do(ctx, op, http.MethodPost, "/wallet-session/store", body); err != nil {
		return err
	}

	if err := g.cache.SetCache(ctx, phoneNumber, userID, customerID); err != nil {
		g.logger.Warn("session stored but cache update failed", "op", op, "error", err)
	}
	g.logger.Debug("session stored", "user_id", userID)
	return nil
}

// FetchSession returns the backend session record for phoneNumber. A missing
// record is a KindBackendRejected failure. The device cache is not touched.
func (g *Gateway) FetchSession(ctx context.Context, phoneNumber string) (*Session, error) {
	const op = "gateway.fetch_session"
	phoneNumber = NormalizePhone(phoneNumber)
	env, err := g.do(ctx, op, http.MethodGet, "/wallet-session/"+url.PathEscape(phoneNumber), nil)
	if err != nil {
		return nil, err
	}
	if env.Session == nil {
		return nil, g.reject(op, http.StatusOK, "response carried no session")
	}
	return env.Session, nil
}

// RefreshAccessToken replaces the stored access token after the client has
// re-authenticated with the wallet provider. The refresh token is unchanged.
func (g *Gateway) RefreshAccessToken(ctx context.Context, phoneNumber, accessToken string, accessTokenExpiresIn int64) error {
	body := refreshRequest{
		PhoneNumber:          NormalizePhone(phoneNumber),
		AccessToken:          accessToken,
		AccessTokenExpiresIn: accessTokenExpiresIn,
	}
	_, err := g.do(ctx, "gateway.refresh_access_token", http.MethodPost, "/wallet-session/refresh", body)
	return err
}

// Logout deactivates the backend session and clears the device cache. The
// result reflects the backend call only.
func (g *Gateway) Logout(ctx context.Context, phoneNumber string) error {
	const op = "gateway.logout"
	if _, err := g.do(ctx, op, http.MethodPost, "/wallet-session/logout", phoneRequest{PhoneNumber: NormalizePhone(phoneNumber)}); err != nil {
		return err
	}
	if err := g.cache.ClearCache(ctx); err != nil {
		g.logger.Warn("logged out but cache clear failed", "op", op, "error", err)
	}
	return nil
}

// GetOrCreateUser resolves the backend wallet user id for phoneNumber,
// creating it on first use.
func (g *Gateway) GetOrCreateUser(ctx context.Context, phoneNumber string) (int64, error) {
	const op = "gateway.get_or_create_user"
	env, err := g.do(ctx, op, http.MethodPost, "/wallet-user/get-or-create", phoneRequest{PhoneNumber: NormalizePhone(phoneNumber)})
	if err != nil {
		return 0, err
	}
	if env.UserID == nil {
		return 0, g.reject(op, http.StatusOK, "response carried no user id")
	}
	return *env.UserID, nil
}

func (g *Gateway) do(ctx context.Context, op, method, path string, body any) (envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return envelope{}, g.fail(&walleterr.Error{Kind: walleterr.KindNetwork, Op: op, Message: "encode request", Err: err})
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return envelope{}, g.fail(&walleterr.Error{Kind: walleterr.KindNetwork, Op: op, Message: "build request", Err: err})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(idempotencyKeyHeader, uuid.NewString())
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return envelope{}, g.fail(&walleterr.Error{Kind: walleterr.KindNetwork, Op: op, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, g.fail(&walleterr.Error{Kind: walleterr.KindNetwork, Op: op, Status: resp.StatusCode, Message: "read response", Err: err})
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return envelope{}, g.reject(op, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return envelope{}, g.fail(&walleterr.Error{Kind: walleterr.KindBackendRejected, Op: op, Status: resp.StatusCode, Message: "malformed response", Err: decodeErr})
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "backend reported failure"
		}
		return envelope{}, g.reject(op, resp.StatusCode, msg)
	}
	return env, nil
}

func (g *Gateway) reject(op string, status int, msg string) error {
	return g.fail(&walleterr.Error{Kind: walleterr.KindBackendRejected, Op: op, Status: status, Message: msg})
}

func (g *Gateway) fail(e *walleterr.Error) error {
	attrs := []any{"op", e.Op, "kind", e.Kind.String()}
	if e.Status != 0 {
		attrs = append(attrs, "status", e.Status)
	}
	if e.Message != "" {
		attrs = append(attrs, "message", e.Message)
	}
	if e.Err != nil {
		attrs = append(attrs, "error", e.Err)
	}
	g.logger.Warn("session request failed", attrs...)
	return e
}

// NormalizePhone returns the phone number in the form the backend keys
// sessions and wallet users by: surrounding whitespace removed, inner
// characters kept.
func NormalizePhone(phoneNumber string) string {
	return strings.TrimSpace(phoneNumber)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
