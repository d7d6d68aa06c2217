// Package resolver maps a phone number to its backend wallet user id. The
// wallet id namespace is independent of the app's primary account ids; the
// two meet only through the phone number.
package resolver

import (
	"context"
	"log/slog"

	"github.com/unihub/walletsession/internal/gateway"
	"github.com/unihub/walletsession/internal/logging"
)

// IdentityCache is the device cache consulted before the network.
type IdentityCache interface {
	CachedPhoneNumber(ctx context.Context) (string, bool)
	CachedUserID(ctx context.Context) (int64, bool)
	CachedCustomerID(ctx context.Context) (string, bool)
	SetCache(ctx context.Context, phoneNumber string, userID int64, customerID string) error
}

// UserCreator resolves or creates the backend wallet user.
type UserCreator interface {
	GetOrCreateUser(ctx context.Context, phoneNumber string) (int64, error)
}

// Resolver resolves wallet user ids, cache first.
type Resolver struct {
	cache   IdentityCache
	creator UserCreator
	logger  *slog.Logger
}

// New builds a Resolver.
func New(cache IdentityCache, creator UserCreator, logger *slog.Logger) *Resolver {
	return &Resolver{cache: cache, creator: creator, logger: logging.Component(logger, "resolver")}
}

// GetOrCreateWalletUserID returns the wallet user id for phoneNumber. A cached
// id is only reused when it was cached for the same phone number. When the
// backend cannot be reached ok is false and the caller should continue in
// local-only mode.
func (r *Resolver) GetOrCreateWalletUserID(ctx context.Context, phoneNumber string) (id int64, ok bool) {
	phoneNumber = gateway.NormalizePhone(phoneNumber)
	cachedPhone, hasPhone := r.cache.CachedPhoneNumber(ctx)
	samePhone := hasPhone && cachedPhone == phoneNumber
	if samePhone {
		if cachedID, hasID := r.cache.CachedUserID(ctx); hasID {
			return cachedID, true
		}
	}

	id, err := r.creator.GetOrCreateUser(ctx, phoneNumber)
	if err != nil {
		r.logger.Warn("wallet user resolution failed, continuing without wallet id", "error", err)
		return 0, false
	}

	var customerID string
	if samePhone {
		customerID, _ = r.cache.CachedCustomerID(ctx)
	}
	if err := r.cache.SetCache(ctx, phoneNumber, id, customerID); err != nil {
		r.logger.Warn("wallet user resolved but cache update failed", "user_id", id, "error", err)
	}
	return id, true
}
