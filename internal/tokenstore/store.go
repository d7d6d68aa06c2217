package tokenstore

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/walleterr"
)

// Keys of the cached wallet identity.
const (
	KeyPhoneNumber = "wallet_phone_number"
	KeyUserID      = "wallet_user_id"
	KeyCustomerID  = "wallet_customer_id"
)

var identityKeys = []string{KeyPhoneNumber, KeyUserID, KeyCustomerID}

// Store caches the wallet identity of the device. It is an optimisation only:
// reads never fail, a storage error is logged and reported as a miss.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

// New wraps storage in a Store.
func New(storage Storage, logger *slog.Logger) *Store {
	return &Store{storage: storage, logger: logging.Component(logger, "tokenstore")}
}

// CachedPhoneNumber returns the cached phone number.
func (s *Store) CachedPhoneNumber(ctx context.Context) (string, bool) {
	return s.get(ctx, KeyPhoneNumber)
}

// CachedUserID returns the cached wallet user id. Values that do not parse as
// a decimal integer count as a miss.
func (s *Store) CachedUserID(ctx context.Context) (int64, bool) {
	raw, ok := s.get(ctx, KeyUserID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("cached user id unparsable", "value", raw, "error", err)
		return 0, false
	}
	return id, true
}

// CachedCustomerID returns the cached wallet customer id.
func (s *Store) CachedCustomerID(ctx context.Context) (string, bool) {
	return s.get(ctx, KeyCustomerID)
}

// SetCache writes the cached identity in one batch. An empty customerID
// removes any previously cached customer id.
func (s *Store) SetCache(ctx context.Context, phoneNumber string, userID int64, customerID string) error {
	values := map[string]string{
		KeyPhoneNumber: phoneNumber,
		KeyUserID:      strconv.FormatInt(userID, 10),
	}
	var remove []string
	if customerID != "" {
		values[KeyCustomerID] = customerID
	} else {
		remove = []string{KeyCustomerID}
	}
	if err := s.storage.Update(ctx, values, remove); err != nil {
		return s.fail("set cache", err)
	}
	return nil
}

// ClearCache removes all cached identity keys in a single batch.
func (s *Store) ClearCache(ctx context.Context) error {
	if err := s.storage.MultiRemove(ctx, identityKeys...); err != nil {
		return s.fail("clear cache", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Store) fail(op string, err error) error {
	s.logger.Error("cache write failed", "op", op, "error", err)
	return &walleterr.Error{Kind: walleterr.KindStorage, Op: "tokenstore." + op, Err: err}
}
