package walletuser

import (
	"errors"
	"time"
)

// ErrInvalidPhone is returned for an empty phone number.
var ErrInvalidPhone = errors.New("phone number is required")

// User is a wallet-scoped identity. Its numeric id is unrelated to the app's
// primary account id.
type User struct {
	ID          int64
	PhoneNumber string
	CreatedAt   time.Time
}
