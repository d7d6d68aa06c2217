// Package walleterr classifies failures of the device-side session client.
// Every boundary method of the client reports success or a *Error; the kind
// stays inspectable through errors.As while callers only branch on nil.
package walleterr

import (
	"errors"
	"fmt"
)

// Kind is the coarse failure class.
type Kind int

const (
	// KindNetwork covers transport failures: dial errors, timeouts, cancelled contexts.
	KindNetwork Kind = iota + 1
	// KindBackendRejected covers non-2xx statuses, success:false bodies and
	// responses that cannot be decoded.
	KindBackendRejected
	// KindStorage covers local key/value store read or write failures.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindBackendRejected:
		return "backend_rejected"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a classified client failure.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or 0 when err is not a classified failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err is a classified failure of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
