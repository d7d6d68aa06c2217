package tokenstore

import (
	"context"
	"errors"
)

// ErrInjected is returned by FailingStorage.
var ErrInjected = errors.New("injected storage failure")

// FailingStorage is a test helper whose reads and/or writes always fail.
// Writes counts write calls, failed or not.
type FailingStorage struct {
	FailReads  bool
	FailWrites bool
	Inner      Storage
	Writes     int
}

func (s *FailingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if s.FailReads {
		return "", false, ErrInjected
	}
	if s.Inner == nil {
		return "", false, nil
	}
	return s.Inner.Get(ctx, key)
}

func (s *FailingStorage) MultiSet(ctx context.Context, values map[string]string) error {
	s.Writes++
	if s.FailWrites {
		return ErrInjected
	}
	if s.Inner == nil {
		return nil
	}
	return s.Inner.MultiSet(ctx, values)
}

func (s *FailingStorage) MultiRemove(ctx context.Context, keys ...string) error {
	s.Writes++
	if s.FailWrites {
		return ErrInjected
	}
	if s.Inner == nil {
		return nil
	}
	return s.Inner.MultiRemove(ctx, keys...)
}

func (s *FailingStorage) Update(ctx context.Context, set map[string]string, remove []string) error {
	s.Writes++
	if s.FailWrites {
		return ErrInjected
	}
	if s.Inner == nil {
		return nil
	}
	return s.Inner.Update(ctx, set, remove)
}
