package walletuser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unihub/walletsession/internal/logging"
)

// Service hands out wallet user ids independently of the primary login.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a wallet user service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logging.Component(logger, "walletuser")}
}

// GetOrCreate resolves the wallet user for phoneNumber. Repeated calls with
// the same number return the same id.
func (s *Service) GetOrCreate(ctx context.Context, phoneNumber string) (User, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return User{}, ErrInvalidPhone
	}
	user, created, err := s.repo.GetOrCreate(ctx, phoneNumber, time.Now().UTC())
	if err != nil {
		return User{}, fmt.Errorf("get or create wallet user: %w", err)
	}
	if created {
		s.logger.Info("wallet user created", "user_id", user.ID)
	}
	return user, nil
}
