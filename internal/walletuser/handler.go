package walletuser

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/middleware"
)

// Handler exposes the wallet user endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a wallet user HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logging.Component(logger, "walletuser.handler")}
}

type getOrCreateRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type getOrCreateResponse struct {
	Success bool   `json:"success"`
	UserID  int64  `json:"userId,omitempty"`
	Message string `json:"message,omitempty"`
}

// GetOrCreate handles POST /wallet-user/get-or-create.
func (h *Handler) GetOrCreate(c *fiber.Ctx) error {
	var req getOrCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(getOrCreateResponse{Message: err.Error()})
	}
	user, err := h.service.GetOrCreate(c.UserContext(), req.PhoneNumber)
	if err != nil {
		if errors.Is(err, ErrInvalidPhone) {
			return c.Status(http.StatusBadRequest).JSON(getOrCreateResponse{Message: err.Error()})
		}
		h.logger.Error("get or create failed", "request_id", middleware.RequestIDFromContext(c.UserContext()), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(getOrCreateResponse{Message: "wallet user store failure"})
	}
	return c.Status(http.StatusOK).JSON(getOrCreateResponse{Success: true, UserID: user.ID})
}
