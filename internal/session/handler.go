package session

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/middleware"
)

// Handler exposes the wallet session endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a session HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logging.Component(logger, "session.handler")}
}

type tokenDataRequest struct {
	AccessToken           string `json:"accessToken"`
	RefreshToken          string `json:"refreshToken"`
	AccessTokenExpiresIn  int64  `json:"accessTokenExpiresIn"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn"`
}

type storeRequest struct {
	UserID      int64            `json:"userId"`
	PhoneNumber string           `json:"phoneNumber"`
	CustomerID  *string          `json:"customerId"`
	TokenData   tokenDataRequest `json:"tokenData"`
}

type refreshRequest struct {
	PhoneNumber          string `json:"phoneNumber"`
	AccessToken          string `json:"accessToken"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn"`
}

type logoutRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type sessionResponse struct {
	PhoneNumber           string    `json:"phoneNumber"`
	CustomerID            *string   `json:"customerId"`
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	IsAccessTokenExpired  bool      `json:"isAccessTokenExpired"`
	IsRefreshTokenExpired bool      `json:"isRefreshTokenExpired"`
}

type fetchResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Session *sessionResponse `json:"session,omitempty"`
}

// Store handles POST /wallet-session/store.
func (h *Handler) Store(c *fiber.Ctx) error {
	var req storeRequest
	if err := c.BodyParser(&req); err != nil {
		return reply(c, http.StatusBadRequest, err.Error())
	}
	in := StoreInput{
		UserID:      req.UserID,
		PhoneNumber: req.PhoneNumber,
		Tokens: TokenData{
			AccessToken:           req.TokenData.AccessToken,
			RefreshToken:          req.TokenData.RefreshToken,
			AccessTokenExpiresIn:  req.TokenData.AccessTokenExpiresIn,
			RefreshTokenExpiresIn: req.TokenData.RefreshTokenExpiresIn,
		},
	}
	if req.CustomerID != nil {
		in.CustomerID = *req.CustomerID
	}
	if _, err := h.service.Store(c.UserContext(), in); err != nil {
		return h.fail(c, "store", err)
	}
	return c.Status(http.StatusOK).JSON(statusResponse{Success: true, Message: "session stored"})
}

// Fetch handles GET /wallet-session/:phoneNumber.
func (h *Handler) Fetch(c *fiber.Ctx) error {
	phoneNumber, err := url.PathUnescape(c.Params("phoneNumber"))
	if err != nil {
		return reply(c, http.StatusBadRequest, "malformed phone number in path")
	}
	view, err := h.service.Fetch(c.UserContext(), phoneNumber)
	if err != nil {
		return h.fail(c, "fetch", err)
	}
	resp := sessionResponse{
		PhoneNumber:           view.PhoneNumber,
		AccessToken:           view.AccessToken,
		RefreshToken:          view.RefreshToken,
		AccessTokenExpiresAt:  view.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: view.RefreshTokenExpiresAt,
		IsAccessTokenExpired:  view.IsAccessTokenExpired,
		IsRefreshTokenExpired: view.IsRefreshTokenExpired,
	}
	if view.CustomerID != "" {
		customerID := view.CustomerID
		resp.CustomerID = &customerID
	}
	return c.Status(http.StatusOK).JSON(fetchResponse{Success: true, Session: &resp})
}

// Refresh handles POST /wallet-session/refresh.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return reply(c, http.StatusBadRequest, err.Error())
	}
	err := h.service.Refresh(c.UserContext(), RefreshInput{
		PhoneNumber:          req.PhoneNumber,
		AccessToken:          req.AccessToken,
		AccessTokenExpiresIn: req.AccessTokenExpiresIn,
	})
	if err != nil {
		return h.fail(c, "refresh", err)
	}
	return c.Status(http.StatusOK).JSON(statusResponse{Success: true, Message: "access token updated"})
}

// Logout handles POST /wallet-session/logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req logoutRequest
	if err := c.BodyParser(&req); err != nil {
		return reply(c, http.StatusBadRequest, err.Error())
	}
	if err := h.service.Logout(c.UserContext(), req.PhoneNumber); err != nil {
		return h.fail(c, "logout", err)
	}
	return c.Status(http.StatusOK).JSON(statusResponse{Success: true, Message: "session deactivated"})
}

func (h *Handler) fail(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return reply(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return reply(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRefreshExpired):
		return reply(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("session operation failed", "op", op, "request_id", middleware.RequestIDFromContext(c.UserContext()), "error", err)
		return reply(c, http.StatusInternalServerError, "session store failure")
	}
}

func reply(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(statusResponse{Success: false, Message: message})
}
