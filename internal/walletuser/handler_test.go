package walletuser

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/unihub/walletsession/internal/logging"
)

func TestHandlerGetOrCreate(t *testing.T) {
	h := NewHandler(NewService(NewMemoryRepository(), logging.Discard()), logging.Discard())
	app := fiber.New()
	app.Post("/api/wallet-user/get-or-create", h.GetOrCreate)

	call := func(body string) (int, getOrCreateResponse) {
		req := httptest.NewRequest(http.MethodPost, "/api/wallet-user/get-or-create", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()
		var out getOrCreateResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp.StatusCode, out
	}

	status, first := call(`{"phoneNumber":"0821234567"}`)
	if status != http.StatusOK || !first.Success || first.UserID != 1 {
		t.Fatalf("unexpected first response %d %+v", status, first)
	}
	_, second := call(`{"phoneNumber":"0821234567"}`)
	if second.UserID != first.UserID {
		t.Fatalf("expected stable id, got %d and %d", first.UserID, second.UserID)
	}

	status, bad := call(`{"phoneNumber":""}`)
	if status != http.StatusBadRequest || bad.Success {
		t.Fatalf("expected 400, got %d %+v", status, bad)
	}
}
