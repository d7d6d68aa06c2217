package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func requestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		if RequestIDFromContext(c.UserContext()) != RequestIDFrom(c) {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(RequestIDFrom(c))
	})
	return app
}

func requestIDFor(t *testing.T, app *fiber.App, header string) string {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestIDHeader, header)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected context and locals to agree, got %d", resp.StatusCode)
	}
	return resp.Header.Get(requestIDHeader)
}

func TestRequestIDEchoesOrAssigns(t *testing.T) {
	app := requestIDApp()

	if got := requestIDFor(t, app, "req-1"); got != "req-1" {
		t.Fatalf("expected echoed id, got %q", got)
	}
	if got := requestIDFor(t, app, ""); got == "" {
		t.Fatalf("expected generated id")
	}
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	app := requestIDApp()

	for _, bad := range []string{"has space", "quote\"", strings.Repeat("a", maxRequestIDBytes+1)} {
		got := requestIDFor(t, app, bad)
		if got == bad || got == "" {
			t.Fatalf("expected %q to be replaced, got %q", bad, got)
		}
	}
}
