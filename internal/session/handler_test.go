package session

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/unihub/walletsession/internal/logging"
)

func setupHandlerApp(t *testing.T) (*fiber.App, *fakeClock) {
	t.Helper()
	svc, clock, _ := newTestService(t, nil)
	h := NewHandler(svc, logging.Discard())

	app := fiber.New()
	app.Post("/api/wallet-session/store", h.Store)
	app.Post("/api/wallet-session/refresh", h.Refresh)
	app.Post("/api/wallet-session/logout", h.Logout)
	app.Get("/api/wallet-session/:phoneNumber", h.Fetch)
	return app, clock
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

const storeBody = `{"userId":42,"phoneNumber":"0821234567","customerId":"cus_1",
"tokenData":{"accessToken":"a1","refreshToken":"r1","accessTokenExpiresIn":3600,"refreshTokenExpiresIn":2592000}}`

func TestHandlerStoreAndFetch(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/wallet-session/store", storeBody)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("store: expected success, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/wallet-session/0821234567", "")
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("fetch: expected success, got %d %v", status, body)
	}
	session, ok := body["session"].(map[string]any)
	if !ok {
		t.Fatalf("expected session object, got %v", body["session"])
	}
	if session["accessToken"] != "a1" || session["customerId"] != "cus_1" {
		t.Fatalf("unexpected session %v", session)
	}
	if session["isAccessTokenExpired"] != false || session["isRefreshTokenExpired"] != false {
		t.Fatalf("unexpected expiry flags %v", session)
	}
}

func TestHandlerFetchExpiredAccess(t *testing.T) {
	app, clock := setupHandlerApp(t)
	doJSON(t, app, http.MethodPost, "/api/wallet-session/store", storeBody)

	clock.Advance(2 * time.Hour)
	_, body := doJSON(t, app, http.MethodGet, "/api/wallet-session/0821234567", "")
	session := body["session"].(map[string]any)
	if session["isAccessTokenExpired"] != true || session["isRefreshTokenExpired"] != false {
		t.Fatalf("unexpected expiry flags %v", session)
	}
}

func TestHandlerFetchNotFound(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/wallet-session/0000000000", "")
	if status != http.StatusNotFound || body["success"] != false {
		t.Fatalf("expected 404 failure, got %d %v", status, body)
	}
}

func TestHandlerStoreValidation(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/wallet-session/store", `{"userId":0,"phoneNumber":"1"}`)
	if status != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("expected 400 failure, got %d %v", status, body)
	}
}

func TestHandlerRefreshAndLogout(t *testing.T) {
	app, clock := setupHandlerApp(t)
	doJSON(t, app, http.MethodPost, "/api/wallet-session/store", storeBody)

	status, body := doJSON(t, app, http.MethodPost, "/api/wallet-session/refresh",
		`{"phoneNumber":"0821234567","accessToken":"a2","accessTokenExpiresIn":3600}`)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("refresh: expected success, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/wallet-session/logout", `{"phoneNumber":"0821234567"}`)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("logout: expected success, got %d %v", status, body)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/wallet-session/0821234567", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after logout, got %d", status)
	}

	doJSON(t, app, http.MethodPost, "/api/wallet-session/store", storeBody)
	clock.Advance(31 * 24 * time.Hour)
	status, _ = doJSON(t, app, http.MethodPost, "/api/wallet-session/refresh",
		`{"phoneNumber":"0821234567","accessToken":"a3","accessTokenExpiresIn":3600}`)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for expired refresh token, got %d", status)
	}
}

func TestHandlerFetchUnescapesPhoneNumber(t *testing.T) {
	app, _ := setupHandlerApp(t)
	body := strings.Replace(storeBody, `"0821234567"`, `"+27 82 123 4567"`, 1)
	if status, resp := doJSON(t, app, http.MethodPost, "/api/wallet-session/store", body); status != http.StatusOK {
		t.Fatalf("store: expected success, got %d %v", status, resp)
	}

	status, resp := doJSON(t, app, http.MethodGet, "/api/wallet-session/+27%2082%20123%204567", "")
	if status != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d %v", status, resp)
	}
	if session := resp["session"].(map[string]any); session["phoneNumber"] != "+27 82 123 4567" {
		t.Fatalf("unexpected session %v", session)
	}
}
