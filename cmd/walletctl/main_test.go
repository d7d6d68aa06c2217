package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/unihub/walletsession/internal/config"
	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/server"
)

func startBackend(t *testing.T) string {
	t.Helper()
	srv, err := server.New(config.Config{AppName: "walletctl-test", AppEnv: "development"}, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return "http://" + ln.Addr().String() + "/api"
}

func runJSON(t *testing.T, cfg config.ClientConfig, args ...string) map[string]any {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), cfg, args, &stdout, &stderr); code != 0 {
		t.Fatalf("walletctl %v exited %d: %s", args, code, stderr.String())
	}
	var decoded map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output %q: %v", stdout.String(), err)
	}
	return decoded
}

func TestWalletctlSessionFlow(t *testing.T) {
	cfg := config.ClientConfig{
		APIBaseURL:     startBackend(t),
		TokenStore:     config.TokenStoreFile,
		TokenStorePath: filepath.Join(t.TempDir(), "tokens.json"),
		HTTPTimeout:    5 * time.Second,
		LogLevel:       "error",
	}

	if out := runJSON(t, cfg, "restore"); out["state"] != "no_session" {
		t.Fatalf("expected no session, got %v", out)
	}

	out := runJSON(t, cfg, "resolve", "-phone", "0821234567")
	if out["userId"] != float64(1) {
		t.Fatalf("expected first wallet user id, got %v", out)
	}

	runJSON(t, cfg, "store", "-user", "1", "-phone", "0821234567", "-access", "a1", "-refresh", "r1")

	// each invocation reopens the file cache
	out = runJSON(t, cfg, "cache")
	if out["phoneNumber"] != "0821234567" || out["userId"] != float64(1) {
		t.Fatalf("unexpected cache %v", out)
	}

	out = runJSON(t, cfg, "restore")
	if out["state"] != "active" {
		t.Fatalf("expected active session, got %v", out)
	}

	runJSON(t, cfg, "refresh", "-access", "a2")
	runJSON(t, cfg, "logout")

	if out := runJSON(t, cfg, "cache"); len(out) != 0 {
		t.Fatalf("expected empty cache after logout, got %v", out)
	}
}

func TestWalletctlUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := config.ClientConfig{APIBaseURL: "http://127.0.0.1:1/api", TokenStore: config.TokenStoreMemory}
	if code := run(context.Background(), cfg, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage exit code, got %d", code)
	}
	if code := run(context.Background(), cfg, []string{"bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected unknown command exit code, got %d", code)
	}
}

func TestWalletctlLogoutWithoutPhone(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg := config.ClientConfig{APIBaseURL: "http://127.0.0.1:1/api", TokenStore: config.TokenStoreMemory}
	if code := run(context.Background(), cfg, []string{"logout"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected failure without cached phone, got %d", code)
	}
}
