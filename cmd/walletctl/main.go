// Command walletctl drives the device-side wallet session client from a shell.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unihub/walletsession/internal/config"
)

const usage = `usage: walletctl <command> [flags]

commands:
  restore   restore the cached session from the backend
  store     store a freshly issued token pair
  refresh   replace the access token of the stored session
  logout    deactivate the session and clear the device cache
  resolve   get or create the wallet user id for a phone number
  cache     show or clear the device cache
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, cfg config.ClientConfig, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	c, err := newClient(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "walletctl: %v\n", err)
		return 1
	}
	defer c.close()

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "walletctl: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err := cmd(ctx, c, args[1:], stdout); err != nil {
		fmt.Fprintf(stderr, "walletctl %s: %v\n", args[0], err)
		return 1
	}
	return 0
}
