package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"

	"github.com/unihub/walletsession/internal/gateway"
)

type command func(ctx context.Context, c *client, args []string, out io.Writer) error

var commands = map[string]command{
	"restore": restoreCmd,
	"store":   storeCmd,
	"refresh": refreshCmd,
	"logout":  logoutCmd,
	"resolve": resolveCmd,
	"cache":   cacheCmd,
}

var errPhoneRequired = errors.New("-phone is required and nothing is cached")

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// phoneOrCached falls back to the cached phone number when the flag is empty.
func phoneOrCached(ctx context.Context, c *client, phone string) (string, error) {
	if phone != "" {
		return phone, nil
	}
	if cached, ok := c.store.CachedPhoneNumber(ctx); ok {
		return cached, nil
	}
	return "", errPhoneRequired
}

func restoreCmd(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	outcome := c.manager.Restore(ctx)
	result := map[string]any{"state": outcome.State.String(), "session": outcome.Session}
	if outcome.Err != nil {
		result["reason"] = outcome.Err.Error()
	}
	return printJSON(out, result)
}

func storeCmd(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	userID := fs.Int64("user", 0, "wallet user id")
	phone := fs.String("phone", "", "phone number")
	customerID := fs.String("customer", "", "payment customer id")
	access := fs.String("access", "", "access token")
	refresh := fs.String("refresh", "", "refresh token")
	accessTTL := fs.Int64("access-ttl", 3600, "access token lifetime in seconds")
	refreshTTL := fs.Int64("refresh-ttl", 30*24*3600, "refresh token lifetime in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 || *phone == "" || *access == "" || *refresh == "" {
		return errors.New("-user, -phone, -access and -refresh are required")
	}
	err := c.gateway.StoreSession(ctx, *userID, *phone, *customerID, gateway.TokenPair{
		AccessToken:           *access,
		RefreshToken:          *refresh,
		AccessTokenExpiresIn:  *accessTTL,
		RefreshTokenExpiresIn: *refreshTTL,
	})
	if err != nil {
		return err
	}
	return printJSON(out, map[string]any{"stored": true})
}

func refreshCmd(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	phone := fs.String("phone", "", "phone number (defaults to the cached one)")
	access := fs.String("access", "", "new access token")
	ttl := fs.Int64("ttl", 3600, "access token lifetime in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *access == "" {
		return errors.New("-access is required")
	}
	p, err := phoneOrCached(ctx, c, *phone)
	if err != nil {
		return err
	}
	if err := c.gateway.RefreshAccessToken(ctx, p, *access, *ttl); err != nil {
		return err
	}
	return printJSON(out, map[string]any{"refreshed": true})
}

func logoutCmd(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	phone := fs.String("phone", "", "phone number (defaults to the cached one)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := phoneOrCached(ctx, c, *phone)
	if err != nil {
		return err
	}
	if err := c.gateway.Logout(ctx, p); err != nil {
		return err
	}
	return printJSON(out, map[string]any{"loggedOut": true})
}

func resolveCmd(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *phone == "" {
		return errors.New("-phone is required")
	}
	id, ok := c.resolver.GetOrCreateWalletUserID(ctx, *phone)
	if !ok {
		return errors.New("wallet user could not be resolved")
	}
	return printJSON(out, map[string]any{"userId": id})
}

func cacheCmd(ctx context.Context, c *client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	clearCache := fs.Bool("clear", false, "remove the cached identity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *clearCache {
		if err := c.store.ClearCache(ctx); err != nil {
			return err
		}
	}

	view := map[string]any{}
	if phone, ok := c.store.CachedPhoneNumber(ctx); ok {
		view["phoneNumber"] = phone
	}
	if id, ok := c.store.CachedUserID(ctx); ok {
		view["userId"] = id
	}
	if cid, ok := c.store.CachedCustomerID(ctx); ok {
		view["customerId"] = cid
	}
	return printJSON(out, view)
}
