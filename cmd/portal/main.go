// Command portal is a terminal front end for the payments backend. It drives
// the same session and payment containers a UI would.
package main

import (
	"context"       // Request contexts
	"encoding/json" // Output
	"fmt"           // Usage text
	"os"            // Args and exit codes
	"os/signal"     // Ctrl-C cancels requests
	"sort"          // Command listing

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging

	"payportal/internal/api"        // REST client
	"payportal/internal/config"     // Configuration
	"payportal/internal/credential" // Credential stores
	"payportal/internal/httpclient" // HTTP wrapper
	"payportal/internal/logging"    // Logger setup
	"payportal/internal/mcp"        // Tool-call client
	"payportal/internal/notify"     // Notifications
	"payportal/internal/payments"   // Payment container
	"payportal/internal/session"    // Session container
)

// app bundles the wired client stack
type app struct {
	cfg      *config.Config
	rest     *api.Client
	tools    *mcp.Client
	session  *session.Session
	payments *payments.Container
}

type command struct {
	help string
	auth bool // Restore the stored session first
	run  func(ctx context.Context, a *app, args []string) error
}

// newStore picks the credential backend named by TOKEN_STORE
func newStore(cfg *config.Config) (credential.Store, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return credential.NewMemoryStore(), nil
	case config.TokenStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		return credential.NewRedisStore(rdb, ""), nil
	case config.TokenStoreFile, "":
		return credential.NewFileStore(cfg.TokenFile), nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore)
	}
}

func newApp(cfg *config.Config) (*app, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	h, err := httpclient.New(httpclient.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		Store:     store,
		AuthRoute: cfg.AuthRoute,
		Redirector: httpclient.RedirectFunc(func(string) {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `portal login` to sign in again.")
		}),
	})
	if err != nil {
		return nil, err
	}
	notes := printer()
	rest := api.New(h)
	tools := mcp.New(h)
	sess := session.New(rest, store, notes, session.WithSecure(h.Secure()))
	h.OnUnauthorized(sess.Invalidate) // A rejected token signs the session out
	return &app{
		cfg:      cfg,
		rest:     rest,
		tools:    tools,
		session:  sess,
		payments: payments.New(tools, rest, notes),
	}, nil
}

// printer shows notifications on stderr, keeping stdout for JSON output
func printer() notify.Notifier {
	return notify.Func(func(level, msg string) {
		prefix := map[string]string{notify.LevelSuccess: "✓", notify.LevelError: "✗", notify.LevelInfo: "•"}[level]
		fmt.Fprintln(os.Stderr, prefix, msg)
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: portal <command> [flags]")
	fmt.Fprintln(os.Stderr)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].help)
	}
}

func main() {
	cfg := config.LoadConfig()                 // Load configuration
	logging.Setup(cfg.LogLevel, cfg.LogFormat) // Setup logger

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	a, err := newApp(cfg)
	if err != nil {
		logrus.Fatalf("failed to configure client: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cmd.auth && !a.session.Restore(ctx) {
		fmt.Fprintln(os.Stderr, "Not signed in. Run `portal login` first.")
		os.Exit(1)
	}
	if err := cmd.run(ctx, a, os.Args[2:]); err != nil {
		logrus.WithError(err).Debug("Command failed")
		os.Exit(1)
	}
}
