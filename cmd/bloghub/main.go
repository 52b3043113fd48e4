package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/bloghub/bloghub/internal/auth"
	"github.com/bloghub/bloghub/internal/browser"
	"github.com/bloghub/bloghub/internal/config"
	"github.com/bloghub/bloghub/internal/events"
	"github.com/bloghub/bloghub/internal/logging"
	"github.com/bloghub/bloghub/internal/session"
	"github.com/bloghub/bloghub/internal/tui"
	"github.com/bloghub/bloghub/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "bloghub "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch cmd {
	case "about", "team":
		return openPage(out, cfg.WebURL+"/"+cmd)
	case "", "login", "register", "logout", "whoami":
	default:
		return fmt.Errorf("unknown command %q (try: bloghub help)", cmd)
	}

	logger, logCloser, err := logging.Open(cfg.LogFile, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close() //nolint:errcheck

	backend, closeBackend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := session.NewStore(backend, logger)
	bus := events.New()
	c := client.New(cfg.APIURL, store.AccessToken,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger))
	gw := auth.NewGateway(c, store, bus, logger)

	switch cmd {
	case "logout":
		return runLogout(out, gw, store)
	case "whoami":
		return runWhoami(out, store, time.Now())
	}

	start := "/"
	if cmd != "" {
		start = "/" + cmd
	}
	app := tui.NewApp(tui.Deps{
		API:     c,
		Auth:    gw,
		Session: store,
		Bus:     bus,
		Logger:  logger,
		WebURL:  cfg.WebURL,
		Start:   start,
	})
	defer app.Close()

	logger.Info("starting", "version", version, "api", cfg.APIURL, "backend", cfg.SessionBackend)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// openBackend builds the configured session backend. The returned func
// releases it.
func openBackend(cfg *config.Config, logger *slog.Logger) (session.Backend, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryBackend(), func() {}, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close() //nolint:errcheck
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Debug("session backend", "kind", "redis", "addr", cfg.RedisAddr, "profile", cfg.RedisProfile)
		return session.NewRedisBackend(rdb, cfg.RedisProfile), func() { rdb.Close() }, nil //nolint:errcheck
	default:
		fb, err := session.NewFileBackend(cfg.SessionDir())
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("session backend", "kind", "file", "dir", fb.Dir())
		return fb, func() {}, nil
	}
}

func runLogout(out io.Writer, gw *auth.Gateway, store session.Reader) error {
	if _, ok := store.Get(); !ok {
		fmt.Fprintln(out, "Already logged out.")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	gw.Logout(ctx)
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runWhoami(out io.Writer, store session.Reader, now time.Time) error {
	sess, ok := store.Get()
	if !ok {
		fmt.Fprintln(out, "Not logged in. Run: bloghub login")
		return nil
	}
	fmt.Fprintf(out, "%s <%s>\n", sess.User.DisplayName(), sess.User.Email)
	fmt.Fprintf(out, "role:    %s\n", sess.Role)
	fmt.Fprintf(out, "landing: %s\n", sess.Landing())
	if session.Expired(sess, now) {
		fmt.Fprintln(out, "token:   expired (the next launch signs you out)")
	}
	return nil
}

func openPage(out io.Writer, url string) error {
	if err := browser.Open(url); err != nil {
		fmt.Fprintln(out, url)
	}
	return nil
}
