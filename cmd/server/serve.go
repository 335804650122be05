package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soaringjerry/EcoImpact/internal/api"
	"github.com/soaringjerry/EcoImpact/internal/config"
	"github.com/soaringjerry/EcoImpact/internal/db"
	"github.com/soaringjerry/EcoImpact/internal/logging"
	"github.com/soaringjerry/EcoImpact/internal/middleware"
	"github.com/soaringjerry/EcoImpact/internal/services"
	"github.com/soaringjerry/EcoImpact/internal/utils"
)

// persistedKeys are the storage keys the session writes.
var persistedKeys = []string{services.StorageKeyUser, services.StorageKeyHistory}

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Out: cmd.ErrOrStderr()})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, logger)
		},
	}
}

// app is the wired server state shared by the handler and shutdown.
type app struct {
	storage db.Backend
	session *services.SessionService
	handler http.Handler
}

func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	storage, err := openStorage(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	signer, err := middleware.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	inbox := services.NewInbox(cfg.HTTP.InboxSize)
	notifier := services.MultiNotifier{inbox, services.NewLogNotifier(logging.Component(logger, "notify"))}
	session := services.NewSessionService(
		storage,
		services.NewDemoBackend(cfg.Auth.Latency),
		services.NewDemoCatalog(time.Now().UTC()),
		services.WithNotifier(notifier),
		services.WithLogger(logging.Component(logger, "session")),
	)
	if err := session.Load(); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	router := api.NewRouter(api.Deps{
		Session:  session,
		Signer:   signer,
		Inbox:    inbox,
		Notifier: notifier,
		Logger:   logging.Component(logger, "api"),
	})
	return &app{
		storage: storage,
		session: session,
		handler: buildHandler(cfg.HTTP, router, logger),
	}, nil
}

// openStorage opens the configured backend. The sqlite driver first imports
// an existing JSON state file once.
func openStorage(cfg config.StorageConfig, logger zerolog.Logger) (db.Backend, error) {
	switch cfg.Driver {
	case db.DriverSQLite:
		if _, err := db.MigrateFileToSQLite(cfg.FilePath, cfg.SQLitePath, cfg.MigrationsDir, persistedKeys, logging.Component(logger, "migrate")); err != nil {
			return nil, fmt.Errorf("migrate state file: %w", err)
		}
		return db.Open(cfg.Driver, cfg.SQLitePath, cfg.MigrationsDir)
	case db.DriverFile:
		return db.Open(cfg.Driver, cfg.FilePath, "")
	default:
		return db.Open(cfg.Driver, "", "")
	}
}

func buildHandler(cfg config.HTTPConfig, router *api.Router, logger zerolog.Logger) http.Handler {
	c, b := buildInfo()
	mux := http.NewServeMux()
	mux.Handle("/api/", router.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "EcoImpact API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     c,
			"build_time": b,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"commit": c, "build_time": b})
	})

	// Static files take priority over the dev proxy.
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	} else if cfg.DevFrontendURL != "" {
		if u, err := url.Parse(cfg.DevFrontendURL); err == nil {
			rp := httputil.NewSingleHostReverseProxy(u)
			rp.ModifyResponse = func(res *http.Response) error {
				middleware.SetNoStore(res.Header)
				return nil
			}
			mux.Handle("/", rp)
		} else {
			logger.Warn().Err(err).Str("url", cfg.DevFrontendURL).Msg("invalid dev frontend url")
		}
	}

	mws := []func(http.Handler) http.Handler{middleware.RequestLogger(logging.Component(logger, "http"))}
	if len(cfg.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(cfg.AllowedOrigins, cfg.AllowCredentials))
	}
	mws = append(mws,
		middleware.SecureHeaders,
		middleware.NoStore("/api/", "/health", "/version"),
		middleware.LocaleMiddleware,
	)
	return middleware.Chain(mux, mws...)
}

func runServer(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.storage.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close storage")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("EcoImpact server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
