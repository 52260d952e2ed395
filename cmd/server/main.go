package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arcadia-news/internal/api"
	"arcadia-news/internal/api/demo"
	"arcadia-news/internal/api/rest"
	"arcadia-news/internal/config"
	"arcadia-news/internal/handlers"
	"arcadia-news/internal/ratelimit"
	"arcadia-news/internal/session"
	"arcadia-news/internal/spend"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	var out = os.Stderr
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	sessions, err := session.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sessions.Close()

	client, cleanup, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger.Info().Str("mode", cfg.APIMode).Msg("backend client ready")

	coordinator := spend.New(logger)
	loginLimiter := ratelimit.New(cfg.LoginRateWindow, cfg.LoginRateLimit)

	h := handlers.NewHandlers(client, sessions, coordinator, loginLimiter,
		cfg.TemplateDir, cfg.SecureCookie, logger)

	mux := setupRouter(h, cfg.StaticDir)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.RequestLogger(h.WithViewer(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Periodic housekeeping for expired sessions and the login limiter.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sessions.CleanExpired(); err != nil {
					logger.Warn().Err(err).Msg("session cleanup failed")
				}
				loginLimiter.Cleanup()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// newClient builds the backend client for the configured mode. Demo
// mode runs a local stand-in backend; rest mode talks to the real API.
func newClient(cfg config.Config) (api.Client, func(), error) {
	switch cfg.APIMode {
	case config.ModeREST:
		return rest.New(cfg.APIBaseURL), func() {}, nil
	default:
		store, err := demo.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return demo.NewClient(store, cfg.DemoJWTSecret), func() { store.Close() }, nil
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /country/{code}", h.CountryNews)
	mux.HandleFunc("GET /search", h.Search)
	mux.HandleFunc("GET /lang", h.SetLanguage)

	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.HandleFunc("GET /articles/{id}", h.ArticleView)
	mux.HandleFunc("POST /articles/{id}/like", h.LikeArticle)
	mux.HandleFunc("POST /articles/{id}/comments", h.CommentCreate)
	// The spend coordinator gates the publish POST itself; only the
	// form page needs the auth redirect.
	mux.Handle("GET /articles/new", h.RequireAuth(http.HandlerFunc(h.CreateArticleForm)))
	mux.HandleFunc("POST /articles", h.CreateArticle)

	mux.Handle("GET /dashboard", h.RequireAuth(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /topup", h.RequireAuth(http.HandlerFunc(h.TopUpForm)))
	mux.Handle("POST /topup", h.RequireAuth(http.HandlerFunc(h.TopUp)))

	return mux
}
