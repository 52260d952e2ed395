package handlers

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"arcadia-news/internal/api"
	"arcadia-news/internal/auth"
	"arcadia-news/internal/i18n"
	"arcadia-news/internal/ratelimit"
	"arcadia-news/internal/session"
	"arcadia-news/internal/spend"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// ViewerContextKey is the context key for the resolved viewer.
	ViewerContextKey contextKey = "viewer"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "arcadia_session"
	// LangCookieName is the name of the UI language cookie.
	LangCookieName = "arcadia_lang"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	client       api.Client
	sessions     *session.Store
	spend        *spend.Coordinator
	loginLimiter *ratelimit.Limiter
	templateDir  string
	secureCookie bool
	log          zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client api.Client, sessions *session.Store, coordinator *spend.Coordinator,
	loginLimiter *ratelimit.Limiter, templateDir string, secureCookie bool, log zerolog.Logger) *Handlers {
	return &Handlers{
		client:       client,
		sessions:     sessions,
		spend:        coordinator,
		loginLimiter: loginLimiter,
		templateDir:  templateDir,
		secureCookie: secureCookie,
		log:          log,
	}
}

// ViewerFromContext retrieves the resolved viewer from request context.
func ViewerFromContext(r *http.Request) session.Viewer {
	if v, ok := r.Context().Value(ViewerContextKey).(session.Viewer); ok {
		return v
	}
	return session.Anonymous
}

// WithViewer resolves the session cookie into a Viewer and stores it in
// the request context. Pages stay public; this middleware never
// redirects. It also implements rolling sessions: past the halfway
// point of a session's lifetime the expiry is extended.
func (h *Handlers) WithViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := session.Anonymous

		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			sess, err := h.sessions.Validate(cookie.Value)
			if err == nil {
				h.maybeRenew(w, sess)
				user := sess.User
				viewer = session.Viewer{
					State: session.Present,
					Token: api.Token(sess.AccessToken),
					User:  &user,
				}
			} else {
				// Unknown or expired token: clear it.
				h.clearSessionCookie(w)
			}
		}

		ctx := context.WithValue(r.Context(), ViewerContextKey, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) maybeRenew(w http.ResponseWriter, sess *session.Session) {
	if time.Until(sess.ExpiresAt) >= session.Duration/2 {
		return
	}
	newExpiresAt := time.Now().Add(session.Duration)
	if err := h.sessions.Renew(sess.Token, newExpiresAt); err == nil {
		h.setSessionCookie(w, sess.Token)
	}
	// If renewal fails, just continue with the current session.
}

// RequireAuth wraps pages that only make sense for a logged-in viewer
// (dashboard, create article, top-up).
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ViewerFromContext(r).LoggedIn() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with a generated request id.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		next.ServeHTTP(w, r)
		h.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.Duration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// lang returns the viewer's UI language from the language cookie.
func (h *Handlers) lang(r *http.Request) string {
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if _, ok := i18n.Languages[cookie.Value]; ok {
			return cookie.Value
		}
	}
	return "en"
}

// SetLanguage switches the UI language and sends the viewer back.
func (h *Handlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if _, ok := i18n.Languages[lang]; ok {
		http.SetCookie(w, &http.Cookie{
			Name:     LangCookieName,
			Value:    lang,
			Path:     "/",
			MaxAge:   365 * 24 * 3600,
			SameSite: http.SameSiteLaxMode,
		})
	}
	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = "/"
	}
	http.Redirect(w, r, referer, http.StatusFound)
}

// Page carries the fields every view needs.
type Page struct {
	Viewer session.Viewer
	Lang   string
}

func (h *Handlers) page(r *http.Request) Page {
	return Page{Viewer: ViewerFromContext(r), Lang: h.lang(r)}
}

func (h *Handlers) templates(r *http.Request, viewName string) (*template.Template, error) {
	lang := h.lang(r)
	funcs := template.FuncMap{
		"t":   func(key string) string { return i18n.T(lang, key) },
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	return template.New("base.html").Funcs(funcs).ParseFiles(
		filepath.Join(h.templateDir, "base.html"),
		filepath.Join(h.templateDir, viewName),
	)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := h.templates(r, viewName)
	if err != nil {
		h.log.Error().Err(err).Str("view", viewName).Msg("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		h.log.Error().Err(err).Str("view", viewName).Msg("template execution error")
	}
}

// renderPartial executes a named sub-template of a view, used for HTMX
// fragment responses.
func (h *Handlers) renderPartial(w http.ResponseWriter, r *http.Request, viewName, partial string, data any) {
	tmpl, err := h.templates(r, viewName)
	if err != nil {
		h.log.Error().Err(err).Str("view", viewName).Msg("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, partial, data); err != nil {
		h.log.Error().Err(err).Str("partial", partial).Msg("template execution error")
	}
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Page
	Email string
	Error string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if ViewerFromContext(r).LoggedIn() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", LoginViewModel{Page: h.page(r)})
}

// Login handles the login form submission: it exchanges credentials for
// API tokens and stores them in a new session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(clientIP(r)) {
		h.render(w, r, "login.html", LoginViewModel{Page: h.page(r), Error: "Too many attempts. Please wait a minute and try again."})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{Page: h.page(r), Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.render(w, r, "login.html", LoginViewModel{Page: h.page(r), Email: email, Error: "Email and password are required"})
		return
	}

	resp, err := h.client.Login(r.Context(), email, password)
	if err != nil {
		msg := "Invalid email or password"
		if !errors.Is(err, api.ErrUnauthorized) {
			h.log.Warn().Err(err).Msg("login request failed")
			msg = "Login is temporarily unavailable. Please try again."
		}
		h.render(w, r, "login.html", LoginViewModel{Page: h.page(r), Email: email, Error: msg})
		return
	}

	if err := h.startSession(w, resp); err != nil {
		h.log.Error().Err(err).Msg("failed to create session")
		h.render(w, r, "login.html", LoginViewModel{Page: h.page(r), Email: email, Error: "An error occurred. Please try again."})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// RegisterViewModel holds data for the registration page.
type RegisterViewModel struct {
	Page
	Form  map[string]string
	Error string
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if ViewerFromContext(r).LoggedIn() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "register.html", RegisterViewModel{Page: h.page(r), Form: map[string]string{}})
}

// Register handles account creation and logs the new user in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register.html", RegisterViewModel{Page: h.page(r), Form: map[string]string{}, Error: "Invalid form submission"})
		return
	}

	form := map[string]string{
		"username":   strings.TrimSpace(r.FormValue("username")),
		"email":      strings.TrimSpace(r.FormValue("email")),
		"first_name": strings.TrimSpace(r.FormValue("first_name")),
		"last_name":  strings.TrimSpace(r.FormValue("last_name")),
	}
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	vm := RegisterViewModel{Page: h.page(r), Form: form}
	switch {
	case form["username"] == "" || form["email"] == "" || password == "":
		vm.Error = "Username, email and password are required"
	case len(password) < 8:
		vm.Error = "Password must be at least 8 characters"
	case password != confirm:
		vm.Error = "Passwords do not match"
	}
	if vm.Error != "" {
		h.render(w, r, "register.html", vm)
		return
	}

	resp, err := h.client.Register(r.Context(), api.RegisterRequest{
		Username:  form["username"],
		Email:     form["email"],
		Password:  password,
		FirstName: form["first_name"],
		LastName:  form["last_name"],
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("registration failed")
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			vm.Error = apiErr.Message
		} else {
			vm.Error = "Registration failed. Please try again."
		}
		h.render(w, r, "register.html", vm)
		return
	}

	if err := h.startSession(w, resp); err != nil {
		h.log.Error().Err(err).Msg("failed to create session")
		vm.Error = "An error occurred. Please try again."
		h.render(w, r, "register.html", vm)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *Handlers) startSession(w http.ResponseWriter, resp *api.AuthResponse) error {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(session.Duration)
	if err := h.sessions.Create(token, resp.AccessToken, resp.RefreshToken, resp.User, expiresAt); err != nil {
		return err
	}
	h.setSessionCookie(w, token)
	return nil
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("failed to delete session")
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
