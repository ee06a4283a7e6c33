package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/projecthub/internal/web"
)

// Handler holds the register, login and logout routes.
type Handler struct {
	auth     *Authenticator
	sessions Sessions
	cookies  CookieConfig
	log      *zap.Logger
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

func NewHandler(auth *Authenticator, sessions Sessions, cookies CookieConfig, log *zap.Logger) *Handler {
	if cookies.TTL <= 0 {
		cookies.TTL = DefaultSessionTTL
	}
	return &Handler{auth: auth, sessions: sessions, cookies: cookies, log: log}
}

// SessionCookieFor returns the cookie carrying token.
func (c CookieConfig) SessionCookieFor(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.TTL / time.Second),
	}
}

// ExpiredSessionCookie tells the browser to drop the session cookie.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
}

// TokenFrom returns the session token sent with r, if any.
func TokenFrom(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) RegisterForm(*http.Request) web.Result {
	return web.Page{Template: "register", Data: map[string]any{"error": "", "login": "", "email": ""}}
}

// Register creates a new user and sends them to the login page.
func (h *Handler) Register(r *http.Request) web.Result {
	login, password, err := credentials(r)
	email := strings.TrimSpace(r.PostForm.Get("email"))
	data := map[string]any{"error": "", "login": strings.TrimSpace(r.PostForm.Get("login")), "email": email}
	if err != nil {
		data["error"] = err.Error()
		return web.Page{Template: "register", Data: data, Status: http.StatusUnprocessableEntity}
	}

	user, err := h.auth.Register(r.Context(), login, password, email)
	switch {
	case errors.Is(err, ErrLoginTaken):
		data["error"] = "a user with this login or email already exists"
		return web.Page{Template: "register", Data: data, Status: http.StatusConflict}
	case errors.Is(err, ErrPasswordTooLong), errors.Is(err, ErrFieldTooLong):
		data["error"] = err.Error()
		return web.Page{Template: "register", Data: data, Status: http.StatusUnprocessableEntity}
	case err != nil:
		return web.Failure{Err: err}
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID))
	return web.SeeOther("/login")
}

// credentials reads the trimmed login and the password exactly as sent.
func credentials(r *http.Request) (login, password string, err error) {
	fields, err := web.Required(r, "login")
	if err != nil {
		return "", "", err
	}
	password, err = web.Secret(r, "password")
	if err != nil {
		return "", "", err
	}
	return fields["login"], password, nil
}

func (h *Handler) LoginForm(*http.Request) web.Result {
	return web.Page{Template: "login", Data: map[string]any{"error": "", "login": ""}}
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(r *http.Request) web.Result {
	login, password, err := credentials(r)
	if err != nil {
		return h.loginFailed(r)
	}

	userID, err := h.auth.Authenticate(r.Context(), login, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return h.loginFailed(r)
	}
	if err != nil {
		return web.Failure{Err: err}
	}

	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Redirect{To: "/profile", Cookies: []*http.Cookie{h.cookies.SessionCookieFor(token)}}
}

func (h *Handler) loginFailed(r *http.Request) web.Result {
	return web.Page{
		Template: "login",
		Data:     map[string]any{"error": ErrInvalidCredentials.Error(), "login": strings.TrimSpace(r.PostForm.Get("login"))},
		Status:   http.StatusUnauthorized,
	}
}

// Logout destroys the current session, if any.
func (h *Handler) Logout(r *http.Request) web.Result {
	if token := TokenFrom(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			h.log.Warn("delete session", zap.Error(err))
		}
	}
	return web.Redirect{To: "/login", Cookies: []*http.Cookie{ExpiredSessionCookie()}}
}
