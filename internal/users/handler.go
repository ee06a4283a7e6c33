package users

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayush/projecthub/internal/auth"
	"github.com/ayush/projecthub/internal/middleware"
	"github.com/ayush/projecthub/internal/models"
	"github.com/ayush/projecthub/internal/store"
	"github.com/ayush/projecthub/internal/web"
)

// Store defines the interface for user lookups.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Handler holds the user directory and profile routes.
type Handler struct {
	users    Store
	sessions auth.Sessions
	log      *zap.Logger
}

func NewHandler(users Store, sessions auth.Sessions, log *zap.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, log: log}
}

// List returns every registered user.
func (h *Handler) List(r *http.Request) web.Result {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Page{Template: "users", Data: map[string]any{"users": users}}
}

// Detail returns a single user.
func (h *Handler) Detail(r *http.Request) web.Result {
	id, ok := web.PathID(r, "id")
	if !ok {
		return web.NotFound()
	}
	user, err := h.users.GetUserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return web.NotFound()
	}
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Page{Template: "user", Data: map[string]any{"user": user}}
}

// Profile returns the current user. A session whose user no longer exists
// is ended and the client sent back to /login.
func (h *Handler) Profile(r *http.Request) web.Result {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return web.SeeOther("/login")
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.log.Warn("session references missing user", zap.Int64("user_id", id))
		if err := h.sessions.Delete(r.Context(), auth.TokenFrom(r)); err != nil {
			h.log.Warn("delete session", zap.Error(err))
		}
		return web.Redirect{To: "/login", Cookies: []*http.Cookie{auth.ExpiredSessionCookie()}}
	}
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Page{Template: "profile", Data: map[string]any{"profile": user}}
}
