package server

import (
	"net/http"

	"github.com/ayush/projecthub/internal/auth"
	"github.com/ayush/projecthub/internal/projects"
	"github.com/ayush/projecthub/internal/users"
	"github.com/ayush/projecthub/internal/web"
)

// Route is one entry of the routing table. Auth marks routes that need a
// live session; the router applies the check uniformly.
type Route struct {
	Method  string
	Pattern string
	Auth    bool
	Handler web.HandlerFunc
}

// Handlers groups the route handlers the table points at.
type Handlers struct {
	Auth     *auth.Handler
	Projects *projects.Handler
	Users    *users.Handler
}

// Routes is the single source of truth for which routes require login.
func Routes(h Handlers) []Route {
	return []Route{
		{http.MethodGet, "/projects", true, h.Projects.List},
		{http.MethodGet, "/projects/new", true, h.Projects.NewForm},
		{http.MethodPost, "/projects/new", true, h.Projects.Create},
		{http.MethodGet, "/projects/{id}", true, h.Projects.Detail},
		{http.MethodGet, "/projects/{id}/activity", true, h.Projects.Activity},
		{http.MethodGet, "/projects/{id}/new_file", true, h.Projects.NewFileForm},
		{http.MethodPost, "/projects/{id}/new_file", true, h.Projects.CreateFile},
		{http.MethodGet, "/projects/{pid}/file/{fid}", true, h.Projects.File},
		{http.MethodPatch, "/projects/{pid}/file/{fid}", true, h.Projects.UpdateFile},
		// HTML forms cannot send PATCH.
		{http.MethodPost, "/projects/{pid}/file/{fid}", true, h.Projects.UpdateFile},
		{http.MethodGet, "/projects/{pid}/file/{fid}/raw", true, h.Projects.Raw},

		{http.MethodGet, "/users", true, h.Users.List},
		{http.MethodGet, "/users/{id}", true, h.Users.Detail},
		{http.MethodGet, "/profile", true, h.Users.Profile},

		{http.MethodGet, "/register", false, h.Auth.RegisterForm},
		{http.MethodPost, "/register", false, h.Auth.Register},
		{http.MethodGet, "/login", false, h.Auth.LoginForm},
		{http.MethodPost, "/login", false, h.Auth.Login},
		{http.MethodPost, "/logout", false, h.Auth.Logout},
	}
}
