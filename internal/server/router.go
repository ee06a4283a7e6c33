package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ayush/projecthub/internal/auth"
	"github.com/ayush/projecthub/internal/logging"
	"github.com/ayush/projecthub/internal/middleware"
	"github.com/ayush/projecthub/internal/web"
)

// Options configures NewRouter.
type Options struct {
	Log         *zap.Logger
	Renderer    web.Renderer
	Sessions    auth.Sessions
	CORSOrigins []string
}

// NewRouter mounts the routing table behind the shared middleware stack.
func NewRouter(opts Options, routes []Route) http.Handler {
	adapter := web.NewAdapter(opts.Renderer, opts.Log)
	requireAuth := middleware.RequireAuth(opts.Sessions, func(w http.ResponseWriter, r *http.Request, err error) {
		adapter.Write(w, r, web.Failure{Err: err})
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware(opts.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/static/*", web.Static())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
	})

	for _, rt := range routes {
		var h http.Handler = adapter.Handle(rt.Handler)
		if rt.Auth {
			h = requireAuth(h)
		}
		r.Method(rt.Method, rt.Pattern, h)
	}

	r.NotFound(adapter.Handle(func(*http.Request) web.Result { return web.NotFound() }))
	return r
}
