package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// HandlerFunc is a route handler that decides on a Result.
type HandlerFunc func(r *http.Request) Result

// Adapter writes Results to the client.
type Adapter struct {
	renderer Renderer
	log      *zap.Logger
}

func NewAdapter(renderer Renderer, log *zap.Logger) *Adapter {
	return &Adapter{renderer: renderer, log: log}
}

// Handle wraps h into a plain http.HandlerFunc.
func (a *Adapter) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.Write(w, r, h(r))
	}
}

// Write sends res.
func (a *Adapter) Write(w http.ResponseWriter, r *http.Request, res Result) {
	switch res := res.(type) {
	case Page:
		a.page(w, r, res)
	case Redirect:
		for _, c := range res.Cookies {
			http.SetCookie(w, c)
		}
		http.Redirect(w, r, res.To, http.StatusSeeOther)
	case Download:
		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
		_, _ = w.Write(res.Body)
	case Failure:
		a.log.Error("handler failed",
			zap.Error(res.Err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
		a.page(w, r, Page{Template: "error", Status: http.StatusInternalServerError})
	default:
		a.log.Error("unknown result", zap.String("type", fmt.Sprintf("%T", res)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (a *Adapter) page(w http.ResponseWriter, r *http.Request, p Page) {
	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}

	var buf bytes.Buffer
	if err := a.renderer.Render(&buf, p.Template, p.Data); err != nil {
		a.log.Error("render failed", zap.String("template", p.Template), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
