// Package web turns handler results into HTTP responses. Handlers never
// write to the http.ResponseWriter directly; they return a Result.
package web

import "net/http"

// Result is what a handler decides to do with a request.
type Result interface {
	result()
}

// Page renders the named template with Data. A zero Status means 200.
type Page struct {
	Template string
	Data     map[string]any
	Status   int
}

// Redirect answers 303 See Other, setting Cookies first.
type Redirect struct {
	To      string
	Cookies []*http.Cookie
}

// Download sends Body as an attachment named Name.
type Download struct {
	Name        string
	ContentType string
	Body        []byte
}

// Failure is an unexpected error; it is logged and rendered as a 500 page.
type Failure struct {
	Err error
}

func (Page) result()     {}
func (Redirect) result() {}
func (Download) result() {}
func (Failure) result()  {}

// NotFound is the 404 page.
func NotFound() Page {
	return Page{Template: "not_found", Status: http.StatusNotFound}
}

// SeeOther redirects without touching cookies.
func SeeOther(to string) Redirect {
	return Redirect{To: to}
}
