package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/base.html"

// CurrentUserFunc reports the logged-in username for the navigation bar.
type CurrentUserFunc func(r *http.Request) (string, bool)

type Page struct {
	Title       string
	Username    string
	LoggedIn    bool
	CurrentPath string
	Flashes     []Flash
	Data        any
}

type ErrorData struct {
	Status  int
	Message string
}

type Renderer struct {
	pages       map[string]*template.Template
	flashes     *FlashStore
	currentUser CurrentUserFunc
	log         *logger.Logger
}

func NewRenderer(flashes *FlashStore, currentUser CurrentUserFunc, log *logger.Logger) (*Renderer, error) {
	layout, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}

	return &Renderer{
		pages:       pages,
		flashes:     flashes,
		currentUser: currentUser,
		log:         log,
	}, nil
}

func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	v.render(w, r, status, name, title, data, nil)
}

// RenderFlash renders the page with an extra message shown immediately
// instead of after the next redirect.
func (v *Renderer) RenderFlash(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, category, message string) {
	v.render(w, r, status, name, title, data, []Flash{{Category: category, Message: message}})
}

func (v *Renderer) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, extra []Flash) {
	t, ok := v.pages[name]
	if !ok {
		v.log.WithFields(r.Context(), logger.Fields{"template": name, "action": "render_unknown_template"}).Error("unknown template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := Page{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if v.currentUser != nil {
		page.Username, page.LoggedIn = v.currentUser(r)
	}
	if v.flashes != nil {
		page.Flashes = v.flashes.Pop(w, r)
	}
	page.Flashes = append(page.Flashes, extra...)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", page); err != nil {
		v.log.WithFields(r.Context(), logger.Fields{"template": name, "action": "render_failed"}).Errorf("render failed: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderError shows the generic error page.
func (v *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	v.Render(w, r, status, "error", http.StatusText(status), ErrorData{Status: status, Message: message})
}

func (v *Renderer) Flash(w http.ResponseWriter, r *http.Request, category, message string) {
	if v.flashes != nil {
		v.flashes.AddFlash(w, r, category, message)
	}
}

var funcs = template.FuncMap{
	"fieldErrors": func(errs map[string][]string, field string) []string {
		return errs[field]
	},
}
