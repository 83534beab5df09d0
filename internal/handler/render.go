package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/climavet/climavet/internal/checklist"
	"github.com/climavet/climavet/internal/model"
)

// Page carries the fields every full page reads from the layout.
type Page struct {
	ClinicID int64
	Error    string
}

// Renderer executes the layout, page and partial templates.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	logger   *slog.Logger
}

// NewRenderer parses layout.html, partials.html and every pages/*.html from
// fsys. Each page gets its own copy of the shared templates so they can all
// define "title" and "content".
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	base, err := template.New("").Funcs(funcs()).ParseFS(fsys, "layout.html", "partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse shared templates: %w", err)
	}

	files, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone templates: %w", err)
		}
		if _, err := t.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}

	return &Renderer{pages: pages, partials: base, logger: logger}, nil
}

// Page renders a full page inside the layout.
func (rr *Renderer) Page(w http.ResponseWriter, status int, name string, data any) {
	t, ok := rr.pages[name]
	if !ok {
		rr.logger.Error("unknown page template", "page", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	rr.execute(w, status, t, "layout", data)
}

// Partial renders one named fragment for an HTMX swap.
func (rr *Renderer) Partial(w http.ResponseWriter, name string, data any) {
	rr.execute(w, http.StatusOK, rr.partials, name, data)
}

// Error renders the error page.
func (rr *Renderer) Error(w http.ResponseWriter, status int, clinicID int64, heading, msg string) {
	rr.Page(w, status, "error", errorPage{Page: Page{ClinicID: clinicID, Error: msg}, Heading: heading})
}

// InlineError renders a single error message fragment.
func (rr *Renderer) InlineError(w http.ResponseWriter, msg string) {
	rr.Partial(w, "inline-error", Page{Error: msg})
}

func (rr *Renderer) execute(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		rr.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errorPage struct {
	Page
	Heading string
}

type stepSection struct {
	Title string
	Steps []string
}

type itemView struct {
	ChecklistID int64
	Item        model.ChecklistItem
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"band":      checklist.Band,
		"fill":      checklist.ItemFill,
		"reviewDue": func(c model.Checklist) bool { return checklist.ReviewDue(c, time.Now()) },
		"humanize":  humanize,
		"lower":     func(v any) string { return strings.ToLower(fmt.Sprint(v)) },
		"qty":       func(q float64) string { return strconv.FormatFloat(q, 'f', -1, 64) },
		"date":      formatDate,
		"statuses":  func() []model.Status { return model.Statuses },
		"section":   func(title string, steps []string) stepSection { return stepSection{Title: title, Steps: steps} },
		"itemView":  func(id int64, item model.ChecklistItem) itemView { return itemView{ChecklistID: id, Item: item} },
		"hasID": func(ids []int64, id int64) bool {
			for _, v := range ids {
				if v == id {
					return true
				}
			}
			return false
		},
	}
}

// humanize turns an enum such as MEDICAL_SUPPLIES into "Medical Supplies".
func humanize(v any) string {
	words := strings.Fields(strings.ReplaceAll(fmt.Sprint(v), "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Never"
	}
	return t.Format("Jan 2, 2006")
}
