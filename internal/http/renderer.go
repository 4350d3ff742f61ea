package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// Page identifiers used in templates and navigation.
const (
	PageHome      = "home"
	PageChat      = "chat"
	PageDocuments = "documents"
	PageMap       = "map"
	PageProfile   = "profile"
	PageSignIn    = "signin"
	PageAuthError = "auth-error"
)

// TemplateRenderer renders the layout wrapped around one page template.
type TemplateRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // must contain layout.tmpl and pages/*.tmpl
	Logger     *slog.Logger // optional
}

// NewTemplateRenderer parses the layout once per page so every page can
// define its own "content" block.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base, err := template.New("layout.tmpl").Funcs(templateFuncs()).ParseFS(cfg.TemplateFS, "layout.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(cfg.TemplateFS, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, cerr := base.Clone()
		if cerr != nil {
			return nil, fmt.Errorf("clone layout: %w", cerr)
		}
		if _, perr := t.ParseFS(cfg.TemplateFS, f); perr != nil {
			logger.Error("template parsing failed", slog.String("template", f), slog.Any("error", perr))
			return nil, fmt.Errorf("parse %s: %w", f, perr)
		}
		pages[strings.TrimSuffix(path.Base(f), ".tmpl")] = t
	}
	return &TemplateRenderer{pages: pages, logger: logger}, nil
}

// Render writes page with data and the given status.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", slog.String("template", page), slog.Any("error", err))
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template", slog.String("template", page), slog.Any("error", err))
		return err
	}
	return nil
}

// Has reports whether page was parsed.
func (r *TemplateRenderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"roleLabel": func(role any) string {
			s := strings.ReplaceAll(fmt.Sprint(role), "_", " ")
			if s == "" {
				return "Public"
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}
