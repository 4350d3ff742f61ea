package httpx

import (
	"log/slog"
	"net/http"

	"github.com/heiraid/heiraid-api/internal/guard"
)

// PageHandlers renders the browser pages. Protected pages go through a
// route guard bound to the visitor state of the request.
type PageHandlers struct {
	Renderer *TemplateRenderer
	Policy   guard.Authorizer
	MapsKey  string // browser key for the map page; omitted when empty
	Logger   *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Home renders the landing page. It is public.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, PageMeta{Title: "HeirAid", Page: PageHome}, nil)
}

// Chat renders the legal assistant.
func (h *PageHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	h.guarded(w, r, PageMeta{Title: "Legal Assistant", Page: PageChat}, nil)
}

// Documents renders the documents grid.
func (h *PageHandlers) Documents(w http.ResponseWriter, r *http.Request) {
	h.guarded(w, r, PageMeta{Title: "Documents", Page: PageDocuments}, nil)
}

// Map renders the property risk map.
func (h *PageHandlers) Map(w http.ResponseWriter, r *http.Request) {
	h.guarded(w, r, PageMeta{Title: "Property Map", Page: PageMap}, func(b *TemplateDataBuilder) {
		if h.MapsKey != "" {
			b.With("MapsKey", h.MapsKey)
		}
	})
}

// Profile renders the visitor's profile.
func (h *PageHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	h.guarded(w, r, PageMeta{Title: "Profile", Page: PageProfile}, nil)
}

func (h *PageHandlers) guarded(w http.ResponseWriter, r *http.Request, meta PageMeta, extra func(*TemplateDataBuilder)) {
	g := guard.New(guard.Options{State: visitorState(w, r), Policy: h.Policy, Logger: h.Logger})
	defer g.Close()

	if g.Evaluate(r.Context()) == guard.Authorized {
		if _, ok := DecisionFromContext(r.Context()); !ok {
			r = r.WithContext(SetDecisionInContext(r.Context(), g.Decision()))
		}
	}
	g.Render(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, meta, extra)
	}))
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, meta PageMeta, extra func(*TemplateDataBuilder)) {
	if h.Renderer == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	b := NewTemplateData(r, meta)
	if extra != nil {
		extra(b)
	}
	if err := h.Renderer.Render(w, http.StatusOK, meta.Page, b.Build()); err != nil {
		h.logger().ErrorContext(r.Context(), "render page", "page", meta.Page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// notFound handles unmatched routes: JSON for the API, plain text otherwise.
func notFound(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, Message: "Not Found"})
		return
	}
	http.NotFound(w, r)
}
