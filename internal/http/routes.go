package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"time"

	heiraid "github.com/heiraid/heiraid-api"
	"github.com/heiraid/heiraid-api/internal/ports"
	"github.com/heiraid/heiraid-api/internal/visitor"
)

// TemplatePathFromRoot is the on-disk template directory used in dev mode.
const TemplatePathFromRoot = "frontend/templates"

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      AuthServiceInterface
	Policy    AccessAuthorizer
	Search    SearchServiceInterface
	Assistant AssistantServiceInterface
	Storage   StorageServiceInterface
	Documents DocumentServiceInterface

	// Optional guest metering for the LLM-backed routes.
	Quota       ports.GuestQuota
	GuestLimit  int
	GuestWindow time.Duration
	// TrustedProxies are CIDRs or addresses allowed to set X-Forwarded-For.
	TrustedProxies []string

	CookieDomain string
	FailOpen     bool   // admit requests when the access policy itself fails
	MapsKey      string // browser key for the map page
	IsDev        bool   // load templates and static assets from disk
	Logger       *slog.Logger
}

// NewRouter creates the HTTP handler: the API, the auth flow, and the pages,
// behind request id, logging, panic recovery, visitor state, and the edge gate.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	registerAPIRoutes(mux, services, logger)
	registerAuthRoutes(mux, services, logger)
	registerPageRoutes(mux, services, newRenderer(services.IsDev, logger), logger)

	var h http.Handler = mux
	h = EdgeGate(GateOptions{Policy: services.Policy, FailOpen: services.FailOpen, Logger: logger})(h)
	h = Visitor(visitor.Options{CookieDomain: services.CookieDomain})(h)
	h = Recover(logger)(h)
	h = Logging(logger)(h)
	h = RequestID()(h)
	return h
}

func registerAPIRoutes(mux *http.ServeMux, services RouterServices, logger *slog.Logger) {
	api := &APIHandlers{
		Search:    services.Search,
		Assistant: services.Assistant,
		Storage:   services.Storage,
		Documents: services.Documents,
		Logger:    logger,
	}
	trusted, err := ParseTrustedProxies(services.TrustedProxies)
	if err != nil {
		logger.Warn("ignoring trusted proxies", "error", err)
		trusted = nil
	}
	metered := GuestQuota(QuotaOptions{
		Quota:          services.Quota,
		Limit:          services.GuestLimit,
		Window:         services.GuestWindow,
		TrustedProxies: trusted,
		Logger:         logger,
	})

	mux.Handle("GET /api/health", http.HandlerFunc(apiHealthHandler))
	mux.Handle("POST /api/query", metered(http.HandlerFunc(api.Query)))
	mux.Handle("GET /api/outreach-suggestions", metered(http.HandlerFunc(api.OutreachSuggestions)))
	mux.Handle("POST /api/validate-documents", http.HandlerFunc(api.ValidateDocuments))
	mux.Handle("POST /api/search", http.HandlerFunc(api.SearchDocuments))
	mux.Handle("GET /api/azure-containers", http.HandlerFunc(api.ListContainers))
	mux.Handle("POST /api/azure-blobs", http.HandlerFunc(api.ListBlobs))
	mux.Handle("GET /api/validate-storage", http.HandlerFunc(api.ValidateStorage))
	mux.Handle("GET /api/property-map", http.HandlerFunc(api.PropertyMap))
	mux.Handle("GET /api/documents", http.HandlerFunc(api.ListDocuments))
	mux.Handle("/api/", http.HandlerFunc(notFound))
}

func registerAuthRoutes(mux *http.ServeMux, services RouterServices, logger *slog.Logger) {
	if services.Auth == nil {
		return
	}
	h := &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger}
	mux.Handle("GET /api/auth/signin/{provider}", http.HandlerFunc(h.SignIn))
	mux.Handle("GET /api/auth/callback/{provider}", http.HandlerFunc(h.Callback))
	mux.Handle("POST /api/auth/signout", http.HandlerFunc(h.SignOut))
	mux.Handle("GET /api/auth/session", http.HandlerFunc(h.Session))
	mux.Handle("GET /api/auth/providers", http.HandlerFunc(h.Providers))
}

func registerPageRoutes(mux *http.ServeMux, services RouterServices, tr *TemplateRenderer, logger *slog.Logger) {
	auth := &AuthPageHandlers{Svc: services.Auth, Renderer: tr, Logger: logger}
	mux.Handle("GET /auth/signin", http.HandlerFunc(auth.SignInPage))
	mux.Handle("GET /auth/error", http.HandlerFunc(auth.ErrorPage))
	mux.Handle("POST /auth/guest", http.HandlerFunc(auth.EnterGuest))
	mux.Handle("POST /auth/guest/exit", http.HandlerFunc(auth.ExitGuest))

	pages := &PageHandlers{Renderer: tr, Policy: services.Policy, MapsKey: services.MapsKey, Logger: logger}
	mux.Handle("GET /{$}", http.HandlerFunc(pages.Home))
	mux.Handle("GET /chat", http.HandlerFunc(pages.Chat))
	mux.Handle("GET /documents", http.HandlerFunc(pages.Documents))
	mux.Handle("GET /map", http.HandlerFunc(pages.Map))
	mux.Handle("GET /profile", http.HandlerFunc(pages.Profile))
	mux.Handle("/", http.HandlerFunc(notFound))
}

// newRenderer loads templates from disk in dev mode and from the embedded FS otherwise.
// Pages answer 503 when the templates cannot be parsed.
func newRenderer(isDev bool, logger *slog.Logger) *TemplateRenderer {
	var templateFS fs.FS
	if isDev {
		templateFS = os.DirFS(TemplatePathFromRoot)
	} else {
		sub, err := fs.Sub(heiraid.TemplateFS, "frontend/templates")
		if err != nil {
			logger.Warn("embedded templates unavailable, falling back to disk", slog.Any("error", err))
			sub = os.DirFS(TemplatePathFromRoot)
		}
		templateFS = sub
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}
	return tr
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	staticSub, err := fs.Sub(heiraid.StaticFS, "frontend/static")
	if err != nil {
		logger.Warn("embedded static assets unavailable, falling back to disk", slog.Any("error", err))
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
}

// hashedFilePattern matches content-hashed filenames such as app.abc123ef.js.
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`) //nolint:gochecknoglobals // compiled once

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}
