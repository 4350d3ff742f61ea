package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":3000"`

	// BaseURL is the base URL of the application (e.g., "https://heiraid.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	// CookieDomain is the domain for session and guest cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// WriteTimeout bounds a full response; vendor calls share this budget.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`

	// TrustedProxies lists the load balancer CIDRs or addresses whose
	// X-Forwarded-For header identifies the client. Empty trusts nobody.
	TrustedProxies []string `env:"HTTP_TRUSTED_PROXIES" envSeparator:","`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":3000"
	}
	if h.WriteTimeout < 5*time.Second {
		h.WriteTimeout = 5 * time.Second
	}
}

// MapsConfig holds the key forwarded to the property map page.
type MapsConfig struct {
	Key string `env:"MAPS_KEY"`
}
