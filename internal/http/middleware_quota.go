package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/heiraid/heiraid-api/internal/ports"
)

// MsgGuestLimit is returned when a guest exhausts the LLM quota.
const MsgGuestLimit = "Guest usage limit reached. Please sign in to continue."

// QuotaOptions configures GuestQuota.
type QuotaOptions struct {
	Quota  ports.GuestQuota
	Limit  int // zero or negative disables metering
	Window time.Duration
	// TrustedProxies may set X-Forwarded-For; everyone else is keyed by peer address.
	TrustedProxies TrustedProxies
	Logger         *slog.Logger
}

// GuestQuota meters guest requests per client address. Signed-in callers are
// never metered, and a failing counter lets the request through.
func GuestQuota(opts QuotaOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if opts.Quota == nil || opts.Limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsGuestUser(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := opts.Quota.Allow(r.Context(), clientAddr(r, opts.TrustedProxies), opts.Limit, opts.Window)
			if err != nil {
				logger.WarnContext(r.Context(), "guest quota check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				WriteError(w, ErrorParams{Code: http.StatusTooManyRequests, Message: MsgGuestLimit})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
