// Package visitor carries the per-request access state of a visitor: the
// guest flag and the session token, both backed by cookies.
//
// A State is created once per request and shared explicitly through the
// request context. Reads reflect writes made earlier in the same request,
// and subscribers are notified synchronously after every change.
package visitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

// Change identifies what was modified on a State.
type Change int

const (
	GuestEnabled Change = iota + 1
	GuestDisabled
	SessionSet
	SessionCleared
)

// Options configures cookie attributes.
type Options struct {
	CookieDomain string
	Secure       bool
}

// State is the cookie-backed access state of one request.
type State struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	opts   Options
	guest  string
	token  string
	subs   map[int]func(Change)
	nextID int
}

// New reads the current cookies from r. Writes go to w.
func New(w http.ResponseWriter, r *http.Request, opts Options) *State {
	s := &State{w: w, opts: opts, subs: make(map[int]func(Change))}
	if c, err := r.Cookie(domainauth.GuestCookieName); err == nil {
		s.guest = c.Value
	}
	if c, err := r.Cookie(domainauth.SessionCookieName); err == nil {
		s.token = c.Value
	}
	return s
}

// Credentials returns the raw inputs of an access decision.
func (s *State) Credentials() domainauth.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainauth.Credentials{GuestFlag: s.guest, SessionToken: s.token}
}

// IsGuestMode reports whether the guest cookie is exactly "true".
func (s *State) IsGuestMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guest == domainauth.GuestCookieValue
}

// EnableGuest sets the guest cookie for one day.
func (s *State) EnableGuest() {
	s.mu.Lock()
	s.guest = domainauth.GuestCookieValue
	s.setCookie(domainauth.GuestCookieName, domainauth.GuestCookieValue, int(domainauth.GuestTTL/time.Second), false)
	s.mu.Unlock()
	s.notify(GuestEnabled)
}

// DisableGuest expires the guest cookie.
func (s *State) DisableGuest() {
	s.mu.Lock()
	s.guest = "false"
	s.setCookie(domainauth.GuestCookieName, "false", -1, false)
	s.mu.Unlock()
	s.notify(GuestDisabled)
}

// SessionToken returns the signed session token, or "" when absent.
func (s *State) SessionToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetSession stores a signed session token in an HttpOnly cookie.
func (s *State) SetSession(token string, ttl time.Duration) {
	s.mu.Lock()
	s.token = token
	s.setCookie(domainauth.SessionCookieName, token, int(ttl/time.Second), true)
	s.mu.Unlock()
	s.notify(SessionSet)
}

// ClearSession expires the session cookie.
func (s *State) ClearSession() {
	s.mu.Lock()
	s.token = ""
	s.setCookie(domainauth.SessionCookieName, "", -1, true)
	s.mu.Unlock()
	s.notify(SessionCleared)
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *State) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// setCookie must be called with s.mu held. maxAge < 0 deletes the cookie.
func (s *State) setCookie(name, value string, maxAge int, httpOnly bool) {
	if s.w == nil {
		return
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.opts.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

// WithState returns a copy of ctx carrying s.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the State stored in ctx, if any.
func FromContext(ctx context.Context) (*State, bool) {
	s, ok := ctx.Value(ctxKey{}).(*State)
	return s, ok && s != nil
}
