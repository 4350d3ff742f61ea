// Package guard decides whether a protected page is rendered for the current visitor.
package guard

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/visitor"
)

// Status is the render state of a Guard.
type Status int

const (
	Pending Status = iota
	Authorized
	Unauthorized
)

func (s Status) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "pending"
	}
}

// SignInPath is where unauthorized visitors are sent.
const SignInPath = "/auth/signin"

// Authorizer resolves credentials into an access decision.
type Authorizer interface {
	Authorize(ctx context.Context, creds domainauth.Credentials) (domainauth.Decision, error)
}

// Options configures a Guard.
type Options struct {
	State  *visitor.State
	Policy Authorizer
	Logger *slog.Logger
}

// Guard tracks whether the visitor may see a protected page. It re-evaluates
// whenever the visitor state changes, so signing out or leaving guest mode
// moves an authorized guard to Unauthorized.
type Guard struct {
	state  *visitor.State
	policy Authorizer
	logger *slog.Logger

	mu        sync.Mutex
	status    Status
	decision  domainauth.Decision
	ctx       context.Context
	observers map[int]func(Status)
	nextID    int
	unsub     func()
}

// New creates a Pending guard subscribed to opts.State.
func New(opts Options) *Guard {
	g := &Guard{
		state:     opts.State,
		policy:    opts.Policy,
		logger:    opts.Logger,
		ctx:       context.Background(),
		observers: make(map[int]func(Status)),
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.state != nil {
		g.unsub = g.state.Subscribe(func(visitor.Change) {
			g.mu.Lock()
			ctx := g.ctx
			g.mu.Unlock()
			g.Evaluate(ctx)
		})
	}
	return g
}

// Evaluate resolves the visitor's access. The guest flag is read first and
// authorizes without a session lookup. Otherwise the guard is Pending while
// the session is resolved; resolver errors fail closed.
func (g *Guard) Evaluate(ctx context.Context) Status {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()

	if g.state == nil || g.policy == nil {
		return g.set(Unauthorized, domainauth.Decision{})
	}
	if g.state.IsGuestMode() {
		return g.set(Authorized, domainauth.Decision{Outcome: domainauth.OutcomeGuest})
	}

	g.set(Pending, domainauth.Decision{})
	creds := g.state.Credentials()
	creds.GuestFlag = ""
	decision, err := g.policy.Authorize(ctx, creds)
	if err != nil {
		g.logger.WarnContext(ctx, "route guard could not resolve session", "error", err)
		return g.set(Unauthorized, domainauth.Decision{})
	}
	if !decision.Allowed() {
		return g.set(Unauthorized, decision)
	}
	return g.set(Authorized, decision)
}

// Status returns the current state.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Decision returns the decision behind an Authorized status.
func (g *Guard) Decision() domainauth.Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// OnChange registers fn for status transitions.
func (g *Guard) OnChange(fn func(Status)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.observers[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.observers, id)
		g.mu.Unlock()
	}
}

// Render serves page when Authorized. Unauthorized visitors are redirected to
// the sign-in page; a Pending guard renders nothing.
func (g *Guard) Render(w http.ResponseWriter, r *http.Request, page http.Handler) {
	switch g.Status() {
	case Authorized:
		page.ServeHTTP(w, r)
	case Unauthorized:
		http.Redirect(w, r, SignInPath, http.StatusFound)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Close detaches the guard from the visitor state.
func (g *Guard) Close() {
	g.mu.Lock()
	unsub := g.unsub
	g.unsub = nil
	g.observers = make(map[int]func(Status))
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (g *Guard) set(s Status, d domainauth.Decision) Status {
	g.mu.Lock()
	changed := g.status != s
	g.status = s
	g.decision = d
	var fns []func(Status)
	if changed {
		for _, fn := range g.observers {
			fns = append(fns, fn)
		}
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
	return s
}
