package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	"github.com/heiraid/heiraid-api/internal/ports"
	"github.com/heiraid/heiraid-api/internal/service"
	"github.com/heiraid/heiraid-api/internal/visitor"
)

// stubPolicy authorizes the guest flag and the token "good".
type stubPolicy struct {
	err   error
	calls int
}

func (p *stubPolicy) Authorize(_ context.Context, creds domainauth.Credentials) (domainauth.Decision, error) {
	p.calls++
	if p.err != nil {
		return domainauth.Decision{}, p.err
	}
	if creds.IsGuest() {
		return domainauth.Decision{Outcome: domainauth.OutcomeGuest}, nil
	}
	if creds.SessionToken == "good" {
		return domainauth.Decision{
			Outcome: domainauth.OutcomeAuthenticated,
			Session: &domainauth.Session{Subject: "u-1", Name: "Ada", Role: domainauth.RoleLegalProfessional},
		}, nil
	}
	return domainauth.Decision{Outcome: domainauth.OutcomeUnauthorized}, nil
}

type stubSearch struct {
	searchFunc   func(ctx context.Context, in service.SearchInput) (*service.SearchResult, error)
	validateFunc func(ctx context.Context, query string) ([]document.Document, error)
}

func (s *stubSearch) Search(ctx context.Context, in service.SearchInput) (*service.SearchResult, error) {
	return s.searchFunc(ctx, in)
}

func (s *stubSearch) ValidateDocuments(ctx context.Context, query string) ([]document.Document, error) {
	return s.validateFunc(ctx, query)
}

type stubAssistant struct {
	askFunc      func(ctx context.Context, in service.AskInput) (*service.Answer, error)
	outreachFunc func(ctx context.Context) ([]string, error)
}

func (s *stubAssistant) Ask(ctx context.Context, in service.AskInput) (*service.Answer, error) {
	return s.askFunc(ctx, in)
}

func (s *stubAssistant) OutreachSuggestions(ctx context.Context) ([]string, error) {
	return s.outreachFunc(ctx)
}

type stubStorage struct {
	containers []string
	blobs      []ports.BlobInfo
	err        error
	gotName    string
}

func (s *stubStorage) ListContainers(context.Context) ([]string, error) { return s.containers, s.err }

func (s *stubStorage) ListBlobs(_ context.Context, name string) ([]ports.BlobInfo, error) {
	s.gotName = name
	return s.blobs, s.err
}

func (s *stubStorage) Validate(context.Context) ([]string, error) { return s.containers, s.err }

type stubDocuments struct {
	gotTerm string
	gotRole domainauth.Role
	docs    []document.CaseDocument
	err     error
}

func (s *stubDocuments) List(_ context.Context, term string, role domainauth.Role) ([]document.CaseDocument, error) {
	s.gotTerm, s.gotRole = term, role
	return s.docs, s.err
}

type stubAuth struct {
	providers     []service.ProviderInfo
	beginFunc     func(ctx context.Context, providerID, redirectURL string) (*service.BeginLoginResult, error)
	completeFunc  func(ctx context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	getSessionErr error
}

func (s *stubAuth) Providers() []service.ProviderInfo { return s.providers }

func (s *stubAuth) BeginLogin(ctx context.Context, providerID, redirectURL string) (*service.BeginLoginResult, error) {
	if s.beginFunc != nil {
		return s.beginFunc(ctx, providerID, redirectURL)
	}
	return &service.BeginLoginResult{AuthURL: "https://idp.example/authorize?state=st", State: "st", Nonce: "nn"}, nil
}

func (s *stubAuth) CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
	if s.completeFunc != nil {
		return s.completeFunc(ctx, in)
	}
	return &service.CompleteLoginResult{
		Session: domainauth.Session{Subject: "u-1", Role: domainauth.RoleClient, ExpiresAt: time.Now().Add(time.Hour)},
		Token:   "signed-token",
	}, nil
}

func (s *stubAuth) GetSession(_ context.Context, token string) (*domainauth.Session, error) {
	if s.getSessionErr != nil {
		return nil, s.getSessionErr
	}
	return &domainauth.Session{
		Subject:     "u-1",
		Name:        "Ada",
		Email:       "ada@example.com",
		Role:        domainauth.RoleClient,
		ExpiresAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		AccessToken: token,
	}, nil
}

// testTemplateFS is a minimal layout with one line per page.
func testTemplateFS() fstest.MapFS {
	page := func(body string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}` + body + `{{end}}`)}
	}
	return fstest.MapFS{
		"layout.tmpl": &fstest.MapFile{Data: []byte(
			`{{define "layout"}}<title>{{.Title}}</title>{{block "content" .}}{{end}}{{end}}`)},
		"pages/home.tmpl":       page(`home guest={{.Guest}}`),
		"pages/chat.tmpl":       page(`chat role={{roleLabel .Role}} guest={{.Guest}}`),
		"pages/documents.tmpl":  page(`documents`),
		"pages/map.tmpl":        page(`map key={{with .MapsKey}}{{.}}{{else}}none{{end}}`),
		"pages/profile.tmpl":    page(`profile {{with .User}}{{.Name}}{{end}}`),
		"pages/signin.tmpl":     page(`signin {{range .Providers}}<a href="{{.URL}}">{{.Name}}</a>{{end}}`),
		"pages/auth-error.tmpl": page(`error {{.ErrorMessage}}`),
	}
}

func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: testTemplateFS()})
	require.NoError(t, err)
	return tr
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func visitorOptionsForTest() visitor.Options {
	return visitor.Options{}
}
