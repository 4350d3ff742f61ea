package httpx

import (
	"net/http"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

// PageMeta names the page being rendered.
type PageMeta struct {
	Title string
	Page  string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a TemplateDataBuilder initialized with the fields every page uses.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// With sets one key.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

func basePageData(r *http.Request, meta PageMeta) map[string]any {
	data := map[string]any{
		"Title":       meta.Title,
		"CurrentPage": meta.Page,
		"Guest":       false,
		"SignedIn":    false,
		"Role":        domainauth.RolePublic,
	}
	if r == nil {
		return data
	}
	if st, ok := visitorFrom(r); ok && st.IsGuestMode() {
		data["Guest"] = true
	}
	if d, ok := DecisionFromContext(r.Context()); ok {
		data["Guest"] = d.Outcome == domainauth.OutcomeGuest
		data["Role"] = d.Role()
		if s := GetSessionFromContext(r.Context()); s != nil {
			data["SignedIn"] = true
			data["User"] = s
		}
	}
	return data
}
