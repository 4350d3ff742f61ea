// Package document holds the legal document model shared by search, ingestion, and the catalog.
package document

import (
	"path"
	"slices"
	"strings"
	"time"
)

// Document is a legal document as stored in the search index and the catalog.
type Document struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title,omitempty"`
	Section       string   `json:"section,omitempty"`
	Content       string   `json:"content,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Filename      string   `json:"filename,omitempty"`
	Filepath      string   `json:"filepath,omitempty"`
	Container     string   `json:"container,omitempty"`
	DocumentType  string   `json:"document_type,omitempty"`
	LegalCategory string   `json:"legal_category,omitempty"`
	AllowedRoles  []string `json:"allowed_roles,omitempty"`
	CaseID        string   `json:"case_id,omitempty"`
	Score         float64  `json:"@search.score,omitempty"`
}

// VisibleTo reports whether a visitor with role may see the document.
// Documents without role restrictions are public.
func (d Document) VisibleTo(role string) bool {
	if len(d.AllowedRoles) == 0 {
		return true
	}
	return slices.Contains(d.AllowedRoles, role) || slices.Contains(d.AllowedRoles, "public")
}

// Query describes a search against the document index.
type Query struct {
	Text         string
	Top          int
	SearchFields []string // empty searches every searchable field
}

// SummaryLength is the number of leading characters kept in a document summary.
const SummaryLength = 500

// acceptedExtensions lists the file types the ingestion pipeline reads.
var acceptedExtensions = []string{".pdf", ".txt", ".csv", ".html", ".htm"} //nolint:gochecknoglobals // read-only lookup

// Accepted reports whether a blob name has an ingestible extension.
func Accepted(name string) bool {
	return slices.Contains(acceptedExtensions, strings.ToLower(path.Ext(name)))
}

// IDFromName derives a stable index key from a blob name:
// dots and slashes become underscores and the result is lowercased.
func IDFromName(name string) string {
	r := strings.NewReplacer(".", "_", "/", "_")
	return strings.ToLower(r.Replace(name))
}

// Summarize returns the first SummaryLength characters of text followed by "...".
func Summarize(text string) string {
	runes := []rune(text)
	if len(runes) > SummaryLength {
		runes = runes[:SummaryLength]
	}
	return string(runes) + "..."
}

// Tag builds the index document for a blob, classifying it by container or filename.
func Tag(container, blobName, text string) Document {
	doc := Document{
		ID:        IDFromName(blobName),
		Title:     titleFromName(blobName),
		Content:   text,
		Summary:   Summarize(text),
		Filename:  path.Base(blobName),
		Filepath:  container + "/" + blobName,
		Container: container,
	}

	c := strings.ToLower(container)
	n := strings.ToLower(blobName)
	switch {
	case strings.Contains(c, "gpcsf") || strings.Contains(n, "gpcsf"):
		doc.DocumentType = "probate_standard_form"
		doc.LegalCategory = "probate_template"
		doc.AllowedRoles = []string{"public", "legal_professional"}
	case strings.Contains(c, "ocga") || strings.Contains(c, "legal-statutes") || strings.Contains(n, "ocga"):
		doc.DocumentType = "legal_statute"
		doc.LegalCategory = "statute"
		doc.AllowedRoles = []string{"public"}
	case strings.Contains(c, "tax") || strings.Contains(n, "tax"):
		doc.DocumentType = "tax_record"
		doc.LegalCategory = "tax"
		doc.AllowedRoles = []string{"admin", "tax_analyst"}
	case strings.Contains(c, "sensitive_heir_data") || strings.Contains(n, "sensitive"):
		doc.DocumentType = "sensitive_heir_filing"
		doc.LegalCategory = "sensitive"
		doc.AllowedRoles = []string{"admin", "specific_legal_team_heir"}
	default:
		doc.DocumentType = "general"
		doc.LegalCategory = "general"
		doc.AllowedRoles = []string{"public", "client", "admin"}
	}
	return doc
}

func titleFromName(name string) string {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}

// CaseDocument is an entry of the documents grid.
type CaseDocument struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CaseID       string    `json:"caseId"`
	Summary      string    `json:"summary"`
	Type         string    `json:"type"`
	Date         string    `json:"date"`
	AllowedRoles []string  `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// VisibleTo reports whether a visitor with role may see the case document.
func (d CaseDocument) VisibleTo(role string) bool {
	if len(d.AllowedRoles) == 0 {
		return true
	}
	return slices.Contains(d.AllowedRoles, role) || slices.Contains(d.AllowedRoles, "public")
}

// FilterCases keeps documents whose title or case id contains term, case-insensitively.
// An empty term keeps everything.
func FilterCases(docs []CaseDocument, term string) []CaseDocument {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]CaseDocument, 0, len(docs))
	for _, d := range docs {
		if term == "" ||
			strings.Contains(strings.ToLower(d.Title), term) ||
			strings.Contains(strings.ToLower(d.CaseID), term) {
			out = append(out, d)
		}
	}
	return out
}

// SeedCases returns the built-in case documents served when no catalog is configured.
func SeedCases() []CaseDocument {
	return []CaseDocument{
		{
			ID:      "1",
			Title:   "Estate Planning Will - Johnson Family",
			CaseID:  "CASE-2024-001",
			Summary: "Comprehensive will document outlining asset distribution and beneficiary designations.",
			Type:    "Will",
			Date:    "2024-01-15",
		},
		{
			ID:      "2",
			Title:   "Trust Agreement - Smith Estate",
			CaseID:  "CASE-2024-002",
			Summary: "Revocable living trust with detailed provisions for property management.",
			Type:    "Trust",
			Date:    "2024-01-10",
		},
		{
			ID:      "3",
			Title:   "Power of Attorney - Davis Family",
			CaseID:  "CASE-2024-003",
			Summary: "Durable power of attorney for financial and healthcare decisions.",
			Type:    "POA",
			Date:    "2024-01-08",
		},
	}
}
