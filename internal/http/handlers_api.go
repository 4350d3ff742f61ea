package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
	"github.com/heiraid/heiraid-api/internal/service"
)

// Fixed failure messages of the storage routes.
const (
	MsgListContainersFailed  = "Failed to list containers"
	MsgListBlobsFailed       = "Failed to list blobs"
	MsgValidateStorageFailed = "Failed to validate storage connection"
	msgInternal              = "Internal Server Error"
)

// SearchServiceInterface defines the search operations used by the API.
type SearchServiceInterface interface {
	Search(ctx context.Context, in service.SearchInput) (*service.SearchResult, error)
	ValidateDocuments(ctx context.Context, query string) ([]document.Document, error)
}

// AssistantServiceInterface defines the LLM operations used by the API.
type AssistantServiceInterface interface {
	Ask(ctx context.Context, in service.AskInput) (*service.Answer, error)
	OutreachSuggestions(ctx context.Context) ([]string, error)
}

// StorageServiceInterface defines the storage operations used by the API.
type StorageServiceInterface interface {
	ListContainers(ctx context.Context) ([]string, error)
	ListBlobs(ctx context.Context, container string) ([]ports.BlobInfo, error)
	Validate(ctx context.Context) ([]string, error)
}

// DocumentServiceInterface defines the documents grid lookup.
type DocumentServiceInterface interface {
	List(ctx context.Context, term string, role domainauth.Role) ([]document.CaseDocument, error)
}

// APIHandlers serves the JSON routes under /api.
type APIHandlers struct {
	Search    SearchServiceInterface
	Assistant AssistantServiceInterface
	Storage   StorageServiceInterface
	Documents DocumentServiceInterface
	Logger    *slog.Logger
}

func (h *APIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// failure writes err as the JSON error envelope. Validation errors keep their
// message with 400; anything else is 500 with fallback, or the error's own
// message when fallback is empty.
func (h *APIHandlers) failure(w http.ResponseWriter, r *http.Request, op string, err error, fallback string) {
	if apperrors.IsValidation(err) {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, Message: apperrors.GetMessage(err, msgInternal)})
		return
	}
	h.logger().ErrorContext(r.Context(), op+" failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	msg := fallback
	if msg == "" {
		msg = apperrors.GetMessage(err, msgInternal)
	}
	WriteError(w, ErrorParams{Code: http.StatusInternalServerError, Message: msg})
}

// queryText is the query field of a request body. A value that is not a JSON
// string decodes to the empty query so it is rejected with the query message
// instead of a malformed body error.
type queryText string

func (q *queryText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*q = ""
		return nil //nolint:nilerr // non-string queries fail validation later
	}
	*q = queryText(s)
	return nil
}

type queryRequest struct {
	Query    queryText `json:"query"`
	Language string    `json:"language,omitempty"`
}

// Query answers a question with retrieved documents as context.
// POST /api/query.
func (h *APIHandlers) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := service.ValidateQuery(string(req.Query)); err != nil {
		h.failure(w, r, "query", err, "")
		return
	}
	ans, err := h.Assistant.Ask(r.Context(), service.AskInput{Query: string(req.Query), Language: req.Language})
	if err != nil {
		h.failure(w, r, "query", err, "")
		return
	}
	WriteJSON(w, http.StatusOK, ans)
}

// ValidateDocuments searches titles and sections.
// POST /api/validate-documents.
func (h *APIHandlers) ValidateDocuments(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	docs, err := h.Search.ValidateDocuments(r.Context(), string(req.Query))
	if err != nil {
		h.failure(w, r, "validate documents", err, "")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"results": docs})
}

type searchRequest struct {
	Query queryText `json:"query"`
	Top   *int      `json:"top,omitempty"`
}

// SearchDocuments runs a full-text search.
// POST /api/search.
func (h *APIHandlers) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res, err := h.Search.Search(r.Context(), service.SearchInput{Query: string(req.Query), Top: req.Top})
	if err != nil {
		h.failure(w, r, "search", err, "")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// ListContainers lists storage containers.
// GET /api/azure-containers.
func (h *APIHandlers) ListContainers(w http.ResponseWriter, r *http.Request) {
	names, err := h.Storage.ListContainers(r.Context())
	if err != nil {
		h.failure(w, r, "list containers", err, MsgListContainersFailed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"containers": names})
}

type blobsRequest struct {
	ContainerName string `json:"containerName"`
}

// ListBlobs lists the blobs of one container.
// POST /api/azure-blobs.
func (h *APIHandlers) ListBlobs(w http.ResponseWriter, r *http.Request) {
	var req blobsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	blobs, err := h.Storage.ListBlobs(r.Context(), req.ContainerName)
	if err != nil {
		h.failure(w, r, "list blobs", err, MsgListBlobsFailed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"blobs": blobs})
}

// ValidateStorage checks that storage answers.
// GET /api/validate-storage.
func (h *APIHandlers) ValidateStorage(w http.ResponseWriter, r *http.Request) {
	names, err := h.Storage.Validate(r.Context())
	if err != nil {
		h.failure(w, r, "validate storage", err, MsgValidateStorageFailed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "containers": names})
}

// OutreachSuggestions returns exactly five outreach ideas.
// GET /api/outreach-suggestions.
func (h *APIHandlers) OutreachSuggestions(w http.ResponseWriter, r *http.Request) {
	list, err := h.Assistant.OutreachSuggestions(r.Context())
	if err != nil {
		h.failure(w, r, "outreach suggestions", err, "")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"suggestions": list})
}

// PropertyMap returns parcels filtered by county and risk type.
// GET /api/property-map?county=&riskType=.
func (h *APIHandlers) PropertyMap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := service.LookupPropertyMap(q.Get("county"), q.Get("riskType"))
	if err != nil {
		h.failure(w, r, "property map", err, "")
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

// ListDocuments returns the documents grid visible to the caller.
// GET /api/documents?q=.
func (h *APIHandlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Documents.List(r.Context(), r.URL.Query().Get("q"), RoleFromContext(r.Context()))
	if err != nil {
		h.failure(w, r, "list documents", err, "")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}
