// Package handler exposes the ingestion pipeline and ledger reads over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eudrgate/internal/domain"
	"eudrgate/internal/ingest"
	"eudrgate/internal/normalize"
	dErrors "eudrgate/pkg/domain-errors"
	"eudrgate/pkg/platform/httputil"
)

// Service defines the pipeline operations the handler needs.
type Service interface {
	Ingest(ctx context.Context, source string, rows []domain.SourceRow) (*ingest.Summary, error)
	Reset(ctx context.Context) error
}

// Reader is the reconciling read path over the ledger.
type Reader interface {
	ListAll(ctx context.Context) ([]domain.IngestionRecord, error)
	GetByKey(ctx context.Context, internalReferenceNumber string) (domain.IngestionRecord, error)
}

// Handler wires ingestion endpoints to the pipeline service.
type Handler struct {
	service Service
	reader  Reader
	logger  *slog.Logger
}

// New constructs an ingestion handler with its dependencies.
func New(service Service, reader Reader, logger *slog.Logger) *Handler {
	return &Handler{service: service, reader: reader, logger: logger}
}

// Register mounts ingestion endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ingestions", h.HandleIngest)
	r.Get("/ingestions", h.HandleList)
	r.Get("/ingestions/{internalReferenceNumber}", h.HandleGet)
	r.Post("/ledger/reset", h.HandleReset)
}

// IngestRequest is the JSON form of an ingestion batch.
type IngestRequest struct {
	Source string             `json:"source"`
	Rows   []ingestRequestRow `json:"rows"`
}

type ingestRequestRow struct {
	ProductCode        string `json:"productCode"`
	ReferenceNumber    string `json:"referenceNumber"`
	VerificationNumber string `json:"verificationNumber"`
	Quantity           string `json:"quantity"`
}

// HandleIngest handles POST /ingestions. The batch arrives either as a raw
// supplier CSV feed (Content-Type text/csv, source in the query string) or
// as a JSON body.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	source, rows, ok := h.decodeBatch(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Ingest(ctx, source, rows)
	if err != nil {
		h.logger.ErrorContext(ctx, "ingestion failed",
			"source", source,
			"total", summary.Total,
			"error", err,
		)
		httputil.WriteError(w, translatePipelineError(err))
		return
	}

	h.logger.InfoContext(ctx, "ingestion accepted",
		"internal_reference_number", summary.InternalReferenceNumber,
		"source", source,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, summary)
}

func (h *Handler) decodeBatch(w http.ResponseWriter, r *http.Request) (string, []domain.SourceRow, bool) {
	if r.Header.Get("Content-Type") == "text/csv" {
		source := r.URL.Query().Get("source")
		if source == "" {
			source = "csv-upload"
		}
		rows, err := normalize.ReadCSV(r.Body)
		if err != nil {
			httputil.WriteError(w, err)
			return "", nil, false
		}
		return source, rows, true
	}

	req, ok := httputil.DecodeJSON[IngestRequest](w, r)
	if !ok {
		return "", nil, false
	}
	if req.Source == "" {
		req.Source = "api"
	}
	rows := make([]domain.SourceRow, 0, len(req.Rows))
	for _, rr := range req.Rows {
		rows = append(rows, normalize.Row(rr.ProductCode, rr.ReferenceNumber, rr.VerificationNumber, rr.Quantity))
	}
	return req.Source, rows, true
}

// HandleList handles GET /ingestions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.reader.ListAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "ledger list failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

// HandleGet handles GET /ingestions/{internalReferenceNumber}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "internalReferenceNumber")
	record, err := h.reader.GetByKey(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleReset handles POST /ledger/reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "ledger reset failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "ledger reset")
	w.WriteHeader(http.StatusNoContent)
}

// translatePipelineError maps pipeline outcomes onto transport codes. A
// batch with no acceptable candidates is the caller's problem; a failed
// submission is the registry's; a failed append after submission is ours.
func translatePipelineError(err error) error {
	var subErr *ingest.SubmissionFailure
	var persistErr *ingest.PersistenceFailure
	switch {
	case errors.Is(err, ingest.ErrNoValidInputs):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, "no candidate passed validation")
	case errors.As(err, &subErr):
		return dErrors.Wrap(err, dErrors.CodeUpstreamFailure, "registry submission failed")
	case errors.As(err, &persistErr):
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger append failed after submission")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "ingestion cancelled")
	}
	return err
}
