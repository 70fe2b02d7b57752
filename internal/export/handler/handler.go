// Package handler exposes product queries and report downloads over HTTP.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eudrgate/internal/export"
	dErrors "eudrgate/pkg/domain-errors"
	"eudrgate/pkg/platform/httputil"
	pstrings "eudrgate/pkg/platform/strings"
)

// Builder assembles product views from the ledger.
type Builder interface {
	BuildMapping(ctx context.Context) (*export.ProductMapping, error)
	Query(ctx context.Context, productCodes []string) (map[string][]export.StatementSummary, error)
}

// Handler wires export endpoints to the report builder.
type Handler struct {
	builder Builder
	logger  *slog.Logger
}

func New(builder Builder, logger *slog.Logger) *Handler {
	return &Handler{builder: builder, logger: logger}
}

// Register mounts export endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/products/query", h.HandleQuery)
	r.Get("/export/{format}", h.HandleExport)
}

// QueryRequest asks which trader statements cover the given product codes.
type QueryRequest struct {
	ProductCodes []string `json:"productCodes"`
}

// HandleQuery handles POST /products/query.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[QueryRequest](w, r)
	if !ok {
		return
	}
	codes := pstrings.DedupeAndTrim(req.ProductCodes)
	if len(codes) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "productCodes must not be empty"))
		return
	}

	result, err := h.builder.Query(r.Context(), codes)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "product query failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"products": result})
}

// HandleExport handles GET /export/{format} with format csv, onix or xlsx.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	mapping, err := h.builder.BuildMapping(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export build failed", "format", format, "error", err)
		httputil.WriteError(w, err)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="export.csv"`)
		err = export.WriteCSV(w, mapping)
	case "onix":
		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Content-Disposition", `attachment; filename="export.xml"`)
		err = export.WriteONIX(w, mapping)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="export.xlsx"`)
		err = export.WriteXLSX(w, mapping)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown export format %q", format)))
		return
	}
	if err != nil {
		// Headers are already out; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export render failed", "format", format, "error", err)
	}
}
