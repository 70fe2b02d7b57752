package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"eudrgate/internal/audit"
	"eudrgate/internal/domain"
	"eudrgate/internal/ledger"
	"eudrgate/internal/platform/metrics"
	"eudrgate/pkg/requestcontext"
)

// Summary reports what an ingestion attempt did. Counts are filled as soon
// as they are computable, so callers get them even when the attempt fails
// later in the pipeline.
type Summary struct {
	InternalReferenceNumber string                     `json:"internalReferenceNumber,omitempty"`
	Total                   int                        `json:"total"`
	Accepted                int                        `json:"accepted"`
	Rejected                int                        `json:"rejected"`
	SupplierStatements      []domain.SupplierStatement `json:"supplierStatements,omitempty"`
	Record                  *domain.IngestionRecord    `json:"record,omitempty"`
}

// Service runs the validate → aggregate → submit → persist pipeline for one
// batch of rows.
type Service struct {
	validator *Validator
	submitter *Submitter
	store     ledger.Store
	auditor   audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(validator *Validator, submitter *Submitter, store ledger.Store, auditor audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		validator: validator,
		submitter: submitter,
		store:     store,
		auditor:   auditor,
		logger:    logger,
		metrics:   m,
	}
}

// Ingest processes one batch. Either the attempt completes to a fully-formed
// ledger record or nothing is written: cancellation or failure before the
// ledger append leaves no partial state behind.
func (s *Service) Ingest(ctx context.Context, source string, rows []domain.SourceRow) (*Summary, error) {
	candidates := Aggregate(rows, s.logger)
	summary := &Summary{Total: len(candidates)}

	validated, err := s.validator.Validate(ctx, candidates)
	if err != nil {
		s.metrics.IncIngestion("cancelled")
		return summary, fmt.Errorf("validate candidates: %w", err)
	}
	summary.SupplierStatements = validated

	accepted := make([]domain.SupplierStatement, 0, len(validated))
	for _, st := range validated {
		if st.Accepted() {
			accepted = append(accepted, st)
		}
	}
	summary.Accepted = len(accepted)
	summary.Rejected = summary.Total - summary.Accepted

	if len(accepted) == 0 {
		s.metrics.IncIngestion("no_valid_inputs")
		return summary, ErrNoValidInputs
	}

	// Submission must not start once the caller has given up; a cancelled
	// submit would leave the remote state unknown for nothing.
	if err := ctx.Err(); err != nil {
		s.metrics.IncIngestion("cancelled")
		return summary, err
	}

	internalRef := "ING-" + uuid.NewString()
	summary.InternalReferenceNumber = internalRef

	trader, err := s.submitter.Submit(ctx, internalRef, accepted)
	if err != nil {
		s.metrics.IncIngestion("submission_failed")
		return summary, err
	}

	record := domain.IngestionRecord{
		InternalReferenceNumber: internalRef,
		Timestamp:               requestcontext.Now(ctx).UTC(),
		Source:                  source,
		TraderStatement:         trader,
		SupplierStatements:      validated,
		ProductEntries:          domain.DeriveProductEntries(validated),
	}
	if err := s.store.Append(ctx, record); err != nil {
		s.metrics.IncIngestion("persistence_failed")
		s.logger.ErrorContext(ctx, "ledger append failed after submission",
			"internal_reference_number", internalRef,
			"remote_identifier", trader.RemoteIdentifier,
			"error", err,
		)
		return summary, &PersistenceFailure{InternalReferenceNumber: internalRef, Err: err}
	}
	summary.Record = &record

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:                  audit.ActionIngestionRecorded,
		InternalReferenceNumber: internalRef,
		Source:                  source,
		Accepted:                summary.Accepted,
		Rejected:                summary.Rejected,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}

	s.metrics.IncIngestion("success")
	s.logger.InfoContext(ctx, "ingestion recorded",
		"internal_reference_number", internalRef,
		"source", source,
		"total", summary.Total,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
	)
	return summary, nil
}

// Reset clears the ledger on explicit operator request.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	if err := s.auditor.Emit(ctx, audit.Event{Action: audit.ActionLedgerReset}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
	return nil
}
