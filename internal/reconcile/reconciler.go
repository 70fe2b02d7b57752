// Package reconcile backfills registry-issued business identifiers onto
// pending ledger records. Issuance is asynchronous on the registry side, so
// a record's trader statement may sit without reference and verification
// numbers for a while after submission.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eudrgate/internal/audit"
	"eudrgate/internal/domain"
	"eudrgate/internal/ledger"
	"eudrgate/internal/platform/metrics"
	"eudrgate/internal/traces"
	"eudrgate/pkg/platform/sentinel"
)

// Reconciler patches pending records with numbers the registry has issued
// since submission. A failure on one record never aborts the others.
type Reconciler struct {
	store    ledger.Store
	registry traces.Client
	auditor  audit.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(store ledger.Store, registry traces.Client, auditor audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, registry: registry, auditor: auditor, logger: logger, metrics: m}
}

// Run scans the ledger and patches every record whose trader statement has a
// registry identifier but still lacks a business number. Per-record failures
// and still-pending results are logged and skipped; Run only returns an
// error when the ledger itself cannot be read.
func (r *Reconciler) Run(ctx context.Context) error {
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, record := range records {
		if !record.TraderStatement.NeedsReconciliation() {
			continue
		}
		r.reconcileOne(ctx, record)
	}
	return nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, record domain.IngestionRecord) {
	start := time.Now()
	result, err := r.registry.FetchByIdentifier(ctx, record.TraderStatement.RemoteIdentifier)
	r.metrics.ObserveRegistryCall("fetch_by_identifier", time.Since(start))
	if err != nil {
		r.logger.WarnContext(ctx, "reconciliation fetch failed",
			"internal_reference_number", record.InternalReferenceNumber,
			"remote_identifier", record.TraderStatement.RemoteIdentifier,
			"error", err,
		)
		return
	}
	if !result.Issued() {
		return
	}

	patch := domain.TraderStatementPatch{
		ReferenceNumber:    *result.ReferenceNumber,
		VerificationNumber: *result.VerificationNumber,
		Status:             domain.TraderStatementStatus(result.Status),
	}
	if patch.Status == "" {
		patch.Status = domain.TraderReconciled
	}
	if err := r.store.UpdateTraderStatement(ctx, record.InternalReferenceNumber, patch); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Record vanished between list and update (reset); nothing to do.
			r.logger.WarnContext(ctx, "reconciliation target disappeared",
				"internal_reference_number", record.InternalReferenceNumber,
			)
			return
		}
		r.logger.WarnContext(ctx, "reconciliation update failed",
			"internal_reference_number", record.InternalReferenceNumber,
			"error", err,
		)
		return
	}

	r.metrics.IncReconciliation()
	if err := r.auditor.Emit(ctx, audit.Event{
		Action:                  audit.ActionReconciliationApplied,
		InternalReferenceNumber: record.InternalReferenceNumber,
		Detail:                  patch.ReferenceNumber,
	}); err != nil {
		r.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
	r.logger.InfoContext(ctx, "trader statement reconciled",
		"internal_reference_number", record.InternalReferenceNumber,
		"reference_number", patch.ReferenceNumber,
	)
}
