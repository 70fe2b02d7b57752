package reconcile

import (
	"context"

	"eudrgate/internal/domain"
	"eudrgate/internal/ledger"
)

// Reader is the single read path over the ledger. Every read triggers a
// reconciliation pass first, so callers always see the freshest issued
// numbers without any background scheduling. All query and export callers go
// through here rather than reconciling ad hoc.
type Reader struct {
	store      ledger.Store
	reconciler *Reconciler
}

func NewReader(store ledger.Store, reconciler *Reconciler) *Reader {
	return &Reader{store: store, reconciler: reconciler}
}

// ListAll reconciles pending records, then returns all records in append
// order. A reconciliation failure never fails the read.
func (r *Reader) ListAll(ctx context.Context) ([]domain.IngestionRecord, error) {
	_ = r.reconciler.Run(ctx)
	return r.store.ListAll(ctx)
}

// GetByKey reconciles pending records, then returns the matching record.
func (r *Reader) GetByKey(ctx context.Context, internalReferenceNumber string) (domain.IngestionRecord, error) {
	_ = r.reconciler.Run(ctx)
	return r.store.GetByKey(ctx, internalReferenceNumber)
}
