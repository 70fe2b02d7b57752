// Package ledger is the durable, append-only record of ingestion attempts.
// It is the single source of truth: queries, exports and reconciliation all
// read from here.
package ledger

import (
	"context"

	"eudrgate/internal/domain"
)

// Store is the repository contract for ingestion records. Implementations
// must serialize writers: the read-modify-write sequence behind Append,
// UpdateTraderStatement and Reset is atomic with respect to other writers,
// and a record is never partially visible to readers.
type Store interface {
	// Append persists a fully-formed record at the end of the ledger.
	Append(ctx context.Context, record domain.IngestionRecord) error
	// ListAll returns every record in append order.
	ListAll(ctx context.Context) ([]domain.IngestionRecord, error)
	// GetByKey returns the record with the given internal reference number,
	// or sentinel.ErrNotFound.
	GetByKey(ctx context.Context, internalReferenceNumber string) (domain.IngestionRecord, error)
	// UpdateTraderStatement patches only the reference number, verification
	// number and status of the matching record's trader statement. Returns
	// sentinel.ErrNotFound when the key does not exist; every other field of
	// the record is left untouched.
	UpdateTraderStatement(ctx context.Context, internalReferenceNumber string, patch domain.TraderStatementPatch) error
	// Reset clears the ledger. Idempotent.
	Reset(ctx context.Context) error
}

// cloneRecord deep-copies a record so store internals never alias caller
// memory.
func cloneRecord(r domain.IngestionRecord) domain.IngestionRecord {
	out := r

	out.SupplierStatements = make([]domain.SupplierStatement, len(r.SupplierStatements))
	for i, st := range r.SupplierStatements {
		clone := st
		clone.ProductCodes = append([]string(nil), st.ProductCodes...)
		out.SupplierStatements[i] = clone
	}

	out.ProductEntries = append([]domain.ProductEntry(nil), r.ProductEntries...)

	out.TraderStatement.ReferencedStatements = append([]domain.StatementKey(nil), r.TraderStatement.ReferencedStatements...)
	if r.TraderStatement.ReferenceNumber != nil {
		ref := *r.TraderStatement.ReferenceNumber
		out.TraderStatement.ReferenceNumber = &ref
	}
	if r.TraderStatement.VerificationNumber != nil {
		ver := *r.TraderStatement.VerificationNumber
		out.TraderStatement.VerificationNumber = &ver
	}
	return out
}

// applyPatch rewrites exactly the three reconcilable trader-statement fields.
func applyPatch(record *domain.IngestionRecord, patch domain.TraderStatementPatch) {
	ref := patch.ReferenceNumber
	ver := patch.VerificationNumber
	record.TraderStatement.ReferenceNumber = &ref
	record.TraderStatement.VerificationNumber = &ver
	record.TraderStatement.Status = patch.Status
}
