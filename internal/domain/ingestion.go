package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TraderStatementStatus tracks the consolidated statement through the
// asynchronous two-phase issuance protocol.
type TraderStatementStatus string

const (
	TraderPendingSubmission TraderStatementStatus = "PENDING_SUBMISSION"
	TraderSubmitted         TraderStatementStatus = "SUBMITTED"
	TraderReconciled        TraderStatementStatus = "RECONCILED"
)

// TraderStatement is the aggregate statement built from accepted supplier
// statements. RemoteIdentifier is assigned synchronously on submission; the
// reference/verification numbers may be issued later and are backfilled by
// the reconciler.
type TraderStatement struct {
	RemoteIdentifier   string                `json:"remoteIdentifier"`
	ReferenceNumber    *string               `json:"referenceNumber"`
	VerificationNumber *string               `json:"verificationNumber"`
	Status             TraderStatementStatus `json:"status"`
	TotalQuantity      decimal.Decimal       `json:"totalQuantity"`
	// ReferencedStatements is an immutable snapshot of the accepted
	// candidates' business keys, set once at submission.
	ReferencedStatements []StatementKey `json:"referencedStatements"`
}

// NeedsReconciliation reports whether registry-issued numbers are still
// missing for a statement the registry already identified.
func (t TraderStatement) NeedsReconciliation() bool {
	if t.RemoteIdentifier == "" {
		return false
	}
	return t.ReferenceNumber == nil || t.VerificationNumber == nil
}

// TraderStatementPatch carries the only three fields the reconciler may
// change on a persisted record.
type TraderStatementPatch struct {
	ReferenceNumber    string
	VerificationNumber string
	Status             TraderStatementStatus
}

// ProductEntry links one product code to the validation outcome of the
// ingestion that carried it. Computed once per record, never mutated.
type ProductEntry struct {
	ProductCode       string `json:"productCode"`
	HasValidStatement bool   `json:"hasValidStatement"`
}

// IngestionRecord is one complete ingestion attempt. Records are created
// fully formed at the end of a successful attempt; only the reconciler may
// mutate them, and only the trader statement's issued-number fields.
type IngestionRecord struct {
	InternalReferenceNumber string              `json:"internalReferenceNumber"`
	Timestamp               time.Time           `json:"timestamp"`
	Source                  string              `json:"source"`
	TraderStatement         TraderStatement     `json:"traderStatement"`
	SupplierStatements      []SupplierStatement `json:"supplierStatements"`
	ProductEntries          []ProductEntry      `json:"productEntries"`
}

// DeriveProductEntries computes the union of product codes across all
// candidates in first-seen order, marking each valid iff it appears in at
// least one accepted candidate.
func DeriveProductEntries(statements []SupplierStatement) []ProductEntry {
	index := make(map[string]int)
	entries := make([]ProductEntry, 0)
	for _, st := range statements {
		for _, code := range st.ProductCodes {
			i, seen := index[code]
			if !seen {
				index[code] = len(entries)
				entries = append(entries, ProductEntry{ProductCode: code})
				i = len(entries) - 1
			}
			if st.Accepted() {
				entries[i].HasValidStatement = true
			}
		}
	}
	return entries
}

// SumQuantities totals the quantities of the given statements.
func SumQuantities(statements []SupplierStatement) decimal.Decimal {
	total := decimal.Zero
	for _, st := range statements {
		total = total.Add(st.Quantity)
	}
	return total
}
