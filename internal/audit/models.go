package audit

import "time"

// Actions recorded on the audit trail.
const (
	ActionIngestionRecorded     = "ingestion_recorded"
	ActionReconciliationApplied = "reconciliation_applied"
	ActionLedgerReset           = "ledger_reset"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp               time.Time `json:"timestamp"`
	Action                  string    `json:"action"`
	InternalReferenceNumber string    `json:"internalReferenceNumber,omitempty"`
	Source                  string    `json:"source,omitempty"`
	Accepted                int       `json:"accepted,omitempty"`
	Rejected                int       `json:"rejected,omitempty"`
	Detail                  string    `json:"detail,omitempty"`
}
