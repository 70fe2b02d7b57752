package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StatementStatus is the lifecycle state of a statement as reported by (or
// derived from) the attestation registry.
type StatementStatus string

const (
	StatusAvailable  StatementStatus = "AVAILABLE"
	StatusValid      StatementStatus = "VALID"
	StatusSubmitted  StatementStatus = "SUBMITTED"
	StatusRegistered StatementStatus = "REGISTERED"
	StatusConfirmed  StatementStatus = "CONFIRMED"
)

// goodStanding is the set of registry statuses that make a supplier statement
// usable as input to a consolidated trader statement.
var goodStanding = map[StatementStatus]struct{}{
	StatusAvailable:  {},
	StatusValid:      {},
	StatusSubmitted:  {},
	StatusRegistered: {},
	StatusConfirmed:  {},
}

// InGoodStanding reports whether a registry status allows the statement to be
// referenced by a new trader statement.
func (s StatementStatus) InGoodStanding() bool {
	_, ok := goodStanding[StatementStatus(strings.ToUpper(string(s)))]
	return ok
}

// CandidateStatus is the classification of one supplier statement within an
// ingestion attempt.
type CandidateStatus string

const (
	CandidateAccepted CandidateStatus = "ACCEPTED"
	CandidateRejected CandidateStatus = "REJECTED"
)

// RejectionReason normalizes why a candidate was rejected.
type RejectionReason string

const (
	ReasonNotFound      RejectionReason = "NOT_FOUND"
	ReasonInvalid       RejectionReason = "INVALID"
	ReasonProtocolFault RejectionReason = "PROTOCOL_FAULT"
	ReasonNoResponse    RejectionReason = "NO_RESPONSE"
)

// StatementKey is the business key of a statement held by the registry.
type StatementKey struct {
	ReferenceNumber    string `json:"referenceNumber"`
	VerificationNumber string `json:"verificationNumber"`
}

// SourceRow is one normalized input row, produced by an external normalizer.
type SourceRow struct {
	ProductCode        string          `json:"productCode"`
	ReferenceNumber    string          `json:"referenceNumber"`
	VerificationNumber string          `json:"verificationNumber"`
	Quantity           decimal.Decimal `json:"quantity"`
}

// Key returns the row's business key.
func (r SourceRow) Key() StatementKey {
	return StatementKey{ReferenceNumber: r.ReferenceNumber, VerificationNumber: r.VerificationNumber}
}

// SupplierStatement is one candidate statement aggregated from input rows and
// classified against the registry. The business key is unique within one
// ingestion's candidate set.
type SupplierStatement struct {
	StatementKey
	// ProductCodes keeps first-seen order with duplicates removed.
	ProductCodes []string        `json:"productCodes"`
	Quantity     decimal.Decimal `json:"quantity"`
	Status       CandidateStatus `json:"status"`
	ReasonCode   RejectionReason `json:"reasonCode,omitempty"`
	// QuantityConflict marks keys whose source rows declared unequal
	// quantities; the sum is still used pending product clarification.
	QuantityConflict bool `json:"quantityConflict,omitempty"`
}

// Accepted reports whether the candidate passed validation.
func (s SupplierStatement) Accepted() bool { return s.Status == CandidateAccepted }
