// Package traces talks to the remote attestation registry. The pipeline only
// depends on the Client interface; transport, framing and credential handshake
// details stay behind it.
package traces

import (
	"context"

	"github.com/shopspring/decimal"

	"eudrgate/internal/domain"
)

// Client is the logical registry contract the pipeline depends on.
// Lookup is read-only and safe to re-invoke; Submit creates a new statement
// and must be called at most once per ingestion attempt.
type Client interface {
	Lookup(ctx context.Context, key domain.StatementKey) (LookupResult, error)
	Submit(ctx context.Context, sub TraderSubmission) (SubmissionReceipt, error)
	FetchByIdentifier(ctx context.Context, remoteIdentifier string) (RetrievalResult, error)
}

// LookupKind tags the variant of a lookup result.
type LookupKind int

const (
	LookupFound LookupKind = iota
	LookupNotFound
	LookupFault
)

// LookupResult is the tagged outcome of a statement lookup. Exactly one
// variant applies; the mapping from the wire response is a pure function
// (see convert.go) so there is a single authoritative interpretation.
type LookupResult struct {
	Kind        LookupKind
	Status      domain.StatementStatus // set when Kind == LookupFound
	FaultReason string                 // set when Kind == LookupFault
}

// Found builds the found variant.
func Found(status domain.StatementStatus) LookupResult {
	return LookupResult{Kind: LookupFound, Status: status}
}

// NotFound builds the not-found variant.
func NotFound() LookupResult {
	return LookupResult{Kind: LookupNotFound}
}

// Fault builds the fault variant.
func Fault(reason string) LookupResult {
	return LookupResult{Kind: LookupFault, FaultReason: reason}
}

// Operator identifies the submitting party on a trader statement.
type Operator struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// Commodity describes the goods covered by a trader statement.
type Commodity struct {
	HSHeading   string          `json:"hsHeading"`
	Description string          `json:"descriptionOfGoods"`
	NetQuantity decimal.Decimal `json:"netQuantity"`
	Unit        string          `json:"unit"`
}

// TraderSubmission is the aggregate statement body sent to the registry.
type TraderSubmission struct {
	InternalReferenceNumber string                `json:"internalReferenceNumber"`
	OperatorType            string                `json:"operatorType"`
	ActivityType            string                `json:"activityType"`
	CountryOfActivity       string                `json:"countryOfActivity"`
	Operator                Operator              `json:"operator"`
	Commodity               Commodity             `json:"commodity"`
	AssociatedStatements    []domain.StatementKey `json:"associatedStatements"`
}

// SubmissionReceipt is the synchronous part of the registry's answer. The
// business identifiers may be absent: issuance is asynchronous and the
// reconciler backfills them later.
type SubmissionReceipt struct {
	RemoteIdentifier   string
	ReferenceNumber    *string
	VerificationNumber *string
	Status             domain.StatementStatus
}

// RetrievalResult is the answer to a fetch-by-identifier call.
type RetrievalResult struct {
	ReferenceNumber    *string
	VerificationNumber *string
	Status             domain.StatementStatus
}

// Issued reports whether both business identifiers have been assigned.
func (r RetrievalResult) Issued() bool {
	return r.ReferenceNumber != nil && *r.ReferenceNumber != "" &&
		r.VerificationNumber != nil && *r.VerificationNumber != ""
}
