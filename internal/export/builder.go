// Package export derives product→statement views from the audit ledger for
// reporting and point lookups.
package export

import (
	"context"

	"eudrgate/internal/domain"
)

// LedgerReader is the read path the builder consumes. In production this is
// the reconciling reader, so exports always see freshly issued numbers.
type LedgerReader interface {
	ListAll(ctx context.Context) ([]domain.IngestionRecord, error)
}

// StatementSummary is the reportable slice of a trader statement.
type StatementSummary struct {
	ReferenceNumber    string `json:"referenceNumber,omitempty"`
	VerificationNumber string `json:"verificationNumber,omitempty"`
	RemoteIdentifier   string `json:"remoteIdentifier"`
	Status             string `json:"status"`
}

// dedupKey collapses the same trader statement seen from multiple
// ingestions. Statements still awaiting their reference number fall back to
// the registry identifier so distinct pending statements stay distinct.
func (s StatementSummary) dedupKey() string {
	if s.ReferenceNumber != "" {
		return s.ReferenceNumber
	}
	return s.RemoteIdentifier
}

// ProductMapping is the bulk materialization: every covered product code in
// first-seen order with the trader statements that cover it.
type ProductMapping struct {
	Codes  []string
	ByCode map[string][]StatementSummary
}

// Builder scans the ledger and assembles product views.
type Builder struct {
	reader LedgerReader
}

func NewBuilder(reader LedgerReader) *Builder {
	return &Builder{reader: reader}
}

// BuildMapping scans all records and maps each product code with at least
// one valid statement to the trader statements covering it, deduplicated per
// code. A product code whose every ingestion rejected it never appears.
func (b *Builder) BuildMapping(ctx context.Context) (*ProductMapping, error) {
	records, err := b.reader.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	mapping := &ProductMapping{ByCode: make(map[string][]StatementSummary)}
	seen := make(map[string]map[string]struct{})

	for _, record := range records {
		summary := summarize(record.TraderStatement)
		for _, entry := range record.ProductEntries {
			if !entry.HasValidStatement {
				continue
			}
			if _, ok := mapping.ByCode[entry.ProductCode]; !ok {
				mapping.Codes = append(mapping.Codes, entry.ProductCode)
				seen[entry.ProductCode] = make(map[string]struct{})
			}
			if _, dup := seen[entry.ProductCode][summary.dedupKey()]; dup {
				continue
			}
			seen[entry.ProductCode][summary.dedupKey()] = struct{}{}
			mapping.ByCode[entry.ProductCode] = append(mapping.ByCode[entry.ProductCode], summary)
		}
	}
	return mapping, nil
}

// Query restricts the mapping to an explicit list of product codes. Codes
// without coverage yield an empty list, not an error.
func (b *Builder) Query(ctx context.Context, productCodes []string) (map[string][]StatementSummary, error) {
	mapping, err := b.BuildMapping(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]StatementSummary, len(productCodes))
	for _, code := range productCodes {
		if statements, ok := mapping.ByCode[code]; ok {
			out[code] = statements
		} else {
			out[code] = []StatementSummary{}
		}
	}
	return out, nil
}

func summarize(t domain.TraderStatement) StatementSummary {
	s := StatementSummary{
		RemoteIdentifier: t.RemoteIdentifier,
		Status:           string(t.Status),
	}
	if t.ReferenceNumber != nil {
		s.ReferenceNumber = *t.ReferenceNumber
	}
	if t.VerificationNumber != nil {
		s.VerificationNumber = *t.VerificationNumber
	}
	return s
}
