package export

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"eudrgate/internal/domain"
)

type staticReader struct {
	records []domain.IngestionRecord
}

func (r *staticReader) ListAll(context.Context) ([]domain.IngestionRecord, error) {
	return r.records, nil
}

func strptr(s string) *string { return &s }

func record(key, remoteID string, ref, ver *string, entries ...domain.ProductEntry) domain.IngestionRecord {
	status := domain.TraderSubmitted
	if ref != nil {
		status = domain.TraderReconciled
	}
	return domain.IngestionRecord{
		InternalReferenceNumber: key,
		Timestamp:               time.Now().UTC(),
		TraderStatement: domain.TraderStatement{
			RemoteIdentifier:   remoteID,
			ReferenceNumber:    ref,
			VerificationNumber: ver,
			Status:             status,
			TotalQuantity:      decimal.RequireFromString("1"),
		},
		ProductEntries: entries,
	}
}

func valid(code string) domain.ProductEntry {
	return domain.ProductEntry{ProductCode: code, HasValidStatement: true}
}

func invalid(code string) domain.ProductEntry {
	return domain.ProductEntry{ProductCode: code, HasValidStatement: false}
}

type BuilderSuite struct {
	suite.Suite
	ctx context.Context
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *BuilderSuite) TestMappingGroupsStatementsByProduct() {
	reader := &staticReader{records: []domain.IngestionRecord{
		record("ING-1", "uuid-1", strptr("25IT001"), strptr("V001"), valid("P1"), valid("P2")),
		record("ING-2", "uuid-2", strptr("25IT002"), strptr("V002"), valid("P2")),
	}}
	builder := NewBuilder(reader)

	mapping, err := builder.BuildMapping(s.ctx)

	s.Require().NoError(err)
	s.Equal([]string{"P1", "P2"}, mapping.Codes)
	s.Require().Len(mapping.ByCode["P1"], 1)
	s.Require().Len(mapping.ByCode["P2"], 2)
	s.Equal("25IT001", mapping.ByCode["P2"][0].ReferenceNumber)
	s.Equal("25IT002", mapping.ByCode["P2"][1].ReferenceNumber)
}

func (s *BuilderSuite) TestInvalidProductsExcluded() {
	reader := &staticReader{records: []domain.IngestionRecord{
		record("ING-1", "uuid-1", strptr("25IT001"), strptr("V001"), valid("P1"), invalid("P2")),
	}}
	builder := NewBuilder(reader)

	mapping, err := builder.BuildMapping(s.ctx)

	s.Require().NoError(err)
	s.Equal([]string{"P1"}, mapping.Codes)
	s.NotContains(mapping.ByCode, "P2")
}

func (s *BuilderSuite) TestSameStatementAcrossIngestionsDeduplicated() {
	reader := &staticReader{records: []domain.IngestionRecord{
		record("ING-1", "uuid-1", strptr("25IT001"), strptr("V001"), valid("P1")),
		record("ING-2", "uuid-2", strptr("25IT001"), strptr("V001"), valid("P1")),
	}}
	builder := NewBuilder(reader)

	mapping, err := builder.BuildMapping(s.ctx)

	s.Require().NoError(err)
	s.Len(mapping.ByCode["P1"], 1)
}

func (s *BuilderSuite) TestPendingStatementsFallBackToRemoteIdentifier() {
	reader := &staticReader{records: []domain.IngestionRecord{
		record("ING-1", "uuid-1", nil, nil, valid("P1")),
		record("ING-2", "uuid-2", nil, nil, valid("P1")),
	}}
	builder := NewBuilder(reader)

	mapping, err := builder.BuildMapping(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(mapping.ByCode["P1"], 2)
	s.Equal("uuid-1", mapping.ByCode["P1"][0].RemoteIdentifier)
	s.Empty(mapping.ByCode["P1"][0].ReferenceNumber)
}

func (s *BuilderSuite) TestQueryUnknownCodeYieldsEmptyList() {
	reader := &staticReader{records: []domain.IngestionRecord{
		record("ING-1", "uuid-1", strptr("25IT001"), strptr("V001"), valid("P1")),
	}}
	builder := NewBuilder(reader)

	result, err := builder.Query(s.ctx, []string{"P1", "P404"})

	s.Require().NoError(err)
	s.Require().Len(result["P1"], 1)
	s.NotNil(result["P404"])
	s.Empty(result["P404"])
}
