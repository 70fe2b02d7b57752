package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"eudrgate/internal/export"
	"eudrgate/pkg/testutil"
)

type fakeBuilder struct {
	mapping *export.ProductMapping
	query   map[string][]export.StatementSummary
	err     error

	gotCodes []string
}

func (f *fakeBuilder) BuildMapping(context.Context) (*export.ProductMapping, error) {
	return f.mapping, f.err
}

func (f *fakeBuilder) Query(_ context.Context, codes []string) (map[string][]export.StatementSummary, error) {
	f.gotCodes = codes
	return f.query, f.err
}

type ExportHandlerSuite struct {
	suite.Suite
	builder *fakeBuilder
	router  chi.Router
}

func TestExportHandlerSuite(t *testing.T) {
	suite.Run(t, new(ExportHandlerSuite))
}

func (s *ExportHandlerSuite) SetupTest() {
	s.builder = &fakeBuilder{
		mapping: &export.ProductMapping{
			Codes: []string{"P1"},
			ByCode: map[string][]export.StatementSummary{
				"P1": {{ReferenceNumber: "25IT001", VerificationNumber: "V001", RemoteIdentifier: "uuid-1", Status: "RECONCILED"}},
			},
		},
	}
	s.router = chi.NewRouter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	New(s.builder, logger).Register(s.router)
}

func (s *ExportHandlerSuite) TestQuery() {
	s.builder.query = map[string][]export.StatementSummary{
		"P1":   {{ReferenceNumber: "25IT001", RemoteIdentifier: "uuid-1"}},
		"P404": {},
	}
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/products/query", QueryRequest{
		ProductCodes: []string{"P1", "P404"},
	})

	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	s.Equal([]string{"P1", "P404"}, s.builder.gotCodes)
	resp := testutil.UnmarshalResponse[struct {
		Products map[string][]export.StatementSummary `json:"products"`
	}](s.T(), rr)
	s.Len(resp.Products["P1"], 1)
	s.Empty(resp.Products["P404"])
}

func (s *ExportHandlerSuite) TestQueryCodesCleanedBeforeLookup() {
	s.builder.query = map[string][]export.StatementSummary{}
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/products/query", QueryRequest{
		ProductCodes: []string{" P1 ", "P1", "", "P2"},
	})

	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	s.Equal([]string{"P1", "P2"}, s.builder.gotCodes)
}

func (s *ExportHandlerSuite) TestQueryEmptyCodesRejected() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/products/query", QueryRequest{})

	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("bad_request", testutil.ErrorCode(s.T(), rr))

	req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/products/query", QueryRequest{
		ProductCodes: []string{"  ", ""},
	})
	s.Equal(http.StatusBadRequest, testutil.DoRequest(s.router, req).Code)
}

func (s *ExportHandlerSuite) TestExportCSV() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/export/csv"))

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("text/csv", rr.Header().Get("Content-Type"))
	s.Contains(rr.Body.String(), "EAN,AssociatedDDS")
	s.Contains(rr.Body.String(), "25IT001+V001")
}

func (s *ExportHandlerSuite) TestExportONIX() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/export/onix"))

	s.Equal(http.StatusOK, rr.Code)
	s.Equal("application/xml", rr.Header().Get("Content-Type"))
	s.Contains(rr.Body.String(), "<ONIXMessage")
}

func (s *ExportHandlerSuite) TestExportXLSX() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/export/xlsx"))

	s.Equal(http.StatusOK, rr.Code)
	s.NotEmpty(rr.Body.Bytes())
}

func (s *ExportHandlerSuite) TestUnknownFormatRejected() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/export/pdf"))

	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("bad_request", testutil.ErrorCode(s.T(), rr))
}
