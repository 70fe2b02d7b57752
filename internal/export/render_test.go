package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
)

func testMapping() *ProductMapping {
	return &ProductMapping{
		Codes: []string{"9788800000001", "9788800000002"},
		ByCode: map[string][]StatementSummary{
			"9788800000001": {
				{ReferenceNumber: "25IT001", VerificationNumber: "V001", RemoteIdentifier: "uuid-1", Status: "RECONCILED"},
				{ReferenceNumber: "25IT002", VerificationNumber: "V002", RemoteIdentifier: "uuid-2", Status: "RECONCILED"},
			},
			"9788800000002": {
				{RemoteIdentifier: "uuid-3", Status: "SUBMITTED"},
			},
		},
	}
}

type RenderSuite struct {
	suite.Suite
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func (s *RenderSuite) TestCSV() {
	var buf bytes.Buffer
	s.Require().NoError(WriteCSV(&buf, testMapping()))

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal([]string{"EAN", "AssociatedDDS"}, rows[0])
	s.Equal("9788800000001", rows[1][0])
	s.Equal("25IT001+V001; 25IT002+V002", rows[1][1])
	s.Equal("uuid-3 (pending)", rows[2][1])
}

func (s *RenderSuite) TestONIX() {
	var buf bytes.Buffer
	s.Require().NoError(WriteONIX(&buf, testMapping()))

	out := buf.String()
	s.Contains(out, `<ONIXMessage`)
	s.Contains(out, `xmlns="http://ns.editeur.org/onix/3.0/reference"`)
	s.Contains(out, "<RecordReference>9788800000001</RecordReference>")
	s.Contains(out, "<eudr:ReferenceNumber>25IT001</eudr:ReferenceNumber>")
	s.Contains(out, "<eudr:VerificationNumber>V001</eudr:VerificationNumber>")
	s.Contains(out, "<eudr:RegistryIdentifier>uuid-3</eudr:RegistryIdentifier>")
}

func (s *RenderSuite) TestXLSX() {
	var buf bytes.Buffer
	s.Require().NoError(WriteXLSX(&buf, testMapping()))

	f, err := excelize.OpenReader(&buf)
	s.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows("Statements")
	s.Require().NoError(err)
	s.Require().Len(rows, 4)
	s.Equal("EAN", rows[0][0])
	s.Equal("9788800000001", rows[1][0])
	s.Equal("25IT001", rows[1][1])
	s.Equal("uuid-3", rows[3][3])
}
