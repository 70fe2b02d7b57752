package normalize

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	dErrors "eudrgate/pkg/domain-errors"
)

type CSVSuite struct {
	suite.Suite
}

func TestCSVSuite(t *testing.T) {
	suite.Run(t, new(CSVSuite))
}

func (s *CSVSuite) TestParsesSupplierFeed() {
	feed := strings.Join([]string{
		"EAN,referenceNumber,verificationNumber,netWeightKG",
		"9788800000001,REF-A,VER-A,12.5",
		"9788800000002, REF-B , VER-B ,3",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(feed))

	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("9788800000001", rows[0].ProductCode)
	s.Equal("REF-A", rows[0].ReferenceNumber)
	s.True(rows[0].Quantity.Equal(decimal.RequireFromString("12.5")))
	s.Equal("REF-B", rows[1].ReferenceNumber)
	s.Equal("VER-B", rows[1].VerificationNumber)
}

func (s *CSVSuite) TestUnparsableQuantityBecomesZero() {
	feed := "EAN,referenceNumber,verificationNumber,netWeightKG\nP1,REF-A,VER-A,n/a"

	rows, err := ReadCSV(strings.NewReader(feed))

	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(rows[0].Quantity.IsZero())
}

func (s *CSVSuite) TestExtraColumnsIgnored() {
	feed := "supplier,EAN,referenceNumber,verificationNumber,netWeightKG\nACME,P1,REF-A,VER-A,1"

	rows, err := ReadCSV(strings.NewReader(feed))

	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("P1", rows[0].ProductCode)
}

func (s *CSVSuite) TestMissingColumnRejected() {
	feed := "EAN,referenceNumber,netWeightKG\nP1,REF-A,1"

	_, err := ReadCSV(strings.NewReader(feed))

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.ErrorContains(err, "verificationNumber")
}

func (s *CSVSuite) TestEmptyFeedRejected() {
	_, err := ReadCSV(strings.NewReader(""))

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *CSVSuite) TestHeaderOnlyFeedYieldsNoRows() {
	feed := "EAN,referenceNumber,verificationNumber,netWeightKG\n"

	rows, err := ReadCSV(strings.NewReader(feed))

	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *CSVSuite) TestRowHelperTrimsAndParses() {
	row := Row(" P1 ", " REF-A ", " VER-A ", " 2.5 ")

	s.Equal("P1", row.ProductCode)
	s.Equal("REF-A", row.ReferenceNumber)
	s.True(row.Quantity.Equal(decimal.RequireFromString("2.5")))

	zero := Row("P1", "REF-A", "VER-A", "")
	s.True(zero.Quantity.IsZero())
}
