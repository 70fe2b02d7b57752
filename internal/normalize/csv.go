// Package normalize turns raw supplier feeds into domain source rows.
package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"eudrgate/internal/domain"
	dErrors "eudrgate/pkg/domain-errors"
)

// Supplier feeds use these exact column names.
const (
	columnProductCode        = "EAN"
	columnReferenceNumber    = "referenceNumber"
	columnVerificationNumber = "verificationNumber"
	columnQuantity           = "netWeightKG"
)

// ReadCSV parses a supplier CSV feed into source rows. The first record is
// the header and must carry the known columns; extra columns are ignored.
// All values are trimmed. An unparsable quantity becomes zero rather than
// failing the batch, matching how suppliers ship sparse weight data.
func ReadCSV(r io.Reader) ([]domain.SourceRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, dErrors.New(dErrors.CodeBadRequest, "empty feed: missing header row")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "read header row")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnProductCode, columnReferenceNumber, columnVerificationNumber, columnQuantity} {
		if _, ok := cols[required]; !ok {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("feed header missing column %q", required))
		}
	}

	var rows []domain.SourceRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("read feed row %d", line+1))
		}
		line++

		row := domain.SourceRow{
			ProductCode:        field(record, cols[columnProductCode]),
			ReferenceNumber:    field(record, cols[columnReferenceNumber]),
			VerificationNumber: field(record, cols[columnVerificationNumber]),
		}
		if qty, err := decimal.NewFromString(field(record, cols[columnQuantity])); err == nil {
			row.Quantity = qty
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Row builds a source row from already-split string fields, applying the
// same trimming and zero-on-unparsable quantity rules as the CSV path.
func Row(productCode, referenceNumber, verificationNumber, quantity string) domain.SourceRow {
	row := domain.SourceRow{
		ProductCode:        strings.TrimSpace(productCode),
		ReferenceNumber:    strings.TrimSpace(referenceNumber),
		VerificationNumber: strings.TrimSpace(verificationNumber),
	}
	if qty, err := decimal.NewFromString(strings.TrimSpace(quantity)); err == nil {
		row.Quantity = qty
	}
	return row
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
