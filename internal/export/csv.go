package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// WriteCSV renders the cumulative product report. One row per product code,
// statements joined in a single cell the way downstream catalog tooling
// expects.
func WriteCSV(w io.Writer, mapping *ProductMapping) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"EAN", "AssociatedDDS"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, code := range mapping.Codes {
		cell := make([]string, 0, len(mapping.ByCode[code]))
		for _, st := range mapping.ByCode[code] {
			cell = append(cell, formatStatement(st))
		}
		if err := cw.Write([]string{code, strings.Join(cell, "; ")}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatStatement prints "reference+verification" when both numbers exist,
// otherwise the registry identifier marked pending.
func formatStatement(st StatementSummary) string {
	if st.ReferenceNumber != "" && st.VerificationNumber != "" {
		return st.ReferenceNumber + "+" + st.VerificationNumber
	}
	return st.RemoteIdentifier + " (pending)"
}
