package ingest

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"eudrgate/internal/domain"
)

// Aggregate groups normalized rows into candidate supplier statements by
// business key. Product codes accumulate as an ordered set in first-seen
// order; quantities sum. Candidate order equals the first appearance of each
// key in the input. An empty input yields an empty candidate list.
func Aggregate(rows []domain.SourceRow, logger *slog.Logger) []domain.SupplierStatement {
	candidates := make([]domain.SupplierStatement, 0)
	byKey := make(map[domain.StatementKey]int)
	seenCodes := make(map[domain.StatementKey]map[string]struct{})
	firstQuantity := make(map[domain.StatementKey]decimal.Decimal)

	for _, row := range rows {
		key := row.Key()
		i, ok := byKey[key]
		if !ok {
			byKey[key] = len(candidates)
			candidates = append(candidates, domain.SupplierStatement{
				StatementKey: key,
				Quantity:     decimal.Zero,
			})
			seenCodes[key] = make(map[string]struct{})
			firstQuantity[key] = row.Quantity
			i = len(candidates) - 1
		}

		if _, dup := seenCodes[key][row.ProductCode]; !dup && row.ProductCode != "" {
			seenCodes[key][row.ProductCode] = struct{}{}
			candidates[i].ProductCodes = append(candidates[i].ProductCodes, row.ProductCode)
		}
		candidates[i].Quantity = candidates[i].Quantity.Add(row.Quantity)

		// Unequal declared quantities for one key may be intended aggregation
		// or bad input; sum either way but surface the conflict.
		if ok && !row.Quantity.Equal(firstQuantity[key]) && !candidates[i].QuantityConflict {
			candidates[i].QuantityConflict = true
			if logger != nil {
				logger.Warn("divergent quantities for statement key",
					"reference_number", key.ReferenceNumber,
					"verification_number", key.VerificationNumber,
				)
			}
		}
	}
	return candidates
}
