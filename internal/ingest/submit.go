package ingest

import (
	"context"
	"log/slog"
	"time"

	"eudrgate/internal/domain"
	"eudrgate/internal/platform/metrics"
	"eudrgate/internal/traces"
)

// TraderProfile is the operator identity stamped on every consolidated
// statement.
type TraderProfile struct {
	OperatorName    string
	OperatorCountry string
	OperatorAddress string
	OperatorEmail   string
	HSHeading       string
	GoodsDesc       string
	QuantityUnit    string
}

// Submitter assembles the aggregate trader statement and submits it to the
// registry exactly once per ingestion attempt.
type Submitter struct {
	registry traces.Client
	profile  TraderProfile
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewSubmitter(registry traces.Client, profile TraderProfile, logger *slog.Logger, m *metrics.Metrics) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{registry: registry, profile: profile, logger: logger, metrics: m}
}

// Submit builds and sends the aggregate statement referencing the accepted
// candidates. The caller guarantees accepted is non-empty. The returned
// trader statement always carries the registry identifier; business numbers
// may still be pending.
func (s *Submitter) Submit(ctx context.Context, internalReferenceNumber string, accepted []domain.SupplierStatement) (domain.TraderStatement, error) {
	total := domain.SumQuantities(accepted)

	// The registry rejects duplicate associated references, so keys dedupe
	// by reference number even when verification numbers differ.
	seen := make(map[string]struct{}, len(accepted))
	referenced := make([]domain.StatementKey, 0, len(accepted))
	for _, st := range accepted {
		if _, dup := seen[st.ReferenceNumber]; dup {
			continue
		}
		seen[st.ReferenceNumber] = struct{}{}
		referenced = append(referenced, st.StatementKey)
	}

	submission := traces.TraderSubmission{
		InternalReferenceNumber: internalReferenceNumber,
		OperatorType:            "TRADER",
		ActivityType:            "TRADE",
		CountryOfActivity:       s.profile.OperatorCountry,
		Operator: traces.Operator{
			Name:    s.profile.OperatorName,
			Country: s.profile.OperatorCountry,
			Address: s.profile.OperatorAddress,
			Email:   s.profile.OperatorEmail,
		},
		Commodity: traces.Commodity{
			HSHeading:   s.profile.HSHeading,
			Description: s.profile.GoodsDesc,
			NetQuantity: total,
			Unit:        s.profile.QuantityUnit,
		},
		AssociatedStatements: referenced,
	}

	start := time.Now()
	receipt, err := s.registry.Submit(ctx, submission)
	s.metrics.ObserveRegistryCall("submit", time.Since(start))
	if err != nil {
		return domain.TraderStatement{}, &SubmissionFailure{Err: err}
	}

	trader := domain.TraderStatement{
		RemoteIdentifier:     receipt.RemoteIdentifier,
		ReferenceNumber:      receipt.ReferenceNumber,
		VerificationNumber:   receipt.VerificationNumber,
		TotalQuantity:        total,
		ReferencedStatements: referenced,
	}
	switch {
	case receipt.Status != "":
		trader.Status = domain.TraderStatementStatus(receipt.Status)
	case trader.ReferenceNumber != nil && trader.VerificationNumber != nil:
		trader.Status = domain.TraderReconciled
	default:
		trader.Status = domain.TraderSubmitted
	}

	s.logger.InfoContext(ctx, "trader statement submitted",
		"internal_reference_number", internalReferenceNumber,
		"remote_identifier", trader.RemoteIdentifier,
		"referenced_statements", len(referenced),
	)
	return trader, nil
}
