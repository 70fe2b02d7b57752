package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"eudrgate/internal/domain"
	"eudrgate/internal/platform/metrics"
	"eudrgate/internal/traces"
)

// Validator classifies candidates against the remote registry. Lookups run
// under bounded concurrency; the output slice keeps candidate order no matter
// which lookups finish first.
type Validator struct {
	registry    traces.Client
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewValidator(registry traces.Client, concurrency int, logger *slog.Logger, m *metrics.Metrics) *Validator {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{registry: registry, concurrency: concurrency, logger: logger, metrics: m}
}

// Validate issues one lookup per candidate and fills in status and reason
// code. A failing lookup rejects only its own candidate; the batch aborts
// only when the caller's context is cancelled.
func (v *Validator) Validate(ctx context.Context, candidates []domain.SupplierStatement) ([]domain.SupplierStatement, error) {
	out := make([]domain.SupplierStatement, len(candidates))
	copy(out, candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i := range out {
		g.Go(func() error {
			start := time.Now()
			result, err := v.registry.Lookup(gctx, out[i].StatementKey)
			v.metrics.ObserveRegistryCall("lookup", time.Since(start))

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				out[i].Status = domain.CandidateRejected
				out[i].ReasonCode = lookupErrorReason(err)
				v.logger.WarnContext(gctx, "statement lookup failed",
					"reference_number", out[i].ReferenceNumber,
					"reason", out[i].ReasonCode,
					"error", err,
				)
				v.metrics.IncCandidate(string(out[i].ReasonCode))
				return nil
			}

			status, reason := classify(result)
			out[i].Status = status
			out[i].ReasonCode = reason
			if status == domain.CandidateAccepted {
				v.metrics.IncCandidate("accepted")
			} else {
				v.metrics.IncCandidate(string(reason))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// classify maps the tagged lookup variant onto the candidate classification.
func classify(result traces.LookupResult) (domain.CandidateStatus, domain.RejectionReason) {
	switch result.Kind {
	case traces.LookupFound:
		if result.Status.InGoodStanding() {
			return domain.CandidateAccepted, ""
		}
		return domain.CandidateRejected, domain.ReasonInvalid
	case traces.LookupNotFound:
		return domain.CandidateRejected, domain.ReasonNotFound
	default:
		return domain.CandidateRejected, domain.ReasonProtocolFault
	}
}

// lookupErrorReason separates no-answer conditions from protocol problems.
func lookupErrorReason(err error) domain.RejectionReason {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ReasonNoResponse
	}
	return domain.ReasonProtocolFault
}
