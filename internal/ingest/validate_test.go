package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
)

type ValidateSuite struct {
	suite.Suite
	ctx context.Context
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) SetupTest() {
	s.ctx = context.Background()
}

func candidate(ref, ver string) domain.SupplierStatement {
	return domain.SupplierStatement{
		StatementKey: domain.StatementKey{ReferenceNumber: ref, VerificationNumber: ver},
	}
}

func (s *ValidateSuite) TestClassification() {
	cases := []struct {
		name       string
		result     traces.LookupResult
		wantStatus domain.CandidateStatus
		wantReason domain.RejectionReason
	}{
		{"valid status accepted", traces.Found(domain.StatusValid), domain.CandidateAccepted, ""},
		{"available status accepted", traces.Found(domain.StatusAvailable), domain.CandidateAccepted, ""},
		{"unknown status rejected as invalid", traces.Found("WITHDRAWN"), domain.CandidateRejected, domain.ReasonInvalid},
		{"not found rejected", traces.NotFound(), domain.CandidateRejected, domain.ReasonNotFound},
		{"fault rejected as protocol fault", traces.Fault("bad frame"), domain.CandidateRejected, domain.ReasonProtocolFault},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			registry := &fakeRegistry{lookupResults: map[string]traces.LookupResult{"REF-X": tc.result}}
			v := NewValidator(registry, 2, nil, nil)

			out, err := v.Validate(s.ctx, []domain.SupplierStatement{candidate("REF-X", "VER-X")})

			s.Require().NoError(err)
			s.Require().Len(out, 1)
			s.Equal(tc.wantStatus, out[0].Status)
			s.Equal(tc.wantReason, out[0].ReasonCode)
		})
	}
}

func (s *ValidateSuite) TestOrderPreservedUnderConcurrency() {
	results := make(map[string]traces.LookupResult)
	candidates := make([]domain.SupplierStatement, 0, 20)
	for i := 0; i < 20; i++ {
		ref := fmt.Sprintf("REF-%02d", i)
		if i%3 == 0 {
			results[ref] = traces.Found(domain.StatusValid)
		}
		candidates = append(candidates, candidate(ref, "VER"))
	}
	registry := &fakeRegistry{lookupResults: results}
	v := NewValidator(registry, 8, nil, nil)

	out, err := v.Validate(s.ctx, candidates)

	s.Require().NoError(err)
	s.Require().Len(out, 20)
	for i, st := range out {
		s.Equal(fmt.Sprintf("REF-%02d", i), st.ReferenceNumber)
		if i%3 == 0 {
			s.Equal(domain.CandidateAccepted, st.Status)
		} else {
			s.Equal(domain.CandidateRejected, st.Status)
			s.Equal(domain.ReasonNotFound, st.ReasonCode)
		}
	}
}

func (s *ValidateSuite) TestLookupErrorRejectsOnlyThatCandidate() {
	registry := &fakeRegistry{
		lookupResults: map[string]traces.LookupResult{
			"REF-OK": traces.Found(domain.StatusValid),
		},
		lookupErrs: map[string]error{
			"REF-BOOM": errors.New("connection reset"),
		},
	}
	v := NewValidator(registry, 2, nil, nil)

	out, err := v.Validate(s.ctx, []domain.SupplierStatement{
		candidate("REF-OK", "V1"),
		candidate("REF-BOOM", "V2"),
	})

	s.Require().NoError(err)
	s.Equal(domain.CandidateAccepted, out[0].Status)
	s.Equal(domain.CandidateRejected, out[1].Status)
	s.Equal(domain.ReasonProtocolFault, out[1].ReasonCode)
}

func (s *ValidateSuite) TestTimeoutErrorMapsToNoResponse() {
	registry := &fakeRegistry{
		lookupErrs: map[string]error{
			"REF-SLOW": fmt.Errorf("lookup: %w", context.DeadlineExceeded),
		},
	}
	v := NewValidator(registry, 1, nil, nil)

	out, err := v.Validate(s.ctx, []domain.SupplierStatement{candidate("REF-SLOW", "V1")})

	s.Require().NoError(err)
	s.Equal(domain.ReasonNoResponse, out[0].ReasonCode)
}

func (s *ValidateSuite) TestCancelledContextAbortsBatch() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	registry := &fakeRegistry{
		lookupErrs: map[string]error{"REF-A": context.Canceled},
	}
	v := NewValidator(registry, 1, nil, nil)

	_, err := v.Validate(ctx, []domain.SupplierStatement{candidate("REF-A", "V1")})

	s.Require().Error(err)
	s.ErrorIs(err, context.Canceled)
}

func (s *ValidateSuite) TestDeterministicForFixedRegistryState() {
	registry := &fakeRegistry{
		lookupResults: map[string]traces.LookupResult{
			"REF-A": traces.Found(domain.StatusValid),
			"REF-B": traces.Fault("oops"),
		},
	}
	v := NewValidator(registry, 4, nil, nil)
	input := []domain.SupplierStatement{
		candidate("REF-A", "V1"),
		candidate("REF-B", "V2"),
		candidate("REF-C", "V3"),
	}

	first, err := v.Validate(s.ctx, input)
	s.Require().NoError(err)
	second, err := v.Validate(s.ctx, input)
	s.Require().NoError(err)

	s.Equal(first, second)
}
