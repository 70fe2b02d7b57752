package ingest

import (
	"context"
	"sync"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
)

// fakeRegistry is a scriptable registry double for pipeline tests. Lookup
// outcomes are keyed by reference number; unconfigured keys resolve to the
// not-found variant.
type fakeRegistry struct {
	mu sync.Mutex

	lookupResults map[string]traces.LookupResult
	lookupErrs    map[string]error

	submitErr     error
	receipt       traces.SubmissionReceipt
	submissions   []traces.TraderSubmission
	retrievals    map[string]traces.RetrievalResult
	retrievalErrs map[string]error
}

func (f *fakeRegistry) Lookup(_ context.Context, key domain.StatementKey) (traces.LookupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.lookupErrs[key.ReferenceNumber]; ok {
		return traces.LookupResult{}, err
	}
	if result, ok := f.lookupResults[key.ReferenceNumber]; ok {
		return result, nil
	}
	return traces.NotFound(), nil
}

func (f *fakeRegistry) Submit(_ context.Context, sub traces.TraderSubmission) (traces.SubmissionReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return traces.SubmissionReceipt{}, f.submitErr
	}
	f.submissions = append(f.submissions, sub)
	return f.receipt, nil
}

func (f *fakeRegistry) FetchByIdentifier(_ context.Context, remoteIdentifier string) (traces.RetrievalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.retrievalErrs[remoteIdentifier]; ok {
		return traces.RetrievalResult{}, err
	}
	return f.retrievals[remoteIdentifier], nil
}

func (f *fakeRegistry) submittedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

func strptr(s string) *string { return &s }
