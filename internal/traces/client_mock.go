package traces

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eudrgate/internal/domain"
)

// MockClient is a deterministic registry for development and tests. It uses
// a fixed status table and a configurable latency to mimic real-world calls.
type MockClient struct {
	Latency time.Duration
	// Statuses maps reference numbers to lookup statuses. A nil map means
	// every statement is VALID; an entry with an empty status means the
	// statement is unknown to the registry.
	Statuses map[string]domain.StatementStatus
	// IssueSynchronously makes Submit return business numbers immediately
	// instead of leaving them for FetchByIdentifier.
	IssueSynchronously bool

	mu        sync.Mutex
	submitted map[string]TraderSubmission
}

func (c *MockClient) Lookup(_ context.Context, key domain.StatementKey) (LookupResult, error) {
	time.Sleep(c.Latency)
	if c.Statuses == nil {
		return Found(domain.StatusValid), nil
	}
	status, ok := c.Statuses[key.ReferenceNumber]
	if !ok || status == "" {
		return NotFound(), nil
	}
	return Found(status), nil
}

func (c *MockClient) Submit(_ context.Context, sub TraderSubmission) (SubmissionReceipt, error) {
	time.Sleep(c.Latency)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitted == nil {
		c.submitted = make(map[string]TraderSubmission)
	}
	remoteID := uuid.NewString()
	c.submitted[remoteID] = sub
	receipt := SubmissionReceipt{RemoteIdentifier: remoteID, Status: domain.StatusSubmitted}
	if c.IssueSynchronously {
		ref, ver := numbersFor(remoteID)
		receipt.ReferenceNumber = &ref
		receipt.VerificationNumber = &ver
		receipt.Status = domain.StatusAvailable
	}
	return receipt, nil
}

func (c *MockClient) FetchByIdentifier(_ context.Context, remoteIdentifier string) (RetrievalResult, error) {
	time.Sleep(c.Latency)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.submitted[remoteIdentifier]; !ok {
		// Unknown identifiers still answer, mirroring registries that keep
		// submissions visible only after internal processing.
		return RetrievalResult{Status: domain.StatusSubmitted}, nil
	}
	ref, ver := numbersFor(remoteIdentifier)
	return RetrievalResult{
		ReferenceNumber:    &ref,
		VerificationNumber: &ver,
		Status:             domain.StatusAvailable,
	}, nil
}

// numbersFor derives stable business numbers from a registry identifier so
// repeated retrievals agree.
func numbersFor(remoteIdentifier string) (ref string, ver string) {
	compact := strings.ToUpper(strings.ReplaceAll(remoteIdentifier, "-", ""))
	if len(compact) > 14 {
		compact = compact[:14]
	}
	return "25IT" + compact, "V" + compact[:min(7, len(compact))]
}
