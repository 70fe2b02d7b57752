package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
)

// countingClient counts lookups so tests can observe cache hits.
type countingClient struct {
	mu      sync.Mutex
	lookups int
	result  traces.LookupResult
}

func (c *countingClient) Lookup(context.Context, domain.StatementKey) (traces.LookupResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	return c.result, nil
}

func (c *countingClient) Submit(context.Context, traces.TraderSubmission) (traces.SubmissionReceipt, error) {
	return traces.SubmissionReceipt{RemoteIdentifier: "uuid-1"}, nil
}

func (c *countingClient) FetchByIdentifier(context.Context, string) (traces.RetrievalResult, error) {
	return traces.RetrievalResult{}, nil
}

func (c *countingClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups
}

type CacheSuite struct {
	suite.Suite
	ctx context.Context
	key domain.StatementKey
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.key = domain.StatementKey{ReferenceNumber: "REF-A", VerificationNumber: "VER-A"}
}

func (s *CacheSuite) TestSecondLookupServedFromCache() {
	inner := &countingClient{result: traces.Found(domain.StatusValid)}
	client := New(inner, NewInMemoryStore(), time.Minute, nil)

	first, err := client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)
	second, err := client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, inner.count())
}

func (s *CacheSuite) TestNotFoundIsCached() {
	inner := &countingClient{result: traces.NotFound()}
	client := New(inner, NewInMemoryStore(), time.Minute, nil)

	_, err := client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)
	_, err = client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)

	s.Equal(1, inner.count())
}

func (s *CacheSuite) TestFaultNeverCached() {
	inner := &countingClient{result: traces.Fault("bad frame")}
	client := New(inner, NewInMemoryStore(), time.Minute, nil)

	_, err := client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)
	_, err = client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)

	s.Equal(2, inner.count())
}

func (s *CacheSuite) TestExpiredEntryRefetched() {
	inner := &countingClient{result: traces.Found(domain.StatusValid)}
	store := NewInMemoryStore()
	client := New(inner, store, time.Nanosecond, nil)

	_, err := client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)
	time.Sleep(time.Millisecond)
	_, err = client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)

	s.Equal(2, inner.count())
}

func (s *CacheSuite) TestZeroTTLDisablesCaching() {
	inner := &countingClient{result: traces.Found(domain.StatusValid)}
	client := New(inner, NewInMemoryStore(), 0, nil)

	_, err := client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)
	_, err = client.Lookup(s.ctx, s.key)
	s.Require().NoError(err)

	s.Equal(2, inner.count())
}
