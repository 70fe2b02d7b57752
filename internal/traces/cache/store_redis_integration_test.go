//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
	"eudrgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestMissOnEmptyCache() {
	_, ok, err := s.store.Get(s.ctx, domain.StatementKey{ReferenceNumber: "REF-A", VerificationNumber: "VER-A"})
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestSetGetRoundTrip() {
	key := domain.StatementKey{ReferenceNumber: "REF-A", VerificationNumber: "VER-A"}
	s.Require().NoError(s.store.Set(s.ctx, key, traces.Found(domain.StatusValid), time.Minute))

	result, ok, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(traces.Found(domain.StatusValid), result)
}

func (s *RedisStoreSuite) TestEntriesExpire() {
	key := domain.StatementKey{ReferenceNumber: "REF-A", VerificationNumber: "VER-A"}
	s.Require().NoError(s.store.Set(s.ctx, key, traces.NotFound(), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, ok, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestKeysAreScopedPerStatement() {
	a := domain.StatementKey{ReferenceNumber: "REF-A", VerificationNumber: "VER-A"}
	b := domain.StatementKey{ReferenceNumber: "REF-A", VerificationNumber: "VER-B"}
	s.Require().NoError(s.store.Set(s.ctx, a, traces.Found(domain.StatusValid), time.Minute))

	_, ok, err := s.store.Get(s.ctx, b)
	s.Require().NoError(err)
	s.False(ok)
}
