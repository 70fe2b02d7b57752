// Package cache adds a TTL cache in front of registry lookups. Lookups are
// read-only and deterministic for a fixed remote state, so short-lived
// caching is safe; faults are never cached.
package cache

import (
	"context"
	"log/slog"
	"time"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
)

// Store holds cached lookup results keyed by business key.
type Store interface {
	Get(ctx context.Context, key domain.StatementKey) (traces.LookupResult, bool, error)
	Set(ctx context.Context, key domain.StatementKey, result traces.LookupResult, ttl time.Duration) error
}

// Client decorates a registry client with lookup caching. Submit and
// FetchByIdentifier pass through untouched.
type Client struct {
	inner  traces.Client
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps inner with a lookup cache. A zero ttl disables caching writes.
func New(inner traces.Client, store Store, ttl time.Duration, logger *slog.Logger) *Client {
	return &Client{inner: inner, store: store, ttl: ttl, logger: logger}
}

func (c *Client) Lookup(ctx context.Context, key domain.StatementKey) (traces.LookupResult, error) {
	if cached, ok, err := c.store.Get(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "lookup cache read failed", "error", err)
	}

	result, err := c.inner.Lookup(ctx, key)
	if err != nil {
		return result, err
	}
	if result.Kind != traces.LookupFault && c.ttl > 0 {
		if err := c.store.Set(ctx, key, result, c.ttl); err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "lookup cache write failed", "error", err)
		}
	}
	return result, nil
}

func (c *Client) Submit(ctx context.Context, sub traces.TraderSubmission) (traces.SubmissionReceipt, error) {
	return c.inner.Submit(ctx, sub)
}

func (c *Client) FetchByIdentifier(ctx context.Context, remoteIdentifier string) (traces.RetrievalResult, error) {
	return c.inner.FetchByIdentifier(ctx, remoteIdentifier)
}
