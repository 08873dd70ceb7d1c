package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lexigraph/lexigraph/pkg/alert"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/types"
)

// BreakerStore wraps a GraphStore with circuit breaking logic. When the
// backend keeps failing the breaker opens, reads fail fast, and the
// health endpoint reports the store as down until a probe succeeds.
type BreakerStore struct {
	store   GraphStore
	cb      *gobreaker.CircuitBreaker
	alerter alert.Alerter
	logger  *slog.Logger
}

// NewBreakerStore creates a circuit breaking store wrapper
func NewBreakerStore(store GraphStore, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "graph-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("graph store breaker state changed", "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				msg := fmt.Sprintf("Circuit breaker '%s' changed status from %s to %s. The graph database is unreachable.", name, from, to)
				if alerter != nil {
					_ = alerter.Alert(fmt.Sprintf("Circuit Breaker Tripped - %s", name), msg)
				}
			}
		},
	}

	return &BreakerStore{
		store:   store,
		cb:      gobreaker.NewCircuitBreaker(st),
		alerter: alerter,
		logger:  logger,
	}
}

// ScanByLabel implements GraphStore
func (b *BreakerStore) ScanByLabel(ctx context.Context, namespace string) ([]types.ChunkRecord, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.ScanByLabel(ctx, namespace)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.ChunkRecord), nil
}

// Neighbors implements GraphStore
func (b *BreakerStore) Neighbors(ctx context.Context, namespace string, nodeIDs []string, maxHops int) ([]NeighborHit, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.Neighbors(ctx, namespace, nodeIDs, maxHops)
	})
	if err != nil {
		return nil, err
	}
	return result.([]NeighborHit), nil
}

// Ping implements GraphStore. Probes run through the breaker, so a
// successful probe in the half-open state closes it again.
func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.store.Ping(ctx)
	})
	return err
}

// Close implements GraphStore
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.store.Close(ctx)
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// Healthy reports whether the breaker is letting traffic through.
func (b *BreakerStore) Healthy() bool {
	return b.cb.State() != gobreaker.StateOpen
}
