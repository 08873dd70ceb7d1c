package crossencoder

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LazyClient defers construction of the wrapped client until the first Rank
// call. In-process providers download and load a model at construction;
// wrapping them keeps startup fast and turns a misconfigured provider into a
// per-request error instead of a boot failure.
//
// Concurrent first calls share a single construction via singleflight. A
// failed construction is not cached; the next call retries it.
type LazyClient struct {
	build func() (Client, error)
	group singleflight.Group

	mu     sync.RWMutex
	client Client
	closed bool
}

// NewLazyClient wraps a client constructor.
func NewLazyClient(build func() (Client, error)) *LazyClient {
	return &LazyClient{build: build}
}

func (l *LazyClient) get() (Client, error) {
	l.mu.RLock()
	client, closed := l.client, l.closed
	l.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("cross-encoder client is closed")
	}
	if client != nil {
		return client, nil
	}

	v, err, _ := l.group.Do("build", func() (interface{}, error) {
		l.mu.RLock()
		client, closed := l.client, l.closed
		l.mu.RUnlock()
		if closed {
			return nil, fmt.Errorf("cross-encoder client is closed")
		}
		if client != nil {
			return client, nil
		}

		built, err := l.build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cross-encoder client: %w", err)
		}

		l.mu.Lock()
		l.client = built
		l.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

// Rank ranks the given passages, constructing the wrapped client on first use.
func (l *LazyClient) Rank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	client, err := l.get()
	if err != nil {
		return nil, err
	}
	return client.Rank(ctx, query, passages)
}

// Close closes the wrapped client if it was ever constructed. Subsequent
// calls fail instead of rebuilding it.
func (l *LazyClient) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.client == nil {
		return nil
	}
	err := l.client.Close()
	l.client = nil
	return err
}
