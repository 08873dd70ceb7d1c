package embedding

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LazyClient defers construction of the wrapped client until the first call.
// Local providers load a model into memory on construction; wrapping them
// keeps process startup fast and lets the server come up even when the
// provider is misconfigured (the error surfaces per-request instead).
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
		return nil, fmt.Errorf("embedding client is closed")
	}
	if client != nil {
		return client, nil
	}

	v, err, _ := l.group.Do("build", func() (interface{}, error) {
		l.mu.RLock()
		client, closed := l.client, l.closed
		l.mu.RUnlock()
		if closed {
			return nil, fmt.Errorf("embedding client is closed")
		}
		if client != nil {
			return client, nil
		}

		built, err := l.build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedding client: %w", err)
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

// Embed generates embeddings for the given texts, constructing the wrapped
// client on first use.
func (l *LazyClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	client, err := l.get()
	if err != nil {
		return nil, err
	}
	return client.Embed(ctx, texts)
}

// EmbedSingle generates an embedding for a single text.
func (l *LazyClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	client, err := l.get()
	if err != nil {
		return nil, err
	}
	return client.EmbedSingle(ctx, text)
}

// Dimensions returns the number of dimensions in the embeddings. Calling it
// initializes the wrapped client; it returns 0 when initialization fails.
func (l *LazyClient) Dimensions() int {
	client, err := l.get()
	if err != nil {
		return 0
	}
	return client.Dimensions()
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
