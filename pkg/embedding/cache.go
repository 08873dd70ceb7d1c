package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	badger "github.com/dgraph-io/badger/v4"
)

// CachedClient wraps a Client with a persistent badger-backed cache keyed on
// (model, text). Cache failures degrade to the wrapped client: reads fall
// through to the provider and write errors are logged, never returned.
type CachedClient struct {
	inner  Client
	db     *badger.DB
	model  string
	logger *slog.Logger
}

// NewCachedClient opens (or creates) a badger cache at dir wrapping inner.
// The model name namespaces cache keys so switching models never serves stale
// vectors.
func NewCachedClient(inner Client, dir string, model string, logger *slog.Logger) (*CachedClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = "default"
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	return &CachedClient{
		inner:  inner,
		db:     db,
		model:  model,
		logger: logger,
	}, nil
}

// Embed returns cached vectors where available and asks the wrapped client
// only for the misses.
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings := make([][]float32, len(texts))
	var missed []string
	var missedIdx []int
	for i, text := range texts {
		if vec, ok := c.lookup(text); ok {
			embeddings[i] = vec
			continue
		}
		missed = append(missed, text)
		missedIdx = append(missedIdx, i)
	}
	if len(missed) == 0 {
		return embeddings, nil
	}

	fresh, err := c.inner.Embed(ctx, missed)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missed) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missed), len(fresh))
	}

	for i, vec := range fresh {
		embeddings[missedIdx[i]] = vec
	}
	c.store(missed, fresh)

	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *CachedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (c *CachedClient) Dimensions() int {
	return c.inner.Dimensions()
}

// Close closes the cache database and the wrapped client.
func (c *CachedClient) Close() error {
	return errors.Join(c.db.Close(), c.inner.Close())
}

func (c *CachedClient) lookup(text string) ([]float32, bool) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.cacheKey(text))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("embedding cache read failed", "error", err)
		}
		return nil, false
	}

	vec, err := decodeVector(raw)
	if err != nil {
		c.logger.Warn("dropping corrupt embedding cache entry", "error", err)
		return nil, false
	}
	return vec, true
}

func (c *CachedClient) store(texts []string, vectors [][]float32) {
	err := c.db.Update(func(txn *badger.Txn) error {
		for i, text := range texts {
			if err := txn.Set(c.cacheKey(text), encodeVector(vectors[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
}

func (c *CachedClient) cacheKey(text string) []byte {
	h := sha256.New()
	h.Write([]byte(c.model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil)
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("corrupt cached vector: %d bytes", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}
