// Package embedding provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// various embedding providers, plus wrappers that add caching and lazy
// initialization on top of any provider.
//
// # Supported Providers
//
// The following embedding providers are supported:
//   - OpenAI: text-embedding-3-small, text-embedding-3-large, text-embedding-ada-002
//     (also works against OpenAI-compatible servers via BaseURL)
//   - Local: in-process embedding via go-embedeverything
//
// # Usage
//
//	// Create an OpenAI embedder
//	client := embedding.NewOpenAIEmbedder(apiKey, embedding.Config{
//	    Model:     "text-embedding-3-small",
//	    BatchSize: 100,
//	})
//
//	// Embed text
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
//
// # Batch Processing
//
// The Client interface supports batch embedding for efficiency:
//   - Embed(): Embed multiple texts in a single request
//   - EmbedSingle(): Convenience method for single text
//
// Implementations handle batching internally based on provider limits.
//
// # Wrappers
//
// NewCachedClient wraps any Client with a persistent badger-backed cache so
// repeated queries skip the provider entirely. NewLazyClient defers provider
// construction until the first call, which keeps process startup fast when the
// provider loads a local model.
package embedding
