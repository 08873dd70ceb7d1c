// Package store provides graph database backends for lexigraph.
//
// This package defines the GraphStore interface and provides implementations
// for Neo4j and an in-process memory store.
//
// # Supported Backends
//
//   - Neo4j: production backend, queried over Bolt with the official driver
//   - Memory: in-process store for tests, examples, and local development
//
// # Usage
//
// Create a store using the appropriate constructor:
//
//	// Neo4j
//	st, err := store.NewNeo4jStore(uri, username, password, database)
//
//	// Memory
//	st := store.NewMemoryStore()
//
// Any store can be wrapped with a circuit breaker so a persistently
// unreachable backend fails fast instead of hanging every request:
//
//	st = store.NewBreakerStore(st, cfg, alerter, logger)
//
// # Namespaces
//
// A namespace is a node label: every chunk of one corpus carries the same
// label (for example Statute). Namespaces are validated before they are
// interpolated into Cypher, since labels cannot be bound as parameters.
//
// # Thread Safety
//
// All store implementations are safe for concurrent use from multiple
// goroutines.
package store
