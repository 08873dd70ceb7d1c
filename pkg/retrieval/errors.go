package retrieval

import (
	"errors"
	"fmt"
)

// errNoCrossEncoder reports a rerank request against an orchestrator built
// without a cross-encoder client.
var errNoCrossEncoder = errors.New("no cross-encoder configured")

// warnErrLimit caps how much of an underlying error leaks into a warning
// string returned to clients.
const warnErrLimit = 50

// GraphQueryError wraps a graph store failure. Provider failures degrade a
// request; a failed graph query aborts it, because the result would
// otherwise silently misrepresent the namespace.
type GraphQueryError struct {
	Op  string
	Err error
}

func (e *GraphQueryError) Error() string {
	return fmt.Sprintf("graph query %s: %v", e.Op, e.Err)
}

func (e *GraphQueryError) Unwrap() error {
	return e.Err
}

// truncateErr keeps the first warnErrLimit runes of an error string.
func truncateErr(err error) string {
	msg := err.Error()
	runes := []rune(msg)
	if len(runes) > warnErrLimit {
		return string(runes[:warnErrLimit])
	}
	return msg
}

func warnEmbedding(err error) string {
	return "Embedding unavailable: " + truncateErr(err)
}

func warnCrossEncoder(err error) string {
	return "Cross-encoder unavailable: " + truncateErr(err)
}

func warnExpansion(err error) string {
	return "Graph expansion failed: " + truncateErr(err)
}
