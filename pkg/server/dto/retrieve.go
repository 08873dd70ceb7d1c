// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/retrieval"
)

// RetrieveRequest is the body of POST /api/v1/retrieve. Query is required;
// everything else falls back to the server's configured defaults.
type RetrieveRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Rerank    bool     `json:"rerank,omitempty"`
	Alpha     *float64 `json:"alpha,omitempty"`
	HopDepth  int      `json:"hop_depth,omitempty"`
}

// ToRequest fills unset fields from the retrieval defaults and produces the
// pipeline request. Validation stays with the pipeline so the API and the
// library reject input identically.
func (r *RetrieveRequest) ToRequest(defaults config.RetrievalConfig) retrieval.Request {
	req := retrieval.Request{
		Query:     r.Query,
		TopK:      r.TopK,
		Namespace: r.Namespace,
		Mode:      retrieval.Mode(r.Mode),
		Rerank:    r.Rerank,
		Alpha:     r.Alpha,
		HopDepth:  r.HopDepth,
	}
	if req.TopK == 0 {
		req.TopK = defaults.DefaultTopK
	}
	if req.Namespace == "" {
		req.Namespace = defaults.Namespace
	}
	if req.Mode == "" {
		req.Mode = retrieval.Mode(defaults.DefaultMode)
	}
	return req
}

// CompareRequest is the body of POST /api/v1/retrieve/compare. An empty
// mode list compares every mode.
type CompareRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Modes     []string `json:"modes,omitempty"`
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse reports process liveness and graph store reachability.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
