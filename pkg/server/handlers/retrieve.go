package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexigraph/lexigraph"
	"github.com/lexigraph/lexigraph/pkg/config"
	"github.com/lexigraph/lexigraph/pkg/retrieval"
	"github.com/lexigraph/lexigraph/pkg/server/dto"
	"github.com/lexigraph/lexigraph/pkg/types"
)

// RetrieveHandler serves the retrieval endpoints.
type RetrieveHandler struct {
	engine   lexigraph.Engine
	defaults config.RetrievalConfig
}

// NewRetrieveHandler creates a retrieve handler with the given request
// defaults.
func NewRetrieveHandler(engine lexigraph.Engine, defaults config.RetrievalConfig) *RetrieveHandler {
	return &RetrieveHandler{engine: engine, defaults: defaults}
}

// Retrieve handles POST /api/v1/retrieve.
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var body dto.RetrieveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	result, err := h.engine.Retrieve(c.Request.Context(), body.ToRequest(h.defaults))
	if err != nil {
		status, code := classifyError(err)
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Compare handles POST /api/v1/retrieve/compare.
func (h *RetrieveHandler) Compare(c *gin.Context) {
	var body dto.CompareRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	topK := body.TopK
	if topK == 0 {
		topK = h.defaults.DefaultTopK
	}
	namespace := body.Namespace
	if namespace == "" {
		namespace = h.defaults.Namespace
	}
	modes := make([]retrieval.Mode, 0, len(body.Modes))
	for _, m := range body.Modes {
		modes = append(modes, retrieval.Mode(m))
	}

	results, err := h.engine.Compare(c.Request.Context(), body.Query, namespace, topK, modes)
	if err != nil {
		status, code := classifyError(err)
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": body.Query, "results": results})
}

// Modes handles GET /api/v1/modes.
func (h *RetrieveHandler) Modes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"modes": retrieval.ModeCatalog()})
}

// classifyError maps pipeline errors onto HTTP statuses: validation
// failures are the caller's fault, a failed graph query is an upstream
// outage, anything else is internal.
func classifyError(err error) (int, string) {
	var gqe *retrieval.GraphQueryError
	switch {
	case errors.Is(err, types.ErrEmptyQuery),
		errors.Is(err, types.ErrEmptyNamespace),
		errors.Is(err, types.ErrTopKOutOfRange),
		errors.Is(err, types.ErrUnknownMode):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &gqe):
		return http.StatusBadGateway, "graph_query_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
