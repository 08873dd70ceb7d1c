package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexigraph/lexigraph/pkg/config"
)

// SamplesHandler serves the sample question catalog clients use to seed
// their query UI.
type SamplesHandler struct {
	path string
	log  *slog.Logger
}

// NewSamplesHandler creates a samples handler reading from the given YAML
// file; an empty path serves the built-in set.
func NewSamplesHandler(path string, logger *slog.Logger) *SamplesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SamplesHandler{path: path, log: logger}
}

// Samples handles GET /api/v1/questions/samples. An unreadable file falls
// back to the built-in questions rather than failing the endpoint.
func (h *SamplesHandler) Samples(c *gin.Context) {
	questions, err := config.LoadSampleQuestions(h.path)
	if err != nil {
		h.log.Warn("sample questions fallback", "path", h.path, "error", err)
		questions = config.DefaultSampleQuestions()
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}
