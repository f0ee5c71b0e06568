package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kadai-ai/kadai/internal/dispatcher"
)

// DispatchHandler adapts HTTP requests onto dispatcher.Dispatcher, the
// same signature the CLI's "dispatch" subcommand calls directly.
type DispatchHandler struct {
	dispatcher *dispatcher.Dispatcher
}

func NewDispatchHandler(d *dispatcher.Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: d}
}

type dispatchRequest struct {
	Utterance string         `json:"utterance" binding:"required"`
	Source    string         `json:"source"`
	Metadata  map[string]any `json:"metadata"`
}

// Dispatch runs one task through the pipeline. It never asks a
// clarifying follow-up over HTTP (no Clarify collaborator is wired);
// an ambiguous utterance that passes the safety gate is answered by the
// free_form skill.
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := dispatcher.SourceText
	if req.Source != "" {
		source = dispatcher.Source(req.Source)
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), dispatcher.TaskContext{
		Utterance: req.Utterance,
		Source:    source,
		Metadata:  req.Metadata,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Evals returns the dispatcher's recent router/ambiguity LLM call log.
func (h *DispatchHandler) Evals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"records": h.dispatcher.EvalLog()})
}
