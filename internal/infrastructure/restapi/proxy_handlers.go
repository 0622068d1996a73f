package restapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"move_portfolio/internal/app/port"
)

// apiError mirrors the GraphQL-style error envelope the indexer proxy speaks.
type apiError struct {
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Errors []apiError `json:"errors"`
}

func errorEnvelope(message string) apiErrorResponse {
	return apiErrorResponse{Errors: []apiError{{Message: message}}}
}

type proxyRequest struct {
	Endpoint  string         `json:"endpoint"`
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// ProxyHandler forwards GraphQL documents to a caller-chosen indexer endpoint.
type ProxyHandler struct {
	indexer port.IndexerClient
	timeout time.Duration
	logger  port.Logger
}

// NewProxyHandler creates a new indexer proxy handler.
func NewProxyHandler(indexer port.IndexerClient, timeout time.Duration, logger port.Logger) *ProxyHandler {
	return &ProxyHandler{
		indexer: indexer,
		timeout: timeout,
		logger:  logger,
	}
}

// ForwardHandler handles POST /api/indexer. The upstream response body,
// GraphQL errors included, is returned verbatim.
func (h *ProxyHandler) ForwardHandler(c *gin.Context) {
	var req proxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body"))
		return
	}
	if req.Endpoint == "" {
		c.JSON(http.StatusBadRequest, errorEnvelope("Endpoint is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	body, err := h.indexer.Forward(ctx, req.Endpoint, req.Query, req.Variables)
	if err != nil {
		h.logger.Error("Indexer proxy request failed", "endpoint", req.Endpoint, "error", err)
		c.JSON(http.StatusInternalServerError, errorEnvelope(err.Error()))
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
