// Package http provides the HTTP surface for the library assistant.
package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/readingroom/librarian/internal/adapter/llm"
	"github.com/readingroom/librarian/internal/domain"
)

// Asker runs one request to completion.
type Asker interface {
	Run(ctx context.Context, request string, caller domain.Caller) domain.FinalAnswer
}

// Cataloger lists the tool descriptors shown to the completion service.
type Cataloger interface {
	Descriptors() []llm.Tool
}

// Handler handles HTTP requests.
type Handler struct {
	runner  Asker
	catalog Cataloger
}

// NewHandler creates a new handler.
func NewHandler(runner Asker, catalog Cataloger) *Handler {
	return &Handler{
		runner:  runner,
		catalog: catalog,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/ask", h.Ask)
	e.GET("/v1/tools", h.ListTools)
	e.GET("/healthz", h.Health)
}

// Ask runs one assistant request. Rejections and denials are logic outcomes,
// not transport failures, so they still return 200 with the answer kind set.
func (h *Handler) Ask(c echo.Context) error {
	var req domain.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	caller := domain.Caller{
		Name:        req.Name,
		MemberToken: req.MemberToken,
	}
	answer := h.runner.Run(c.Request().Context(), req.Message, caller)

	return c.JSON(http.StatusOK, domain.AskResponse{
		RunID:  "run_" + uuid.New().String()[:8],
		Answer: answer,
	})
}

// ListTools returns the tool catalog descriptors.
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tools": h.catalog.Descriptors(),
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
