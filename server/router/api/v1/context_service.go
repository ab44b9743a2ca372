package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/plugin/ai/graph"
	"github.com/memwallet/memwallet/server/internal/observability"
	"github.com/memwallet/memwallet/server/service/contextpack"
)

type generateContextPackRequest struct {
	contextpack.Request
	// SiteID names the chat site the extension is typing into. It is
	// recorded for diagnostics only; selection does not depend on it.
	SiteID string `json:"site_id"`
}

type contextPackResponse struct {
	Pack *contextpack.Pack `json:"pack"`
}

type previewContextPackResponse struct {
	Success bool `json:"success"`
	*contextpack.Preview
}

type memoryGraphResponse struct {
	Success   bool         `json:"success"`
	Error     string       `json:"error,omitempty"`
	Persona   string       `json:"persona"`
	NodeCount int          `json:"node_count"`
	EdgeCount int          `json:"edge_count"`
	Nodes     []graph.Node `json:"nodes"`
	Edges     []graph.Edge `json:"edges"`
}

// GenerateContextPack selects the relevant cards for a draft prompt and
// renders the pack text the extension prepends.
// POST /api/v1/context/pack
func (s *APIV1Service) GenerateContextPack(c echo.Context) error {
	ctx := c.Request().Context()
	request := &generateContextPackRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	request.Persona = s.personaOrDefault(c, request.Persona)

	reqCtx := requestContext(c, "context_pack", request.Persona)
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest("context_pack")

	pack, err := s.ContextPackService.BuildContextPack(ctx, &request.Request)
	if err != nil {
		metrics.RecordFailure("context_pack")
		reqCtx.Error("context pack build failed", err, slog.String("site_id", request.SiteID))
		return respondError(c, err)
	}
	metrics.RecordDuration("context_pack", reqCtx.Duration())
	reqCtx.Info("context pack built",
		slog.String("site_id", request.SiteID),
		slog.Int(observability.LogFieldCardCount, pack.CardCount),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	return c.JSON(http.StatusOK, contextPackResponse{Pack: pack})
}

// ExplainContextPack runs selection for a draft prompt and reports the
// per-card verdicts, including why each excluded card was left out.
// POST /api/v1/context/preview
func (s *APIV1Service) ExplainContextPack(c echo.Context) error {
	ctx := c.Request().Context()
	request := &generateContextPackRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	request.Persona = s.personaOrDefault(c, request.Persona)

	explanation, err := s.ContextPackService.ExplainContextPack(ctx, &request.Request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, explanation)
}

// PreviewContextPack shows the head of a persona's wallet without any
// prompt filtering, for the popup.
// GET /api/v1/context/preview
func (s *APIV1Service) PreviewContextPack(c echo.Context) error {
	ctx := c.Request().Context()
	persona := s.personaOrDefault(c, "")
	maxCards := 0
	if raw := c.QueryParam("max_cards"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_cards must be an integer"})
		}
		maxCards = n
	}

	preview, err := s.ContextPackService.BuildPreview(ctx, persona, maxCards)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, previewContextPackResponse{Success: true, Preview: preview})
}

// GetMemoryGraph returns the shared-tag graph of a persona's wallet for
// visualization. Build failures degrade to an empty graph so the view
// still renders.
// GET /api/v1/memory/graph
func (s *APIV1Service) GetMemoryGraph(c echo.Context) error {
	ctx := c.Request().Context()
	persona := s.personaOrDefault(c, "")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
		}
		limit = n
	}

	g, err := s.GraphBuilder.Build(ctx, persona, limit)
	if err != nil {
		slog.Error("failed to build memory graph", "persona", persona, "error", err)
		return c.JSON(http.StatusOK, memoryGraphResponse{
			Success: false,
			Error:   err.Error(),
			Persona: persona,
			Nodes:   []graph.Node{},
			Edges:   []graph.Edge{},
		})
	}

	return c.JSON(http.StatusOK, memoryGraphResponse{
		Success:   true,
		Persona:   persona,
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
		Nodes:     g.Nodes,
		Edges:     g.Edges,
	})
}
