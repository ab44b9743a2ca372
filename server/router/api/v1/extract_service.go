package v1

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/plugin/ai/extraction"
	"github.com/memwallet/memwallet/plugin/markdown"
	"github.com/memwallet/memwallet/server/internal/observability"
)

type extractConversationRequest struct {
	ConversationID   string           `json:"conversation_id"`
	ConversationText string           `json:"conversation_text"`
	Messages         []map[string]any `json:"messages"`
	// UserID is the legacy field name for persona kept for older clients.
	UserID  string `json:"user_id"`
	Persona string `json:"persona"`
}

type extractConversationResponse struct {
	Success            bool                         `json:"success"`
	ExtractedItems     []extraction.Item            `json:"extracted_items"`
	Categorized        map[string][]extraction.Item `json:"categorized"`
	MemoryCardsCreated int                          `json:"memory_cards_created"`
	Message            string                       `json:"message"`
}

// ExtractConversation mines a captured conversation for durable facts
// and stores them as extracted memory cards. The distiller runs when an
// LLM is configured; keyword extraction covers the rest.
// POST /api/v1/extract
func (s *APIV1Service) ExtractConversation(c echo.Context) error {
	ctx := c.Request().Context()
	request := &extractConversationRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if request.ConversationText == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation text is required"})
	}
	explicit := request.Persona
	if explicit == "" {
		explicit = request.UserID
	}
	persona := s.personaOrDefault(c, explicit)

	reqCtx := requestContext(c, "extract", persona)
	metrics := observability.GlobalMetrics()
	metrics.RecordRequest("extract")

	items, err := s.ExtractionChain.Extract(ctx, request.ConversationText)
	if err != nil {
		metrics.RecordFailure("extract")
		reqCtx.Error("conversation extraction failed", err,
			slog.String("conversation_id", request.ConversationID))
		return respondError(c, err)
	}

	// Hashtags typed into the conversation become card tags alongside
	// the mined content words.
	hashtags := markdown.ExtractHashtags(request.ConversationText)
	cards := extraction.CardsFromItems(items, persona, hashtags)

	created := 0
	for _, card := range cards {
		if _, err := s.Store.CreateCard(ctx, card); err != nil {
			metrics.RecordFailure("extract")
			reqCtx.Error("failed to store extracted card", err,
				slog.String("conversation_id", request.ConversationID))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store extracted cards"})
		}
		created++
	}

	metrics.RecordDuration("extract", reqCtx.Duration())
	reqCtx.Info("conversation extracted",
		slog.String("conversation_id", request.ConversationID),
		slog.Int("items", len(items)),
		slog.Int("messages", len(request.Messages)),
		slog.Int(observability.LogFieldCardCount, created),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	return c.JSON(http.StatusOK, extractConversationResponse{
		Success:            true,
		ExtractedItems:     items,
		Categorized:        extraction.CategorizeItems(items),
		MemoryCardsCreated: created,
		Message:            fmt.Sprintf("Extracted %d items and created %d memory cards", len(items), created),
	})
}
