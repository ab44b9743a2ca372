package v1

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/store"
)

type createCardRequest struct {
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Domains  []string `json:"domain"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
	Persona  string   `json:"persona"`
}

type cardResponse struct {
	Success bool         `json:"success"`
	Card    *cardMessage `json:"card"`
	Message string       `json:"message,omitempty"`
}

type listCardsResponse struct {
	Success bool           `json:"success"`
	Cards   []*cardMessage `json:"cards"`
	Count   int            `json:"count"`
}

// CreateCard stores a memory card written by hand, without running the
// distiller.
// POST /api/v1/cards
func (s *APIV1Service) CreateCard(c echo.Context) error {
	ctx := c.Request().Context()
	request := &createCardRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}
	if request.Text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "card text is required"})
	}
	cardType := store.CardType(request.Type)
	if !cardType.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid card type %q", request.Type)})
	}
	if request.Priority != "" && !store.CardPriority(request.Priority).Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid card priority %q", request.Priority)})
	}

	card, err := s.Store.CreateCard(ctx, &store.Card{
		Type:     cardType,
		Text:     request.Text,
		Domains:  request.Domains,
		Priority: store.CardPriority(request.Priority),
		Tags:     request.Tags,
		Persona:  s.personaOrDefault(c, request.Persona),
	})
	if err != nil {
		slog.Error("failed to create card", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create card"})
	}

	return c.JSON(http.StatusOK, cardResponse{
		Success: true,
		Card:    convertCardMessage(card),
		Message: fmt.Sprintf("Memory card '%s' created successfully", card.ID),
	})
}

// ListCards lists a persona's cards, optionally narrowed by domain,
// type, or tag parameters and a CEL filter expression.
// GET /api/v1/cards
func (s *APIV1Service) ListCards(c echo.Context) error {
	ctx := c.Request().Context()
	persona := s.personaOrDefault(c, "")
	find := &store.FindCard{Persona: &persona}
	if domain := c.QueryParam("domain"); domain != "" {
		find.Domain = &domain
	}
	if typeParam := c.QueryParam("type"); typeParam != "" {
		cardType := store.CardType(typeParam)
		if !cardType.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid card type %q", typeParam)})
		}
		find.Type = &cardType
	}
	if tag := c.QueryParam("tag"); tag != "" {
		find.Tag = &tag
	}

	cards, err := s.Store.ListCards(ctx, find)
	if err != nil {
		slog.Error("failed to list cards", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list cards"})
	}
	if filter := c.QueryParam("filter"); filter != "" {
		cards, err = store.FilterCards(cards, filter)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid filter: %v", err)})
		}
	}

	return c.JSON(http.StatusOK, listCardsResponse{
		Success: true,
		Cards:   convertCardMessages(cards),
		Count:   len(cards),
	})
}

// GetCard returns a single card by id.
// GET /api/v1/cards/:id
func (s *APIV1Service) GetCard(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	card, err := s.Store.GetCard(ctx, id)
	if err != nil {
		slog.Error("failed to get card", "card_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get card"})
	}
	if card == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Memory card '%s' not found", id)})
	}

	return c.JSON(http.StatusOK, cardResponse{
		Success: true,
		Card:    convertCardMessage(card),
	})
}

// DeleteCard removes a card by id.
// DELETE /api/v1/cards/:id
func (s *APIV1Service) DeleteCard(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	card, err := s.Store.GetCard(ctx, id)
	if err != nil {
		slog.Error("failed to get card", "card_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete card"})
	}
	if card == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Memory card '%s' not found", id)})
	}
	if err := s.Store.DeleteCard(ctx, &store.DeleteCard{ID: &id, Persona: &card.Persona}); err != nil {
		slog.Error("failed to delete card", "card_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete card"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Memory card '%s' deleted successfully", id),
	})
}
