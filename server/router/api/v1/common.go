package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/internal/version"
	serviceerrors "github.com/memwallet/memwallet/server/internal/errors"
	"github.com/memwallet/memwallet/server/internal/observability"
	"github.com/memwallet/memwallet/store"
)

// cardMessage is the wire form of a memory card. The store type stays
// free of serialization concerns.
type cardMessage struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Text      string   `json:"text"`
	Domains   []string `json:"domain"`
	Priority  string   `json:"priority"`
	Tags      []string `json:"tags"`
	Persona   string   `json:"persona"`
	CreatedTs int64    `json:"created_ts"`
	UpdatedTs int64    `json:"updated_ts"`
}

func convertCardMessage(card *store.Card) *cardMessage {
	return &cardMessage{
		ID:        card.ID,
		Type:      string(card.Type),
		Text:      card.Text,
		Domains:   card.Domains,
		Priority:  string(card.Priority),
		Tags:      card.Tags,
		Persona:   card.Persona,
		CreatedTs: card.CreatedTs,
		UpdatedTs: card.UpdatedTs,
	}
}

func convertCardMessages(cards []*store.Card) []*cardMessage {
	messages := make([]*cardMessage, 0, len(cards))
	for _, card := range cards {
		messages = append(messages, convertCardMessage(card))
	}
	return messages
}

// personaOrDefault resolves the persona for a request: explicit value
// first, then the persona query parameter, then the configured default.
func (s *APIV1Service) personaOrDefault(c echo.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := c.QueryParam("persona"); p != "" {
		return p
	}
	return s.Profile.Persona
}

// requestContext builds a request-scoped logger, reusing the id the
// request id middleware assigned when present.
func requestContext(c echo.Context, component, persona string) *observability.RequestContext {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return observability.NewRequestContextWithID(slog.Default(), id, component, persona)
	}
	return observability.NewRequestContext(slog.Default(), component, persona)
}

// respondError writes err as a JSON error body, translating service
// error codes into HTTP statuses. Unrecognized errors read as internal.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := err.Error()

	var svcErr *serviceerrors.ServiceError
	if errors.As(err, &svcErr) {
		message = svcErr.Message
		switch svcErr.Code {
		case serviceerrors.ErrCodeInvalidArgument:
			status = http.StatusBadRequest
		case serviceerrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case serviceerrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case serviceerrors.ErrCodeRateLimitExceeded:
			status = http.StatusTooManyRequests
		case serviceerrors.ErrCodeFeatureNotSupported:
			status = http.StatusNotImplemented
		case serviceerrors.ErrCodeLLMUnavailable:
			status = http.StatusServiceUnavailable
		case serviceerrors.ErrCodeTimeout:
			status = http.StatusGatewayTimeout
		}
		return c.JSON(status, map[string]string{"error": message, "code": string(svcErr.Code)})
	}
	return c.JSON(status, map[string]string{"error": message})
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetVersion returns the server version and mode.
// GET /api/v1/version
func (s *APIV1Service) GetVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version": version.GetCurrentVersion(s.Profile.Mode),
		"mode":    s.Profile.Mode,
	})
}
