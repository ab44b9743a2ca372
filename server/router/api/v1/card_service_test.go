package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateCard(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", map[string]any{
		"type":   "constraint",
		"text":   "Vegetarian, never cooks fish or meat",
		"domain": []string{"eating"},
		"tags":   []string{"diet"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	response := &cardResponse{}
	decodeJSON(t, rec, response)
	require.True(t, response.Success)
	require.True(t, strings.HasPrefix(response.Card.ID, "card_"))
	require.Equal(t, "constraint", response.Card.Type)
	require.Equal(t, "soft", response.Card.Priority)
	require.Equal(t, "Personal", response.Card.Persona)
	require.NotZero(t, response.Card.CreatedTs)
	require.Equal(t, fmt.Sprintf("Memory card '%s' created successfully", response.Card.ID), response.Message)
}

func TestCreateCardValidation(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", map[string]any{
		"type": "preference",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := map[string]string{}
	decodeJSON(t, rec, &body)
	require.Equal(t, "card text is required", body["error"])

	rec = sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", map[string]any{
		"type": "opinion",
		"text": "something",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeJSON(t, rec, &body)
	require.Contains(t, body["error"], "invalid card type")

	rec = sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", map[string]any{
		"type":     "preference",
		"text":     "something",
		"priority": "urgent",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeJSON(t, rec, &body)
	require.Contains(t, body["error"], "invalid card priority")
}

func TestListCards(t *testing.T) {
	_, echoServer := newTestService(t, "")

	mustCreateCard(t, echoServer, map[string]any{
		"type": "preference", "text": "Prefers quiet restaurants over busy ones",
		"domain": []string{"eating"}, "tags": []string{"dining"},
	})
	mustCreateCard(t, echoServer, map[string]any{
		"type": "constraint", "text": "Keeps purchases under 100 euros",
		"domain": []string{"shopping"}, "tags": []string{"budget"},
	})
	mustCreateCard(t, echoServer, map[string]any{
		"type": "capability", "text": "Comfortable reading dense technical documentation",
		"domain": []string{"work"}, "tags": []string{"skills"},
	})

	rec := sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	response := &listCardsResponse{}
	decodeJSON(t, rec, response)
	require.True(t, response.Success)
	require.Equal(t, 3, response.Count)
	require.Len(t, response.Cards, 3)

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards?domain=shopping", nil, nil)
	decodeJSON(t, rec, response)
	require.Equal(t, 1, response.Count)
	require.Equal(t, "Keeps purchases under 100 euros", response.Cards[0].Text)

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards?type=constraint", nil, nil)
	decodeJSON(t, rec, response)
	require.Equal(t, 1, response.Count)

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards?tag=dining", nil, nil)
	decodeJSON(t, rec, response)
	require.Equal(t, 1, response.Count)
	require.Equal(t, "preference", response.Cards[0].Type)

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards?type=opinion", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCardsFilterExpression(t *testing.T) {
	_, echoServer := newTestService(t, "")

	mustCreateCard(t, echoServer, map[string]any{
		"type": "constraint", "text": "Keeps purchases under 100 euros",
		"domain": []string{"shopping"}, "tags": []string{"budget"},
	})
	mustCreateCard(t, echoServer, map[string]any{
		"type": "capability", "text": "Comfortable reading dense technical documentation",
		"domain": []string{"work"}, "tags": []string{"skills"},
	})
	mustCreateCard(t, echoServer, map[string]any{
		"type": "preference", "text": "Prefers quiet restaurants over busy ones",
		"domain": []string{"eating"}, "tags": []string{"dining"},
	})

	target := "/api/v1/cards?filter=" + url.QueryEscape(`type == "constraint" || "skills" in tags`)
	rec := sendJSON(t, echoServer, http.MethodGet, target, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	response := &listCardsResponse{}
	decodeJSON(t, rec, response)
	require.Equal(t, 2, response.Count)

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards?filter="+url.QueryEscape("type =="), nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := map[string]string{}
	decodeJSON(t, rec, &body)
	require.Contains(t, body["error"], "invalid filter")
}

func TestListCardsPersonaIsolation(t *testing.T) {
	_, echoServer := newTestService(t, "")

	mustCreateCard(t, echoServer, map[string]any{
		"type": "preference", "text": "Personal taste in restaurants",
		"domain": []string{"eating"},
	})
	mustCreateCard(t, echoServer, map[string]any{
		"type": "capability", "text": "Runs the deployment pipeline",
		"domain": []string{"work"}, "persona": "Work",
	})

	rec := sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards", nil, nil)
	response := &listCardsResponse{}
	decodeJSON(t, rec, response)
	require.Equal(t, 1, response.Count)
	require.Equal(t, "Personal", response.Cards[0].Persona)

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards?persona=Work", nil, nil)
	decodeJSON(t, rec, response)
	require.Equal(t, 1, response.Count)
	require.Equal(t, "Work", response.Cards[0].Persona)
}

func TestGetCard(t *testing.T) {
	_, echoServer := newTestService(t, "")

	created := mustCreateCard(t, echoServer, map[string]any{
		"type": "goal", "text": "Wants to run a half marathon this year",
		"domain": []string{"health"},
	})

	rec := sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	response := &cardResponse{}
	decodeJSON(t, rec, response)
	require.True(t, response.Success)
	require.Equal(t, created.ID, response.Card.ID)
	require.Equal(t, "Wants to run a half marathon this year", response.Card.Text)
}

func TestGetCardNotFound(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards/card_missing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := map[string]string{}
	decodeJSON(t, rec, &body)
	require.Equal(t, "Memory card 'card_missing' not found", body["error"])
}

func TestDeleteCard(t *testing.T) {
	_, echoServer := newTestService(t, "")

	created := mustCreateCard(t, echoServer, map[string]any{
		"type": "preference", "text": "Short meetings, agenda first",
		"domain": []string{"work"},
	})

	rec := sendJSON(t, echoServer, http.MethodDelete, "/api/v1/cards/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := map[string]any{}
	decodeJSON(t, rec, &body)
	require.Equal(t, true, body["success"])
	require.Equal(t, fmt.Sprintf("Memory card '%s' deleted successfully", created.ID), body["message"])

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards/"+created.ID, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCardNotFound(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodDelete, "/api/v1/cards/card_missing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
