package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/memwallet/memwallet/internal/profile"
	teststore "github.com/memwallet/memwallet/store/test"
)

// newTestService wires the full route table over a throwaway store.
// An empty secret disables the auth middleware, matching a loopback
// deployment without a configured JWT secret.
func newTestService(t *testing.T, secret string) (*APIV1Service, *echo.Echo) {
	t.Helper()
	st := teststore.NewTestingStore(context.Background(), t)
	testProfile := &profile.Profile{Mode: "dev", Driver: "sqlite", Persona: "Personal"}
	service := NewAPIV1Service(secret, testProfile, st)
	echoServer := echo.New()
	service.Register(echoServer)
	return service, echoServer
}

// sendJSON runs one request through the router, middleware included.
func sendJSON(t *testing.T, echoServer *echo.Echo, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, target, &payload)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	echoServer.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func mustCreateCard(t *testing.T, echoServer *echo.Echo, payload map[string]any) *cardMessage {
	t.Helper()
	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	response := &cardResponse{}
	decodeJSON(t, rec, response)
	require.True(t, response.Success)
	require.NotNil(t, response.Card)
	return response.Card
}

func TestHealthz(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]string{}
	decodeJSON(t, rec, &body)
	require.Equal(t, "ok", body["status"])
}

func TestGetVersion(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodGet, "/api/v1/version", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]string{}
	decodeJSON(t, rec, &body)
	require.NotEmpty(t, body["version"])
	require.Equal(t, "dev", body["mode"])
}

func TestGetMetricsOverview(t *testing.T) {
	_, echoServer := newTestService(t, "")

	// Drive one counted request so the component shows up.
	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/context/pack", map[string]any{
		"draft_prompt": "anything at all",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = sendJSON(t, echoServer, http.MethodGet, "/api/v1/system/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	overview := &metricsOverviewResponse{}
	decodeJSON(t, rec, overview)
	require.GreaterOrEqual(t, overview.TotalRequests, int64(1))
	require.Contains(t, overview.Components, "context_pack")
	require.GreaterOrEqual(t, overview.Components["context_pack"].Requests, int64(1))
	require.GreaterOrEqual(t, overview.SuccessRate, 0.0)
	require.LessOrEqual(t, overview.SuccessRate, 1.0)
}
