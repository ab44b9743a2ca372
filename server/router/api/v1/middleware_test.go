package v1

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/memwallet/memwallet/server/auth"
)

const testJWTSecret = "router-test-secret"

func cardPayload() map[string]any {
	return map[string]any{
		"type":   "preference",
		"text":   "Short meetings, agenda first",
		"domain": []string{"work"},
	}
}

func TestAuthMiddlewareRequiresToken(t *testing.T) {
	_, echoServer := newTestService(t, testJWTSecret)

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", cardPayload(), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := map[string]string{}
	decodeJSON(t, rec, &body)
	require.Equal(t, "authentication required", body["error"])
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	_, echoServer := newTestService(t, testJWTSecret)

	token, err := auth.GenerateAccessToken("Personal", time.Now().Add(time.Hour), []byte(testJWTSecret))
	require.NoError(t, err)

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", cardPayload(), map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	_, echoServer := newTestService(t, testJWTSecret)

	token, err := auth.GenerateAccessToken("Personal", time.Now().Add(-time.Minute), []byte(testJWTSecret))
	require.NoError(t, err)

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", cardPayload(), map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	_, echoServer := newTestService(t, testJWTSecret)

	token, err := auth.GenerateAccessToken("Personal", time.Now().Add(time.Hour), []byte("some-other-secret"))
	require.NoError(t, err)

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", cardPayload(), map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareLeavesReadRoutesOpen(t *testing.T) {
	_, echoServer := newTestService(t, testJWTSecret)

	rec := sendJSON(t, echoServer, http.MethodGet, "/api/v1/cards", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareDisabledWithoutSecret(t *testing.T) {
	_, echoServer := newTestService(t, "")

	rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/cards", cardPayload(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitOnContextRoutes(t *testing.T) {
	_, echoServer := newTestService(t, "")

	// The limiter allows a burst of 20 per client address; the recorder
	// keeps the same remote address across requests, so a tight loop
	// must run into 429s before it finishes.
	var limited int
	for i := 0; i < 30; i++ {
		rec := sendJSON(t, echoServer, http.MethodPost, "/api/v1/context/pack", map[string]any{}, nil)
		if i == 0 {
			require.Equal(t, http.StatusBadRequest, rec.Code)
		}
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	require.GreaterOrEqual(t, limited, 1)
}
