package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/server/internal/observability"
)

type componentMetricsMessage struct {
	Requests     int64 `json:"requests"`
	Errors       int64 `json:"errors"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

type metricsOverviewResponse struct {
	TotalRequests  int64                              `json:"total_requests"`
	FailedRequests int64                              `json:"failed_requests"`
	SuccessRate    float64                            `json:"success_rate"`
	Components     map[string]componentMetricsMessage `json:"components"`
}

// GetMetricsOverview returns request counters aggregated per component
// since the process started.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()

	components := make(map[string]componentMetricsMessage, len(snapshot.ComponentMetrics))
	for name, cm := range snapshot.ComponentMetrics {
		components[name] = componentMetricsMessage{
			Requests:     cm.ExecutionCount,
			Errors:       cm.ErrorCount,
			AvgLatencyMs: cm.AverageDuration,
		}
	}

	return c.JSON(http.StatusOK, metricsOverviewResponse{
		TotalRequests:  snapshot.RequestTotal,
		FailedRequests: snapshot.RequestFailed,
		SuccessRate:    snapshot.SuccessRate(),
		Components:     components,
	})
}
