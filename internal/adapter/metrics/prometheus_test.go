package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"aeye-server/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisMetricsCounts(t *testing.T) {
	m := NewAnalysisMetrics(prometheus.NewRegistry())

	m.ObserveOutcome("success")
	m.ObserveOutcome("success")
	m.ObserveOutcome("rejected")
	m.ObserveDelay(700 * time.Millisecond)

	ctx := "Living room space"
	m.ObserveResponse(&entity.AnalysisResponse{
		RecognizedFaces: []entity.DetectionItem{{Name: "Alice"}, {Name: "Bob"}},
		UnknownFaces:    1,
		Objects:         []entity.DetectionItem{{Name: "pen"}},
		Context:         &ctx,
	})
	m.ObserveResponse(&entity.AnalysisResponse{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.detectionsTotal.WithLabelValues("recognized_face")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detectionsTotal.WithLabelValues("unknown_face")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detectionsTotal.WithLabelValues("object")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.contextsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.delaySeconds))
}

func TestAnalysisMetricsHandler(t *testing.T) {
	m := NewAnalysisMetrics(prometheus.NewRegistry())
	m.ObserveOutcome("success")

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `aeye_analyze_requests_total{outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
