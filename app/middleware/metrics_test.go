package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/metrics-test/:code", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-test/:code", "204")
	before := testutil.ToFloat64(counter)

	for _, code := range []string{"AAAABBBBCCCC", "DDDDEEEEFFFF"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics-test/"+code, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}
