package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(original)

	router := gin.New()
	router.Use(Tracing("test"), RequestID(), SpanEnricher())
	router.GET("/clients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	req := httptest.NewRequest(http.MethodGet, "/clients/42", nil)
	req.Header.Set(RequestIDKey, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Contains(t, spans[0].Name(), "/clients/:id")
	assert.Contains(t, spans[0].Attributes(), attribute.String("request_id", "req-1"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestHTTPMetrics(t *testing.T) {
	t.Run("nil meter passes through", func(t *testing.T) {
		mw, err := HTTPMetrics(nil)
		require.NoError(t, err)

		router := gin.New()
		router.Use(mw)
		router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("records by route pattern", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer provider.Shutdown(context.Background())

		mw, err := HTTPMetrics(provider.Meter("http.server"))
		require.NoError(t, err)

		router := gin.New()
		router.Use(mw)
		router.GET("/clients/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
		for _, id := range []string{"1", "2", "3"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/clients/"+id, nil))
		}

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		var found bool
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "http.server.request.total" {
					continue
				}
				points := m.Data.(metricdata.Sum[int64]).DataPoints
				require.Len(t, points, 1)
				route, _ := points[0].Attributes.Value(AttrHTTPRoute)
				group, _ := points[0].Attributes.Value(AttrHTTPStatusGroup)
				assert.Equal(t, "/clients/:id", route.AsString())
				assert.Equal(t, "4xx", group.AsString())
				assert.Equal(t, int64(3), points[0].Value)
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestStatusGroup(t *testing.T) {
	assert.Equal(t, "2xx", StatusGroup(204))
	assert.Equal(t, "3xx", StatusGroup(301))
	assert.Equal(t, "4xx", StatusGroup(404))
	assert.Equal(t, "5xx", StatusGroup(503))
	assert.Equal(t, "other", StatusGroup(100))
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(1, 2, time.Minute)))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		statuses = append(statuses, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	t.Run("nil limiter disables limiting", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimit(nil))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		for range 5 {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
