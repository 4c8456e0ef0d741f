package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/agora/server/internal/utils/metrics"
)

func TestMetrics(t *testing.T) {
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/posts/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/posts/1", "/posts/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/posts/:id", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestMetrics_ListRequests(t *testing.T) {
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/posts", func(c *gin.Context) {
		if c.Query("limit") == "0" {
			c.Status(http.StatusBadRequest)
			return
		}
		SetListing(c, 2, true)
		c.Status(http.StatusOK)
	})
	router.GET("/posts/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, target := range []string{
		"/posts",
		"/posts?cursor=abc",
		"/posts?cursor=def&limit=5",
		"/posts?page=1",
		"/posts?page=3",
		"/posts?limit=0",
		"/posts/1",
	} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ListRequestsTotal.WithLabelValues("/posts", "first")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ListRequestsTotal.WithLabelValues("/posts", "continuation")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ListRequestsTotal))
}
