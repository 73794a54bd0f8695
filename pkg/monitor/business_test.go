package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOracleMetrics(t *testing.T) {
	m := NewOracleMetrics(prometheus.NewRegistry())

	m.AttemptStarted("transfer")
	m.AttemptStarted("transfer")
	m.AttemptFinished("transfer", "signed", 50*time.Millisecond)
	m.AttemptFinished("transfer", "rejected", time.Second)
	m.SignatureChecked(true)
	m.SignatureChecked(false)
	m.SignatureChecked(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AttemptsStarted.WithLabelValues("transfer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttemptsFinished.WithLabelValues("transfer", "signed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttemptsFinished.WithLabelValues("transfer", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VerifyTotal.WithLabelValues("invalid")))
}

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init()

	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/api/v1/attempts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/attempts/:id", "200"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attempts/abc", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/attempts/:id", "200"))

	assert.Equal(t, before+1, after)
	assert.NotNil(t, Business)
}
