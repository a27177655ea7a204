package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestMetricsParRoute(t *testing.T) {
	metrics := NewMetrics()

	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Handle("/api/recettes/{id}", statusHandler(http.StatusNotFound)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler())

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/recettes/abc", nil))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	want := `monpetitchef_http_requests_total{method="GET",route="/api/recettes/{id}",status="404"} 2`
	if !strings.Contains(rr.Body.String(), want) {
		t.Errorf("métriques sans %q:\n%s", want, rr.Body.String())
	}
}
