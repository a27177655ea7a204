package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsOriginAllowed(t *testing.T) {
	origins := []string{"https://monpetitchef.fr", "http://localhost:3000"}

	tests := []struct {
		origin  string
		origins []string
		want    bool
	}{
		{"https://monpetitchef.fr", origins, true},
		{"http://localhost:3000", origins, true},
		{"https://evil.com", origins, false},
		{"https://monpetitchef.fr.evil.com", origins, false},
		{"", origins, false},
		{"https://nimporte.ou", []string{"*"}, true},
	}
	for _, tt := range tests {
		if got := IsOriginAllowed(tt.origin, tt.origins); got != tt.want {
			t.Errorf("IsOriginAllowed(%q) = %v, attendu %v", tt.origin, got, tt.want)
		}
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		origin     string
		wantCode   int
		wantOrigin string
	}{
		{"origine autorisée", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"origine refusée", http.MethodGet, "https://evil.com", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
	}

	handler := CORS([]string{"http://localhost:3000"})(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/recettes", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("Code = %v, attendu %v", rr.Code, tt.wantCode)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, attendu %q", got, tt.wantOrigin)
			}
		})
	}
}
