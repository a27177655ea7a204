package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		wantCode int
		wantMsg  string
	}{
		{"admin autorisé", &models.User{Role: models.RoleAdmin}, http.StatusOK, ""},
		{"user refusé", &models.User{Role: models.RoleUser}, http.StatusForbidden, "Le rôle user n'est pas autorisé à accéder à cette ressource"},
		{"sans utilisateur", nil, http.StatusUnauthorized, "Accès non autorisé, veuillez vous connecter"},
	}

	handler := Authorize(models.RoleAdmin)(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("Code = %v, attendu %v", rr.Code, tt.wantCode)
			}
			if tt.wantMsg != "" {
				var resp models.ErrorResponse
				_ = json.Unmarshal(rr.Body.Bytes(), &resp)
				if resp.Message != tt.wantMsg {
					t.Errorf("Message = %q, attendu %q", resp.Message, tt.wantMsg)
				}
			}
		})
	}
}

func TestPeutModifier(t *testing.T) {
	proprietaire := primitive.NewObjectID()

	tests := []struct {
		name   string
		acteur *models.User
		want   bool
	}{
		{"propriétaire", &models.User{ID: proprietaire, Role: models.RoleUser}, true},
		{"admin", &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}, true},
		{"autre utilisateur", &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}, false},
		{"anonyme", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeutModifier(proprietaire, tt.acteur); got != tt.want {
				t.Errorf("PeutModifier() = %v, attendu %v", got, tt.want)
			}
		})
	}
}
