package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"monpetitchef-backend/handlers"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "secret-de-test"

type stubUsers struct {
	handlers.UserStore
	users map[primitive.ObjectID]*models.User
}

func (s *stubUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUsers) FindAll(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

type stubRecettes struct {
	handlers.RecetteStore
	topField string
}

func (s *stubRecettes) FindTop(_ context.Context, sortField string, limit int) ([]models.Recette, error) {
	s.topField = sortField
	return []models.Recette{}, nil
}

func newTestServer(t *testing.T) (http.Handler, *stubUsers, *stubRecettes) {
	t.Helper()
	users := &stubUsers{users: map[primitive.ObjectID]*models.User{}}
	recettes := &stubRecettes{}

	srv := &server{
		jwtSecret:     testSecret,
		corsOrigins:   []string{"http://localhost:3000"},
		users:         users,
		metrics:       middleware.NewMetrics(),
		auth:          handlers.NewAuthHandler(users, testSecret, time.Hour),
		recettes:      handlers.NewRecetteHandler(recettes, users, nil, nil, nil, nil),
		commentaires:  handlers.NewCommentaireHandler(nil, recettes, users, nil, nil),
		utilisateurs:  handlers.NewUserHandler(users, recettes, nil, nil),
		notifications: handlers.NewNotificationHandler(nil, nil, ""),
		health:        handlers.NewHealthHandler("test", nil),
	}
	return srv.routes(), users, recettes
}

func tokenFor(t *testing.T, users *stubUsers, role string) string {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Nom: "Test", Email: role + "@example.com", Role: role}
	users.users[user.ID] = user
	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestRoutes(t *testing.T) {
	router, users, _ := newTestServer(t)
	userToken := tokenFor(t, users, models.RoleUser)
	adminToken := tokenFor(t, users, models.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"bannière", "GET", "/", "", http.StatusOK},
		{"health", "GET", "/api/health", "", http.StatusOK},
		{"métriques", "GET", "/metrics", "", http.StatusOK},
		{"route inconnue", "GET", "/api/inconnue", "", http.StatusNotFound},
		{"me sans token", "GET", "/api/auth/me", "", http.StatusUnauthorized},
		{"me avec token", "GET", "/api/auth/me", userToken, http.StatusOK},
		{"logout", "GET", "/api/auth/logout", "", http.StatusOK},
		{"création sans token", "POST", "/api/recettes", "", http.StatusUnauthorized},
		{"id invalide", "GET", "/api/recettes/abc", "", http.StatusBadRequest},
		{"liste users sans token", "GET", "/api/users", "", http.StatusUnauthorized},
		{"liste users non admin", "GET", "/api/users", userToken, http.StatusForbidden},
		{"liste users admin", "GET", "/api/users", adminToken, http.StatusOK},
		{"vapid sans clé", "GET", "/api/notifications/vapid-public-key", "", http.StatusNotFound},
		{"preflight", "OPTIONS", "/api/recettes", "", http.StatusNoContent},
		{"preflight admin", "OPTIONS", "/api/users", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("%s %s = %d, attendu %d (body: %s)", tt.method, tt.path, rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestRoutesPopulairesAvantID(t *testing.T) {
	router, _, recettes := newTestServer(t)

	for path, field := range map[string]string{
		"/api/recettes/populaires": "note_moyenne",
		"/api/recettes/recentes":   "date_creation",
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, attendu 200 (body: %s)", path, rr.Code, rr.Body.String())
		}
		if recettes.topField != field {
			t.Errorf("GET %s trié par %q, attendu %q", path, recettes.topField, field)
		}
	}
}

func TestRoutesNotFoundEnveloppe(t *testing.T) {
	router, _, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/nulle/part", nil))

	var body models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body JSON invalide: %v", err)
	}
	if body.Success || !strings.Contains(body.Message, "Route non trouvée") {
		t.Errorf("enveloppe inattendue: %+v", body)
	}
}
