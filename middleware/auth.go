package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserFinder charge l'utilisateur désigné par le token
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Auth vérifie le token JWT puis attache l'utilisateur correspondant au contexte
func Auth(jwtSecret string, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r.Header.Get("Authorization"))
			if tokenString == "" {
				utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrNotAuthenticated))
				return
			}

			claims, err := utils.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrNotAuthenticated))
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrNotAuthenticated))
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				utils.RespondAppError(w, err)
				return
			}
			if user == nil {
				// Compte supprimé depuis l'émission du token
				log.Printf("⚠️  Token valide pour un utilisateur inexistant: %s", claims.UserID)
				utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrNotAuthenticated))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extrait le token du header "Bearer <token>"
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetUserFromContext récupère l'utilisateur authentifié depuis le contexte
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser attache un utilisateur au contexte
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
