package middleware

import (
	"fmt"
	"log"
	"net/http"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/utils"
)

// Authorize restreint la route aux rôles donnés. Doit être placé après Auth.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrNotAuthenticated))
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Printf("⚠️  Accès refusé pour: %s (rôle=%s)", user.Email, user.Role)
			utils.RespondAppError(w, utils.ErrForbidden(fmt.Sprintf(constants.ErrRoleNotAllowed, user.Role)))
		})
	}
}
