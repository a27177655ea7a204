package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"monpetitchef-backend/utils"
)

// Recover transforme un panic en réponse 500 normalisée
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			stack := string(debug.Stack())
			log.Printf("❌ panic sur %s %s: %v\n%s", r.Method, r.RequestURI, rec, stack)

			appErr := utils.ErrInternal("", fmt.Errorf("panic: %v", rec))
			appErr.Stack = stack
			utils.RespondAppError(w, appErr)
		}()

		next.ServeHTTP(w, r)
	})
}
