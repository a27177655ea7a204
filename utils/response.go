package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"monpetitchef-backend/models"
)

// debugMode active l'envoi des détails internes (cause, stack) dans les réponses d'erreur
var debugMode bool

// SetDebug active ou désactive les détails d'erreur (uniquement hors production)
func SetDebug(enabled bool) {
	debugMode = enabled
}

// RespondJSON envoie une réponse JSON
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	// S'assurer que les en-têtes ne sont pas déjà écrits
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	if statusCode > 0 {
		w.WriteHeader(statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("❌ Erreur lors de l'encodage JSON: %v", err)
		}
	}
}

// RespondError envoie une réponse d'erreur JSON
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{
		Success: false,
		Message: message,
	})
}

// RespondAppError normalise l'erreur puis envoie l'enveloppe correspondante
func RespondAppError(w http.ResponseWriter, err error) {
	appErr := NormalizeError(err)

	resp := models.ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Error:   appErr.Detail,
		Errors:  appErr.Errors,
	}

	if appErr.Status >= http.StatusInternalServerError {
		log.Printf("❌ %v", appErr)
		if debugMode {
			if appErr.Err != nil {
				resp.Error = appErr.Err.Error()
			}
			resp.Stack = appErr.Stack
		}
	}

	RespondJSON(w, appErr.Status, resp)
}

// RespondSuccess envoie une réponse de succès JSON
func RespondSuccess(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondData envoie {success: true, data} avec le code fourni
func RespondData(w http.ResponseWriter, statusCode int, data interface{}) {
	RespondJSON(w, statusCode, models.SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// RespondList envoie {success, count, data}
func RespondList(w http.ResponseWriter, count int, data interface{}) {
	RespondJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Count:   count,
		Data:    data,
	})
}
