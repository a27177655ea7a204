package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/utils"
)

var startTime = time.Now()

// Pinger vérifie la connexion à la base
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler gère les endpoints de santé
type HealthHandler struct {
	environment string
	db          Pinger
}

// NewHealthHandler crée un nouveau HealthHandler
func NewHealthHandler(environment string, db Pinger) *HealthHandler {
	return &HealthHandler{environment: environment, db: db}
}

// Root répond à GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("API de MonPetitChef est en ligne!"))
}

// Health retourne l'état de santé du serveur avec métriques
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime).String()

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "error"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "error"
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"message":    "Le serveur fonctionne correctement",
		"env":        h.environment,
		"database":   "MongoDB",
		"db_status":  dbStatus,
		"uptime":     uptime,
		"go_version": runtime.Version(),
	})
}

// NotFound renvoie l'enveloppe d'erreur pour les routes inconnues
func NotFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondAppError(w, utils.ErrNotFound(constants.ErrRouteNotFound))
}
