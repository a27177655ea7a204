package main

import (
	"net/http"

	"monpetitchef-backend/handlers"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/websocket"

	"github.com/gorilla/mux"
)

// wsPath est servi par un routeur sans middleware pour garder l'accès au Hijacker
const wsPath = "/ws/recettes"

// server regroupe les handlers branchés sur le routeur
type server struct {
	jwtSecret   string
	corsOrigins []string
	uploadDir   string

	users    middleware.UserFinder
	reporter middleware.ErrorReporter
	metrics  *middleware.Metrics

	auth          *handlers.AuthHandler
	recettes      *handlers.RecetteHandler
	commentaires  *handlers.CommentaireHandler
	utilisateurs  *handlers.UserHandler
	notifications *handlers.NotificationHandler
	health        *handlers.HealthHandler
	ws            *websocket.Handler
}

// routes construit le routeur HTTP complet
func (s *server) routes() http.Handler {
	router := mux.NewRouter()
	rawRouter := mux.NewRouter()

	router.Use(middleware.Logging(s.reporter))
	if s.metrics != nil {
		router.Use(s.metrics.Middleware)
	}
	// Recover sous Logging et metrics pour que les panics soient comptés et signalés
	router.Use(middleware.Recover)
	router.Use(middleware.CORS(s.corsOrigins))
	router.NotFoundHandler = middleware.CORS(s.corsOrigins)(http.HandlerFunc(handlers.NotFound))

	router.HandleFunc("/", s.health.Root).Methods("GET")
	router.HandleFunc("/api/health", s.health.Health).Methods("GET", "OPTIONS")
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	if s.uploadDir != "" {
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir)))).Methods("GET")
	}

	requireAuth := middleware.Auth(s.jwtSecret, s.users)
	protect := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	// Authentification
	router.HandleFunc("/api/auth/register", s.auth.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", s.auth.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/logout", s.auth.Logout).Methods("GET", "OPTIONS")
	router.Handle("/api/auth/me", protect(s.auth.Me)).Methods("GET", "OPTIONS")
	router.Handle("/api/auth/updatedetails", protect(s.auth.UpdateDetails)).Methods("PUT", "OPTIONS")
	router.Handle("/api/auth/updatepassword", protect(s.auth.UpdatePassword)).Methods("PUT", "OPTIONS")

	// Recettes (populaires et recentes avant {id})
	router.HandleFunc("/api/recettes", s.recettes.List).Methods("GET", "OPTIONS")
	router.Handle("/api/recettes", protect(s.recettes.Create)).Methods("POST")
	router.HandleFunc("/api/recettes/populaires", s.recettes.Populaires).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/recettes/recentes", s.recettes.Recentes).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/recettes/{id}", s.recettes.Get).Methods("GET", "OPTIONS")
	router.Handle("/api/recettes/{id}", protect(s.recettes.Update)).Methods("PUT")
	router.Handle("/api/recettes/{id}", protect(s.recettes.Delete)).Methods("DELETE")
	router.Handle("/api/recettes/{id}/favoris", protect(s.recettes.AjouterFavori)).Methods("POST", "OPTIONS")
	router.Handle("/api/recettes/{id}/favoris", protect(s.recettes.RetirerFavori)).Methods("DELETE")
	router.Handle("/api/recettes/{id}/notes", protect(s.recettes.Noter)).Methods("POST", "OPTIONS")

	// Commentaires
	router.HandleFunc("/api/recettes/{recetteId}/commentaires", s.commentaires.List).Methods("GET", "OPTIONS")
	router.Handle("/api/recettes/{recetteId}/commentaires", protect(s.commentaires.Create)).Methods("POST")
	router.Handle("/api/commentaires/{id}", protect(s.commentaires.Update)).Methods("PUT", "OPTIONS")
	router.Handle("/api/commentaires/{id}", protect(s.commentaires.Delete)).Methods("DELETE")

	// Utilisateurs: profil public, favoris et avatar pour soi-même (ou admin)
	router.HandleFunc("/api/users/{id}/profile", s.utilisateurs.Profile).Methods("GET", "OPTIONS")
	router.Handle("/api/users/{id}/favoris", protect(s.utilisateurs.Favoris)).Methods("GET", "OPTIONS")
	router.Handle("/api/users/{id}/avatar", protect(s.utilisateurs.Avatar)).Methods("PUT", "OPTIONS")

	admin := router.PathPrefix("/api/users").Subrouter()
	admin.Use(requireAuth)
	admin.Use(middleware.Authorize("admin"))
	admin.HandleFunc("", s.utilisateurs.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/{id}", s.utilisateurs.Get).Methods("GET", "OPTIONS")
	admin.HandleFunc("/{id}", s.utilisateurs.Update).Methods("PUT")
	admin.HandleFunc("/{id}", s.utilisateurs.Delete).Methods("DELETE")

	// Notifications
	router.HandleFunc("/api/notifications/vapid-public-key", s.notifications.VAPIDPublicKey).Methods("GET", "OPTIONS")
	router.Handle("/api/notifications/fcm", protect(s.notifications.SubscribeFCM)).Methods("POST", "OPTIONS")
	router.Handle("/api/notifications/fcm", protect(s.notifications.UnsubscribeFCM)).Methods("DELETE")
	router.Handle("/api/notifications/webpush", protect(s.notifications.SubscribeWebPush)).Methods("POST", "OPTIONS")
	router.Handle("/api/notifications/webpush", protect(s.notifications.UnsubscribeWebPush)).Methods("DELETE")

	if s.ws != nil {
		rawRouter.HandleFunc(wsPath, s.ws.ServeWS).Methods("GET")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == wsPath {
			rawRouter.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	})
}
