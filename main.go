package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"monpetitchef-backend/config"
	"monpetitchef-backend/database"
	"monpetitchef-backend/handlers"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/services"
	"monpetitchef-backend/utils"
	"monpetitchef-backend/websocket"
)

func main() {
	// Charger la configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement de la configuration: %v", err)
	}
	utils.SetDebug(cfg.IsDevelopment())

	// Connexion à MongoDB
	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("❌ Erreur de connexion à MongoDB: %v", err)
	}

	// Créer les repositories
	userRepo := database.NewUserRepository(db)
	recetteRepo := database.NewRecetteRepository(db)
	commentaireRepo := database.NewCommentaireRepository(db)
	fcmTokenRepo := database.NewFCMTokenRepository(db)
	subscriptionRepo := database.NewSubscriptionRepository(db)

	// Initialiser Firebase Cloud Messaging (optionnel)
	fcmService, err := services.NewFCMService(context.Background(), cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Printf("⚠️  Firebase non initialisé: %v", err)
		log.Println("⚠️  Le serveur démarre SANS notifications FCM")
		fcmService = services.NewDisabledFCMService()
	} else {
		log.Println("✓ Firebase Cloud Messaging initialisé")
	}

	webPushService := services.NewWebPushService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	if !webPushService.Enabled() {
		log.Println("⚠️  Clés VAPID absentes: notifications Web Push désactivées")
	}
	notificationService := services.NewNotificationService(fcmTokenRepo, subscriptionRepo, fcmService, webPushService)
	slackService := services.NewSlackService(cfg.SlackWebhookURL)

	uploadService, err := services.NewUploadService(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		log.Fatalf("❌ Dossier d'upload inutilisable: %v", err)
	}

	// Nettoyage périodique des favoris et commentaires orphelins
	cleanupCron := services.NewCleanupCron(userRepo, commentaireRepo, recetteRepo)
	if err := cleanupCron.Start(cfg.CleanupSchedule); err != nil {
		log.Fatalf("❌ CLEANUP_SCHEDULE invalide: %v", err)
	}

	// Hub WebSocket du fil des recettes
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ Hub WebSocket initialisé et en cours d'exécution")

	srv := &server{
		jwtSecret:     cfg.JWTSecret,
		corsOrigins:   cfg.CORSOrigins,
		uploadDir:     uploadService.Dir(),
		users:         userRepo,
		reporter:      slackService,
		metrics:       middleware.NewMetrics(),
		auth:          handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTExpire),
		recettes:      handlers.NewRecetteHandler(recetteRepo, userRepo, commentaireRepo, uploadService, notificationService, wsHub),
		commentaires:  handlers.NewCommentaireHandler(commentaireRepo, recetteRepo, userRepo, notificationService, wsHub),
		utilisateurs:  handlers.NewUserHandler(userRepo, recetteRepo, fcmTokenRepo, uploadService),
		notifications: handlers.NewNotificationHandler(fcmTokenRepo, subscriptionRepo, cfg.VAPIDPublicKey),
		health:        handlers.NewHealthHandler(cfg.Environment, db),
		ws: websocket.NewHandler(wsHub, cfg.JWTSecret, func(origin string) bool {
			return middleware.IsOriginAllowed(origin, cfg.CORSOrigins)
		}),
	}

	// Démarrer le serveur
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Serveur démarré sur http://%s", addr)
		log.Printf("📝 Environnement: %s", cfg.Environment)
		log.Printf("🗄️  Base de données: MongoDB (%s)", cfg.MongoDB)
		logRoutes()
		log.Println("\n✨ Le serveur est prêt à recevoir des requêtes!")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Erreur du serveur: %v", err)
		}
	}()

	// Attendre le signal d'arrêt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Erreur lors de l'arrêt du serveur: %v", err)
	}
	wsHub.Shutdown()
	cleanupCron.Stop()
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("❌ Erreur lors de la fermeture de MongoDB: %v", err)
	}
	log.Println("✓ Serveur arrêté proprement")
}

func logRoutes() {
	log.Println("📋 Routes disponibles:")
	log.Println("   GET    /api/health                         - Health check")
	log.Println("   GET    /metrics                            - Métriques Prometheus")
	log.Println("   POST   /api/auth/register                  - Inscription")
	log.Println("   POST   /api/auth/login                     - Connexion")
	log.Println("   GET    /api/recettes                       - Liste (filtres, tri, pagination, recherche)")
	log.Println("   GET    /api/recettes/populaires            - Mieux notées")
	log.Println("   GET    /api/recettes/recentes              - Plus récentes")
	log.Println("   GET    /api/recettes/{id}                  - Détail d'une recette")
	log.Println("   GET    /api/recettes/{id}/commentaires     - Commentaires d'une recette")
	log.Println("   GET    /api/users/{id}/profile             - Profil public")
	log.Println("")
	log.Println("   🔒 Routes protégées:")
	log.Println("   GET    /api/auth/me                        - Utilisateur connecté")
	log.Println("   PUT    /api/auth/updatedetails             - Modifier son profil")
	log.Println("   PUT    /api/auth/updatepassword            - Changer son mot de passe")
	log.Println("   POST   /api/recettes                       - Créer une recette")
	log.Println("   PUT    /api/recettes/{id}                  - Modifier (créateur ou admin)")
	log.Println("   DELETE /api/recettes/{id}                  - Supprimer (créateur ou admin)")
	log.Println("   POST   /api/recettes/{id}/favoris          - Ajouter aux favoris")
	log.Println("   DELETE /api/recettes/{id}/favoris          - Retirer des favoris")
	log.Println("   POST   /api/recettes/{id}/notes            - Noter une recette")
	log.Println("   POST   /api/recettes/{id}/commentaires     - Commenter")
	log.Println("   PUT    /api/commentaires/{id}              - Modifier un commentaire")
	log.Println("   DELETE /api/commentaires/{id}              - Supprimer un commentaire")
	log.Println("   GET    /api/users/{id}/favoris             - Favoris (soi-même ou admin)")
	log.Println("   PUT    /api/users/{id}/avatar              - Avatar (soi-même ou admin)")
	log.Println("   POST   /api/notifications/fcm              - S'abonner (FCM)")
	log.Println("   POST   /api/notifications/webpush          - S'abonner (Web Push)")
	log.Println("")
	log.Println("   👑 Routes Admin:")
	log.Println("   GET    /api/users                          - Liste utilisateurs")
	log.Println("   GET    /api/users/{id}                     - Détail utilisateur")
	log.Println("   PUT    /api/users/{id}                     - Modifier utilisateur")
	log.Println("   DELETE /api/users/{id}                     - Supprimer utilisateur")
	log.Println("")
	log.Printf("   🔌 WebSocket: %s", wsPath)
}
