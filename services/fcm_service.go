package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchSize est la limite de tokens par requête multicast
const fcmBatchSize = 500

// FCMService gère l'envoi des notifications via Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService crée une nouvelle instance de FCMService.
// FIREBASE_CREDENTIALS_JSON est prioritaire sur le fichier de credentials.
func NewFCMService(ctx context.Context, credentialsFile string) (*FCMService, error) {
	var opt option.ClientOption

	if credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON"); credentialsJSON != "" {
		log.Println("📦 Utilisation des credentials Firebase depuis FIREBASE_CREDENTIALS_JSON")
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	} else if credentialsFile != "" {
		log.Printf("📦 Utilisation des credentials Firebase depuis le fichier: %s", credentialsFile)
		opt = option.WithCredentialsFile(credentialsFile)
	} else {
		return nil, fmt.Errorf("aucun credential Firebase configuré")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'initialisation de Firebase: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client FCM: %w", err)
	}

	log.Println("✓ Firebase Cloud Messaging initialisé")

	return &FCMService{client: client}, nil
}

// NewDisabledFCMService retourne un service qui n'envoie rien (Firebase non configuré)
func NewDisabledFCMService() *FCMService {
	return &FCMService{}
}

// Enabled indique si Firebase est configuré
func (s *FCMService) Enabled() bool {
	return s != nil && s.client != nil
}

// SendToTokens envoie la notification par lots et retourne les tokens refusés par FCM
func (s *FCMService) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (success int, failedTokens []string) {
	if !s.Enabled() || len(tokens) == 0 {
		return 0, nil
	}

	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := i + fcmBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		batch := tokens[i:end]
		ok, failed, err := s.sendBatch(ctx, batch, title, body, data)
		if err != nil {
			log.Printf("❌ Erreur pour le batch FCM %d: %v", i/fcmBatchSize+1, err)
			continue
		}

		success += ok
		failedTokens = append(failedTokens, failed...)
	}

	return success, failedTokens
}

func (s *FCMService) sendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Data messages uniquement, le client affiche lui-même la notification
	payload := make(map[string]string, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["title"] = title
	payload["message"] = body

	message := &messaging.MulticastMessage{
		Data: payload,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{
				"Urgency": "high",
			},
		},
		Tokens: tokens,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, nil, fmt.Errorf("erreur lors de l'envoi multicast: %w", err)
	}

	var failed []string
	for idx, resp := range response.Responses {
		if !resp.Success && messaging.IsUnregistered(resp.Error) {
			failed = append(failed, tokens[idx])
		}
	}

	log.Printf("📊 Envoi FCM: %d succès, %d échecs sur %d", response.SuccessCount, response.FailureCount, len(tokens))
	return response.SuccessCount, failed, nil
}
