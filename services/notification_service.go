package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notifyTimeout borne l'envoi asynchrone d'une notification
const notifyTimeout = 30 * time.Second

// FCMTokenStore donne accès aux tokens FCM d'un utilisateur
type FCMTokenStore interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.FCMToken, error)
	Delete(ctx context.Context, token string) error
}

// SubscriptionStore donne accès aux abonnements Web Push d'un utilisateur
type SubscriptionStore interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// FCMSender envoie un message FCM à une liste de tokens
type FCMSender interface {
	Enabled() bool
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, []string)
}

// WebPushSender envoie un message à un abonnement Web Push
type WebPushSender interface {
	Enabled() bool
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) (bool, error)
}

// NotificationService prévient le créateur d'une recette quand un autre utilisateur interagit avec elle
type NotificationService struct {
	tokens        FCMTokenStore
	subscriptions SubscriptionStore
	fcm           FCMSender
	webPush       WebPushSender
}

// NewNotificationService crée le service de notifications
func NewNotificationService(tokens FCMTokenStore, subscriptions SubscriptionStore, fcm FCMSender, webPush WebPushSender) *NotificationService {
	return &NotificationService{
		tokens:        tokens,
		subscriptions: subscriptions,
		fcm:           fcm,
		webPush:       webPush,
	}
}

// NouveauCommentaire notifie le créateur de la recette d'un nouveau commentaire
func (s *NotificationService) NouveauCommentaire(recette *models.Recette, acteur *models.User) {
	s.notifyAsync(recette, acteur,
		"Nouveau commentaire 💬",
		fmt.Sprintf("%s %s a commenté votre recette \"%s\"", acteur.Prenom, acteur.Nom, recette.Titre),
		"nouveau_commentaire",
	)
}

// NouvelleNote notifie le créateur de la recette d'une nouvelle note
func (s *NotificationService) NouvelleNote(recette *models.Recette, acteur *models.User, valeur int) {
	s.notifyAsync(recette, acteur,
		"Nouvelle note ⭐",
		fmt.Sprintf("%s %s a noté votre recette \"%s\" %d/5", acteur.Prenom, acteur.Nom, recette.Titre, valeur),
		"nouvelle_note",
	)
}

func (s *NotificationService) notifyAsync(recette *models.Recette, acteur *models.User, title, body, kind string) {
	if recette == nil || acteur == nil || recette.Createur == acteur.ID {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.Notify(ctx, recette.Createur, title, body, map[string]string{
			"type":       kind,
			"recette_id": recette.ID.Hex(),
		})
	}()
}

// Notify envoie la notification sur FCM et Web Push puis retire les abonnements expirés
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string) {
	if s.fcm != nil && s.fcm.Enabled() {
		s.notifyFCM(ctx, userID, title, body, data)
	}
	if s.webPush != nil && s.webPush.Enabled() {
		s.notifyWebPush(ctx, userID, title, body, data)
	}
}

func (s *NotificationService) notifyFCM(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string) {
	tokens, err := s.tokens.FindByUserID(ctx, userID)
	if err != nil {
		log.Printf("❌ Erreur récupération tokens FCM: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t.Token)
	}

	_, failed := s.fcm.SendToTokens(ctx, values, title, body, data)
	for _, token := range failed {
		if err := s.tokens.Delete(ctx, token); err != nil {
			log.Printf("⚠️  Impossible de supprimer le token FCM invalide: %v", err)
		}
	}
}

func (s *NotificationService) notifyWebPush(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string) {
	subs, err := s.subscriptions.FindByUserID(ctx, userID)
	if err != nil {
		log.Printf("❌ Erreur récupération abonnements Web Push: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(models.NotificationPayload{
		Title: title,
		Body:  body,
		Icon:  "/icon-192x192.png",
		Data:  data,
	})
	if err != nil {
		log.Printf("❌ Erreur sérialisation notification: %v", err)
		return
	}

	for _, sub := range subs {
		gone, err := s.webPush.Send(ctx, sub, payload)
		if err != nil {
			log.Printf("⚠️  Erreur Web Push: %v", err)
			continue
		}
		if gone {
			if err := s.subscriptions.Delete(ctx, sub.Endpoint); err != nil {
				log.Printf("⚠️  Impossible de supprimer l'abonnement expiré: %v", err)
			}
		}
	}
}
