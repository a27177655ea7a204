package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"monpetitchef-backend/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushService envoie les notifications Web Push signées VAPID
type WebPushService struct {
	publicKey  string
	privateKey string
	subject    string
}

// NewWebPushService crée le service; sans clés VAPID il est désactivé
func NewWebPushService(publicKey, privateKey, subject string) *WebPushService {
	return &WebPushService{publicKey: publicKey, privateKey: privateKey, subject: subject}
}

// Enabled indique si les clés VAPID sont configurées
func (s *WebPushService) Enabled() bool {
	return s != nil && s.publicKey != "" && s.privateKey != ""
}

// PublicKey retourne la clé publique VAPID à fournir au navigateur
func (s *WebPushService) PublicKey() string {
	return s.publicKey
}

// Send envoie le payload à un abonnement. gone vaut true si le navigateur a révoqué l'abonnement.
func (s *WebPushService) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (gone bool, err error) {
	if !s.Enabled() {
		return false, nil
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             86400, // 24 heures
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return false, fmt.Errorf("erreur lors de l'envoi Web Push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return true, nil
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("réponse inattendue du push service: %d - %s", resp.StatusCode, body)
	}

	return false, nil
}
