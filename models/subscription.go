package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription représente un abonnement Web Push (VAPID)
type PushSubscription struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID   primitive.ObjectID `json:"user_id" bson:"user_id"`
	Endpoint string             `json:"endpoint" bson:"endpoint"`
	Keys     PushKeys           `json:"keys" bson:"keys"`
	Created  time.Time          `json:"created_at" bson:"created_at"`
}

// PushKeys contient les clés de chiffrement pour les notifications
type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh" validate:"required"`
	Auth   string `json:"auth" bson:"auth" validate:"required"`
}

// WebPushSubscribeRequest représente la requête d'abonnement Web Push
type WebPushSubscribeRequest struct {
	Endpoint string   `json:"endpoint" validate:"required,url"`
	Keys     PushKeys `json:"keys"`
}

// NotificationPayload représente le contenu d'une notification Web Push
type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}
