package handlers

import (
	"log"
	"net/http"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"
)

// NotificationHandler enregistre les appareils qui reçoivent les notifications push
type NotificationHandler struct {
	tokens         FCMTokenStore
	subscriptions  SubscriptionStore
	vapidPublicKey string
}

// NewNotificationHandler crée une nouvelle instance de NotificationHandler
func NewNotificationHandler(tokens FCMTokenStore, subscriptions SubscriptionStore, vapidPublicKey string) *NotificationHandler {
	return &NotificationHandler{
		tokens:         tokens,
		subscriptions:  subscriptions,
		vapidPublicKey: vapidPublicKey,
	}
}

// SubscribeFCM enregistre un token FCM pour l'utilisateur connecté
func (h *NotificationHandler) SubscribeFCM(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.FCMSubscribeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	token := &models.FCMToken{
		UserID:    user.ID,
		Token:     req.FCMToken,
		Device:    req.Device,
		UserAgent: r.UserAgent(),
	}
	if err := h.tokens.Upsert(r.Context(), token); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	log.Printf("🔔 Token FCM enregistré pour %s", user.Email)
	utils.RespondSuccess(w, constants.MsgSubscribed, token)
}

// UnsubscribeFCM supprime un token FCM
func (h *NotificationHandler) UnsubscribeFCM(w http.ResponseWriter, r *http.Request) {
	var req models.FCMSubscribeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if err := h.tokens.Delete(r.Context(), req.FCMToken); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondSuccess(w, constants.MsgUnsubscribed, nil)
}

// SubscribeWebPush enregistre un abonnement Web Push pour l'utilisateur connecté
func (h *NotificationHandler) SubscribeWebPush(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.WebPushSubscribeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	subscription := &models.PushSubscription{
		UserID:   user.ID,
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
	}
	if err := h.subscriptions.Upsert(r.Context(), subscription); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	log.Printf("🔔 Abonnement Web Push enregistré pour %s", user.Email)
	utils.RespondSuccess(w, constants.MsgSubscribed, subscription)
}

// UnsubscribeWebPush supprime un abonnement Web Push
func (h *NotificationHandler) UnsubscribeWebPush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint" validate:"required,url"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if err := h.subscriptions.Delete(r.Context(), req.Endpoint); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondSuccess(w, constants.MsgUnsubscribed, nil)
}

// VAPIDPublicKey retourne la clé publique VAPID nécessaire à l'abonnement du navigateur
func (h *NotificationHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if h.vapidPublicKey == "" {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrWebPushDisabled))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"publicKey": h.vapidPublicKey,
	})
}
