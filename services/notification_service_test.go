package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeTokens struct {
	mu      sync.Mutex
	tokens  []models.FCMToken
	deleted []string
}

func (f *fakeTokens) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]models.FCMToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FCMToken
	for _, t := range f.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokens) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeSubscriptions struct {
	mu      sync.Mutex
	subs    []models.PushSubscription
	deleted []string
}

func (f *fakeSubscriptions) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PushSubscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) Delete(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

type fakeFCM struct {
	sent   chan []string
	failed []string
}

func (f *fakeFCM) Enabled() bool { return true }

func (f *fakeFCM) SendToTokens(_ context.Context, tokens []string, _, _ string, _ map[string]string) (int, []string) {
	f.sent <- tokens
	return len(tokens) - len(f.failed), f.failed
}

type fakeWebPush struct {
	mu       sync.Mutex
	payloads [][]byte
	gone     map[string]bool
}

func (f *fakeWebPush) Enabled() bool { return true }

func (f *fakeWebPush) Send(_ context.Context, sub models.PushSubscription, payload []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.gone[sub.Endpoint], nil
}

func TestNotifyRetireAbonnementsExpires(t *testing.T) {
	owner := primitive.NewObjectID()
	tokens := &fakeTokens{tokens: []models.FCMToken{
		{UserID: owner, Token: "ok"},
		{UserID: owner, Token: "revoque"},
	}}
	subs := &fakeSubscriptions{subs: []models.PushSubscription{
		{UserID: owner, Endpoint: "https://push.example/actif"},
		{UserID: owner, Endpoint: "https://push.example/expire"},
	}}
	fcm := &fakeFCM{sent: make(chan []string, 1), failed: []string{"revoque"}}
	webPush := &fakeWebPush{gone: map[string]bool{"https://push.example/expire": true}}

	svc := NewNotificationService(tokens, subs, fcm, webPush)
	svc.Notify(context.Background(), owner, "Titre", "Corps", map[string]string{"type": "nouvelle_note"})

	if got := <-fcm.sent; len(got) != 2 {
		t.Errorf("tokens envoyés = %v, attendu 2", got)
	}
	if len(tokens.deleted) != 1 || tokens.deleted[0] != "revoque" {
		t.Errorf("tokens supprimés = %v, attendu [revoque]", tokens.deleted)
	}
	if len(subs.deleted) != 1 || subs.deleted[0] != "https://push.example/expire" {
		t.Errorf("abonnements supprimés = %v", subs.deleted)
	}

	var payload models.NotificationPayload
	if err := json.Unmarshal(webPush.payloads[0], &payload); err != nil {
		t.Fatalf("payload invalide: %v", err)
	}
	if payload.Title != "Titre" || payload.Data["type"] != "nouvelle_note" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestNouvelleNote(t *testing.T) {
	owner := primitive.NewObjectID()
	tokens := &fakeTokens{tokens: []models.FCMToken{{UserID: owner, Token: "t1"}}}
	fcm := &fakeFCM{sent: make(chan []string, 1)}
	svc := NewNotificationService(tokens, &fakeSubscriptions{}, fcm, NewWebPushService("", "", ""))

	recette := &models.Recette{ID: primitive.NewObjectID(), Titre: "Quiche", Createur: owner}

	t.Run("le créateur n'est pas notifié de ses propres actions", func(t *testing.T) {
		svc.NouvelleNote(recette, &models.User{ID: owner}, 5)
		select {
		case got := <-fcm.sent:
			t.Fatalf("notification inattendue: %v", got)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("un autre utilisateur déclenche la notification", func(t *testing.T) {
		svc.NouvelleNote(recette, &models.User{ID: primitive.NewObjectID(), Prenom: "Marie", Nom: "Curie"}, 4)
		select {
		case got := <-fcm.sent:
			if len(got) != 1 || got[0] != "t1" {
				t.Errorf("tokens = %v", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("aucune notification envoyée")
		}
	})
}
