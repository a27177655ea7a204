package handlers

import (
	"context"
	"net/http"

	"monpetitchef-backend/database"
	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore regroupe les accès aux utilisateurs utilisés par les handlers
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddFavori(ctx context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveFavori(ctx context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error)
	PullFavoris(ctx context.Context, recetteIDs []primitive.ObjectID) (int64, error)
	FindAuteurs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Auteur, error)
}

// RecetteStore regroupe les accès aux recettes
type RecetteStore interface {
	Create(ctx context.Context, recette *models.Recette) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recette, error)
	List(ctx context.Context, q database.ListQuery) ([]models.Recette, int64, error)
	FindTop(ctx context.Context, sortField string, limit int) ([]models.Recette, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Recette, error)
	FindByCreateur(ctx context.Context, userID primitive.ObjectID) ([]models.Recette, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Recette, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Noter(ctx context.Context, id, userID primitive.ObjectID, valeur int) (*models.Recette, error)
}

// CommentaireStore regroupe les accès aux commentaires
type CommentaireStore interface {
	Create(ctx context.Context, commentaire *models.Commentaire) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Commentaire, error)
	FindByRecette(ctx context.Context, recetteID primitive.ObjectID) ([]models.Commentaire, error)
	UpdateTexte(ctx context.Context, id primitive.ObjectID, texte string) (*models.Commentaire, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteByRecettes(ctx context.Context, recetteIDs []primitive.ObjectID) (int64, error)
}

// FCMTokenStore enregistre les tokens FCM
type FCMTokenStore interface {
	Upsert(ctx context.Context, token *models.FCMToken) error
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// SubscriptionStore enregistre les abonnements Web Push
type SubscriptionStore interface {
	Upsert(ctx context.Context, subscription *models.PushSubscription) error
	Delete(ctx context.Context, endpoint string) error
}

// Notifier prévient le créateur d'une recette des interactions des autres utilisateurs
type Notifier interface {
	NouveauCommentaire(recette *models.Recette, acteur *models.User)
	NouvelleNote(recette *models.Recette, acteur *models.User, valeur int)
}

// Broadcaster diffuse les événements d'une recette sur le fil WebSocket
type Broadcaster interface {
	BroadcastToRecette(recetteID, eventType string, data interface{}, excludeUserID string)
}

// Uploader lit les formulaires multipart et enregistre les images
type Uploader interface {
	ParseForm(w http.ResponseWriter, r *http.Request) error
	SaveFromRequest(r *http.Request, field string) (string, error)
}
