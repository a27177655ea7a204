package database

import (
	"context"
	"fmt"
	"time"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FCMTokenRepository gère les opérations sur les tokens FCM
type FCMTokenRepository struct {
	collection *mongo.Collection
}

// NewFCMTokenRepository crée une nouvelle instance de FCMTokenRepository
func NewFCMTokenRepository(db *Database) *FCMTokenRepository {
	return &FCMTokenRepository{
		collection: db.DB.Collection(CollectionFCMTokens),
	}
}

// Upsert enregistre un token; un token déjà connu est rattaché au nouvel utilisateur
func (r *FCMTokenRepository) Upsert(ctx context.Context, token *models.FCMToken) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now()
	update := bson.M{
		BSONSet: bson.M{
			"user_id":    token.UserID,
			"device":     token.Device,
			"user_agent": token.UserAgent,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"token": token.Token}, update, opts); err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement du token FCM: %w", err)
	}

	return nil
}

// FindByUserID recherche tous les tokens d'un utilisateur
func (r *FCMTokenRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.FCMToken, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var tokens []models.FCMToken
	if err = cursor.All(ctx, &tokens); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des tokens: %w", err)
	}

	return tokens, nil
}

// Delete supprime un token (invalide ou désinscrit)
func (r *FCMTokenRepository) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("erreur lors de la suppression du token: %w", err)
	}

	return nil
}

// DeleteByUserID supprime tous les tokens d'un utilisateur
func (r *FCMTokenRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("erreur lors de la suppression des tokens: %w", err)
	}

	return nil
}
