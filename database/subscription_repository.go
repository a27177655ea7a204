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

// SubscriptionRepository gère les opérations sur les abonnements Web Push
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository crée une nouvelle instance de SubscriptionRepository
func NewSubscriptionRepository(db *Database) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.DB.Collection(CollectionSubscriptions),
	}
}

// Upsert enregistre un abonnement, identifié par son endpoint
func (r *SubscriptionRepository) Upsert(ctx context.Context, subscription *models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{
		BSONSet: bson.M{
			"user_id": subscription.UserID,
			"keys":    subscription.Keys,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"endpoint": subscription.Endpoint}, update, opts); err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement de l'abonnement: %w", err)
	}

	return nil
}

// FindByUserID recherche tous les abonnements d'un utilisateur
func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des abonnements: %w", err)
	}
	defer cursor.Close(ctx)

	var subscriptions []models.PushSubscription
	if err = cursor.All(ctx, &subscriptions); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des abonnements: %w", err)
	}

	return subscriptions, nil
}

// Delete supprime un abonnement par endpoint (expiré côté navigateur)
func (r *SubscriptionRepository) Delete(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"endpoint": endpoint}); err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'abonnement: %w", err)
	}

	return nil
}
