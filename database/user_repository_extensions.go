package database

import (
	"context"
	"errors"
	"fmt"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindAll retourne tous les utilisateurs
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date_inscription", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des utilisateurs: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des utilisateurs: %w", err)
	}

	return users, nil
}

// UpdateFields met à jour des champs spécifiques et retourne l'utilisateur modifié (nil si inconnu)
func (r *UserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndUpdate(ctx, id, bson.M{BSONSet: fields})
}

// AddFavori ajoute une recette aux favoris ($addToSet, idempotent) et retourne la liste à jour
func (r *UserRepository) AddFavori(ctx context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error) {
	user, err := r.findOneAndUpdate(ctx, userID, bson.M{BSONAddToSet: bson.M{"recettes_favorites": recetteID}})
	if err != nil || user == nil {
		return nil, err
	}
	return favorisOuVide(user), nil
}

// RemoveFavori retire une recette des favoris ($pull, idempotent) et retourne la liste à jour
func (r *UserRepository) RemoveFavori(ctx context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error) {
	user, err := r.findOneAndUpdate(ctx, userID, bson.M{BSONPull: bson.M{"recettes_favorites": recetteID}})
	if err != nil || user == nil {
		return nil, err
	}
	return favorisOuVide(user), nil
}

// favorisOuVide garantit une liste non nil pour un utilisateur existant
func favorisOuVide(user *models.User) []primitive.ObjectID {
	if user.RecettesFavorites == nil {
		return []primitive.ObjectID{}
	}
	return user.RecettesFavorites
}

// PullFavoris retire les recettes données des favoris de tous les utilisateurs
func (r *UserRepository) PullFavoris(ctx context.Context, recetteIDs []primitive.ObjectID) (int64, error) {
	if len(recetteIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	result, err := r.collection.UpdateMany(ctx,
		bson.M{"recettes_favorites": bson.M{BSONIn: recetteIDs}},
		bson.M{BSONPull: bson.M{"recettes_favorites": bson.M{BSONIn: recetteIDs}}},
	)
	if err != nil {
		return 0, fmt.Errorf("erreur lors du nettoyage des favoris: %w", err)
	}

	return result.ModifiedCount, nil
}

// DistinctFavoris retourne toutes les recettes présentes dans au moins une liste de favoris
func (r *UserRepository) DistinctFavoris(ctx context.Context) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "recettes_favorites", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la lecture des favoris: %w", err)
	}

	return toObjectIDs(values), nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la mise à jour de l'utilisateur: %w", err)
	}

	return &user, nil
}

// toObjectIDs filtre le résultat d'un Distinct
func toObjectIDs(values []interface{}) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
