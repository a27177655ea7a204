package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentaireRepository gère les opérations sur les commentaires
type CommentaireRepository struct {
	collection *mongo.Collection
}

// NewCommentaireRepository crée une nouvelle instance de CommentaireRepository
func NewCommentaireRepository(db *Database) *CommentaireRepository {
	return &CommentaireRepository{
		collection: db.DB.Collection(CollectionCommentaires),
	}
}

// Create insère un commentaire
func (r *CommentaireRepository) Create(ctx context.Context, commentaire *models.Commentaire) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	commentaire.ID = primitive.NewObjectID()
	commentaire.Texte = strings.TrimSpace(commentaire.Texte)
	commentaire.DateCreation = time.Now()

	if _, err := r.collection.InsertOne(ctx, commentaire); err != nil {
		return fmt.Errorf("erreur lors de la création du commentaire: %w", err)
	}

	return nil
}

// FindByID recherche un commentaire par ID (nil si inconnu)
func (r *CommentaireRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Commentaire, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var commentaire models.Commentaire
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&commentaire)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche du commentaire: %w", err)
	}

	return &commentaire, nil
}

// FindByRecette retourne les commentaires d'une recette, du plus récent au plus ancien, auteur populé
func (r *CommentaireRepository) FindByRecette(ctx context.Context, recetteID primitive.ObjectID) ([]models.Commentaire, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := bson.A{
		bson.M{BSONMatch: bson.M{"recette": recetteID}},
		bson.M{BSONSort: bson.D{{Key: "date_creation", Value: -1}, {Key: "_id", Value: -1}}},
	}
	pipeline = append(pipeline, auteurLookup("utilisateur", "utilisateur_info")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la récupération des commentaires: %w", err)
	}
	defer cursor.Close(ctx)

	commentaires := []models.Commentaire{}
	if err = cursor.All(ctx, &commentaires); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des commentaires: %w", err)
	}

	return commentaires, nil
}

// UpdateTexte modifie le texte d'un commentaire et retourne la version à jour (nil si inconnu)
func (r *CommentaireRepository) UpdateTexte(ctx context.Context, id primitive.ObjectID, texte string) (*models.Commentaire, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{BSONSet: bson.M{"texte": strings.TrimSpace(texte)}}

	var commentaire models.Commentaire
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&commentaire)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la mise à jour du commentaire: %w", err)
	}

	return &commentaire, nil
}

// Delete supprime un commentaire; retourne false s'il n'existait pas
func (r *CommentaireRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la suppression du commentaire: %w", err)
	}

	return result.DeletedCount > 0, nil
}

// DeleteByRecettes supprime tous les commentaires des recettes données
func (r *CommentaireRepository) DeleteByRecettes(ctx context.Context, recetteIDs []primitive.ObjectID) (int64, error) {
	if len(recetteIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"recette": bson.M{BSONIn: recetteIDs}})
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la suppression des commentaires: %w", err)
	}

	return result.DeletedCount, nil
}

// DistinctRecettes retourne les recettes ayant au moins un commentaire
func (r *CommentaireRepository) DistinctRecettes(ctx context.Context) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "recette", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la lecture des commentaires: %w", err)
	}

	return toObjectIDs(values), nil
}
