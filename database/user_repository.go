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

// UserRepository gère les opérations sur les utilisateurs
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository crée une nouvelle instance de UserRepository
func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{
		collection: db.DB.Collection(CollectionUsers),
	}
}

// Create crée un nouvel utilisateur. Un email déjà utilisé remonte l'erreur
// d'index unique telle quelle pour être traduite en 409.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.DateInscription = time.Now()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	if user.RecettesFavorites == nil {
		// $addToSet échoue sur un champ null
		user.RecettesFavorites = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("erreur lors de la création de l'utilisateur: %w", err)
	}

	return nil
}

// FindByEmail recherche un utilisateur par email (nil si inconnu)
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByID recherche un utilisateur par ID (nil si inconnu)
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'utilisateur: %w", err)
	}

	return &user, nil
}

// UpdatePassword remplace le hash du mot de passe
func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{BSONSet: bson.M{"password": hash}})
	if err != nil {
		return fmt.Errorf("erreur lors de la mise à jour du mot de passe: %w", err)
	}

	return nil
}

// Delete supprime un utilisateur; retourne false s'il n'existait pas.
// Ses recettes ne sont pas supprimées.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la suppression de l'utilisateur: %w", err)
	}

	return result.DeletedCount > 0, nil
}

// FindAuteurs charge nom, prénom et avatar des utilisateurs demandés
func (r *UserRepository) FindAuteurs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Auteur, error) {
	auteurs := make(map[primitive.ObjectID]models.Auteur, len(ids))
	if len(ids) == 0 {
		return auteurs, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"nom": 1, "prenom": 1, "avatar": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{BSONIn: ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des auteurs: %w", err)
	}
	defer cursor.Close(ctx)

	var list []models.Auteur
	if err = cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des auteurs: %w", err)
	}

	for _, a := range list {
		auteurs[a.ID] = a
	}
	return auteurs, nil
}
