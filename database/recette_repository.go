package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxNoteAttempts borne les relectures quand une autre note a été enregistrée entre-temps
const maxNoteAttempts = 5

// ErrConflitNote est renvoyée quand la note n'a pas pu être enregistrée après plusieurs tentatives
var ErrConflitNote = errors.New("la recette a été modifiée pendant l'enregistrement de la note")

// RecetteRepository gère les opérations sur les recettes
type RecetteRepository struct {
	collection *mongo.Collection
}

// NewRecetteRepository crée une nouvelle instance de RecetteRepository
func NewRecetteRepository(db *Database) *RecetteRepository {
	return &RecetteRepository{
		collection: db.DB.Collection(CollectionRecettes),
	}
}

// auteurLookup peuple localField avec {_id, nom, prenom, avatar} dans as
func auteurLookup(localField, as string) bson.A {
	return bson.A{
		bson.M{BSONLookup: bson.M{
			"from": CollectionUsers,
			"let":  bson.M{"ref": "$" + localField},
			"pipeline": bson.A{
				bson.M{BSONMatch: bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$ref"}}}},
				bson.M{BSONProject: bson.M{"nom": 1, "prenom": 1, "avatar": 1}},
			},
			"as": as,
		}},
		bson.M{BSONUnwind: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}},
	}
}

// Create insère une nouvelle recette
func (r *RecetteRepository) Create(ctx context.Context, recette *models.Recette) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	recette.ID = primitive.NewObjectID()
	recette.DateCreation = time.Now()
	recette.Version = 0
	recette.AppliquerDefauts()
	recette.CalculerNoteMoyenne()

	if _, err := r.collection.InsertOne(ctx, recette); err != nil {
		return fmt.Errorf("erreur lors de la création de la recette: %w", err)
	}

	return nil
}

// FindByID recherche une recette par ID (nil si inconnue)
func (r *RecetteRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recette, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var recette models.Recette
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recette)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de la recette: %w", err)
	}

	return &recette, nil
}

// List exécute une requête de liste et retourne la page demandée et le total (filtres et recherche inclus)
func (r *RecetteRepository) List(ctx context.Context, q ListQuery) ([]models.Recette, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("erreur lors du comptage des recettes: %w", err)
	}

	pipeline := bson.A{
		bson.M{BSONMatch: q.Filter},
		bson.M{BSONSort: q.Sort},
		bson.M{BSONSkip: q.Skip()},
		bson.M{BSONLimit: int64(q.Limit)},
	}
	if q.Projection != nil {
		pipeline = append(pipeline, bson.M{BSONProject: q.Projection})
	}
	pipeline = append(pipeline, auteurLookup("createur", "createur_info")...)

	recettes, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}

	return recettes, total, nil
}

// FindTop retourne les recettes triées par champ décroissant (note_moyenne ou date_creation)
func (r *RecetteRepository) FindTop(ctx context.Context, sortField string, limit int) ([]models.Recette, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := bson.A{
		bson.M{BSONSort: bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}}},
		bson.M{BSONLimit: int64(limit)},
	}
	pipeline = append(pipeline, auteurLookup("createur", "createur_info")...)

	return r.aggregate(ctx, pipeline)
}

// FindByIDs retourne les recettes demandées avec leur créateur (favoris)
func (r *RecetteRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Recette, error) {
	if len(ids) == 0 {
		return []models.Recette{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := bson.A{
		bson.M{BSONMatch: bson.M{"_id": bson.M{BSONIn: ids}}},
		bson.M{BSONSort: bson.D{{Key: "date_creation", Value: -1}}},
	}
	pipeline = append(pipeline, auteurLookup("createur", "createur_info")...)

	return r.aggregate(ctx, pipeline)
}

// FindByCreateur retourne les recettes publiées par un utilisateur
func (r *RecetteRepository) FindByCreateur(ctx context.Context, userID primitive.ObjectID) ([]models.Recette, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date_creation", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"createur": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des recettes: %w", err)
	}
	defer cursor.Close(ctx)

	recettes := []models.Recette{}
	if err = cursor.All(ctx, &recettes); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des recettes: %w", err)
	}

	return recettes, nil
}

func (r *RecetteRepository) aggregate(ctx context.Context, pipeline bson.A) ([]models.Recette, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la récupération des recettes: %w", err)
	}
	defer cursor.Close(ctx)

	recettes := []models.Recette{}
	if err = cursor.All(ctx, &recettes); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des recettes: %w", err)
	}

	return recettes, nil
}

// Update applique une mise à jour partielle et retourne la recette modifiée (nil si inconnue)
func (r *RecetteRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Recette, error) {
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{
		BSONSet: fields,
		"$inc":  bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var recette models.Recette
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&recette)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la mise à jour de la recette: %w", err)
	}

	return &recette, nil
}

// Delete supprime une recette; retourne false si elle n'existait pas
func (r *RecetteRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la suppression de la recette: %w", err)
	}

	return result.DeletedCount > 0, nil
}

// Noter enregistre la note d'un utilisateur. La liste des notes et la moyenne sont écrites
// ensemble, à condition que la version lue n'ait pas changé; sinon on relit et on recommence.
func (r *RecetteRepository) Noter(ctx context.Context, id, userID primitive.ObjectID, valeur int) (*models.Recette, error) {
	load := func(ctx context.Context) (*models.Recette, error) {
		return r.FindByID(ctx, id)
	}
	return noterVersionnee(ctx, load, r.saveNotes, userID, valeur)
}

type (
	recetteLoader func(ctx context.Context) (*models.Recette, error)
	notesSaver    func(ctx context.Context, recette *models.Recette, version int64) (bool, error)
)

func noterVersionnee(ctx context.Context, load recetteLoader, save notesSaver, userID primitive.ObjectID, valeur int) (*models.Recette, error) {
	for attempt := 0; attempt < maxNoteAttempts; attempt++ {
		recette, err := load(ctx)
		if err != nil || recette == nil {
			return nil, err
		}

		version := recette.Version
		recette.AjouterNote(userID, valeur)

		ok, err := save(ctx, recette, version)
		if err != nil {
			return nil, err
		}
		if ok {
			recette.Version = version + 1
			return recette, nil
		}
	}

	return nil, ErrConflitNote
}

// noteVersionFilter cible la recette uniquement si sa version n'a pas bougé
func noteVersionFilter(id primitive.ObjectID, version int64) bson.M {
	filter := bson.M{"_id": id, "version": version}
	if version == 0 {
		// Les recettes importées sans compteur
		filter["version"] = bson.M{BSONIn: bson.A{0, nil}}
	}
	return filter
}

func (r *RecetteRepository) saveNotes(ctx context.Context, recette *models.Recette, version int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{BSONSet: bson.M{
		"notes":        recette.Notes,
		"note_moyenne": recette.NoteMoyenne,
		"version":      version + 1,
	}}

	result, err := r.collection.UpdateOne(ctx, noteVersionFilter(recette.ID, version), update)
	if err != nil {
		return false, fmt.Errorf("erreur lors de l'enregistrement de la note: %w", err)
	}

	return result.MatchedCount == 1, nil
}

// ExistingIDs indique lesquels des identifiants donnés correspondent à une recette
func (r *RecetteRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	existing := make(map[primitive.ObjectID]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "_id", bson.M{"_id": bson.M{BSONIn: ids}})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la vérification des recettes: %w", err)
	}

	for _, id := range toObjectIDs(values) {
		existing[id] = true
	}
	return existing, nil
}
