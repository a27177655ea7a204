package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Délais appliqués à chaque opération MongoDB
const (
	queryTimeout     = 5 * time.Second
	longQueryTimeout = 10 * time.Second
)

// Database regroupe le client MongoDB et la base utilisée par l'application.
// L'instance est créée au démarrage puis injectée dans les repositories.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect établit la connexion à la base de données MongoDB
func Connect(ctx context.Context, uri, dbName string) (*Database, error) {
	ctx, cancel := context.WithTimeout(ctx, longQueryTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la connexion à MongoDB: %w", err)
	}

	// Vérifier la connexion
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("erreur lors du ping MongoDB: %w", err)
	}

	db := &Database{Client: client, DB: client.Database(dbName)}
	log.Println("✓ Connexion à MongoDB établie")

	return prepare(ctx, db, db.createIndexes)
}

// prepare crée les index et libère le client si cela échoue
func prepare(ctx context.Context, db *Database, createIndexes func(context.Context) error) (*Database, error) {
	if err := createIndexes(ctx); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("erreur lors de la création des index: %w", err)
	}
	return db, nil
}

// Ping vérifie que la connexion MongoDB est active
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return fmt.Errorf("client MongoDB non initialisé")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.Client.Ping(ctx, nil)
}

// Close ferme la connexion à la base de données
func (d *Database) Close(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return d.Client.Disconnect(ctx)
}

// createIndexes crée les index nécessaires
func (d *Database) createIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionRecettes: {
			{Keys: bson.D{{Key: "createur", Value: 1}}},
			{Keys: bson.D{{Key: "date_creation", Value: -1}}},
			{Keys: bson.D{{Key: "note_moyenne", Value: -1}}},
		},
		CollectionCommentaires: {
			{Keys: bson.D{{Key: "recette", Value: 1}, {Key: "date_creation", Value: -1}}},
		},
		CollectionFCMTokens: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		CollectionSubscriptions: {
			{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := d.DB.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("index %s: %w", collection, err)
		}
	}

	log.Println("✓ Index MongoDB créés")
	return nil
}
