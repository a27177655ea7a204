package database

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// versionedStore simule la collection: un autre utilisateur note la recette
// pendant les `concurrents` premières tentatives
type versionedStore struct {
	recette     models.Recette
	concurrents int
	loads       int
	autre       primitive.ObjectID
}

func (s *versionedStore) load(context.Context) (*models.Recette, error) {
	s.loads++
	copie := s.recette
	copie.Notes = append([]models.Note(nil), s.recette.Notes...)
	return &copie, nil
}

func (s *versionedStore) save(_ context.Context, recette *models.Recette, version int64) (bool, error) {
	if s.concurrents > 0 {
		s.concurrents--
		s.recette.AjouterNote(s.autre, 1)
		s.recette.Version++
	}
	if s.recette.Version != version {
		return false, nil
	}
	s.recette.Notes = recette.Notes
	s.recette.NoteMoyenne = recette.NoteMoyenne
	s.recette.Version = version + 1
	return true, nil
}

func TestNoterVersionnee(t *testing.T) {
	user := primitive.NewObjectID()

	tests := []struct {
		name        string
		concurrents int
		wantErr     error
		wantLoads   int
		wantNotes   int
		wantMoyenne float64
	}{
		{"sans concurrence", 0, nil, 1, 1, 5},
		{"relit après une note concurrente", 2, nil, 3, 2, 3},
		{"abandonne après toutes les tentatives", maxNoteAttempts, ErrConflitNote, maxNoteAttempts, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &versionedStore{
				recette:     models.Recette{ID: primitive.NewObjectID()},
				concurrents: tt.concurrents,
				autre:       primitive.NewObjectID(),
			}

			recette, err := noterVersionnee(context.Background(), store.load, store.save, user, 5)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("noterVersionnee() erreur = %v, attendu %v", err, tt.wantErr)
			}
			if store.loads != tt.wantLoads {
				t.Errorf("lectures = %d, attendu %d", store.loads, tt.wantLoads)
			}
			if tt.wantErr != nil {
				return
			}
			if len(recette.Notes) != tt.wantNotes || recette.NoteMoyenne != tt.wantMoyenne {
				t.Errorf("notes = %d, moyenne = %v, attendu %d et %v", len(recette.Notes), recette.NoteMoyenne, tt.wantNotes, tt.wantMoyenne)
			}
			if recette.Version != store.recette.Version {
				t.Errorf("version = %d, attendu %d", recette.Version, store.recette.Version)
			}
		})
	}
}

func TestNoterVersionnee_RecetteIntrouvable(t *testing.T) {
	load := func(context.Context) (*models.Recette, error) { return nil, nil }
	save := func(context.Context, *models.Recette, int64) (bool, error) {
		t.Fatal("save ne doit pas être appelé")
		return false, nil
	}

	recette, err := noterVersionnee(context.Background(), load, save, primitive.NewObjectID(), 4)
	if recette != nil || err != nil {
		t.Errorf("noterVersionnee() = %v, %v, attendu nil, nil", recette, err)
	}
}

func TestNoteVersionFilter(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name    string
		version int64
		want    interface{}
	}{
		{"version initiale", 0, bson.M{BSONIn: bson.A{0, nil}}},
		{"version connue", 3, int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := noteVersionFilter(id, tt.version)
			if filter["_id"] != id {
				t.Errorf("_id = %v, attendu %v", filter["_id"], id)
			}
			if !reflect.DeepEqual(filter["version"], tt.want) {
				t.Errorf("version = %#v, attendu %#v", filter["version"], tt.want)
			}
		})
	}
}
