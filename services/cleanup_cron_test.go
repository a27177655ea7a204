package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeFavoris struct {
	favoris []primitive.ObjectID
	pulled  []primitive.ObjectID
}

func (f *fakeFavoris) DistinctFavoris(context.Context) ([]primitive.ObjectID, error) {
	return f.favoris, nil
}

func (f *fakeFavoris) PullFavoris(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	f.pulled = ids
	return int64(len(ids)), nil
}

type fakeCommentaires struct {
	recettes []primitive.ObjectID
	deleted  []primitive.ObjectID
}

func (f *fakeCommentaires) DistinctRecettes(context.Context) ([]primitive.ObjectID, error) {
	return f.recettes, nil
}

func (f *fakeCommentaires) DeleteByRecettes(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	f.deleted = ids
	return int64(len(ids)) * 3, nil
}

type fakeRecettes struct {
	existing map[primitive.ObjectID]bool
	err      error
}

func (f *fakeRecettes) ExistingIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if f.existing[id] {
			out[id] = true
		}
	}
	return out, nil
}

func TestCleanupRunOnce(t *testing.T) {
	vivante := primitive.NewObjectID()
	supprimee := primitive.NewObjectID()

	users := &fakeFavoris{favoris: []primitive.ObjectID{vivante, supprimee}}
	commentaires := &fakeCommentaires{recettes: []primitive.ObjectID{supprimee, vivante}}
	recettes := &fakeRecettes{existing: map[primitive.ObjectID]bool{vivante: true}}

	result, err := NewCleanupCron(users, commentaires, recettes).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() = %v", err)
	}

	if len(users.pulled) != 1 || users.pulled[0] != supprimee {
		t.Errorf("favoris retirés = %v, attendu [%s]", users.pulled, supprimee.Hex())
	}
	if len(commentaires.deleted) != 1 || commentaires.deleted[0] != supprimee {
		t.Errorf("commentaires supprimés pour %v", commentaires.deleted)
	}
	if result.FavorisRetires != 1 || result.CommentairesSupprimes != 3 {
		t.Errorf("result = %+v", result)
	}
}

func TestCleanupRunOnceRienAFaire(t *testing.T) {
	users := &fakeFavoris{}
	commentaires := &fakeCommentaires{}
	recettes := &fakeRecettes{err: errors.New("ne doit pas être appelé")}

	result, err := NewCleanupCron(users, commentaires, recettes).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() = %v", err)
	}
	if result != (CleanupResult{}) {
		t.Errorf("result = %+v, attendu vide", result)
	}
}

func TestCleanupRunOnceErreur(t *testing.T) {
	users := &fakeFavoris{favoris: []primitive.ObjectID{primitive.NewObjectID()}}
	recettes := &fakeRecettes{err: errors.New("timeout")}

	if _, err := NewCleanupCron(users, &fakeCommentaires{}, recettes).RunOnce(context.Background()); err == nil {
		t.Error("RunOnce() doit remonter l'erreur de vérification")
	}
}

func TestCleanupStartPlanificationInvalide(t *testing.T) {
	c := NewCleanupCron(&fakeFavoris{}, &fakeCommentaires{}, &fakeRecettes{})
	if err := c.Start("pas une planification"); err == nil {
		t.Error("Start() doit refuser une planification invalide")
	}

	if err := c.Start("@every 1h"); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	c.Stop()
}
