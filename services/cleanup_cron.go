package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cleanupTimeout borne une passe complète de nettoyage
const cleanupTimeout = time.Minute

// FavorisStore expose les favoris de tous les utilisateurs
type FavorisStore interface {
	DistinctFavoris(ctx context.Context) ([]primitive.ObjectID, error)
	PullFavoris(ctx context.Context, recetteIDs []primitive.ObjectID) (int64, error)
}

// CommentaireCleaner expose les commentaires groupés par recette
type CommentaireCleaner interface {
	DistinctRecettes(ctx context.Context) ([]primitive.ObjectID, error)
	DeleteByRecettes(ctx context.Context, recetteIDs []primitive.ObjectID) (int64, error)
}

// RecetteChecker indique quelles recettes existent encore
type RecetteChecker interface {
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
}

// CleanupResult résume une passe de nettoyage
type CleanupResult struct {
	FavorisRetires        int64
	CommentairesSupprimes int64
}

// CleanupCron retire périodiquement les références vers des recettes supprimées
type CleanupCron struct {
	users        FavorisStore
	commentaires CommentaireCleaner
	recettes     RecetteChecker
	cron         *cron.Cron
}

// NewCleanupCron crée une nouvelle instance
func NewCleanupCron(users FavorisStore, commentaires CommentaireCleaner, recettes RecetteChecker) *CleanupCron {
	return &CleanupCron{
		users:        users,
		commentaires: commentaires,
		recettes:     recettes,
		cron:         cron.New(),
	}
}

// Start planifie le nettoyage selon schedule (syntaxe cron ou @every)
func (c *CleanupCron) Start(schedule string) error {
	if _, err := c.cron.AddFunc(schedule, c.run); err != nil {
		return fmt.Errorf("planification du nettoyage invalide %q: %w", schedule, err)
	}
	c.cron.Start()
	log.Printf("✓ Cron job nettoyage démarré (%s)", schedule)
	return nil
}

// Stop arrête le cron job et attend la fin d'une passe en cours
func (c *CleanupCron) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CleanupCron) run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	result, err := c.RunOnce(ctx)
	if err != nil {
		log.Printf("❌ Erreur nettoyage: %v", err)
		return
	}
	if result.FavorisRetires > 0 || result.CommentairesSupprimes > 0 {
		log.Printf("🧹 Nettoyage: %d favori(s) orphelin(s) retiré(s), %d commentaire(s) orphelin(s) supprimé(s)",
			result.FavorisRetires, result.CommentairesSupprimes)
	}
}

// RunOnce exécute une passe de nettoyage
func (c *CleanupCron) RunOnce(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult

	favoris, err := c.users.DistinctFavoris(ctx)
	if err != nil {
		return result, fmt.Errorf("lecture des favoris: %w", err)
	}
	orphelins, err := c.orphelins(ctx, favoris)
	if err != nil {
		return result, err
	}
	if len(orphelins) > 0 {
		if result.FavorisRetires, err = c.users.PullFavoris(ctx, orphelins); err != nil {
			return result, fmt.Errorf("retrait des favoris orphelins: %w", err)
		}
	}

	commentees, err := c.commentaires.DistinctRecettes(ctx)
	if err != nil {
		return result, fmt.Errorf("lecture des recettes commentées: %w", err)
	}
	orphelins, err = c.orphelins(ctx, commentees)
	if err != nil {
		return result, err
	}
	if len(orphelins) > 0 {
		if result.CommentairesSupprimes, err = c.commentaires.DeleteByRecettes(ctx, orphelins); err != nil {
			return result, fmt.Errorf("suppression des commentaires orphelins: %w", err)
		}
	}

	return result, nil
}

func (c *CleanupCron) orphelins(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	existing, err := c.recettes.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("vérification des recettes: %w", err)
	}
	var out []primitive.ObjectID
	for _, id := range ids {
		if !existing[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
