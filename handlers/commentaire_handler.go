package handlers

import (
	"context"
	"net/http"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"
	"monpetitchef-backend/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentaireHandler gère les commentaires des recettes
type CommentaireHandler struct {
	commentaires CommentaireStore
	recettes     RecetteStore
	users        UserStore
	notifier     Notifier
	hub          Broadcaster
}

// NewCommentaireHandler crée une nouvelle instance de CommentaireHandler
func NewCommentaireHandler(commentaires CommentaireStore, recettes RecetteStore, users UserStore, notifier Notifier, hub Broadcaster) *CommentaireHandler {
	return &CommentaireHandler{
		commentaires: commentaires,
		recettes:     recettes,
		users:        users,
		notifier:     notifier,
		hub:          hub,
	}
}

// List retourne les commentaires d'une recette, du plus récent au plus ancien
func (h *CommentaireHandler) List(w http.ResponseWriter, r *http.Request) {
	recetteID, err := ParseObjectIDVar(r, "recetteId")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	commentaires, err := h.commentaires.FindByRecette(r.Context(), recetteID)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondList(w, len(commentaires), commentaires)
}

// Create ajoute un commentaire à une recette existante
func (h *CommentaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recetteID, err := ParseObjectIDVar(r, "recetteId")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recette, err := h.recettes.FindByID(r.Context(), recetteID)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if recette == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrRecetteNotFound))
		return
	}

	var req models.CommentaireRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	commentaire := &models.Commentaire{
		Texte:       req.Texte,
		Recette:     recetteID,
		Utilisateur: user.ID,
	}
	if err := h.commentaires.Create(r.Context(), commentaire); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	auteur := user.Auteur()
	commentaire.UtilisateurInfo = &auteur

	if h.notifier != nil {
		h.notifier.NouveauCommentaire(recette, user)
	}
	h.broadcast(recetteID, websocket.EventNouveauCommentaire, commentaire, user.ID)

	utils.RespondData(w, http.StatusCreated, commentaire)
}

// Update modifie le texte d'un commentaire (auteur ou admin)
func (h *CommentaireHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, commentaire, err := h.loadForChange(r, constants.ErrNotOwnerCommentUpdate)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.CommentaireRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	updated, err := h.commentaires.UpdateTexte(r.Context(), commentaire.ID, req.Texte)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if updated == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrCommentaireNotFound))
		return
	}

	if err := h.populer(r.Context(), updated); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	h.broadcast(updated.Recette, websocket.EventCommentaireModifie, updated, user.ID)
	utils.RespondData(w, http.StatusOK, updated)
}

// Delete supprime un commentaire (auteur ou admin)
func (h *CommentaireHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, commentaire, err := h.loadForChange(r, constants.ErrNotOwnerCommentDelete)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	deleted, err := h.commentaires.Delete(r.Context(), commentaire.ID)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if !deleted {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrCommentaireNotFound))
		return
	}

	h.broadcast(commentaire.Recette, websocket.EventCommentaireSupprime, map[string]string{"id": commentaire.ID.Hex()}, user.ID)
	utils.RespondData(w, http.StatusOK, emptyData)
}

// loadForChange charge le commentaire de l'URL: 404 s'il n'existe pas, puis 403 si l'utilisateur ne peut pas le modifier
func (h *CommentaireHandler) loadForChange(r *http.Request, forbidden string) (*models.User, *models.Commentaire, error) {
	user, err := currentUser(r)
	if err != nil {
		return nil, nil, err
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		return nil, nil, err
	}

	commentaire, err := h.commentaires.FindByID(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	if commentaire == nil {
		return nil, nil, utils.ErrNotFound(constants.ErrCommentaireNotFound)
	}

	if !middleware.PeutModifier(commentaire.Utilisateur, user) {
		return nil, nil, utils.ErrForbidden(forbidden)
	}

	return user, commentaire, nil
}

func (h *CommentaireHandler) populer(ctx context.Context, commentaire *models.Commentaire) error {
	auteurs, err := h.users.FindAuteurs(ctx, []primitive.ObjectID{commentaire.Utilisateur})
	if err != nil {
		return err
	}
	if a, ok := auteurs[commentaire.Utilisateur]; ok {
		commentaire.UtilisateurInfo = &a
	}
	return nil
}

func (h *CommentaireHandler) broadcast(recetteID primitive.ObjectID, eventType string, data interface{}, acteur primitive.ObjectID) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastToRecette(recetteID.Hex(), eventType, data, acteur.Hex())
}
