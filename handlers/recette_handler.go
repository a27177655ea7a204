package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/database"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"
	"monpetitchef-backend/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultTopLimit est le nombre de recettes populaires ou récentes renvoyées par défaut
const defaultTopLimit = 5

// RecetteHandler gère les requêtes sur les recettes, les favoris et les notes
type RecetteHandler struct {
	recettes     RecetteStore
	users        UserStore
	commentaires CommentaireStore
	uploader     Uploader
	notifier     Notifier
	hub          Broadcaster
}

// NewRecetteHandler crée une nouvelle instance de RecetteHandler
func NewRecetteHandler(recettes RecetteStore, users UserStore, commentaires CommentaireStore, uploader Uploader, notifier Notifier, hub Broadcaster) *RecetteHandler {
	return &RecetteHandler{
		recettes:     recettes,
		users:        users,
		commentaires: commentaires,
		uploader:     uploader,
		notifier:     notifier,
		hub:          hub,
	}
}

// List retourne les recettes filtrées, triées et paginées
func (h *RecetteHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := database.ParseListQuery(r.URL.Query())
	if err != nil {
		utils.RespondAppError(w, utils.ErrBadRequest(err.Error()))
		return
	}

	recettes, total, err := h.recettes.List(r.Context(), q)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var data interface{} = recettes
	if len(q.Fields) > 0 {
		if data, err = selectFields(recettes, q.Fields); err != nil {
			utils.RespondAppError(w, utils.ErrInternal("", err))
			return
		}
	}

	utils.RespondJSON(w, http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Count:      len(recettes),
		Pagination: models.NewPagination(q.Page, q.Limit, total),
		Data:       data,
	})
}

// selectFields ne garde que l'id et les champs demandés dans la représentation JSON
func selectFields(recettes []models.Recette, fields []string) ([]map[string]json.RawMessage, error) {
	keep := map[string]bool{"id": true}
	for _, f := range fields {
		name := strings.SplitN(f, ".", 2)[0]
		if name == "_id" {
			name = "id"
		}
		keep[name] = true
	}

	out := make([]map[string]json.RawMessage, 0, len(recettes))
	for _, recette := range recettes {
		raw, err := json.Marshal(recette)
		if err != nil {
			return nil, err
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, err
		}
		for key := range full {
			if !keep[key] {
				delete(full, key)
			}
		}
		out = append(out, full)
	}
	return out, nil
}

// Populaires retourne les recettes les mieux notées
func (h *RecetteHandler) Populaires(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, "note_moyenne")
}

// Recentes retourne les dernières recettes publiées
func (h *RecetteHandler) Recentes(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, "date_creation")
}

func (h *RecetteHandler) top(w http.ResponseWriter, r *http.Request, sortField string) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultTopLimit
	}
	if limit > database.MaxLimit {
		limit = database.MaxLimit
	}

	recettes, err := h.recettes.FindTop(r.Context(), sortField, limit)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondList(w, len(recettes), recettes)
}

// Get retourne une recette avec son créateur et les auteurs des notes
func (h *RecetteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recette, err := h.findRecette(r.Context(), id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if err := h.populer(r.Context(), recette); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, recette)
}

// populer renseigne le créateur et les auteurs des notes
func (h *RecetteHandler) populer(ctx context.Context, recette *models.Recette) error {
	ids := []primitive.ObjectID{recette.Createur}
	for _, n := range recette.Notes {
		ids = append(ids, n.Utilisateur)
	}

	auteurs, err := h.users.FindAuteurs(ctx, ids)
	if err != nil {
		return err
	}

	if a, ok := auteurs[recette.Createur]; ok {
		recette.CreateurInfo = &a
	}
	for i := range recette.Notes {
		if a, ok := auteurs[recette.Notes[i].Utilisateur]; ok {
			recette.Notes[i].UtilisateurInfo = &a
		}
	}
	return nil
}

// Create crée une recette (JSON ou multipart avec les champs data et image)
func (h *RecetteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.CreateRecetteRequest
	image, err := h.readRecette(w, r, &req)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recette := req.ToRecette(user.ID)
	if image != "" {
		recette.Image = image
	}

	if err := h.recettes.Create(r.Context(), recette); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	log.Printf("🍳 Recette créée: %s par %s", recette.ID.Hex(), user.Email)
	utils.RespondData(w, http.StatusCreated, recette)
}

// Update modifie une recette (créateur ou admin)
func (h *RecetteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recette, err := h.findRecette(r.Context(), id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if !middleware.PeutModifier(recette.Createur, user) {
		utils.RespondAppError(w, utils.ErrForbidden(constants.ErrNotOwnerRecetteUpdate))
		return
	}

	var req models.UpdateRecetteRequest
	image, err := h.readRecette(w, r, &req)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	fields := req.Fields()
	if image != "" {
		fields["image"] = image
	}

	updated, err := h.recettes.Update(r.Context(), id, fields)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if updated == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrRecetteNotFound))
		return
	}

	utils.RespondData(w, http.StatusOK, updated)
}

// readRecette décode et valide le document puis enregistre l'image éventuelle.
// L'image n'est écrite qu'une fois les données validées.
func (h *RecetteHandler) readRecette(w http.ResponseWriter, r *http.Request, dst interface{}) (string, error) {
	if !isMultipart(r) {
		return "", decodeAndValidate(r, dst)
	}

	if err := h.uploader.ParseForm(w, r); err != nil {
		return "", err
	}
	if data := r.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), dst); err != nil {
			return "", utils.ErrBadRequest(constants.ErrInvalidJSONBody)
		}
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return "", err
	}

	return h.uploader.SaveFromRequest(r, "image")
}

// Delete supprime une recette, ses commentaires et ses références dans les favoris
func (h *RecetteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recette, err := h.findRecette(r.Context(), id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if !middleware.PeutModifier(recette.Createur, user) {
		utils.RespondAppError(w, utils.ErrForbidden(constants.ErrNotOwnerRecetteDelete))
		return
	}

	deleted, err := h.recettes.Delete(r.Context(), id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if !deleted {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrRecetteNotFound))
		return
	}

	// Le cron de nettoyage rattrape ce qui échoue ici
	ids := []primitive.ObjectID{id}
	if _, err := h.commentaires.DeleteByRecettes(r.Context(), ids); err != nil {
		log.Printf("⚠️  Commentaires de la recette %s non supprimés: %v", id.Hex(), err)
	}
	if _, err := h.users.PullFavoris(r.Context(), ids); err != nil {
		log.Printf("⚠️  Favoris de la recette %s non retirés: %v", id.Hex(), err)
	}

	log.Printf("🗑️  Recette supprimée: %s par %s", id.Hex(), user.Email)
	utils.RespondData(w, http.StatusOK, emptyData)
}

// AjouterFavori ajoute la recette aux favoris de l'utilisateur connecté
func (h *RecetteHandler) AjouterFavori(w http.ResponseWriter, r *http.Request) {
	h.favori(w, r, h.users.AddFavori, constants.MsgFavoriAjoute)
}

// RetirerFavori retire la recette des favoris de l'utilisateur connecté
func (h *RecetteHandler) RetirerFavori(w http.ResponseWriter, r *http.Request) {
	h.favori(w, r, h.users.RemoveFavori, constants.MsgFavoriRetire)
}

type favoriUpdate func(ctx context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error)

func (h *RecetteHandler) favori(w http.ResponseWriter, r *http.Request, update favoriUpdate, message string) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if _, err := h.findRecette(r.Context(), id); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	favoris, err := update(r.Context(), user.ID, id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if favoris == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrUserNotFound))
		return
	}

	utils.RespondSuccess(w, message, favoris)
}

// Noter enregistre (ou remplace) la note de l'utilisateur connecté
func (h *RecetteHandler) Noter(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.NoteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}
	valeur := int(*req.Valeur)

	recette, err := h.recettes.Noter(r.Context(), id, user.ID, valeur)
	if errors.Is(err, database.ErrConflitNote) {
		utils.RespondAppError(w, &utils.AppError{
			Kind:    utils.KindConflict,
			Status:  http.StatusConflict,
			Message: constants.ErrNoteConflict,
			Err:     err,
		})
		return
	}
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if recette == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrRecetteNotFound))
		return
	}

	if h.notifier != nil {
		h.notifier.NouvelleNote(recette, user, valeur)
	}
	if h.hub != nil {
		h.hub.BroadcastToRecette(recette.ID.Hex(), websocket.EventNouvelleNote, map[string]interface{}{
			"noteMoyenne": recette.NoteMoyenne,
			"nombreNotes": len(recette.Notes),
		}, user.ID.Hex())
	}

	utils.RespondData(w, http.StatusOK, recette)
}

// findRecette charge la recette ou retourne une erreur 404
func (h *RecetteHandler) findRecette(ctx context.Context, id primitive.ObjectID) (*models.Recette, error) {
	recette, err := h.recettes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recette == nil {
		return nil, utils.ErrNotFound(constants.ErrRecetteNotFound)
	}
	return recette, nil
}
