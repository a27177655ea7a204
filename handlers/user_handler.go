package handlers

import (
	"log"
	"net/http"
	"strings"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// UserHandler gère l'administration des utilisateurs, les profils publics, les favoris et les avatars
type UserHandler struct {
	users    UserStore
	recettes RecetteStore
	tokens   FCMTokenStore
	uploader Uploader
}

// NewUserHandler crée une nouvelle instance de UserHandler
func NewUserHandler(users UserStore, recettes RecetteStore, tokens FCMTokenStore, uploader Uploader) *UserHandler {
	return &UserHandler{
		users:    users,
		recettes: recettes,
		tokens:   tokens,
		uploader: uploader,
	}
}

// List retourne tous les utilisateurs (admin)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondList(w, len(users), users)
}

// Get retourne un utilisateur (admin)
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.findUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, user)
}

// Update modifie un utilisateur (admin). Le mot de passe n'est jamais modifiable ici.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	fields := bson.M{}
	if req.Nom != "" {
		fields["nom"] = strings.TrimSpace(req.Nom)
	}
	if req.Prenom != "" {
		fields["prenom"] = strings.TrimSpace(req.Prenom)
	}
	if req.Email != "" {
		fields["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Role != "" {
		fields["role"] = req.Role
	}
	if req.Avatar != "" {
		fields["avatar"] = req.Avatar
	}

	updated, err := h.users.UpdateFields(r.Context(), id, fields)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if updated == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrUserNotFound))
		return
	}

	utils.RespondData(w, http.StatusOK, updated)
}

// Delete supprime un utilisateur (admin). Ses recettes sont conservées.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	deleted, err := h.users.Delete(r.Context(), id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if !deleted {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrUserNotFound))
		return
	}

	if h.tokens != nil {
		if err := h.tokens.DeleteByUserID(r.Context(), id); err != nil {
			log.Printf("⚠️  Tokens FCM de %s non supprimés: %v", id.Hex(), err)
		}
	}

	log.Printf("🗑️  Utilisateur supprimé: %s", id.Hex())
	utils.RespondData(w, http.StatusOK, emptyData)
}

// Profile retourne le profil public d'un utilisateur et ses recettes
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.findUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	recettes, err := h.recettes.FindByCreateur(r.Context(), user.ID)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, models.UserProfile{User: *user, Recettes: recettes})
}

// Favoris retourne les recettes favorites d'un utilisateur (lui-même ou admin)
func (h *UserHandler) Favoris(w http.ResponseWriter, r *http.Request) {
	acteur, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if !middleware.PeutModifier(id, acteur) {
		utils.RespondAppError(w, utils.ErrForbidden(constants.ErrNotOwnerFavoris))
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if user == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrUserNotFound))
		return
	}

	favoris, err := h.recettes.FindByIDs(r.Context(), user.RecettesFavorites)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondList(w, len(favoris), favoris)
}

// Avatar remplace l'avatar d'un utilisateur (lui-même ou admin) par l'image du champ avatar
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	acteur, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if !middleware.PeutModifier(id, acteur) {
		utils.RespondAppError(w, utils.ErrForbidden(constants.ErrNotOwnerAvatar))
		return
	}

	if !isMultipart(r) {
		utils.RespondAppError(w, utils.ErrBadRequest(constants.ErrNoFile))
		return
	}
	if err := h.uploader.ParseForm(w, r); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	filename, err := h.uploader.SaveFromRequest(r, "avatar")
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if filename == "" {
		utils.RespondAppError(w, utils.ErrBadRequest(constants.ErrNoFile))
		return
	}

	updated, err := h.users.UpdateFields(r.Context(), id, bson.M{"avatar": filename})
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if updated == nil {
		utils.RespondAppError(w, utils.ErrNotFound(constants.ErrUserNotFound))
		return
	}

	utils.RespondData(w, http.StatusOK, updated)
}

func (h *UserHandler) findUser(r *http.Request) (*models.User, error) {
	id, err := ParseObjectIDVar(r, "id")
	if err != nil {
		return nil, err
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrNotFound(constants.ErrUserNotFound)
	}
	return user, nil
}
