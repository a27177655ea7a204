package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// AuthHandler gère les requêtes d'authentification
type AuthHandler struct {
	users     UserStore
	jwtSecret string
	jwtExpire time.Duration
}

// NewAuthHandler crée une nouvelle instance de AuthHandler
func NewAuthHandler(users UserStore, jwtSecret string, jwtExpire time.Duration) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpire: jwtExpire,
	}
}

// Register gère l'inscription d'un nouvel utilisateur
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondAppError(w, utils.ErrInternal("", err))
		return
	}

	user := &models.User{
		Nom:      strings.TrimSpace(req.Nom),
		Prenom:   strings.TrimSpace(req.Prenom),
		Email:    req.Email,
		Password: hashedPassword,
	}

	// Un email déjà utilisé est refusé par l'index unique et devient un 409
	if err := h.users.Create(r.Context(), user); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	log.Printf("✓ Nouvel utilisateur inscrit: %s (ID: %s)", user.Email, user.ID.Hex())
	h.sendTokenResponse(w, http.StatusCreated, user)
}

// Login gère la connexion d'un utilisateur
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		utils.RespondAppError(w, utils.ErrBadRequest(constants.ErrMissingCredentials))
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	// Même réponse pour un email inconnu et un mauvais mot de passe
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrInvalidCredentials))
		return
	}

	log.Printf("✓ Connexion réussie: %s", user.Email)
	h.sendTokenResponse(w, http.StatusOK, user)
}

// Logout répond simplement: le token est supprimé côté client
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondSuccess(w, constants.MsgLogout, nil)
}

// Me retourne l'utilisateur connecté
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	utils.RespondData(w, http.StatusOK, user)
}

// UpdateDetails met à jour le nom, le prénom et l'email de l'utilisateur connecté
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.UpdateDetailsRequest
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

	updated, err := h.users.UpdateFields(r.Context(), user.ID, fields)
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

// UpdatePassword change le mot de passe après vérification de l'actuel et renvoie un nouveau token
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}

	var req models.UpdatePasswordRequest
	if err := decodeAndValidate(r, &req); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		utils.RespondAppError(w, utils.ErrUnauthenticated(constants.ErrWrongPassword))
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondAppError(w, utils.ErrInternal("", err))
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, hashedPassword); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	h.sendTokenResponse(w, http.StatusOK, user)
}

// sendTokenResponse génère le token et renvoie {success, token, user}
func (h *AuthHandler) sendTokenResponse(w http.ResponseWriter, status int, user *models.User) {
	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, h.jwtSecret, h.jwtExpire)
	if err != nil {
		utils.RespondAppError(w, utils.ErrInternal("", err))
		return
	}

	utils.RespondJSON(w, status, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    user.Summary(),
	})
}
