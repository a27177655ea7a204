package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rôles disponibles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultAvatar est l'avatar attribué à l'inscription
const DefaultAvatar = "default-avatar.jpg"

// User représente un utilisateur dans le système
type User struct {
	ID                primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Nom               string               `json:"nom" bson:"nom"`
	Prenom            string               `json:"prenom" bson:"prenom"`
	Email             string               `json:"email" bson:"email"`
	Password          string               `json:"-" bson:"password"` // Le "-" empêche la sérialisation du mot de passe
	Avatar            string               `json:"avatar" bson:"avatar"`
	Role              string               `json:"role" bson:"role"`
	RecettesFavorites []primitive.ObjectID `json:"recettesFavorites" bson:"recettes_favorites"`
	DateInscription   time.Time            `json:"dateInscription" bson:"date_inscription"`
}

// IsAdmin indique si l'utilisateur a le rôle admin
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary retourne la représentation publique renvoyée avec un token
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID,
		Nom:    u.Nom,
		Prenom: u.Prenom,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}

// Auteur retourne la version "populée" de l'utilisateur (nom, prénom, avatar)
func (u *User) Auteur() Auteur {
	return Auteur{ID: u.ID, Nom: u.Nom, Prenom: u.Prenom, Avatar: u.Avatar}
}

// UserSummary représente l'utilisateur renvoyé après authentification
type UserSummary struct {
	ID     primitive.ObjectID `json:"id"`
	Nom    string             `json:"nom"`
	Prenom string             `json:"prenom"`
	Email  string             `json:"email"`
	Role   string             `json:"role"`
	Avatar string             `json:"avatar"`
}

// Auteur représente un utilisateur référencé par une recette, une note ou un commentaire
type Auteur struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Nom    string             `json:"nom" bson:"nom"`
	Prenom string             `json:"prenom" bson:"prenom"`
	Avatar string             `json:"avatar" bson:"avatar"`
}

// RegisterRequest représente la requête d'inscription
type RegisterRequest struct {
	Nom      string `json:"nom" validate:"required,min=2,max=50"`
	Prenom   string `json:"prenom" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest représente la requête de connexion (vérifiée à la main pour garder un message unique)
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateDetailsRequest représente la mise à jour du profil par l'utilisateur lui-même
type UpdateDetailsRequest struct {
	Nom    string `json:"nom" validate:"omitempty,min=2,max=50"`
	Prenom string `json:"prenom" validate:"omitempty,min=2,max=50"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordRequest représente le changement de mot de passe
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UpdateUserRequest représente la mise à jour d'un utilisateur par un admin
type UpdateUserRequest struct {
	Nom    string `json:"nom" validate:"omitempty,min=2,max=50"`
	Prenom string `json:"prenom" validate:"omitempty,min=2,max=50"`
	Email  string `json:"email" validate:"omitempty,email"`
	Role   string `json:"role" validate:"omitempty,oneof=user admin"`
	Avatar string `json:"avatar" validate:"omitempty,max=255"`
}

// AuthResponse représente la réponse d'authentification
type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

// UserProfile regroupe un utilisateur et ses recettes publiées
type UserProfile struct {
	User     User      `json:"user"`
	Recettes []Recette `json:"recettes"`
}
