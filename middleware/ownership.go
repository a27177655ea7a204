package middleware

import (
	"monpetitchef-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PeutModifier indique si l'acteur peut modifier une ressource: il en est le propriétaire ou il est admin
func PeutModifier(proprietaire primitive.ObjectID, acteur *models.User) bool {
	if acteur == nil {
		return false
	}
	return proprietaire == acteur.ID || acteur.IsAdmin()
}
