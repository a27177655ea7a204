package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commentaire représente un commentaire laissé sur une recette
type Commentaire struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Texte           string             `json:"texte" bson:"texte"`
	Recette         primitive.ObjectID `json:"recette" bson:"recette"`
	Utilisateur     primitive.ObjectID `json:"-" bson:"utilisateur"`
	UtilisateurInfo *Auteur            `json:"-" bson:"utilisateur_info,omitempty"`
	DateCreation    time.Time          `json:"dateCreation" bson:"date_creation"`
}

// MarshalJSON renvoie l'auteur populé s'il est connu, son ID sinon
func (c Commentaire) MarshalJSON() ([]byte, error) {
	type alias Commentaire
	var utilisateur interface{} = c.Utilisateur
	if c.UtilisateurInfo != nil {
		utilisateur = c.UtilisateurInfo
	}
	return json.Marshal(struct {
		alias
		Utilisateur interface{} `json:"utilisateur"`
	}{alias(c), utilisateur})
}

// CommentaireRequest représente la création ou la modification d'un commentaire
type CommentaireRequest struct {
	Texte string `json:"texte" validate:"required,min=5,max=500"`
}
