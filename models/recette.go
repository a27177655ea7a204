package models

import (
	"encoding/json"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Niveaux de difficulté
const (
	DifficulteFacile    = "Facile"
	DifficulteMoyen     = "Moyen"
	DifficulteDifficile = "Difficile"
)

// DefaultImage est l'image attribuée à une recette sans photo
const DefaultImage = "default.jpg"

// Ingredient représente un ingrédient d'une recette
type Ingredient struct {
	Nom      string `json:"nom" bson:"nom" validate:"required,min=1,max=100"`
	Quantite string `json:"quantite" bson:"quantite" validate:"required"`
	Unite    string `json:"unite,omitempty" bson:"unite,omitempty"`
}

// Note représente la note (1 à 5) d'un utilisateur sur une recette
type Note struct {
	Utilisateur     primitive.ObjectID `json:"-" bson:"utilisateur"`
	UtilisateurInfo *Auteur            `json:"-" bson:"-"`
	Valeur          int                `json:"valeur" bson:"valeur"`
}

// MarshalJSON renvoie l'utilisateur populé s'il est connu, son ID sinon
func (n Note) MarshalJSON() ([]byte, error) {
	type alias Note
	var utilisateur interface{} = n.Utilisateur
	if n.UtilisateurInfo != nil {
		utilisateur = n.UtilisateurInfo
	}
	return json.Marshal(struct {
		alias
		Utilisateur interface{} `json:"utilisateur"`
	}{alias(n), utilisateur})
}

// Recette représente une recette publiée
type Recette struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Titre             string             `json:"titre" bson:"titre"`
	Description       string             `json:"description" bson:"description"`
	Ingredients       []Ingredient       `json:"ingredients" bson:"ingredients"`
	EtapesPreparation []string           `json:"etapesPreparation" bson:"etapes_preparation"`
	TempsPreparation  int                `json:"tempsPreparation" bson:"temps_preparation"`
	TempsCuisson      int                `json:"tempsCuisson" bson:"temps_cuisson"`
	Portions          int                `json:"portions" bson:"portions"`
	Difficulte        string             `json:"difficulte" bson:"difficulte"`
	Categories        []string           `json:"categories" bson:"categories"`
	Tags              []string           `json:"tags" bson:"tags"`
	Image             string             `json:"image" bson:"image"`
	Createur          primitive.ObjectID `json:"-" bson:"createur"`
	CreateurInfo      *Auteur            `json:"-" bson:"createur_info,omitempty"`
	Notes             []Note             `json:"notes" bson:"notes"`
	NoteMoyenne       float64            `json:"noteMoyenne" bson:"note_moyenne"`
	DateCreation      time.Time          `json:"dateCreation" bson:"date_creation"`
	Version           int64              `json:"-" bson:"version"`
}

// MarshalJSON renvoie le créateur populé s'il est connu, son ID sinon
func (r Recette) MarshalJSON() ([]byte, error) {
	type alias Recette
	var createur interface{} = r.Createur
	if r.CreateurInfo != nil {
		createur = r.CreateurInfo
	}
	return json.Marshal(struct {
		alias
		Createur interface{} `json:"createur"`
	}{alias(r), createur})
}

// AppliquerDefauts complète les champs facultatifs avant insertion
func (r *Recette) AppliquerDefauts() {
	if r.Difficulte == "" {
		r.Difficulte = DifficulteMoyen
	}
	if r.Image == "" {
		r.Image = DefaultImage
	}
	if r.Notes == nil {
		r.Notes = []Note{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
}

// AjouterNote enregistre la note d'un utilisateur (remplace sa note précédente s'il en a une)
// puis recalcule la moyenne
func (r *Recette) AjouterNote(utilisateur primitive.ObjectID, valeur int) {
	remplacee := false
	for i := range r.Notes {
		if r.Notes[i].Utilisateur == utilisateur {
			r.Notes[i].Valeur = valeur
			remplacee = true
			break
		}
	}
	if !remplacee {
		r.Notes = append(r.Notes, Note{Utilisateur: utilisateur, Valeur: valeur})
	}
	r.CalculerNoteMoyenne()
}

// CalculerNoteMoyenne met à jour NoteMoyenne à partir des notes (arrondie à une décimale)
func (r *Recette) CalculerNoteMoyenne() {
	r.NoteMoyenne = MoyenneNotes(r.Notes)
}

// MoyenneNotes calcule la moyenne arrondie à une décimale, 0 si aucune note.
// math.Round arrondit les demis à l'opposé de zéro (1.666 -> 1.7, 4.25 -> 4.3).
func MoyenneNotes(notes []Note) float64 {
	if len(notes) == 0 {
		return 0
	}
	somme := 0
	for _, n := range notes {
		somme += n.Valeur
	}
	return math.Round(float64(somme)/float64(len(notes))*10) / 10
}

// CreateRecetteRequest représente la création d'une recette
type CreateRecetteRequest struct {
	Titre             string       `json:"titre" validate:"required,min=3,max=100"`
	Description       string       `json:"description" validate:"required,min=10,max=1000"`
	Ingredients       []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	EtapesPreparation []string     `json:"etapesPreparation" validate:"required,min=1,dive,min=5,max=500"`
	TempsPreparation  *float64     `json:"tempsPreparation" validate:"required,entier,min=1,max=1440"`
	TempsCuisson      *float64     `json:"tempsCuisson" validate:"omitempty,entier,min=0,max=1440"`
	Portions          *float64     `json:"portions" validate:"required,entier,min=1,max=50"`
	Difficulte        string       `json:"difficulte" validate:"omitempty,oneof=Facile Moyen Difficile"`
	Categories        []string     `json:"categories" validate:"required,min=1,dive,min=2,max=50"`
	Tags              []string     `json:"tags" validate:"omitempty,dive,min=2,max=30"`
}

// ToRecette construit la recette à insérer
func (req *CreateRecetteRequest) ToRecette(createur primitive.ObjectID) *Recette {
	recette := &Recette{
		Titre:             req.Titre,
		Description:       req.Description,
		Ingredients:       req.Ingredients,
		EtapesPreparation: req.EtapesPreparation,
		Difficulte:        req.Difficulte,
		Categories:        req.Categories,
		Tags:              req.Tags,
		Createur:          createur,
	}
	if req.TempsPreparation != nil {
		recette.TempsPreparation = int(*req.TempsPreparation)
	}
	if req.TempsCuisson != nil {
		recette.TempsCuisson = int(*req.TempsCuisson)
	}
	if req.Portions != nil {
		recette.Portions = int(*req.Portions)
	}
	recette.AppliquerDefauts()
	return recette
}

// UpdateRecetteRequest représente la mise à jour partielle d'une recette
type UpdateRecetteRequest struct {
	Titre             *string      `json:"titre" validate:"omitempty,min=3,max=100"`
	Description       *string      `json:"description" validate:"omitempty,min=10,max=1000"`
	Ingredients       []Ingredient `json:"ingredients" validate:"omitempty,min=1,dive"`
	EtapesPreparation []string     `json:"etapesPreparation" validate:"omitempty,min=1,dive,min=5,max=500"`
	TempsPreparation  *float64     `json:"tempsPreparation" validate:"omitempty,entier,min=1,max=1440"`
	TempsCuisson      *float64     `json:"tempsCuisson" validate:"omitempty,entier,min=0,max=1440"`
	Portions          *float64     `json:"portions" validate:"omitempty,entier,min=1,max=50"`
	Difficulte        *string      `json:"difficulte" validate:"omitempty,oneof=Facile Moyen Difficile"`
	Categories        []string     `json:"categories" validate:"omitempty,min=1,dive,min=2,max=50"`
	Tags              []string     `json:"tags" validate:"omitempty,dive,min=2,max=30"`
}

// Fields retourne les champs BSON à mettre à jour (seulement ceux fournis)
func (req *UpdateRecetteRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Titre != nil {
		fields["titre"] = *req.Titre
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Ingredients != nil {
		fields["ingredients"] = req.Ingredients
	}
	if req.EtapesPreparation != nil {
		fields["etapes_preparation"] = req.EtapesPreparation
	}
	if req.TempsPreparation != nil {
		fields["temps_preparation"] = int(*req.TempsPreparation)
	}
	if req.TempsCuisson != nil {
		fields["temps_cuisson"] = int(*req.TempsCuisson)
	}
	if req.Portions != nil {
		fields["portions"] = int(*req.Portions)
	}
	if req.Difficulte != nil {
		fields["difficulte"] = *req.Difficulte
	}
	if req.Categories != nil {
		fields["categories"] = req.Categories
	}
	if req.Tags != nil {
		fields["tags"] = req.Tags
	}
	return fields
}

// NoteRequest représente l'ajout d'une note
type NoteRequest struct {
	Valeur *float64 `json:"valeur" validate:"required,entier,min=1,max=5"`
}
