package utils

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator retourne l'instance partagée, configurée pour nommer les champs d'après leur tag json
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("entier", validateEntier)
	})
	return validate
}

// validateEntier refuse les nombres à virgule (12.5) tout en acceptant 12 ou 12.0
func validateEntier(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return f == math.Trunc(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// ValidateStruct valide une requête et retourne tous les messages d'erreur en français
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrBadRequest(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, validationMessage(fe))
	}
	return ErrValidation(messages)
}

var indexRegex = regexp.MustCompile(`\[\d+\]`)

// fieldPath retire le nom de la structure racine et les index ("ingredients[0].nom" -> "ingredients.nom")
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return indexRegex.ReplaceAllString(ns, "")
}

// messageKey distingue la règle d'un tableau de celle de ses éléments ("etapesPreparation[].min")
func messageKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if strings.HasSuffix(ns, "]") {
		return fieldPath(fe) + "[]." + fe.Tag()
	}
	return fieldPath(fe) + "." + fe.Tag()
}

var messages = map[string]string{
	"nom.required":                  "Veuillez ajouter un nom",
	"nom.min":                       "Le nom doit contenir au moins 2 caractères",
	"nom.max":                       "Le nom ne peut pas dépasser 50 caractères",
	"prenom.required":               "Veuillez ajouter un prénom",
	"prenom.min":                    "Le prénom doit contenir au moins 2 caractères",
	"prenom.max":                    "Le prénom ne peut pas dépasser 50 caractères",
	"email.required":                "Veuillez ajouter un email",
	"email.email":                   "Veuillez ajouter un email valide",
	"password.required":             "Veuillez ajouter un mot de passe",
	"password.min":                  "Le mot de passe doit contenir au moins 6 caractères",
	"password.max":                  "Le mot de passe ne peut pas dépasser 72 caractères",
	"currentPassword.required":      "Veuillez fournir le mot de passe actuel",
	"newPassword.required":          "Veuillez fournir un nouveau mot de passe",
	"newPassword.min":               "Le nouveau mot de passe doit contenir au moins 6 caractères",
	"newPassword.max":               "Le nouveau mot de passe ne peut pas dépasser 72 caractères",
	"role.oneof":                    "Le rôle doit être user ou admin",
	"titre.required":                "Veuillez ajouter un titre",
	"titre.min":                     "Le titre doit contenir au moins 3 caractères",
	"titre.max":                     "Le titre ne peut pas dépasser 100 caractères",
	"description.required":          "Veuillez ajouter une description",
	"description.min":               "La description doit contenir au moins 10 caractères",
	"description.max":               "La description ne peut pas dépasser 1000 caractères",
	"ingredients.required":          "Veuillez ajouter au moins un ingrédient",
	"ingredients.min":               "Veuillez ajouter au moins un ingrédient",
	"ingredients.nom.required":      "Veuillez ajouter un nom d'ingrédient",
	"ingredients.nom.min":           "Veuillez ajouter un nom d'ingrédient",
	"ingredients.nom.max":           "Le nom d'un ingrédient ne peut pas dépasser 100 caractères",
	"ingredients.quantite.required": "Veuillez ajouter une quantité",
	"etapesPreparation.required":    "Veuillez ajouter au moins une étape de préparation",
	"etapesPreparation.min":         "Veuillez ajouter au moins une étape de préparation",
	"etapesPreparation[].min":       "Chaque étape doit contenir au moins 5 caractères",
	"etapesPreparation[].max":       "Chaque étape ne peut pas dépasser 500 caractères",
	"tempsPreparation.required":     "Veuillez ajouter un temps de préparation",
	"tempsPreparation.entier":       "Le temps de préparation doit être un nombre entier",
	"tempsPreparation.min":          "Le temps de préparation doit être d'au moins 1 minute",
	"tempsPreparation.max":          "Le temps de préparation ne peut pas dépasser 1440 minutes",
	"tempsCuisson.entier":           "Le temps de cuisson doit être un nombre entier",
	"tempsCuisson.min":              "Le temps de cuisson ne peut pas être négatif",
	"tempsCuisson.max":              "Le temps de cuisson ne peut pas dépasser 1440 minutes",
	"portions.required":             "Veuillez ajouter le nombre de portions",
	"portions.entier":               "Le nombre de portions doit être un nombre entier",
	"portions.min":                  "Le nombre de portions doit être d'au moins 1",
	"portions.max":                  "Le nombre de portions ne peut pas dépasser 50",
	"difficulte.oneof":              "La difficulté doit être Facile, Moyen ou Difficile",
	"categories.required":           "Veuillez ajouter au moins une catégorie",
	"categories.min":                "Veuillez ajouter au moins une catégorie",
	"categories[].min":              "Chaque catégorie doit contenir au moins 2 caractères",
	"categories[].max":              "Chaque catégorie ne peut pas dépasser 50 caractères",
	"tags[].min":                    "Chaque tag doit contenir au moins 2 caractères",
	"tags[].max":                    "Chaque tag ne peut pas dépasser 30 caractères",
	"texte.required":                "Veuillez ajouter un commentaire",
	"texte.min":                     "Le commentaire doit contenir au moins 5 caractères",
	"texte.max":                     "Le commentaire ne peut pas dépasser 500 caractères",
	"valeur.required":               "Veuillez ajouter une note",
	"valeur.entier":                 "La note doit être un nombre entier",
	"valeur.min":                    "La note doit être comprise entre 1 et 5",
	"valeur.max":                    "La note doit être comprise entre 1 et 5",
	"fcm_token.required":            "Le token FCM est requis",
	"endpoint.required":             "L'endpoint est requis",
	"endpoint.url":                  "L'endpoint doit être une URL valide",
	"keys.p256dh.required":          "La clé p256dh est requise",
	"keys.auth.required":            "La clé auth est requise",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := messages[messageKey(fe)]; ok {
		return msg
	}
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %s est requis", field)
	case "min":
		return fmt.Sprintf("Le champ %s doit valoir au moins %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("Le champ %s ne peut pas dépasser %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Le champ %s doit valoir l'une des valeurs: %s", field, fe.Param())
	}
	return fmt.Sprintf("Le champ %s est invalide", field)
}
