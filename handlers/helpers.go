package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectIDVar extrait et valide un ObjectID depuis les vars de l'URL
func ParseObjectIDVar(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[key])
	if err != nil {
		return primitive.NilObjectID, utils.ErrInvalidID()
	}
	return id, nil
}

// decodeJSON décode le body JSON de la requête
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.ErrBadRequest(constants.ErrInvalidJSONBody)
	}
	return nil
}

// decodeAndValidate décode le body JSON puis applique les règles de validation
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return utils.ValidateStruct(dst)
}

// isMultipart indique si la requête porte un formulaire multipart
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get(constants.HeaderContentType), "multipart/form-data")
}

// currentUser retourne l'utilisateur attaché par le middleware Auth
func currentUser(r *http.Request) (*models.User, error) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		return nil, utils.ErrUnauthenticated(constants.ErrNotAuthenticated)
	}
	return user, nil
}

// emptyData est renvoyé après une suppression
var emptyData = struct{}{}
