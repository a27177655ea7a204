package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"monpetitchef-backend/constants"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorKind classe les erreurs renvoyées au client
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationFailed"
	KindBadRequest         ErrorKind = "BadRequest"
	KindUnauthenticated    ErrorKind = "Unauthenticated"
	KindForbidden          ErrorKind = "Forbidden"
	KindNotFound           ErrorKind = "NotFound"
	KindConflict           ErrorKind = "Conflict"
	KindServiceUnavailable ErrorKind = "ServiceUnavailable"
	KindInternal           ErrorKind = "InternalError"
)

// AppError est l'erreur normalisée produite par les handlers
type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Detail  string
	Errors  []string
	Stack   string
	Err     error
}

// Error implémente l'interface error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap expose l'erreur d'origine
func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrValidation construit une erreur de validation avec tous les messages
func ErrValidation(messages []string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: constants.ErrValidation,
		Errors:  messages,
	}
}

// ErrBadRequest construit une erreur 400 simple
func ErrBadRequest(message string) *AppError {
	return &AppError{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: message}
}

// ErrInvalidID signale un identifiant mal formé
func ErrInvalidID() *AppError {
	return &AppError{
		Kind:    KindBadRequest,
		Status:  http.StatusBadRequest,
		Message: constants.ErrInvalidID,
		Detail:  constants.ErrInvalidIDFormat,
	}
}

// ErrUnauthenticated construit une erreur 401
func ErrUnauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Status: http.StatusUnauthorized, Message: message}
}

// ErrForbidden construit une erreur 403
func ErrForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Status: http.StatusForbidden, Message: message}
}

// ErrNotFound construit une erreur 404
func ErrNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// ErrConflict construit une erreur 409 nommant le champ en double
func ErrConflict(field string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Status:  http.StatusConflict,
		Message: constants.ErrDuplicate,
		Detail:  fmt.Sprintf("%s déjà existant", field),
	}
}

// ErrServiceUnavailable signale une base de données qui ne répond pas à temps
func ErrServiceUnavailable(err error) *AppError {
	return &AppError{
		Kind:    KindServiceUnavailable,
		Status:  http.StatusServiceUnavailable,
		Message: constants.ErrServiceUnavailable,
		Err:     err,
	}
}

// ErrInternal enveloppe une erreur inattendue
func ErrInternal(message string, err error) *AppError {
	if message == "" {
		message = constants.ErrServerError
	}
	return &AppError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

var dupKeyFieldRegex = regexp.MustCompile(`index: (?:[\w.]+\$)?([\w.]+?)_-?1`)
var dupKeyValueRegex = regexp.MustCompile(`dup key: \{ ?"?([\w.]+)"?:`)

// DuplicateKeyField extrait le nom du champ d'une erreur d'index unique MongoDB
func DuplicateKeyField(err error) string {
	msg := err.Error()
	if m := dupKeyValueRegex.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	if m := dupKeyFieldRegex.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return "champ"
}

// NormalizeError convertit n'importe quelle erreur en AppError
func NormalizeError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if mongo.IsDuplicateKeyError(err) {
		conflict := ErrConflict(DuplicateKeyField(err))
		conflict.Err = err
		return conflict
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return ErrServiceUnavailable(err)
	}

	return ErrInternal("", err)
}
