package models

import (
	"errors"
	"fmt"
)

// Codes d'erreur stables exposés aux clients de l'API
const (
	CodeValidation          = "validation_error"
	CodeInvalidTransition   = "invalid_transition"
	CodeIllegalCancellation = "illegal_cancellation"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeRateLimited         = "rate_limited"
	CodeCSRFFailed          = "csrf_failed"
	CodeBadInput            = "bad_input"
	CodeDuplicateEntry      = "duplicate_entry"
	CodeInternalError       = "internal_error"
)

var (
	// ErrEmptyOrder : une commande sans article est refusée dès la création
	ErrEmptyOrder = &ValidationError{Field: "items", Message: "une commande doit contenir au moins un article"}

	// ErrUnknownStatus : statut demandé hors de l'énumération
	ErrUnknownStatus = errors.New("statut de commande inconnu")
)

// ValidationError : entrée malformée ou champ requis manquant (HTTP 400)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("champ %s invalide: %s", e.Field, e.Message)
}

// InvalidTransitionError : transition de statut illégale, nomme les deux statuts
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition illégale: %s → %s", e.From, e.To)
}

// IllegalCancellationError : annulation demandée depuis un statut non annulable
type IllegalCancellationError struct {
	Status OrderStatus
}

func (e *IllegalCancellationError) Error() string {
	return fmt.Sprintf("annulation impossible depuis le statut %s", e.Status)
}
