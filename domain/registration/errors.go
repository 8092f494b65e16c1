package registration

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrUnderage          = errors.New("underage")
	ErrMissingCity       = errors.New("missing city")
	ErrInvalidPostalCode = errors.New("invalid postal code")

	ErrUnknownField = errors.New("unknown form field")
)

const (
	MsgInvalidLastName   = "Nom invalide"
	MsgInvalidFirstName  = "Prénom invalide"
	MsgInvalidEmail      = "Email invalide"
	MsgMissingCity       = "La ville est requise"
	MsgInvalidPostalCode = "Code postal invalide"

	MsgRegistrationSaved = "Enregistrement réussi"
	MsgFormHasErrors     = "Erreur dans le formulaire"
)

func underageMessage(minAge int) string {
	return fmt.Sprintf("Vous devez avoir au moins %d ans", minAge)
}

// RuleError is a failed form rule: Kind classifies it, Message is shown next to the field.
type RuleError struct {
	Kind    error
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}
