package registration

import (
	"github.com/akeren/go-registration-form/pkg/constants"
)

type ChangeFieldRequest struct {
	Field string `json:"field" binding:"required,oneof=nom prenom email dateNaissance ville codePostal"`
	Value string `json:"value"`
}

// RegisterRequest carries a whole form for a one-shot submit. Every value
// goes through the form rules; the router bounds the payload size.
type RegisterRequest struct {
	LastName   string `json:"nom"`
	FirstName  string `json:"prenom"`
	Email      string `json:"email"`
	BirthDate  string `json:"dateNaissance"`
	City       string `json:"ville"`
	PostalCode string `json:"codePostal"`
}

type NotificationResponse struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type FormResponse struct {
	ID           string                `json:"id,omitempty"`
	Fields       Record                `json:"fields"`
	Errors       FieldErrors           `json:"errors"`
	Notification *NotificationResponse `json:"notification"`
	CanSubmit    bool                  `json:"can_submit"`
	ExpiresAt    string                `json:"expires_at,omitempty"`
}

// Rejected reports whether the last submit failed validation.
func (r *FormResponse) Rejected() bool {
	return r.Notification != nil && r.Notification.Severity == SeverityFailure
}

// ========================================
// Mappers
// ========================================

func (req *RegisterRequest) values() map[Field]string {
	return map[Field]string{
		FieldLastName:   req.LastName,
		FieldFirstName:  req.FirstName,
		FieldEmail:      req.Email,
		FieldBirthDate:  req.BirthDate,
		FieldCity:       req.City,
		FieldPostalCode: req.PostalCode,
	}
}

func ToFormResponse(state FormState) FormResponse {
	errs := state.Errors.clone()

	response := FormResponse{
		Fields:    state.Fields,
		Errors:    errs,
		CanSubmit: CanSubmit(state),
	}

	if state.Notification.Visible() {
		response.Notification = &NotificationResponse{
			Message:  state.Notification.Message,
			Severity: state.Notification.Severity,
		}
	}

	return response
}

func toSessionResponse(session *formSession) FormResponse {
	response := ToFormResponse(session.state)
	response.ID = session.id
	response.ExpiresAt = session.expiresAt.UTC().Format(constants.RFC3339DateTimeFormat)
	return response
}
