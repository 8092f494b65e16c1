// Package registration implements the registration form: its state, the
// transitions driven by field edits and submits, and the HTTP surface over it.
package registration

import (
	"context"
	"fmt"
	"sort"

	"github.com/akeren/go-registration-form/pkg/validation"
)

type Field string

const (
	FieldLastName   Field = "nom"
	FieldFirstName  Field = "prenom"
	FieldEmail      Field = "email"
	FieldBirthDate  Field = "dateNaissance"
	FieldCity       Field = "ville"
	FieldPostalCode Field = "codePostal"
)

// Fields lists the form fields in display order.
var Fields = []Field{
	FieldLastName,
	FieldFirstName,
	FieldEmail,
	FieldBirthDate,
	FieldCity,
	FieldPostalCode,
}

func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Record is the persisted registration. JSON keys are part of the storage format.
type Record struct {
	LastName   string `json:"nom"`
	FirstName  string `json:"prenom"`
	Email      string `json:"email"`
	BirthDate  string `json:"dateNaissance"`
	City       string `json:"ville"`
	PostalCode string `json:"codePostal"`
}

func (r Record) Value(field Field) string {
	switch field {
	case FieldLastName:
		return r.LastName
	case FieldFirstName:
		return r.FirstName
	case FieldEmail:
		return r.Email
	case FieldBirthDate:
		return r.BirthDate
	case FieldCity:
		return r.City
	case FieldPostalCode:
		return r.PostalCode
	}
	return ""
}

// With returns a copy of r with field set to value.
func (r Record) With(field Field, value string) (Record, error) {
	switch field {
	case FieldLastName:
		r.LastName = value
	case FieldFirstName:
		r.FirstName = value
	case FieldEmail:
		r.Email = value
	case FieldBirthDate:
		r.BirthDate = value
	case FieldCity:
		r.City = value
	case FieldPostalCode:
		r.PostalCode = value
	default:
		return r, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return r, nil
}

// FieldErrors maps a field to its message. A missing key means the field is
// valid or has not been validated yet.
type FieldErrors map[Field]string

func (e FieldErrors) clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FieldNames returns the fields carrying an error, sorted.
func (e FieldErrors) FieldNames() []string {
	names := make([]string, 0, len(e))
	for f := range e {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityFailure Severity = "failure"
)

// Notification is the summary shown after a submit. The zero value shows nothing.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (n Notification) Visible() bool {
	return n.Message != ""
}

var (
	successNotification = Notification{Message: MsgRegistrationSaved, Severity: SeveritySuccess}
	failureNotification = Notification{Message: MsgFormHasErrors, Severity: SeverityFailure}
)

// FormState is an immutable snapshot of the form. Transitions return a new value.
type FormState struct {
	Fields       Record
	Errors       FieldErrors
	Notification Notification
}

func NewFormState() FormState {
	return FormState{Errors: FieldErrors{}}
}

// OnFieldChange stores value and drops the field's error, even when the new
// value is still invalid. The error comes back on the next submit.
func OnFieldChange(state FormState, field Field, value string) (FormState, error) {
	fields, err := state.Fields.With(field, value)
	if err != nil {
		return state, err
	}

	next := FormState{
		Fields:       fields,
		Errors:       state.Errors.clone(),
		Notification: state.Notification,
	}
	delete(next.Errors, field)

	return next, nil
}

// CanSubmit reports whether every field is filled in. It says nothing about validity.
func CanSubmit(state FormState) bool {
	for _, f := range Fields {
		if validation.IsBlank(state.Fields.Value(f)) {
			return false
		}
	}
	return true
}

// Form runs the submit transition: validation against the rules and the
// write of an accepted record.
type Form struct {
	validator *validation.Validator
	rules     []Rule
	records   RecordRepository
}

func NewForm(validator *validation.Validator, rules []Rule, records RecordRepository) *Form {
	return &Form{validator: validator, rules: rules, records: records}
}

// Validate evaluates every rule. A field keeps the message of its first failing rule.
func (f *Form) Validate(record Record) FieldErrors {
	errs := FieldErrors{}

	for _, rule := range f.rules {
		if _, failed := errs[rule.Field]; failed {
			continue
		}
		if err := f.validator.Var(record.Value(rule.Field), rule.Tag); err != nil {
			errs[rule.Field] = rule.Err.Message
		}
	}

	return errs
}

// OnSubmit validates the whole form. A rejected form keeps its values and
// gets fresh errors. An accepted one is written and reset. The only error
// returned is a failed write, in which case state comes back unchanged.
func (f *Form) OnSubmit(ctx context.Context, state FormState) (FormState, error) {
	errs := f.Validate(state.Fields)

	if len(errs) > 0 {
		return FormState{
			Fields:       state.Fields,
			Errors:       errs,
			Notification: failureNotification,
		}, nil
	}

	if err := f.records.Save(ctx, state.Fields); err != nil {
		return state, err
	}

	return FormState{
		Errors:       FieldErrors{},
		Notification: successNotification,
	}, nil
}
