package registration

import (
	"fmt"

	"github.com/akeren/go-registration-form/pkg/validation"
)

// Rule binds a field to a validator tag and the error reported when it fails.
type Rule struct {
	Field Field
	Tag   string
	Err   *RuleError
}

// DefaultRules returns the registration rules in evaluation order.
func DefaultRules(minAge int) []Rule {
	return []Rule{
		{
			Field: FieldLastName,
			Tag:   validation.TagPersonName,
			Err:   &RuleError{Kind: ErrInvalidName, Message: MsgInvalidLastName},
		},
		{
			Field: FieldFirstName,
			Tag:   validation.TagPersonName,
			Err:   &RuleError{Kind: ErrInvalidName, Message: MsgInvalidFirstName},
		},
		{
			Field: FieldEmail,
			Tag:   validation.TagSimpleEmail,
			Err:   &RuleError{Kind: ErrInvalidEmail, Message: MsgInvalidEmail},
		},
		{
			Field: FieldBirthDate,
			Tag:   fmt.Sprintf("%s=%d", validation.TagMinAge, minAge),
			Err:   &RuleError{Kind: ErrUnderage, Message: underageMessage(minAge)},
		},
		{
			Field: FieldCity,
			Tag:   validation.TagNotBlank,
			Err:   &RuleError{Kind: ErrMissingCity, Message: MsgMissingCity},
		},
		{
			Field: FieldPostalCode,
			Tag:   validation.TagPostalCode,
			Err:   &RuleError{Kind: ErrInvalidPostalCode, Message: MsgInvalidPostalCode},
		},
	}
}
