package services

import "github.com/go-playground/validator/v10"

// tags checks single values with the same rules gin applies to request
// bodies. validator.Validate is safe for concurrent use.
var tags = validator.New()

// CheckTag records message for field when value fails the validator tag,
// e.g. "email" or "omitempty,url,max=255".
func (v *Validator) CheckTag(value any, tag, field, message string) {
	v.Check(tags.Var(value, tag) == nil, field, message)
}
