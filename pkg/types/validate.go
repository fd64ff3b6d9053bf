package types

import "github.com/go-playground/validator/v10"

var inputValidator *validator.Validate

// V returns the shared validator instance used for input payloads.
func V() *validator.Validate {
	if inputValidator == nil {
		inputValidator = validator.New(validator.WithRequiredStructEnabled())
	}
	return inputValidator
}
