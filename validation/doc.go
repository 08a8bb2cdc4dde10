// Package validation turns input checks into INVALID_INPUT AppErrors.
//
// Request and config structs use go-playground struct tags:
//
//	type transcribeForm struct {
//	    Model    string `form:"model" validate:"whisper_model"`
//	    Language string `form:"language" validate:"whisper_language"`
//	}
//	err := validation.Validate(form)
//
// Anything else goes through the collecting Validator:
//
//	err := validation.New().RequiredUUID("id", id).Validate()
package validation
