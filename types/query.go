package types

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// IndexParams is the payload for indexing a document from raw text.
type IndexParams struct {
	Name      string `json:"name" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Method    string `json:"method" validate:"omitempty,oneof=sentences chunks"`
	ChunkSize int    `json:"chunk_size" validate:"omitempty,gt=0"`
	Overlap   int    `json:"overlap" validate:"omitempty,gte=0"`
}

// AskParams is the payload for a question against the active document.
type AskParams struct {
	Question  string `json:"question" validate:"required"`
	TopK      int    `json:"top_k" validate:"omitempty,gt=0"`
	SessionID string `json:"session_id" validate:"omitempty,uuid4"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *IndexParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *AskParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: http.StatusUnprocessableEntity,
		Errors: errors,
	}
}
