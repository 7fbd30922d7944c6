// Package validation contains the logic for decoding and validating
// request data.
//
// It uses the `validator` library to enforce rules (like required fields)
// defined in struct tags and extracts validation errors into a format the
// client can understand.
package validation

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/corylsmithjr/medal-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// MsgInvalidJSON is returned when the request body is not the expected JSON.
const MsgInvalidJSON = "Invalid JSON in request body."

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

// newValidator reports fields by their JSON name so errors match the request body.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Validate may return an *errs.HTTPError to control the exact response, or
// any other error (typically validator.ValidationErrors) to get the generic
// "Validation failed" response with field details.
type Validatable interface {
	Validate() error
}

// Struct runs the struct-tag validator on v.
func Struct(v any) error {
	return validate.Struct(v)
}

// FieldError represents a field-level validation error.
//
//	{ "field": "imageUrl", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// MessageProvider is implemented by payloads that answer specific rule
// failures with their own message instead of the generic field list.
//
// field is the JSON name of the field, tag the failed validator tag.
type MessageProvider interface {
	ValidationMessage(field, tag string) (string, bool)
}

// BindAndValidate decodes the JSON request body into payload and validates it.
//
// Flow:
//  1. An empty body decodes as `{}`.
//  2. Malformed JSON, or JSON of the wrong shape, is a 400 MsgInvalidJSON
//     with the decoder message as details.
//  3. payload.Validate() applies validation rules. A failed rule the payload
//     has a MessageProvider message for is a 400 with that message only.
//
// The body is decoded regardless of Content-Type: serverless runtimes do not
// always forward the header.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := decodeJSONBody(c, payload); err != nil {
		return err
	}

	return Check(payload)
}

// Check runs payload.Validate() and converts a failure into the 400
// *errs.HTTPError BindAndValidate would return.
func Check(payload Validatable) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if msg, ok := providedMessage(payload, err); ok {
		return errs.NewBadRequestError(msg, nil).WithCause(err)
	}

	msg, fieldErrors := extractValidationError(err)
	if len(fieldErrors) == 0 {
		return errs.NewBadRequestError(msg, nil).WithCause(err)
	}
	return errs.NewBadRequestError(msg, fieldErrors).WithCause(err)
}

func decodeJSONBody(c echo.Context, payload any) error {
	if c.Request().Body == nil {
		return nil
	}

	err := c.Echo().JSONSerializer.Deserialize(c, payload)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var details any = err.Error()
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		details = fmt.Sprint(echoErr.Message)
	}

	return errs.NewBadRequestError(MsgInvalidJSON, details).WithCause(err)
}

func providedMessage(payload Validatable, err error) (string, bool) {
	provider, ok := payload.(MessageProvider)
	if !ok {
		return "", false
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", false
	}

	for _, fe := range validationErrors {
		if msg, ok := provider.ValidationMessage(fe.Field(), fe.Tag()); ok {
			return msg, true
		}
	}
	return "", false
}

func extractValidationError(err error) (string, []FieldError) {
	var fieldErrors []FieldError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed: " + err.Error(), nil
	}

	for _, err := range validationErrors {
		field := err.Field()
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "url", "http_url":
			msg = "must be a valid URL"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
