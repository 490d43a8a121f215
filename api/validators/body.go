package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

var (
	phonePattern    = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("phone", matchString(phonePattern))
	_ = v.RegisterValidation("username", matchString(usernamePattern))
	return v
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// FieldError is one rejected field in a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DecodeJSONBody decodes a single JSON object into dest and runs its validate tags.
// Unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	return decodeJSONBody(r, dest, true)
}

// DecodeJSONBodyLenient is DecodeJSONBody for payloads whose extra client fields
// (a cart line's price, say) are dropped rather than rejected.
func DecodeJSONBodyLenient(r *http.Request, dest any) error {
	return decodeJSONBody(r, dest, false)
}

func decodeJSONBody(r *http.Request, dest any, strict bool) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.Validation("Request body is required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return Struct(dest)
}

// Struct runs the validate tags on an already populated value.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Validation failed")
	}
	details := make([]FieldError, 0, len(errs))
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		msg := validationMessage(fieldErr)
		details = append(details, FieldError{Field: fieldErr.Field(), Message: msg})
		messages = append(messages, msg)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "Validation failed: "+strings.Join(messages, ", ")).WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "email":
		return "Please provide a valid email"
	case "url":
		return field + " must be a valid URL"
	case "uuid", "uuid4":
		return field + " must be a valid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "phone":
		return "Please provide a valid phone number"
	case "username":
		return "Username can only contain letters, numbers, underscores, and hyphens"
	case "dive":
		return field + " contains an invalid entry"
	}
	return field + " is invalid"
}
