package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names rather than Go ones.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldError is one entry of a 400 validation response.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func formatValidationErrors(err error) []fieldError {
	var out []fieldError
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fe.Field() + " is required"
		case "min":
			msg = fe.Field() + " must be at least " + fe.Param()
		case "max":
			msg = fe.Field() + " must be at most " + fe.Param()
		case "oneof":
			msg = fe.Field() + " must be one of: " + fe.Param()
		case "alphanum":
			msg = fe.Field() + " must contain only letters and numbers"
		default:
			msg = fe.Field() + " is invalid"
		}
		out = append(out, fieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// decodeBody reads JSON into dst and validates it. An empty body is allowed
// when allowEmpty is set. On failure the 400 response has been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			writeError(w, http.StatusBadRequest, "bad_json")
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid_request",
			"fields": formatValidationErrors(err),
		})
		return false
	}
	return true
}
