// Package apierror turns binding and store errors into HTTP responses.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/recipebox/recipes/pkg/recipes/store"
)

// MsgValidationFailed is the top-level error for any 400 with field errors.
const MsgValidationFailed = "Validation failed"

// FieldsResponse is the body of a field-level validation failure
type FieldsResponse struct {
	Error  string              `json:"error" example:"Validation failed"`
	Fields map[string][]string `json:"fields"`
}

// ErrorResponse is the body of every other failure
type ErrorResponse struct {
	Error string `json:"error" example:"Not found"`
}

var registerOnce sync.Once

// RegisterJSONFieldNames makes gin's validator report fields by their json
// names. It is safe to call more than once.
func RegisterJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// BindingFields converts an error from ShouldBindJSON into field messages.
// It returns nil for errors that are not about the request body.
func BindingFields(err error) *store.ValidationError {
	verr := &store.ValidationError{}

	var ve validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &ve):
		for _, fe := range ve {
			verr.Add(fe.Field(), tagMessage(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		verr.Add(field, fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type.String()))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		verr.Add("non_field_errors", "JSON parse error.")
	case errors.Is(err, io.EOF):
		verr.Add("non_field_errors", "No data provided.")
	default:
		return nil
	}
	return verr
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// Fields writes a 400 with field messages.
func Fields(c *gin.Context, verr *store.ValidationError) {
	c.JSON(http.StatusBadRequest, FieldsResponse{Error: MsgValidationFailed, Fields: verr.Fields})
}

// Bind writes the response for a failed ShouldBindJSON.
func Bind(c *gin.Context, err error) {
	if verr := BindingFields(err); verr != nil {
		Fields(c, verr)
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
}

// Respond writes the response for an error returned by the store.
// Unknown errors are attached to the context for logging.
func Respond(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		Fields(c, verr)
	case errors.Is(err, store.ErrNotFound):
		NotFound(c)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// NotFound writes a 404.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
}
