// Package store owns every read and write of users, tokens, tags,
// ingredients and recipes. All resource access is scoped to an owner id
// supplied by the caller, never by client input.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/recipebox/recipes/pkg/recipes/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// ValidationError carries field-level messages. Err, when set, is the
// sentinel the failure corresponds to.
type ValidationError struct {
	Fields map[string][]string
	Err    error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies other's messages into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// OrNil returns nil when no messages were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string, err error) *ValidationError {
	v := &ValidationError{Err: err}
	v.Add(field, msg)
	return v
}

// NullField reports that field was sent as an explicit null.
func NullField(field string) *ValidationError {
	return fieldError(field, msgNull, nil)
}

// Field messages returned to API clients.
const (
	msgRequired     = "This field is required."
	msgBlank        = "This field may not be blank."
	msgNull         = "This field may not be null."
	msgMaxLength    = "Ensure this field has no more than %d characters."
	msgMinValue     = "Ensure this value is greater than or equal to %d."
	msgMaxDigits    = "Ensure that there are no more than %d digits in total."
	msgMaxDecimals  = "Ensure that there are no more than %d decimal places."
	msgMaxWhole     = "Ensure that there are no more than %d digits before the decimal point."
	msgInvalidPK    = "Invalid pk \"%d\" - object does not exist."
	msgInvalidPrice = "A valid number is required."

	msgInvalidEmail   = "Enter a valid email address."
	msgDuplicateEmail = "user with this email already exists."
)

// Store groups the per-entity stores over one database handle.
type Store struct {
	Users       *UserStore
	Tags        *AttributeStore[models.Tag]
	Ingredients *AttributeStore[models.Ingredient]
	Recipes     *RecipeStore
}

// New creates a Store backed by db
func New(db *gorm.DB) *Store {
	tags := NewAttributeStore(db, TagKind)
	ingredients := NewAttributeStore(db, IngredientKind)
	return &Store{
		Users:       NewUserStore(db),
		Tags:        tags,
		Ingredients: ingredients,
		Recipes:     NewRecipeStore(db, tags, ingredients),
	}
}
