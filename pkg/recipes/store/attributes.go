package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/recipebox/recipes/pkg/recipes/models"
	"gorm.io/gorm"
)

// Attribute is an owner-scoped, name-only entity a recipe can reference.
type Attribute interface {
	models.Tag | models.Ingredient
}

// AttributeKind describes one Attribute type to the generic store.
type AttributeKind[T Attribute] struct {
	MaxNameLength int
	New           func(owner uint, name string) T
}

var (
	TagKind = AttributeKind[models.Tag]{
		MaxNameLength: models.TagNameMaxLength,
		New: func(owner uint, name string) models.Tag {
			return models.Tag{UserID: owner, Name: name}
		},
	}
	IngredientKind = AttributeKind[models.Ingredient]{
		MaxNameLength: models.IngredientNameMaxLength,
		New: func(owner uint, name string) models.Ingredient {
			return models.Ingredient{UserID: owner, Name: name}
		},
	}
)

// AttributeStore provides scoped list/create/get for tags and ingredients
type AttributeStore[T Attribute] struct {
	db   *gorm.DB
	kind AttributeKind[T]
}

// NewAttributeStore creates an AttributeStore for kind backed by db
func NewAttributeStore[T Attribute](db *gorm.DB, kind AttributeKind[T]) *AttributeStore[T] {
	return &AttributeStore[T]{db: db, kind: kind}
}

// List returns the owner's entities ordered by name.
func (s *AttributeStore[T]) List(ctx context.Context, owner uint) ([]T, error) {
	items := []T{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("name").Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Create stores a new entity for owner.
func (s *AttributeStore[T]) Create(ctx context.Context, owner uint, name string) (T, error) {
	name = strings.TrimSpace(name)

	verr := &ValidationError{}
	switch {
	case name == "":
		verr.Add("name", msgBlank)
	case utf8.RuneCountInString(name) > s.kind.MaxNameLength:
		verr.Add("name", fmt.Sprintf(msgMaxLength, s.kind.MaxNameLength))
	}
	if err := verr.OrNil(); err != nil {
		var zero T
		return zero, err
	}

	item := s.kind.New(owner, name)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Get fetches one entity. Ids owned by someone else are reported as
// ErrNotFound, same as ids that do not exist.
func (s *AttributeStore[T]) Get(ctx context.Context, owner, id uint) (T, error) {
	var item T
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	return item, err
}

// resolve loads the owner's entities with the given ids inside tx. The
// first id that does not resolve is reported against field. The result is
// ordered by id.
func (s *AttributeStore[T]) resolve(tx *gorm.DB, owner uint, field string, ids []uint) ([]T, error) {
	ids = uniqueIDs(ids)
	items := []T{}
	if len(ids) == 0 {
		return items, nil
	}

	// Ids above the signed 64-bit range cannot be bound as query args and
	// never name a row.
	queryable := make([]uint, 0, len(ids))
	for _, id := range ids {
		if uint64(id) <= math.MaxInt64 {
			queryable = append(queryable, id)
		}
	}

	var found []uint
	if len(queryable) > 0 {
		if err := tx.Model(new(T)).Where("user_id = ? AND id IN ?", owner, queryable).Pluck("id", &found).Error; err != nil {
			return nil, err
		}
	}

	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range ids {
		if !present[id] {
			verr := &ValidationError{}
			verr.Add(field, fmt.Sprintf(msgInvalidPK, id))
			return nil, verr
		}
	}

	if err := tx.Where("user_id = ? AND id IN ?", owner, ids).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
