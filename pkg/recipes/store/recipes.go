package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mode selects replace or merge semantics for Update.
type Mode int

const (
	// Partial leaves omitted fields untouched
	Partial Mode = iota
	// Full treats omitted relation fields as empty and requires every
	// required scalar field
	Full
)

// RecipeInput is the writable part of a recipe. A nil field was omitted
// by the client. Price is the decimal text as sent.
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *string
	Link        *string
	Tags        *[]uint
	Ingredients *[]uint
}

// RecipeStore provides scoped CRUD for recipes and their relations
type RecipeStore struct {
	db          *gorm.DB
	tags        *AttributeStore[models.Tag]
	ingredients *AttributeStore[models.Ingredient]
}

// NewRecipeStore creates a RecipeStore. Relation ids are resolved through
// tags and ingredients.
func NewRecipeStore(db *gorm.DB, tags *AttributeStore[models.Tag], ingredients *AttributeStore[models.Ingredient]) *RecipeStore {
	return &RecipeStore{db: db, tags: tags, ingredients: ingredients}
}

func preloadRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") })
}

// List returns the owner's recipes ordered by id with relations loaded.
func (s *RecipeStore) List(ctx context.Context, owner uint) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := preloadRelations(s.db.WithContext(ctx)).
		Where("user_id = ?", owner).
		Order("id").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Get fetches one of the owner's recipes with relations loaded.
func (s *RecipeStore) Get(ctx context.Context, owner, id uint) (*models.Recipe, error) {
	return s.find(s.db.WithContext(ctx), owner, id)
}

func (s *RecipeStore) find(db *gorm.DB, owner, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := preloadRelations(db).Where("id = ? AND user_id = ?", id, owner).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create stores a recipe for owner along with its relations.
func (s *RecipeStore) Create(ctx context.Context, owner uint, in RecipeInput) (*models.Recipe, error) {
	price, err := validateRecipe(in, Full)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{UserID: owner}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, ingredients, err := s.resolveRelations(tx, owner, in)
		if err != nil {
			return err
		}

		applyScalars(&recipe, in, price, Full)
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}

		return s.replaceRelations(tx, &recipe, in, Full, tags, ingredients)
	})
	if err != nil {
		return nil, err
	}

	return &recipe, nil
}

// Update modifies one of the owner's recipes. In Full mode omitted tags
// and ingredients are cleared; in Partial mode they are kept.
func (s *RecipeStore) Update(ctx context.Context, owner, id uint, in RecipeInput, mode Mode) (*models.Recipe, error) {
	var recipe *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		recipe, err = s.find(tx, owner, id)
		if err != nil {
			return err
		}

		price, err := validateRecipe(in, mode)
		if err != nil {
			return err
		}

		tags, ingredients, err := s.resolveRelations(tx, owner, in)
		if err != nil {
			return err
		}

		applyScalars(recipe, in, price, mode)
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}

		return s.replaceRelations(tx, recipe, in, mode, tags, ingredients)
	})
	if err != nil {
		return nil, err
	}

	return recipe, nil
}

// Delete removes one of the owner's recipes and its relation rows.
func (s *RecipeStore) Delete(ctx context.Context, owner, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		err := tx.Where("id = ? AND user_id = ?", id, owner).First(&recipe).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Ingredients").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// resolveRelations resolves every supplied relation id before anything is
// written. Errors from both fields are reported together.
func (s *RecipeStore) resolveRelations(tx *gorm.DB, owner uint, in RecipeInput) ([]models.Tag, []models.Ingredient, error) {
	verr := &ValidationError{}

	var tags []models.Tag
	if in.Tags != nil {
		var err error
		tags, err = s.tags.resolve(tx, owner, "tags", *in.Tags)
		if !collect(verr, err) {
			return nil, nil, err
		}
	}

	var ingredients []models.Ingredient
	if in.Ingredients != nil {
		var err error
		ingredients, err = s.ingredients.resolve(tx, owner, "ingredients", *in.Ingredients)
		if !collect(verr, err) {
			return nil, nil, err
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}
	return tags, ingredients, nil
}

// collect folds validation errors into verr. It reports false for any
// other error, which the caller must return as is.
func collect(verr *ValidationError, err error) bool {
	if err == nil {
		return true
	}
	var v *ValidationError
	if errors.As(err, &v) {
		verr.Merge(v)
		return true
	}
	return false
}

func (s *RecipeStore) replaceRelations(tx *gorm.DB, recipe *models.Recipe, in RecipeInput, mode Mode, tags []models.Tag, ingredients []models.Ingredient) error {
	if in.Tags != nil || mode == Full {
		if tags == nil {
			tags = []models.Tag{}
		}
		if err := replaceAssociation(tx, recipe, "Tags", tags, len(tags)); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		recipe.Tags = tags
	}

	if in.Ingredients != nil || mode == Full {
		if ingredients == nil {
			ingredients = []models.Ingredient{}
		}
		if err := replaceAssociation(tx, recipe, "Ingredients", ingredients, len(ingredients)); err != nil {
			return fmt.Errorf("replace ingredients: %w", err)
		}
		recipe.Ingredients = ingredients
	}

	return nil
}

func replaceAssociation(tx *gorm.DB, recipe *models.Recipe, name string, values interface{}, n int) error {
	assoc := tx.Model(recipe).Association(name)
	if assoc.Error != nil {
		return assoc.Error
	}
	if n == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

func applyScalars(recipe *models.Recipe, in RecipeInput, price decimal.Decimal, mode Mode) {
	if in.Title != nil {
		recipe.Title = strings.TrimSpace(*in.Title)
	}
	if in.TimeMinutes != nil {
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		recipe.Price = price
	}
	if in.Link != nil {
		recipe.Link = strings.TrimSpace(*in.Link)
	} else if mode == Full {
		recipe.Link = ""
	}
}

// validateRecipe checks in against mode and returns the parsed price.
func validateRecipe(in RecipeInput, mode Mode) (decimal.Decimal, error) {
	verr := &ValidationError{}

	if mode == Full {
		if in.Title == nil {
			verr.Add("title", msgRequired)
		}
		if in.TimeMinutes == nil {
			verr.Add("time_minutes", msgRequired)
		}
		if in.Price == nil {
			verr.Add("price", msgRequired)
		}
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			verr.Add("title", msgBlank)
		case utf8.RuneCountInString(title) > models.RecipeTitleMaxLength:
			verr.Add("title", fmt.Sprintf(msgMaxLength, models.RecipeTitleMaxLength))
		}
	}

	if in.TimeMinutes != nil && *in.TimeMinutes < 1 {
		verr.Add("time_minutes", fmt.Sprintf(msgMinValue, 1))
	}

	var price decimal.Decimal
	if in.Price != nil {
		var msg string
		price, msg = parsePrice(*in.Price)
		if msg != "" {
			verr.Add("price", msg)
		}
	}

	if in.Link != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Link)) > models.RecipeLinkMaxLength {
		verr.Add("link", fmt.Sprintf(msgMaxLength, models.RecipeLinkMaxLength))
	}

	return price, verr.OrNil()
}

// parsePrice parses a non-negative decimal within the column precision.
// The returned message is empty when the value is acceptable.
func parsePrice(raw string) (decimal.Decimal, string) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, msgInvalidPrice
	}
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Sprintf(msgMinValue, 0)
	}

	digits := len(price.Coefficient().String())
	places := 0
	if exp := price.Exponent(); exp < 0 {
		places = int(-exp)
	} else {
		digits += int(exp)
	}
	whole := digits - places
	if whole < 0 {
		whole = 0
	}
	total := whole + places

	maxWhole := models.PriceMaxDigits - models.PriceDecimalPlaces
	switch {
	case total > models.PriceMaxDigits:
		return decimal.Decimal{}, fmt.Sprintf(msgMaxDigits, models.PriceMaxDigits)
	case places > models.PriceDecimalPlaces:
		return decimal.Decimal{}, fmt.Sprintf(msgMaxDecimals, models.PriceDecimalPlaces)
	case whole > maxWhole:
		return decimal.Decimal{}, fmt.Sprintf(msgMaxWhole, maxWhole)
	}

	return price, ""
}

// Count returns how many recipes owner has.
func (s *RecipeStore) Count(ctx context.Context, owner uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", owner).Count(&n).Error
	return n, err
}
