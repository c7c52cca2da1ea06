package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// RecipeTitleMaxLength bounds Recipe.Title.
	RecipeTitleMaxLength = 255
	// RecipeLinkMaxLength bounds Recipe.Link.
	RecipeLinkMaxLength = 255
	// PriceMaxDigits is the total number of digits a price may carry.
	PriceMaxDigits = 5
	// PriceDecimalPlaces is the number of fractional digits a price may carry.
	PriceDecimalPlaces = 2
)

// Recipe represents a recipe in a user's collection
type Recipe struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UserID      uint            `gorm:"not null;index" json:"-"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"price"`
	Link        string          `gorm:"size:255" json:"link"`

	// Relationships
	User        User         `gorm:"foreignKey:UserID" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

// TagIDs returns the ids of the recipe's tags in their loaded order.
func (r Recipe) TagIDs() []uint {
	ids := make([]uint, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID
	}
	return ids
}

// IngredientIDs returns the ids of the recipe's ingredients in their loaded order.
func (r Recipe) IngredientIDs() []uint {
	ids := make([]uint, len(r.Ingredients))
	for i, in := range r.Ingredients {
		ids[i] = in.ID
	}
	return ids
}
