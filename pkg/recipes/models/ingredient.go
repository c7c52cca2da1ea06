package models

// IngredientNameMaxLength bounds Ingredient.Name.
const IngredientNameMaxLength = 255

// Ingredient is an item a user can attach to their recipes
type Ingredient struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
