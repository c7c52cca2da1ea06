// Package serialize renders models into the JSON shapes the API returns.
package serialize

import (
	"time"

	"github.com/recipebox/recipes/pkg/recipes/models"
)

// Mode picks how a recipe's relations are rendered.
type Mode int

const (
	// Summary renders tags and ingredients as id lists
	Summary Mode = iota
	// Detail renders tags and ingredients as nested objects
	Detail
)

// AttributeResponse is the wire form of a tag or ingredient
type AttributeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Tag renders a tag.
func Tag(t models.Tag) AttributeResponse {
	return AttributeResponse{ID: t.ID, Name: t.Name}
}

// Ingredient renders an ingredient.
func Ingredient(i models.Ingredient) AttributeResponse {
	return AttributeResponse{ID: i.ID, Name: i.Name}
}

// Tags renders a list of tags, never nil.
func Tags(tags []models.Tag) []AttributeResponse {
	out := make([]AttributeResponse, len(tags))
	for i, t := range tags {
		out[i] = Tag(t)
	}
	return out
}

// Ingredients renders a list of ingredients, never nil.
func Ingredients(ingredients []models.Ingredient) []AttributeResponse {
	out := make([]AttributeResponse, len(ingredients))
	for i, in := range ingredients {
		out[i] = Ingredient(in)
	}
	return out
}

type recipeFields struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
}

// RecipeSummary is the list and write-response form of a recipe
type RecipeSummary struct {
	recipeFields
	Tags        []uint `json:"tags"`
	Ingredients []uint `json:"ingredients"`
}

// RecipeDetail is the single-recipe form with nested relations
type RecipeDetail struct {
	recipeFields
	Tags        []AttributeResponse `json:"tags"`
	Ingredients []AttributeResponse `json:"ingredients"`
}

func fields(r models.Recipe) recipeFields {
	return recipeFields{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(models.PriceDecimalPlaces),
		Link:        r.Link,
	}
}

// Recipe renders r in the given mode.
func Recipe(r models.Recipe, mode Mode) any {
	if mode == Detail {
		return RecipeDetail{
			recipeFields: fields(r),
			Tags:         Tags(r.Tags),
			Ingredients:  Ingredients(r.Ingredients),
		}
	}
	return RecipeSummary{
		recipeFields: fields(r),
		Tags:         r.TagIDs(),
		Ingredients:  r.IngredientIDs(),
	}
}

// Recipes renders a list of recipes in the given mode.
func Recipes(recipes []models.Recipe, mode Mode) []any {
	out := make([]any, len(recipes))
	for i, r := range recipes {
		out[i] = Recipe(r, mode)
	}
	return out
}

// UserResponse is the public profile. It never carries credentials.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// User renders the caller's own profile.
func User(u models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

// AdminUserResponse is the staff view of an account
type AdminUserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AdminUser renders u for staff.
func AdminUser(u models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}

// AdminUsers renders a list of accounts for staff.
func AdminUsers(users []models.User) []AdminUserResponse {
	out := make([]AdminUserResponse, len(users))
	for i, u := range users {
		out[i] = AdminUser(u)
	}
	return out
}
