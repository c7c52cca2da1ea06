package serialize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/shopspring/decimal"
)

func sampleRecipe() models.Recipe {
	return models.Recipe{
		ID:          7,
		Title:       "Sample recipe",
		TimeMinutes: 40,
		Price:       decimal.RequireFromString("5.5"),
		Link:        "https://example.com/r",
		Tags:        []models.Tag{{ID: 1, Name: "vegan"}, {ID: 3, Name: "dessert"}},
		Ingredients: []models.Ingredient{{ID: 2, Name: "salt"}},
	}
}

func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	return out
}

func TestRecipeSummary(t *testing.T) {
	out := decode(t, Recipe(sampleRecipe(), Summary))

	if out["price"] != "5.50" {
		t.Errorf("Expected price '5.50', got %v", out["price"])
	}
	if out["title"] != "Sample recipe" || out["time_minutes"] != float64(40) {
		t.Errorf("Unexpected scalar fields: %v", out)
	}

	tags, ok := out["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != float64(1) || tags[1] != float64(3) {
		t.Errorf("Expected tag ids [1 3], got %v", out["tags"])
	}
	ingredients, ok := out["ingredients"].([]any)
	if !ok || len(ingredients) != 1 || ingredients[0] != float64(2) {
		t.Errorf("Expected ingredient ids [2], got %v", out["ingredients"])
	}
}

func TestRecipeDetail(t *testing.T) {
	out := decode(t, Recipe(sampleRecipe(), Detail))

	tags, ok := out["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("Expected 2 tags, got %v", out["tags"])
	}
	first, ok := tags[0].(map[string]any)
	if !ok || first["id"] != float64(1) || first["name"] != "vegan" {
		t.Errorf("Expected first tag {1 vegan}, got %v", tags[0])
	}

	ingredients := out["ingredients"].([]any)
	salt := ingredients[0].(map[string]any)
	if salt["name"] != "salt" {
		t.Errorf("Expected ingredient 'salt', got %v", salt["name"])
	}
}

func TestRecipeEmptyRelationsRenderAsArrays(t *testing.T) {
	r := models.Recipe{ID: 1, Title: "Plain", TimeMinutes: 5, Price: decimal.Zero}

	for _, mode := range []Mode{Summary, Detail} {
		data, err := json.Marshal(Recipe(r, mode))
		if err != nil {
			t.Fatalf("Failed to marshal: %v", err)
		}
		s := string(data)
		if !strings.Contains(s, `"tags":[]`) || !strings.Contains(s, `"ingredients":[]`) {
			t.Errorf("Expected empty arrays in mode %d, got %s", mode, s)
		}
		if !strings.Contains(s, `"price":"0.00"`) || !strings.Contains(s, `"link":""`) {
			t.Errorf("Expected zero price and empty link, got %s", s)
		}
	}
}

func TestUserOmitsCredentials(t *testing.T) {
	u := models.User{ID: 4, Email: "cook@example.com", Name: "Cook", PasswordHash: "secret-hash", IsStaff: true}

	out := decode(t, User(u))
	if len(out) != 2 || out["email"] != "cook@example.com" || out["name"] != "Cook" {
		t.Errorf("Expected only email and name, got %v", out)
	}

	data, _ := json.Marshal(AdminUser(u))
	if strings.Contains(string(data), "secret-hash") || strings.Contains(string(data), "password") {
		t.Errorf("Admin view leaked credentials: %s", data)
	}
	if !strings.Contains(string(data), `"is_staff":true`) {
		t.Errorf("Expected staff flag in admin view, got %s", data)
	}
}

func TestListsNeverNil(t *testing.T) {
	if Tags(nil) == nil || Ingredients(nil) == nil || Recipes(nil, Summary) == nil || AdminUsers(nil) == nil {
		t.Error("Expected non-nil empty slices")
	}
}
