package recipes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/apierror"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/serialize"
	"github.com/recipebox/recipes/pkg/recipes/store"
)

// Handler handles recipe requests
type Handler struct {
	recipes *store.RecipeStore
}

// NewHandler creates a new recipes handler
func NewHandler(recipes *store.RecipeStore) *Handler {
	return &Handler{recipes: recipes}
}

// RecipeRequest represents a recipe write. Omitted fields are nil.
// Price accepts a JSON number or a decimal string.
type RecipeRequest struct {
	Title       *string         `json:"title" example:"Sample recipe"`
	TimeMinutes *int            `json:"time_minutes" example:"22"`
	Price       json.RawMessage `json:"price" swaggertype:"string" example:"5.25"`
	Link        *string         `json:"link" example:"https://example.com/recipe.pdf"`
	Tags        json.RawMessage `json:"tags" swaggertype:"array,integer"`
	Ingredients json.RawMessage `json:"ingredients" swaggertype:"array,integer"`
}

const msgIDList = "Incorrect type. Expected a list of ids."

// input converts the request into a store input. An explicit null in
// price, tags or ingredients is a field error.
func (r RecipeRequest) input() (store.RecipeInput, error) {
	in := store.RecipeInput{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Link:        r.Link,
	}
	verr := &store.ValidationError{}

	raw := bytes.TrimSpace(r.Price)
	switch {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		verr.Merge(store.NullField("price"))
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return in, err
		}
		in.Price = &s
	default:
		s := string(raw)
		in.Price = &s
	}

	in.Tags = decodeIDs(verr, "tags", r.Tags)
	in.Ingredients = decodeIDs(verr, "ingredients", r.Ingredients)

	return in, verr.OrNil()
}

// decodeIDs reads a relation id list. Absent yields nil, anything but an
// array of non-negative integers is recorded against field.
func decodeIDs(verr *store.ValidationError, field string, raw json.RawMessage) *[]uint {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0:
		return nil
	case bytes.Equal(raw, []byte("null")):
		verr.Merge(store.NullField(field))
		return nil
	}

	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		verr.Add(field, msgIDList)
		return nil
	}
	return &ids
}

// parseID reads the :id path parameter. Malformed ids are not found.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apierror.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

func bindInput(c *gin.Context) (store.RecipeInput, bool) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Bind(c, err)
		return store.RecipeInput{}, false
	}
	in, err := req.input()
	if err != nil {
		apierror.Respond(c, err)
		return store.RecipeInput{}, false
	}
	return in, true
}

// List returns the caller's recipes
// @Summary List recipes
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Success 200 {array} serialize.RecipeSummary
// @Failure 401 {object} apierror.ErrorResponse
// @Router /recipe/recipes [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	recipes, err := h.recipes.List(c.Request.Context(), userID)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serialize.Recipes(recipes, serialize.Summary))
}

// Create stores a new recipe owned by the caller
// @Summary Create a recipe
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body RecipeRequest true "Recipe"
// @Success 201 {object} serialize.RecipeSummary
// @Failure 400 {object} apierror.FieldsResponse "Validation error"
// @Failure 401 {object} apierror.ErrorResponse
// @Router /recipe/recipes [post]
func (h *Handler) Create(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	userID, _ := auth.GetUserID(c)
	recipe, err := h.recipes.Create(c.Request.Context(), userID, in)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, serialize.Recipe(*recipe, serialize.Summary))
}

// Get returns one recipe with its tags and ingredients expanded
// @Summary Get a recipe
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} serialize.RecipeDetail
// @Failure 401 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Router /recipe/recipes/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	userID, _ := auth.GetUserID(c)
	recipe, err := h.recipes.Get(c.Request.Context(), userID, id)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serialize.Recipe(*recipe, serialize.Detail))
}

// Replace applies a full update
// @Summary Replace a recipe
// @Description Omitted tags, ingredients and link are cleared
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Recipe"
// @Success 200 {object} serialize.RecipeSummary
// @Failure 400 {object} apierror.FieldsResponse "Validation error"
// @Failure 404 {object} apierror.ErrorResponse
// @Router /recipe/recipes/{id} [put]
func (h *Handler) Replace(c *gin.Context) {
	h.update(c, store.Full)
}

// Patch applies a partial update
// @Summary Update a recipe
// @Description Only the fields present are changed
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Recipe fields"
// @Success 200 {object} serialize.RecipeSummary
// @Failure 400 {object} apierror.FieldsResponse "Validation error"
// @Failure 404 {object} apierror.ErrorResponse
// @Router /recipe/recipes/{id} [patch]
func (h *Handler) Patch(c *gin.Context) {
	h.update(c, store.Partial)
}

func (h *Handler) update(c *gin.Context, mode store.Mode) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	userID, _ := auth.GetUserID(c)
	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, in, mode)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serialize.Recipe(*recipe, serialize.Summary))
}

// Delete removes a recipe
// @Summary Delete a recipe
// @Tags recipe
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} apierror.ErrorResponse
// @Router /recipe/recipes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	userID, _ := auth.GetUserID(c)
	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		apierror.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers recipe routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Replace)
	rg.PATCH("/:id", h.Patch)
	rg.DELETE("/:id", h.Delete)
}
