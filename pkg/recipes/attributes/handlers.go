// Package attributes serves the tag and ingredient endpoints. Both share
// one generic handler over store.AttributeStore.
package attributes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/apierror"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/recipebox/recipes/pkg/recipes/serialize"
	"github.com/recipebox/recipes/pkg/recipes/store"
)

// Handler handles list and create for one attribute type
type Handler[T store.Attribute] struct {
	store  *store.AttributeStore[T]
	render func(T) serialize.AttributeResponse
}

// NewHandler creates a handler over s, rendering items with render
func NewHandler[T store.Attribute](s *store.AttributeStore[T], render func(T) serialize.AttributeResponse) *Handler[T] {
	return &Handler[T]{store: s, render: render}
}

// NewTagHandler creates the /recipe/tags handler
func NewTagHandler(s *store.AttributeStore[models.Tag]) *Handler[models.Tag] {
	return NewHandler(s, serialize.Tag)
}

// NewIngredientHandler creates the /recipe/ingredients handler
func NewIngredientHandler(s *store.AttributeStore[models.Ingredient]) *Handler[models.Ingredient] {
	return NewHandler(s, serialize.Ingredient)
}

// CreateRequest represents the request body for a new tag or ingredient
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// List returns the caller's items ordered by name
// @Summary List tags or ingredients
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Success 200 {array} serialize.AttributeResponse
// @Failure 401 {object} apierror.ErrorResponse
// @Router /recipe/tags [get]
// @Router /recipe/ingredients [get]
func (h *Handler[T]) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	items, err := h.store.List(c.Request.Context(), userID)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	responses := make([]serialize.AttributeResponse, len(items))
	for i, item := range items {
		responses[i] = h.render(item)
	}

	c.JSON(http.StatusOK, responses)
}

// Create stores a new item owned by the caller
// @Summary Create a tag or ingredient
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body CreateRequest true "Name"
// @Success 201 {object} serialize.AttributeResponse
// @Failure 400 {object} apierror.FieldsResponse "Validation error"
// @Failure 401 {object} apierror.ErrorResponse
// @Router /recipe/tags [post]
// @Router /recipe/ingredients [post]
func (h *Handler[T]) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Bind(c, err)
		return
	}

	userID, _ := auth.GetUserID(c)
	item, err := h.store.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.render(item))
}

// RegisterRoutes registers list and create on the given router group
func (h *Handler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
}
