package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/apierror"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/recipebox/recipes/pkg/recipes/serialize"
	"github.com/recipebox/recipes/pkg/recipes/store"
)

// Handler handles admin requests
type Handler struct {
	store *store.Store
}

// NewHandler creates a new admin handler
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	serialize.AdminUserResponse
	RecipeCount int64 `json:"recipe_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func (h *Handler) userResponse(c *gin.Context, user models.User) (UserResponse, error) {
	count, err := h.store.Recipes.Count(c.Request.Context(), user.ID)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{AdminUserResponse: serialize.AdminUser(user), RecipeCount: count}, nil
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return uint(id), true
}

// ListUsers returns all users (staff only)
// @Summary List users
// @Description Optionally filter by a substring of email or name
// @Tags admin
// @Produce json
// @Security TokenAuth
// @Param q query string false "Search text"
// @Success 200 {array} UserResponse
// @Failure 403 {object} apierror.ErrorResponse
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.Users.ListUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		resp, err := h.userResponse(c, user)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		responses[i] = resp
	}

	c.JSON(http.StatusOK, responses)
}

// GetUser returns a single user by ID (staff only)
// @Summary Get a user
// @Tags admin
// @Produce json
// @Security TokenAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.store.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	resp, err := h.userResponse(c, *user)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUser updates a user's name or flags (staff only)
// @Summary Update a user
// @Description Staff cannot remove their own staff flag or deactivate themselves
// @Tags admin
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} apierror.ErrorResponse
// @Failure 404 {object} apierror.ErrorResponse
// @Router /admin/users/{id} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Bind(c, err)
		return
	}

	// Prevent staff from locking themselves out
	currentUserID, _ := auth.GetUserID(c)
	if id == currentUserID {
		if req.IsStaff != nil && !*req.IsStaff {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove your own staff access"})
			return
		}
		if req.IsActive != nil && !*req.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate yourself"})
			return
		}
	}

	user, err := h.store.Users.UpdateFlags(c.Request.Context(), id, store.UserFlags{
		Name:        req.Name,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	resp, err := h.userResponse(c, *user)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStats returns catalog-wide statistics (staff only)
// @Summary Catalog statistics
// @Tags admin
// @Produce json
// @Security TokenAuth
// @Success 200 {object} store.Stats
// @Failure 403 {object} apierror.ErrorResponse
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Users.Stats(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PATCH("/users/:id", h.UpdateUser)
}
