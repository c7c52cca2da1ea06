package users

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/apierror"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/serialize"
	"github.com/recipebox/recipes/pkg/recipes/store"
)

// MsgBadCredentials is returned when a token is requested with a wrong
// email or password, or for an inactive account.
const MsgBadCredentials = "Unable to authenticate with provided credentials"

// Handler handles account and token requests
type Handler struct {
	users *store.UserStore
}

// NewHandler creates a new users handler
func NewHandler(users *store.UserStore) *Handler {
	return &Handler{users: users}
}

// CreateUserRequest represents the signup request body
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=5,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
}

// TokenRequest represents the token request body
type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the caller's API token
type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateMeRequest represents a profile update; omitted fields are kept
type UpdateMeRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Password *string `json:"password" binding:"omitempty,min=5,max=72"`
}

// Create handles signup
// @Summary Create a user
// @Description Register a new account with email, password and name
// @Tags user
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "Account details"
// @Success 201 {object} serialize.UserResponse
// @Failure 400 {object} apierror.FieldsResponse "Validation error"
// @Router /user/create [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Bind(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		blankName(c)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Email, req.Password, name)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, serialize.User(*user))
}

// Token exchanges credentials for the caller's API token
// @Summary Obtain a token
// @Description Return the account's API token, creating it on first use
// @Tags user
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} apierror.ErrorResponse "Bad credentials"
// @Router /user/token [post]
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Bind(c, err)
		return
	}

	user, err := h.users.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgBadCredentials})
		return
	}

	token, err := h.users.IssueOrFetchToken(c.Request.Context(), user)
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Me returns the caller's profile
// @Summary Get current user
// @Tags user
// @Produce json
// @Security TokenAuth
// @Success 200 {object} serialize.UserResponse
// @Failure 401 {object} apierror.ErrorResponse
// @Router /user/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, _ := auth.GetUser(c)
	c.JSON(http.StatusOK, serialize.User(*user))
}

// UpdateMe applies a partial profile update
// @Summary Update current user
// @Description Change name and/or password; omitted fields are kept
// @Tags user
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body UpdateMeRequest true "Profile fields"
// @Success 200 {object} serialize.UserResponse
// @Failure 400 {object} apierror.FieldsResponse "Validation error"
// @Failure 401 {object} apierror.ErrorResponse
// @Router /user/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Bind(c, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			blankName(c)
			return
		}
		req.Name = &name
	}

	current, _ := auth.GetUser(c)
	user, err := h.users.UpdateProfile(c.Request.Context(), current, store.ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, serialize.User(*user))
}

func blankName(c *gin.Context) {
	verr := &store.ValidationError{}
	verr.Add("name", "This field may not be blank.")
	apierror.Fields(c, verr)
}

// RegisterPublicRoutes registers the unauthenticated user routes
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/create", h.Create)
	rg.POST("/token", h.Token)
}

// RegisterRoutes registers the authenticated user routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.PATCH("/me", h.UpdateMe)
}
