// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/admin"
	"github.com/recipebox/recipes/pkg/recipes/apierror"
	"github.com/recipebox/recipes/pkg/recipes/attributes"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/logging"
	"github.com/recipebox/recipes/pkg/recipes/recipes"
	"github.com/recipebox/recipes/pkg/recipes/store"
	"github.com/recipebox/recipes/pkg/recipes/users"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(s *store.Store, logger *logging.Logger) *gin.Engine {
	apierror.RegisterJSONFieldNames()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(logging.Middleware(logger), gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		apierror.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "recipes",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	tokenAuth := auth.TokenAuthMiddleware(s.Users)

	// User routes (create and token are public)
	usersHandler := users.NewHandler(s.Users)
	userGroup := r.Group("/user")
	usersHandler.RegisterPublicRoutes(userGroup)
	usersHandler.RegisterRoutes(userGroup.Group("", tokenAuth))

	// Recipe routes (protected)
	recipeGroup := r.Group("/recipe", tokenAuth)
	{
		attributes.NewTagHandler(s.Tags).RegisterRoutes(recipeGroup.Group("/tags"))
		attributes.NewIngredientHandler(s.Ingredients).RegisterRoutes(recipeGroup.Group("/ingredients"))
		recipes.NewHandler(s.Recipes).RegisterRoutes(recipeGroup.Group("/recipes"))
	}

	// Admin routes (staff only)
	adminGroup := r.Group("/admin", tokenAuth, auth.RequireStaff())
	admin.NewHandler(s).RegisterRoutes(adminGroup)

	return r
}
