// Package swagger registers the OpenAPI document served at /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/user/create": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Create a user",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/users.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/serialize.UserResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}}
                }
            }
        },
        "/user/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Obtain a token",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/users.TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/users.TokenResponse"}},
                    "400": {"description": "Bad credentials", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            }
        },
        "/user/me": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/serialize.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Update current user",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/users.UpdateMeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/serialize.UserResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}}
                }
            }
        },
        "/recipe/tags": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "List tags",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/serialize.AttributeResponse"}}}
                }
            },
            "post": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "Create a tag",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/attributes.CreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/serialize.AttributeResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}}
                }
            }
        },
        "/recipe/ingredients": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "List ingredients",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/serialize.AttributeResponse"}}}
                }
            },
            "post": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "Create an ingredient",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/attributes.CreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/serialize.AttributeResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}}
                }
            }
        },
        "/recipe/recipes": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "List recipes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/serialize.RecipeSummary"}}}
                }
            },
            "post": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "Create a recipe",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/recipes.RecipeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/serialize.RecipeSummary"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}}
                }
            }
        },
        "/recipe/recipes/{id}": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "Get a recipe",
                "parameters": [
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/serialize.RecipeDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "Replace a recipe",
                "parameters": [
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/recipes.RecipeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/serialize.RecipeSummary"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recipe"],
                "summary": "Update a recipe",
                "parameters": [
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/recipes.RecipeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/serialize.RecipeSummary"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/apierror.FieldsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"TokenAuth": []}],
                "tags": ["recipe"],
                "summary": "Delete a recipe",
                "parameters": [
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Catalog statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/store.Stats"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            }
        },
        "/admin/users": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List users",
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/admin.UserResponse"}}}
                }
            }
        },
        "/admin/users/{id}": {
            "get": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get a user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/admin.UserResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/admin.UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/admin.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apierror.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "admin.UpdateUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "is_active": {"type": "boolean"},
                "is_staff": {"type": "boolean"},
                "is_superuser": {"type": "boolean"}
            }
        },
        "admin.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "is_active": {"type": "boolean"},
                "is_staff": {"type": "boolean"},
                "is_superuser": {"type": "boolean"},
                "last_login": {"type": "string"},
                "created_at": {"type": "string"},
                "recipe_count": {"type": "integer"}
            }
        },
        "apierror.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Not found"}
            }
        },
        "apierror.FieldsResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Validation failed"},
                "fields": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "attributes.CreateRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "recipes.RecipeRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "example": "Sample recipe"},
                "time_minutes": {"type": "integer", "example": 22},
                "price": {"type": "string", "example": "5.25"},
                "link": {"type": "string", "example": "https://example.com/recipe.pdf"},
                "tags": {"type": "array", "items": {"type": "integer"}},
                "ingredients": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "serialize.AttributeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "serialize.RecipeDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "time_minutes": {"type": "integer"},
                "price": {"type": "string"},
                "link": {"type": "string"},
                "tags": {"type": "array", "items": {"$ref": "#/definitions/serialize.AttributeResponse"}},
                "ingredients": {"type": "array", "items": {"$ref": "#/definitions/serialize.AttributeResponse"}}
            }
        },
        "serialize.RecipeSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "time_minutes": {"type": "integer"},
                "price": {"type": "string"},
                "link": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "integer"}},
                "ingredients": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "serialize.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "store.Stats": {
            "type": "object",
            "properties": {
                "total_users": {"type": "integer"},
                "active_users": {"type": "integer"},
                "staff_users": {"type": "integer"},
                "total_tags": {"type": "integer"},
                "total_ingredients": {"type": "integer"},
                "total_recipes": {"type": "integer"},
                "issued_tokens": {"type": "integer"}
            }
        },
        "users.CreateUserRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string", "minLength": 5}
            }
        },
        "users.TokenRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "users.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "users.UpdateMeRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "password": {"type": "string", "minLength": 5}
            }
        }
    },
    "securityDefinitions": {
        "TokenAuth": {
            "description": "API token. Format: \"Token {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Recipes API",
	Description:      "Personal recipe catalog with owner-scoped tags, ingredients and recipes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
