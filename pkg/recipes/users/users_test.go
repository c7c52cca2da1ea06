package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipes/pkg/recipes/apierror"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/recipebox/recipes/pkg/recipes/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func setupTestRouter(users *store.UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apierror.RegisterJSONFieldNames()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	h := NewHandler(users)
	group := r.Group("/user")
	h.RegisterPublicRoutes(group)
	h.RegisterRoutes(group.Group("", auth.TokenAuthMiddleware(users)))
	return r
}

func createTestUser(t *testing.T, users *store.UserStore, email string) *models.User {
	user, err := users.CreateUser(context.Background(), email, "password123", "Test User")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func getAuthHeader(t *testing.T, users *store.UserStore, user *models.User) string {
	token, err := users.IssueOrFetchToken(context.Background(), user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return "Token " + token
}

func doJSON(r *gin.Engine, method, path string, body any, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUser(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)

	w := doJSON(r, http.MethodPost, "/user/create", map[string]string{
		"email":    "test@example.com",
		"password": "testpass123",
		"name":     "Test Name",
	}, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["email"] != "test@example.com" || resp["name"] != "Test Name" {
		t.Errorf("Unexpected response: %v", resp)
	}
	if _, ok := resp["password"]; ok {
		t.Error("Response must not contain the password")
	}
	if len(resp) != 2 {
		t.Errorf("Expected only email and name, got %v", resp)
	}

	user, err := users.VerifyCredentials(context.Background(), "test@example.com", "testpass123")
	if err != nil || user == nil {
		t.Errorf("Expected stored credentials to verify, got %v %v", user, err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	createTestUser(t, users, "test@example.com")

	w := doJSON(r, http.MethodPost, "/user/create", map[string]string{
		"email":    "test@example.com",
		"password": "testpass123",
		"name":     "Test Name",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp apierror.FieldsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Fields["email"]) == 0 {
		t.Errorf("Expected email field error, got %v", resp.Fields)
	}
}

func TestCreateUserShortPassword(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)

	w := doJSON(r, http.MethodPost, "/user/create", map[string]string{
		"email":    "test@example.com",
		"password": "pw",
		"name":     "Test Name",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp apierror.FieldsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Fields["password"]) == 0 {
		t.Errorf("Expected password field error, got %v", resp.Fields)
	}

	if u, _ := users.VerifyCredentials(context.Background(), "test@example.com", "pw"); u != nil {
		t.Error("User must not be created")
	}
}

func TestCreateUserBlankName(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)

	w := doJSON(r, http.MethodPost, "/user/create", map[string]string{
		"email":    "test@example.com",
		"password": "testpass123",
		"name":     "   ",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestToken(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	createTestUser(t, users, "test@example.com")

	creds := map[string]string{"email": "test@example.com", "password": "password123"}

	w := doJSON(r, http.MethodPost, "/user/token", creds, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var first TokenResponse
	json.Unmarshal(w.Body.Bytes(), &first)
	if len(first.Token) != 2*auth.KeyLength {
		t.Errorf("Expected %d char token, got %q", 2*auth.KeyLength, first.Token)
	}

	w = doJSON(r, http.MethodPost, "/user/token", creds, "")
	var second TokenResponse
	json.Unmarshal(w.Body.Bytes(), &second)
	if second.Token != first.Token {
		t.Errorf("Expected the same token on repeat, got %q and %q", first.Token, second.Token)
	}
}

func TestTokenBadCredentials(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	createTestUser(t, users, "test@example.com")

	tests := []struct {
		name  string
		creds map[string]string
	}{
		{"wrong password", map[string]string{"email": "test@example.com", "password": "wrongpass"}},
		{"unknown user", map[string]string{"email": "nobody@example.com", "password": "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/user/token", tt.creds, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			var resp map[string]any
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["error"] != MsgBadCredentials {
				t.Errorf("Expected %q, got %v", MsgBadCredentials, resp["error"])
			}
			if _, ok := resp["token"]; ok {
				t.Error("Response must not contain a token")
			}
		})
	}

	w := doJSON(r, http.MethodPost, "/user/token", map[string]string{"email": "test@example.com"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing password, got %d", w.Code)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)

	w := doJSON(r, http.MethodGet, "/user/me", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/user/me", nil, "Token not-a-real-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestMe(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	user := createTestUser(t, users, "test@example.com")

	w := doJSON(r, http.MethodGet, "/user/me", nil, getAuthHeader(t, users, user))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["email"] != "test@example.com" || resp["name"] != "Test User" {
		t.Errorf("Unexpected response: %v", resp)
	}
}

func TestMePostNotAllowed(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	user := createTestUser(t, users, "test@example.com")

	w := doJSON(r, http.MethodPost, "/user/me", map[string]string{}, getAuthHeader(t, users, user))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	user := createTestUser(t, users, "test@example.com")
	header := getAuthHeader(t, users, user)

	w := doJSON(r, http.MethodPatch, "/user/me", map[string]string{
		"name":     "Updated Name",
		"password": "newpassword123",
	}, header)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["name"] != "Updated Name" {
		t.Errorf("Expected name 'Updated Name', got %v", resp["name"])
	}

	ctx := context.Background()
	if u, _ := users.VerifyCredentials(ctx, "test@example.com", "newpassword123"); u == nil {
		t.Error("Expected new password to verify")
	}
	if u, _ := users.VerifyCredentials(ctx, "test@example.com", "password123"); u != nil {
		t.Error("Expected old password to be rejected")
	}

	// Name only leaves the password alone
	w = doJSON(r, http.MethodPatch, "/user/me", map[string]string{"name": "Again"}, header)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if u, _ := users.VerifyCredentials(ctx, "test@example.com", "newpassword123"); u == nil {
		t.Error("Expected password to be unchanged")
	}
}

func TestUpdateMeShortPassword(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)
	user := createTestUser(t, users, "test@example.com")

	w := doJSON(r, http.MethodPatch, "/user/me", map[string]string{"password": "pw"}, getAuthHeader(t, users, user))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPasswordTooLong(t *testing.T) {
	users := store.NewUserStore(setupTestDB(t))
	r := setupTestRouter(users)

	tests := []struct {
		name     string
		password string
	}{
		{"ascii", strings.Repeat("a", 80)},
		{"multibyte within rune limit", strings.Repeat("é", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/user/create", map[string]string{
				"email":    "test@example.com",
				"password": tt.password,
				"name":     "Test Name",
			}, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			var resp apierror.FieldsResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			if len(resp.Fields["password"]) == 0 {
				t.Errorf("Expected password field error, got %v", resp.Fields)
			}
		})
	}

	user := createTestUser(t, users, "me@example.com")
	w := doJSON(r, http.MethodPatch, "/user/me", map[string]string{"password": strings.Repeat("é", 40)}, getAuthHeader(t, users, user))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 on profile update, got %d: %s", w.Code, w.Body.String())
	}
}
