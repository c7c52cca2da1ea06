package store

import (
	"context"
	"testing"

	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func setupTestStore(t *testing.T) (*Store, *gorm.DB) {
	db := setupTestDB(t)
	return New(db), db
}

func createTestUser(t *testing.T, s *Store, email string) *models.User {
	user, err := s.Users.CreateUser(context.Background(), email, "password123", "Test User")
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T {
	return &v
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	require.NoError(t, verr.OrNil())

	verr.Add("title", "This field is required.")
	verr.Add("price", "A valid number is required.")
	verr.Add("price", "again")

	require.Error(t, verr.OrNil())
	require.Equal(t, "validation failed: price: A valid number is required. again; title: This field is required.", verr.Error())
}

func TestNullField(t *testing.T) {
	verr := NullField("price")
	require.Equal(t, []string{"This field may not be null."}, verr.Fields["price"])
}
