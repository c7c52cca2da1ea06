package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	user, err := s.Users.CreateUser(ctx, "  Cook@Example.COM ", "secret123", "Cook")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, "Cook", user.Name)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, auth.CheckPassword("secret123", user.PasswordHash))
}

func TestCreateUserValidation(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		field    string
		sentinel error
	}{
		{"empty email", "", "secret123", "email", ErrInvalidEmail},
		{"malformed email", "not-an-email", "secret123", "email", ErrInvalidEmail},
		{"empty password", "cook@example.com", "", "password", ErrEmptyPassword},
		{"password too long", "cook@example.com", strings.Repeat("a", 73), "password", ErrLongPassword},
		{"multibyte password too long", "cook@example.com", strings.Repeat("é", 40), "password", ErrLongPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Users.CreateUser(ctx, tt.email, tt.password, "Cook")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Users.CreateUser(ctx, "cook@example.com", "secret123", "Cook")
	require.NoError(t, err)

	_, err = s.Users.CreateUser(ctx, "COOK@example.com", "other123", "Other")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateSuperuser(t *testing.T) {
	s, _ := setupTestStore(t)

	user, err := s.Users.CreateSuperuser(context.Background(), "root@example.com", "213sadf1", "")
	require.NoError(t, err)

	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.Equal(t, DefaultSuperuserName, user.Name)
}

func TestVerifyCredentials(t *testing.T) {
	s, db := setupTestStore(t)
	ctx := context.Background()
	created := createTestUser(t, s, "cook@example.com")

	user, err := s.Users.VerifyCredentials(ctx, "Cook@Example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.NotNil(t, user.LastLogin)

	user, err = s.Users.VerifyCredentials(ctx, "cook@example.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = s.Users.VerifyCredentials(ctx, "nobody@example.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", created.ID).Update("is_active", false).Error)
	user, err = s.Users.VerifyCredentials(ctx, "cook@example.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "cook@example.com")

	updated, err := s.Users.UpdateProfile(ctx, user, ProfileUpdate{Name: ptr("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)

	updated, err = s.Users.UpdateProfile(ctx, updated, ProfileUpdate{Password: ptr("newpassword")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	// Only the most recently set password verifies.
	got, err := s.Users.VerifyCredentials(ctx, "cook@example.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = s.Users.VerifyCredentials(ctx, "cook@example.com", "newpassword")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = s.Users.UpdateProfile(ctx, updated, ProfileUpdate{Password: ptr("")})
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestGetUserNotFound(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.Users.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersAndFlags(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	cook := createTestUser(t, s, "cook@example.com")
	createTestUser(t, s, "baker@example.com")

	users, err := s.Users.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = s.Users.ListUsers(ctx, "bake")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "baker@example.com", users[0].Email)

	updated, err := s.Users.UpdateFlags(ctx, cook.ID, UserFlags{IsStaff: ptr(true), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.True(t, updated.IsStaff)
	assert.False(t, updated.IsActive)

	_, err = s.Users.UpdateFlags(ctx, 999, UserFlags{IsStaff: ptr(true)})
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := s.Users.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.StaffUsers)
}

func TestPasswordLengthLimit(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	longest := strings.Repeat("a", 72)
	user, err := s.Users.CreateUser(ctx, "cook@example.com", longest, "Cook")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(longest, user.PasswordHash))

	_, err = s.Users.CreateSuperuser(ctx, "root@example.com", strings.Repeat("a", 100), "")
	assert.ErrorIs(t, err, ErrLongPassword)

	tooLong := strings.Repeat("b", 73)
	_, err = s.Users.UpdateProfile(ctx, user, ProfileUpdate{Password: &tooLong})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Ensure this field has no more than 72 characters."}, verr.Fields["password"])

	got, err := s.Users.VerifyCredentials(ctx, "cook@example.com", longest)
	require.NoError(t, err)
	assert.NotNil(t, got, "failed update must keep the old password")
}
