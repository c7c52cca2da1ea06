package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail   = errors.New("invalid email")
	ErrEmptyPassword  = errors.New("empty password")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrLongPassword   = errors.New("password too long")
)

// DefaultSuperuserName is used when CreateSuperuser gets an empty name.
const DefaultSuperuserName = "admin"

var validate = validator.New()

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// missingUserHash gives VerifyCredentials something to compare against
// when the email is unknown, so both failure paths cost one bcrypt check.
func missingUserHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("not-a-real-password")
	})
	return dummyHash
}

// checkPassword rejects passwords bcrypt cannot hash.
func checkPassword(password string) error {
	switch {
	case password == "":
		return fieldError("password", msgBlank, ErrEmptyPassword)
	case len(password) > auth.MaxPasswordLength:
		return fieldError("password", fmt.Sprintf(msgMaxLength, auth.MaxPasswordLength), ErrLongPassword)
	}
	return nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserStore is the identity store and token issuer
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore backed by db
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser registers a regular user.
func (s *UserStore) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.create(ctx, email, password, name, false)
}

// CreateSuperuser registers a user with the staff and superuser flags set.
func (s *UserStore) CreateSuperuser(ctx context.Context, email, password, name string) (*models.User, error) {
	if name == "" {
		name = DefaultSuperuserName
	}
	return s.create(ctx, email, password, name, true)
}

func (s *UserStore) create(ctx context.Context, email, password, name string, superuser bool) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, fieldError("email", msgInvalidEmail, ErrInvalidEmail)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fieldError("email", msgDuplicateEmail, ErrDuplicateEmail)
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fieldError("email", msgDuplicateEmail, ErrDuplicateEmail)
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// VerifyCredentials returns the user whose password matches, or nil when
// the email is unknown, the password is wrong or the account is inactive.
// The error is only set when the store itself fails.
func (s *UserStore) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		auth.CheckPassword(password, missingUserHash())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) || !user.IsActive {
		return nil, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return &user, nil
}

// ProfileUpdate holds the self-service profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// UpdateProfile applies a partial profile update and returns the fresh user.
func (s *UserStore) UpdateProfile(ctx context.Context, user *models.User, upd ProfileUpdate) (*models.User, error) {
	updates := make(map[string]interface{})
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.Password != nil {
		if err := checkPassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetUser(ctx, user.ID)
}

// GetUser fetches a user by id
func (s *UserStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users ordered by id, optionally filtered by a
// substring of email or name.
func (s *UserStore) ListUsers(ctx context.Context, search string) ([]models.User, error) {
	query := s.db.WithContext(ctx).Order("id")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR name LIKE ?", like, like)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserFlags holds the staff-editable account fields; nil means unchanged.
type UserFlags struct {
	Name        *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// UpdateFlags applies a staff edit to the user with the given id.
func (s *UserStore) UpdateFlags(ctx context.Context, id uint, flags UserFlags) (*models.User, error) {
	updates := make(map[string]interface{})
	if flags.Name != nil {
		updates["name"] = *flags.Name
	}
	if flags.IsActive != nil {
		updates["is_active"] = *flags.IsActive
	}
	if flags.IsStaff != nil {
		updates["is_staff"] = *flags.IsStaff
	}
	if flags.IsSuperuser != nil {
		updates["is_superuser"] = *flags.IsSuperuser
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetUser(ctx, id)
}

// Stats summarises the catalog for the staff dashboard
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsers      int64 `json:"active_users"`
	StaffUsers       int64 `json:"staff_users"`
	TotalTags        int64 `json:"total_tags"`
	TotalIngredients int64 `json:"total_ingredients"`
	TotalRecipes     int64 `json:"total_recipes"`
	IssuedTokens     int64 `json:"issued_tokens"`
}

// Stats counts rows across the catalog.
func (s *UserStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.User{}), &stats.TotalUsers},
		{db.Model(&models.User{}).Where("is_active = ?", true), &stats.ActiveUsers},
		{db.Model(&models.User{}).Where("is_staff = ?", true), &stats.StaffUsers},
		{db.Model(&models.Tag{}), &stats.TotalTags},
		{db.Model(&models.Ingredient{}), &stats.TotalIngredients},
		{db.Model(&models.Recipe{}), &stats.TotalRecipes},
		{db.Model(&models.AuthToken{}), &stats.IssuedTokens},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return Stats{}, err
		}
	}

	return stats, nil
}
