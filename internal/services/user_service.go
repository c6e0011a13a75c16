package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

// Field messages shared with the HTTP layer's validation output.
const (
	msgRequired      = "This field is required."
	msgUsernameTaken = "A user with that username already exists."
	msgEmailTaken    = "A user with that email already exists."
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// Register creates a user. Duplicate usernames and emails are reported as
// field errors under their own keys and nothing is written.
func (s *userService) Register(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	fields := map[string][]string{}
	if username == "" {
		fields["username"] = []string{msgRequired}
	}
	if email == "" {
		fields["email"] = []string{msgRequired}
	}
	if password == "" {
		fields["password"] = []string{msgRequired}
	}
	if len(fields) > 0 {
		return nil, apperrors.WithFields(apperrors.ErrValidation, fields)
	}

	if conflicts, err := s.conflicts(username, email); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	} else if len(conflicts) > 0 {
		return nil, apperrors.WithFields(apperrors.ErrConflict, conflicts)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.db.Create(user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			conflicts, cerr := s.conflicts(username, email)
			if cerr != nil || len(conflicts) == 0 {
				conflicts = map[string][]string{"username": {msgUsernameTaken}}
			}
			return nil, apperrors.WithFields(apperrors.ErrConflict, conflicts)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// conflicts reports which of username and email are already registered.
func (s *userService) conflicts(username, email string) (map[string][]string, error) {
	fields := map[string][]string{}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		fields["username"] = []string{msgUsernameTaken}
	}

	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		fields["email"] = []string{msgEmailTaken}
	}
	return fields, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	if id == "" {
		return nil, apperrors.ErrUnauthorized
	}
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// AttemptLogin verifies credentials, tracking consecutive failures. The fifth
// failure locks the user out for lockoutDuration.
func (s *userService) AttemptLogin(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
			updates["failed_login_attempts"] = 0
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// StoreRefreshTokenHash records the hash of the currently valid refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}
