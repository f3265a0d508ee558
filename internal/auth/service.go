// Package auth checks credentials and issues the opaque API tokens used by
// write endpoints.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"totestore/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the identifier or password is wrong or missing.
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	// ErrInvalidToken is returned for unknown token keys.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("user already exists")
)

const keyBytes = 20 // 40 hex characters

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Authenticate looks the user up by email when identifier contains "@" and by
// username otherwise, then checks the password.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	column := "username = ?"
	if strings.Contains(identifier, "@") {
		column = "email = ?"
		identifier = strings.ToLower(identifier)
	}

	var u models.User
	if err := s.db.WithContext(ctx).Where(column, identifier).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !models.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Token returns the user's token, creating it on first use. Repeated calls
// return the same key, also when two first logins of a user race.
func (s *Service) Token(ctx context.Context, userID uint) (*models.AuthToken, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}

	var t models.AuthToken
	err = s.db.WithContext(ctx).
		Where(models.AuthToken{UserID: userID}).
		Attrs(models.AuthToken{Key: key}).
		FirstOrCreate(&t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// the other login inserted first; its key wins
		t = models.AuthToken{}
		err = s.db.WithContext(ctx).Where(models.AuthToken{UserID: userID}).First(&t).Error
	}
	if err != nil {
		return nil, fmt.Errorf("get or create token for user %d: %w", userID, err)
	}
	return &t, nil
}

// Login authenticates and returns the user with their token.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, *models.AuthToken, error) {
	u, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.Token(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, t, nil
}

// UserForToken resolves a token key to its user.
func (s *Service) UserForToken(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}
	var t models.AuthToken
	if err := s.db.WithContext(ctx).Preload("User").Where(&models.AuthToken{Key: key}).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t.User, nil
}

// User loads a user by id.
func (s *Service) User(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, errors.New("username, email and password are required")
	}
	switch role {
	case models.RoleCustomer, models.RoleStaff, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).Or("email = ?", email).
		Count(&n).Error
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if n > 0 {
		return nil, ErrUserExists
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func newKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
