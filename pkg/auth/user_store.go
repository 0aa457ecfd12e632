package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidUsername    = errors.New("username must be 3-50 alphanumeric characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordHashFailed = errors.New("failed to hash password")
)

const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
	BcryptCost        = 12
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User represents an account in the system
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // Never serialize password hash
	Role         string      `json:"role"`
	Permissions  Permissions `json:"permissions"`
	CreatedAt    int64       `json:"created_at"`
}

// UserUpdate carries the mutable account fields; nil means "leave as is".
type UserUpdate struct {
	Email       *string
	Role        *string
	Permissions *Permissions
}

// Directory is the account store contract the API is written against.
// UserStore implements it in memory; store.PGDirectory backs it with
// PostgreSQL.
type Directory interface {
	CreateUser(ctx context.Context, username, email, password, role string, perms Permissions) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, userID string, update UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, newPassword string) error
}

// UserStore is the in-memory Directory implementation.
type UserStore struct {
	users       map[string]*User
	usernameMap map[string]string // username -> userID
	mu          sync.RWMutex
}

var _ Directory = (*UserStore)(nil)

// NewUserStore creates a new in-memory user store
func NewUserStore() *UserStore {
	return &UserStore{
		users:       make(map[string]*User),
		usernameMap: make(map[string]string),
	}
}

// CreateUser creates a new user with a hashed password
func (s *UserStore) CreateUser(_ context.Context, username, email, password, role string, perms Permissions) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if _, exists := s.usernameMap[username]; exists {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordHashFailed, err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Permissions:  perms,
		CreatedAt:    time.Now().Unix(),
	}

	s.users[user.ID] = user
	s.usernameMap[username] = user.ID

	return user, nil
}

// GetUserByUsername retrieves a user by username
func (s *UserStore) GetUserByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if username == "" {
		return nil, ErrInvalidUsername
	}

	userID, exists := s.usernameMap[username]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	user, exists := s.users[userID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserStore) GetUserByID(_ context.Context, userID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if userID == "" {
		return nil, ErrUserNotFound
	}
	user, exists := s.users[userID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	return user, nil
}

// ListUsers returns all users
func (s *UserStore) ListUsers(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

// UpdateUser applies an update to a user's mutable fields
func (s *UserStore) UpdateUser(_ context.Context, userID string, update UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	if update.Role != nil {
		if !validRoles[*update.Role] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, *update.Role)
		}
		user.Role = *update.Role
	}
	if update.Email != nil {
		if err := ValidateEmail(*update.Email); err != nil {
			return nil, err
		}
		user.Email = *update.Email
	}
	if update.Permissions != nil {
		user.Permissions = *update.Permissions
	}

	return user, nil
}

// DeleteUser deletes a user
func (s *UserStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	delete(s.users, userID)
	delete(s.usernameMap, user.Username)

	return nil
}

// ChangePassword changes a user's password
func (s *UserStore) ChangePassword(_ context.Context, userID, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	user, exists := s.users[userID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordHashFailed, err)
	}
	user.PasswordHash = hashedPassword

	return nil
}

// VerifyPassword verifies a password against a user's stored hash
func VerifyPassword(user *User, password string) bool {
	if user == nil || password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// Validation helpers shared by every Directory implementation

func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrInvalidUsername
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	return nil
}

func ValidateRole(role string) error {
	if !validRoles[role] {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
