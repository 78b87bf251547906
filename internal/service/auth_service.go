package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"anonbox/internal/apperror"
	"anonbox/internal/models"
	"anonbox/internal/repository"
	"anonbox/internal/session"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials is the single configured administrator. An empty
// username or password disables admin login.
type AdminCredentials struct {
	Username string
	Password string
}

func (a AdminCredentials) configured() bool {
	return a.Username != "" && a.Password != ""
}

// AuthService handles user auth logic
type AuthService struct {
	users repository.UserRepo
	admin AdminCredentials
}

func NewAuthService(users repository.UserRepo, admin AdminCredentials) *AuthService {
	return &AuthService{users: users, admin: admin}
}

// Register hashes the password and creates the user with a fresh link.
func (s *AuthService) Register(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return models.User{}, ErrMissingCredentials
	}
	if len(password) > maxPasswordBytes {
		return models.User{}, ErrPasswordTooLong
	}
	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, apperror.Internal("hash password", err)
	}

	u, err := s.users.Create(username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, storageError(err)
	}
	return u, nil
}

// Login checks the credentials. Unknown user and wrong password fail the same way.
func (s *AuthService) Login(username, password string) (session.UserIdentity, error) {
	u := s.users.FindByUsername(strings.TrimSpace(username))
	if u == nil {
		return session.UserIdentity{}, ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return session.UserIdentity{}, ErrInvalidCredentials
	}
	return session.UserIdentity{ID: u.ID, Username: u.Username, Link: u.Link}, nil
}

func (s *AuthService) Resolve(identity session.UserIdentity) (session.UserIdentity, bool) {
	u := s.users.FindByID(identity.ID)
	if u == nil || u.Username != identity.Username {
		return session.UserIdentity{}, false
	}
	return session.UserIdentity{ID: u.ID, Username: u.Username, Link: u.Link}, true
}

func (s *AuthService) LoginAdmin(username, password string) (session.AdminIdentity, error) {
	if !s.admin.configured() {
		return session.AdminIdentity{}, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password))
	if userOK&passOK != 1 {
		return session.AdminIdentity{}, ErrInvalidCredentials
	}
	return session.AdminIdentity{Username: s.admin.Username}, nil
}

// helper: hash password safely
// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
