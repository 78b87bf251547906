package repository

import (
	"errors"

	"anonbox/internal/models"
	"anonbox/internal/store"
)

// Repository errors.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrLinkExhausted     = errors.New("could not issue a unique link")
)

// UserRepo owns the Users resource.
type UserRepo interface {
	// Create inserts a user with a fresh id and link token. The uniqueness
	// check and the insert happen under one lock.
	Create(username, passwordHash string) (models.User, error)
	FindByUsername(username string) *models.User
	FindByLink(link string) *models.User
	FindByID(id int) *models.User
	// Delete reports whether a user was removed.
	Delete(id int) (bool, error)
	List() []models.User
	ReplaceAll(users []models.User) error
}

// MessageRepo owns the Messages resource.
type MessageRepo interface {
	Create(recipientID int, content string) (models.Message, error)
	// ByRecipient returns the user's messages, newest first.
	ByRecipient(userID int) []models.Message
	Delete(id int64) (bool, error)
	DeleteByRecipient(userID int) (int, error)
	List() []models.Message
	ReplaceAll(messages []models.Message) error
}

type Repository struct {
	Users    UserRepo
	Messages MessageRepo
}

func NewRepository(fs *store.FileStore) *Repository {
	return &Repository{
		Users:    NewUserFile(fs),
		Messages: NewMessageFile(fs),
	}
}
