package service

import (
	"anonbox/internal/models"
	"anonbox/internal/repository"
	"anonbox/internal/session"
)

// Authorization covers registration and both login variants.
type Authorization interface {
	Register(username, password string) (models.User, error)
	Login(username, password string) (session.UserIdentity, error)
	LoginAdmin(username, password string) (session.AdminIdentity, error)
	// Resolve reports whether the session's user still exists under the same
	// id and username.
	Resolve(identity session.UserIdentity) (session.UserIdentity, bool)
}

// Messaging covers anonymous submission and the recipient's inbox.
type Messaging interface {
	Recipient(link string) (*models.User, error)
	Send(link, content string) (models.Message, error)
	Inbox(userID int) []models.Message
}

// Administration exposes the raw store to the configured administrator.
type Administration interface {
	Dashboard() Dashboard
	DeleteUser(id int) (int, error)
	DeleteMessage(id int64) error
	Export(resource string) ([]byte, error)
	Import(resource string, payload []byte) error
}

type Service struct {
	Authorization
	Messaging
	Administration
}

func NewService(repos *repository.Repository, admin AdminCredentials) *Service {
	return &Service{
		Authorization:  NewAuthService(repos.Users, admin),
		Messaging:      NewMessageService(repos.Users, repos.Messages),
		Administration: NewAdminService(repos.Users, repos.Messages),
	}
}
