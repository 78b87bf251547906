package service

import (
	"strings"

	"anonbox/internal/models"
	"anonbox/internal/repository"
)

type MessageService struct {
	users    repository.UserRepo
	messages repository.MessageRepo
}

func NewMessageService(users repository.UserRepo, messages repository.MessageRepo) *MessageService {
	return &MessageService{users: users, messages: messages}
}

// Recipient resolves a link token to its owner.
func (s *MessageService) Recipient(link string) (*models.User, error) {
	u := s.users.FindByLink(link)
	if u == nil {
		return nil, ErrInvalidLink
	}
	return u, nil
}

// Send stores an anonymous message for the owner of link. Content is trimmed;
// nothing is written when it is empty or the link is unknown.
func (s *MessageService) Send(link, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, ErrEmptyContent
	}
	u, err := s.Recipient(link)
	if err != nil {
		return models.Message{}, err
	}
	m, err := s.messages.Create(u.ID, content)
	if err != nil {
		return models.Message{}, storageError(err)
	}
	return m, nil
}

func (s *MessageService) Inbox(userID int) []models.Message {
	return s.messages.ByRecipient(userID)
}
