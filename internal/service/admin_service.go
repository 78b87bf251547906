package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"anonbox/internal/models"
	"anonbox/internal/repository"
)

// DeletedUserName labels messages whose recipient no longer exists.
const DeletedUserName = "deleted user"

// Resource type names accepted by Export and Import.
const (
	ResourceUsers    = "users"
	ResourceMessages = "messages"
)

// MessageView is a message with its recipient's name resolved.
type MessageView struct {
	models.Message
	RecipientName string `json:"recipient_name"`
}

type Dashboard struct {
	Users    []models.User `json:"users"`
	Messages []MessageView `json:"messages"`
}

type AdminService struct {
	users    repository.UserRepo
	messages repository.MessageRepo
}

func NewAdminService(users repository.UserRepo, messages repository.MessageRepo) *AdminService {
	return &AdminService{users: users, messages: messages}
}

// Dashboard lists every user and every message, newest message first.
func (s *AdminService) Dashboard() Dashboard {
	users := s.users.List()
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	msgs := s.messages.List()
	slices.Reverse(msgs)
	slices.SortStableFunc(msgs, func(a, b models.Message) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		name, ok := names[m.RecipientID]
		if !ok {
			name = DeletedUserName
		}
		views = append(views, MessageView{Message: m, RecipientName: name})
	}
	return Dashboard{Users: users, Messages: views}
}

// DeleteUser removes the user and every message addressed to them. It
// returns the number of messages removed.
func (s *AdminService) DeleteUser(id int) (int, error) {
	ok, err := s.users.Delete(id)
	if err != nil {
		return 0, storageError(err)
	}
	if !ok {
		return 0, ErrUserNotFound
	}
	n, err := s.messages.DeleteByRecipient(id)
	if err != nil {
		return 0, storageError(err)
	}
	return n, nil
}

func (s *AdminService) DeleteMessage(id int64) error {
	ok, err := s.messages.Delete(id)
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return ErrMessageNotFound
	}
	return nil
}

// Export returns the resource as an indented JSON array.
func (s *AdminService) Export(resource string) ([]byte, error) {
	var records any
	switch resource {
	case ResourceUsers:
		records = s.users.List()
	case ResourceMessages:
		records = s.messages.List()
	default:
		return nil, ErrUnknownResource
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", resource, err)
	}
	return data, nil
}

// Import replaces the resource wholesale. The payload must be a JSON array
// whose elements decode into the resource's record type; otherwise nothing
// is written. No uniqueness checks are applied.
func (s *AdminService) Import(resource string, payload []byte) error {
	switch resource {
	case ResourceUsers:
		users, err := decodeArray[models.User](payload)
		if err != nil {
			return err
		}
		if err := s.users.ReplaceAll(users); err != nil {
			return storageError(err)
		}
	case ResourceMessages:
		msgs, err := decodeArray[models.Message](payload)
		if err != nil {
			return err
		}
		if err := s.messages.ReplaceAll(msgs); err != nil {
			return storageError(err)
		}
	default:
		return ErrUnknownResource
	}
	return nil
}

func decodeArray[T any](payload []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMalformedPayload
	}
	var records []T
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if records == nil {
		records = make([]T, 0)
	}
	return records, nil
}
