package handlers

import (
	"errors"

	"anonbox/internal/apperror"
	"anonbox/internal/models"
	"anonbox/internal/service"
)

// ---- Service Mocks ----

type mockMessaging struct {
	recipient *models.User
	sendErr   error
	inbox     []models.Message
}

func (m *mockMessaging) Recipient(link string) (*models.User, error) {
	if m.recipient == nil {
		return nil, service.ErrInvalidLink
	}
	return m.recipient, nil
}
func (m *mockMessaging) Send(link, content string) (models.Message, error) {
	return models.Message{}, m.sendErr
}
func (m *mockMessaging) Inbox(userID int) []models.Message {
	return m.inbox
}

type mockAdmin struct {
	panicOnDashboard bool
}

func (m *mockAdmin) Dashboard() service.Dashboard {
	if m.panicOnDashboard {
		panic("dashboard exploded")
	}
	return service.Dashboard{}
}
func (m *mockAdmin) DeleteUser(id int) (int, error) { return 0, nil }
func (m *mockAdmin) DeleteMessage(id int64) error   { return nil }
func (m *mockAdmin) Export(resource string) ([]byte, error) {
	return nil, apperror.Storage("x", errors.New("disk gone"))
}
func (m *mockAdmin) Import(resource string, payload []byte) error { return nil }
