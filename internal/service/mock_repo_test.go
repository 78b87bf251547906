package service

import (
	"testing"

	"anonbox/internal/models"
	"anonbox/internal/repository"
	"anonbox/internal/store"
)

// mockUserRepo is a lightweight in-test mock for repository.UserRepo.
type mockUserRepo struct {
	CreateFn         func(username, hash string) (models.User, error)
	FindByUsernameFn func(username string) *models.User
	FindByLinkFn     func(link string) *models.User

	createCalls []struct {
		username string
		hash     string
	}
}

func (m *mockUserRepo) Create(username, hash string) (models.User, error) {
	m.createCalls = append(m.createCalls, struct {
		username string
		hash     string
	}{username: username, hash: hash})
	return m.CreateFn(username, hash)
}

func (m *mockUserRepo) FindByUsername(username string) *models.User {
	return m.FindByUsernameFn(username)
}

func (m *mockUserRepo) FindByLink(link string) *models.User {
	return m.FindByLinkFn(link)
}

func (m *mockUserRepo) FindByID(int) *models.User { return nil }
func (m *mockUserRepo) Delete(int) (bool, error) { return false, nil }
func (m *mockUserRepo) List() []models.User { return nil }
func (m *mockUserRepo) ReplaceAll(users []models.User) error { return nil }

// mockMessageRepo records Create calls.
type mockMessageRepo struct {
	CreateFn func(recipientID int, content string) (models.Message, error)

	created []models.Message
}

func (m *mockMessageRepo) Create(recipientID int, content string) (models.Message, error) {
	msg, err := m.CreateFn(recipientID, content)
	if err == nil {
		m.created = append(m.created, msg)
	}
	return msg, err
}

func (m *mockMessageRepo) ByRecipient(int) []models.Message { return nil }
func (m *mockMessageRepo) Delete(int64) (bool, error) { return false, nil }
func (m *mockMessageRepo) DeleteByRecipient(int) (int, error) { return 0, nil }
func (m *mockMessageRepo) List() []models.Message { return nil }
func (m *mockMessageRepo) ReplaceAll(messages []models.Message) error { return nil }

// newFileRepos returns repositories over a fresh store in a temp dir.
func newFileRepos(t *testing.T) (*repository.Repository, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir(), nil)
	if err := fs.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return repository.NewRepository(fs), fs
}
