package repository

import (
	"fmt"
	"slices"

	"anonbox/internal/models"
	"anonbox/internal/store"
)

// maxLinkAttempts bounds regeneration on the (astronomically rare) token collision.
const maxLinkAttempts = 8

type UserFile struct {
	fs      *store.FileStore
	newLink func() (string, error)
}

func NewUserFile(fs *store.FileStore) *UserFile {
	return &UserFile{fs: fs, newLink: newLinkToken}
}

var _ UserRepo = (*UserFile)(nil)

// Create validates uniqueness and appends the user in a single locked cycle.
func (r *UserFile) Create(username, passwordHash string) (models.User, error) {
	var created models.User
	err := store.Update(r.fs, store.Users, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.Username == username {
				return nil, ErrDuplicateUsername
			}
		}
		link, err := r.uniqueLink(users)
		if err != nil {
			return nil, err
		}
		id, err := r.reserveUserID(userIDFloor(users, store.Load[models.Message](r.fs, store.Messages)))
		if err != nil {
			return nil, err
		}
		created = models.User{
			ID:           id,
			Username:     username,
			PasswordHash: passwordHash,
			Link:         link,
		}
		return append(users, created), nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("insert user %q: %w", username, err)
	}
	return created, nil
}

func (r *UserFile) uniqueLink(users []models.User) (string, error) {
	taken := make(map[string]struct{}, len(users))
	for _, u := range users {
		taken[u.Link] = struct{}{}
	}
	for i := 0; i < maxLinkAttempts; i++ {
		link, err := r.newLink()
		if err != nil {
			return "", err
		}
		if _, dup := taken[link]; !dup {
			return link, nil
		}
	}
	return "", ErrLinkExhausted
}

// userIDFloor is the highest id visible in the data: the user count, any
// surviving user id, or any recipient id still referenced by a message.
func userIDFloor(users []models.User, msgs []models.Message) int {
	floor := len(users)
	for _, u := range users {
		floor = max(floor, u.ID)
	}
	for _, m := range msgs {
		floor = max(floor, m.RecipientID)
	}
	return floor
}

// sequence is one high-water mark in the Sequences resource.
type sequence struct {
	Name string `json:"name"`
	Last int    `json:"last"`
}

const userSequence = "users"

// reserveUserID returns an id above floor and above every id handed out
// before, and records it. Callers hold the Users lock; Sequences is always
// taken second.
func (r *UserFile) reserveUserID(floor int) (int, error) {
	var id int
	err := store.Update(r.fs, store.Sequences, func(seqs []sequence) ([]sequence, error) {
		idx := slices.IndexFunc(seqs, func(s sequence) bool { return s.Name == userSequence })
		if idx < 0 {
			seqs = append(seqs, sequence{Name: userSequence})
			idx = len(seqs) - 1
		}
		id = max(floor, seqs[idx].Last) + 1
		seqs[idx].Last = id
		return seqs, nil
	})
	if err != nil {
		return 0, fmt.Errorf("reserve user id: %w", err)
	}
	return id, nil
}

func (r *UserFile) FindByUsername(username string) *models.User {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserFile) FindByLink(link string) *models.User {
	if link == "" {
		return nil
	}
	return r.find(func(u models.User) bool { return u.Link == link })
}

func (r *UserFile) FindByID(id int) *models.User {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *UserFile) find(match func(models.User) bool) *models.User {
	for _, u := range r.List() {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (r *UserFile) Delete(id int) (bool, error) {
	var found bool
	err := store.Update(r.fs, store.Users, func(users []models.User) ([]models.User, error) {
		kept := users[:0]
		for _, u := range users {
			if u.ID == id {
				found = true
				continue
			}
			kept = append(kept, u)
		}
		if !found {
			return nil, store.ErrSkipSave
		}
		return kept, nil
	})
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	return found, nil
}

func (r *UserFile) List() []models.User {
	return store.Load[models.User](r.fs, store.Users)
}

// ReplaceAll overwrites the table verbatim; no uniqueness checks are applied.
func (r *UserFile) ReplaceAll(users []models.User) error {
	if err := store.Save(r.fs, store.Users, users); err != nil {
		return fmt.Errorf("replace users: %w", err)
	}
	return nil
}
