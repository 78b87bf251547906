package repository

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"anonbox/internal/models"
	"anonbox/internal/store"
)

// idSequence hands out strictly increasing microsecond timestamps.
type idSequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// next returns an id greater than every id handed out before and than floor.
func (s *idSequence) next(floor int64) (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	id := now.UnixMicro()
	if id <= s.last {
		id = s.last + 1
	}
	if id < floor {
		id = floor
	}
	s.last = id
	return id, now
}

type MessageFile struct {
	fs  *store.FileStore
	ids *idSequence
}

func NewMessageFile(fs *store.FileStore) *MessageFile {
	return &MessageFile{fs: fs, ids: &idSequence{now: time.Now}}
}

var _ MessageRepo = (*MessageFile)(nil)

func (r *MessageFile) Create(recipientID int, content string) (models.Message, error) {
	var created models.Message
	err := store.Update(r.fs, store.Messages, func(msgs []models.Message) ([]models.Message, error) {
		var maxID int64
		for _, m := range msgs {
			maxID = max(maxID, m.ID)
		}
		id, ts := r.ids.next(maxID + 1)
		created = models.Message{
			ID:          id,
			Content:     content,
			RecipientID: recipientID,
			Timestamp:   ts,
			IsAnonymous: true,
		}
		return append(msgs, created), nil
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message for user %d: %w", recipientID, err)
	}
	return created, nil
}

// ByRecipient orders by timestamp descending; among equal timestamps the
// later-inserted message comes first.
func (r *MessageFile) ByRecipient(userID int) []models.Message {
	out := make([]models.Message, 0)
	for _, m := range r.List() {
		if m.RecipientID == userID {
			out = append(out, m)
		}
	}
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b models.Message) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

func (r *MessageFile) Delete(id int64) (bool, error) {
	n, err := r.deleteWhere(func(m models.Message) bool { return m.ID == id })
	if err != nil {
		return false, fmt.Errorf("delete message %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *MessageFile) DeleteByRecipient(userID int) (int, error) {
	n, err := r.deleteWhere(func(m models.Message) bool { return m.RecipientID == userID })
	if err != nil {
		return 0, fmt.Errorf("delete messages of user %d: %w", userID, err)
	}
	return n, nil
}

func (r *MessageFile) deleteWhere(match func(models.Message) bool) (int, error) {
	var removed int
	err := store.Update(r.fs, store.Messages, func(msgs []models.Message) ([]models.Message, error) {
		kept := msgs[:0]
		for _, m := range msgs {
			if match(m) {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		if removed == 0 {
			return nil, store.ErrSkipSave
		}
		return kept, nil
	})
	return removed, err
}

func (r *MessageFile) List() []models.Message {
	return store.Load[models.Message](r.fs, store.Messages)
}

func (r *MessageFile) ReplaceAll(messages []models.Message) error {
	if err := store.Save(r.fs, store.Messages, messages); err != nil {
		return fmt.Errorf("replace messages: %w", err)
	}
	return nil
}
