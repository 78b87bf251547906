package session

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	kindAnonymous = ""
	kindUser      = "user"
	kindAdmin     = "admin"
)

// record is the storage shape shared by every Store implementation.
type record struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind,omitempty"`
	UserID    int       `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Link      string    `json:"link,omitempty"`
	Flashes   Flashes   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Marshal encodes s for a Store.
func Marshal(s *Session) ([]byte, error) {
	rec := record{
		ID:        s.ID,
		Flashes:   s.Flashes,
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}
	switch id := s.Identity.(type) {
	case nil:
		rec.Kind = kindAnonymous
	case UserIdentity:
		rec.Kind = kindUser
		rec.UserID = id.ID
		rec.Username = id.Username
		rec.Link = id.Link
	case AdminIdentity:
		rec.Kind = kindAdmin
		rec.Username = id.Username
	default:
		return nil, fmt.Errorf("unknown identity type %T", s.Identity)
	}
	return json.Marshal(rec)
}

// Unmarshal decodes data produced by Marshal.
func Unmarshal(data []byte) (*Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s := &Session{
		ID:        rec.ID,
		Flashes:   rec.Flashes,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	switch rec.Kind {
	case kindAnonymous:
	case kindUser:
		s.Identity = UserIdentity{ID: rec.UserID, Username: rec.Username, Link: rec.Link}
	case kindAdmin:
		s.Identity = AdminIdentity{Username: rec.Username}
	default:
		return nil, fmt.Errorf("decode session: unknown kind %q", rec.Kind)
	}
	return s, nil
}
