// Package session keeps per-visitor state behind a signed cookie: who is
// logged in (a user or the administrator) and the pending flash notices.
package session

import "time"

// Identity is the authenticated principal of a session. It is implemented
// only by UserIdentity and AdminIdentity.
type Identity interface {
	identity()
}

// UserIdentity is a logged-in registered user.
type UserIdentity struct {
	ID       int
	Username string
	Link     string
}

// AdminIdentity is the configured administrator. It has no user id.
type AdminIdentity struct {
	Username string
}

func (UserIdentity) identity()  {}
func (AdminIdentity) identity() {}

// Category tags a flash notice.
type Category string

const (
	CategoryError   Category = "error"
	CategorySuccess Category = "success"
)

// Flashes groups pending notices by category, in push order.
type Flashes map[Category][]string

// Session is the server-side state behind one cookie. A nil Identity is an
// anonymous visitor.
type Session struct {
	ID        string
	Identity  Identity
	Flashes   Flashes
	CreatedAt time.Time
	ExpiresAt time.Time
}

// User returns the user identity, if the session has one.
func (s *Session) User() (UserIdentity, bool) {
	if s == nil {
		return UserIdentity{}, false
	}
	u, ok := s.Identity.(UserIdentity)
	return u, ok
}

// Admin returns the admin identity, if the session has one.
func (s *Session) Admin() (AdminIdentity, bool) {
	if s == nil {
		return AdminIdentity{}, false
	}
	a, ok := s.Identity.(AdminIdentity)
	return a, ok
}

// Expired reports whether the absolute lifetime has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Push appends a notice.
func (s *Session) Push(cat Category, text string) {
	if s.Flashes == nil {
		s.Flashes = make(Flashes)
	}
	s.Flashes[cat] = append(s.Flashes[cat], text)
}

// Drain returns every pending notice and clears them.
func (s *Session) Drain() Flashes {
	if s == nil || len(s.Flashes) == 0 {
		return Flashes{}
	}
	out := s.Flashes
	s.Flashes = nil
	return out
}
