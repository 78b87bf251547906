package session

import (
	"fmt"
	"net/http"
	"time"

	"anonbox/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "session"

// Defaults applied by NewManager to zero Options fields.
const (
	DefaultCookieName = "anonbox.sid"
	DefaultTTL        = 24 * time.Hour
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration // absolute lifetime, never extended
	Secure     bool
}

// Manager ties the cookie, the Store and the gin request context together.
type Manager struct {
	store  Store
	tokens *TokenCodec
	opts   Options
	log    *logger.Logger
	now    func() time.Time
}

func NewManager(store Store, tokens *TokenCodec, opts Options, log *logger.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Manager{store: store, tokens: tokens, opts: opts, log: log, now: time.Now}
}

// Middleware resolves the cookie into a session and stores it in the gin
// context. Invalid, unknown or expired cookies leave the request anonymous.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := m.resolve(c); s != nil {
			c.Set(contextKey, s)
		}
		c.Next()
	}
}

func (m *Manager) resolve(c *gin.Context) *Session {
	value, err := c.Cookie(m.opts.CookieName)
	if err != nil || value == "" {
		return nil
	}
	id, err := m.tokens.Parse(value)
	if err != nil {
		if m.log != nil {
			m.log.Debugw("session_cookie_rejected", "err", err)
		}
		return nil
	}
	s, err := m.store.Get(c.Request.Context(), id)
	if err != nil {
		if m.log != nil {
			m.log.Warnw("session_load_failed", "err", err)
		}
		return nil
	}
	if s == nil || s.Expired(m.now()) {
		return nil
	}
	return s
}

// Current returns the request's session, or nil for a visitor without one.
func (m *Manager) Current(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// Establish starts a fresh session for identity, replacing any current one.
// Pending flash notices move over to the new session.
func (m *Manager) Establish(c *gin.Context, identity Identity) (*Session, error) {
	ctx := c.Request.Context()
	s := m.newSession(identity)

	if old := m.Current(c); old != nil {
		s.Flashes = old.Flashes
		if err := m.store.Delete(ctx, old.ID); err != nil && m.log != nil {
			m.log.Warnw("session_delete_failed", "err", err)
		}
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := m.setCookie(c, s); err != nil {
		return nil, err
	}
	c.Set(contextKey, s)
	return s, nil
}

// Destroy drops the current session and clears the cookie.
func (m *Manager) Destroy(c *gin.Context) error {
	var err error
	if s := m.Current(c); s != nil {
		if derr := m.store.Delete(c.Request.Context(), s.ID); derr != nil {
			err = fmt.Errorf("delete session: %w", derr)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, "", -1, "/", "", m.opts.Secure, true)
	c.Set(contextKey, (*Session)(nil))
	return err
}

// Flash queues a notice for the next rendered page, creating an anonymous
// session if needed. The session is saved before returning so the notice
// survives a redirect.
func (m *Manager) Flash(c *gin.Context, cat Category, text string) error {
	s := m.Current(c)
	if s == nil {
		s = m.newSession(nil)
		if err := m.setCookie(c, s); err != nil {
			return err
		}
		c.Set(contextKey, s)
	}
	s.Push(cat, text)
	if err := m.store.Save(c.Request.Context(), s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Drain returns and clears all pending notices in one step.
func (m *Manager) Drain(c *gin.Context) (Flashes, error) {
	s := m.Current(c)
	if s == nil || len(s.Flashes) == 0 {
		return Flashes{}, nil
	}
	out := s.Drain()
	if err := m.store.Save(c.Request.Context(), s); err != nil {
		return out, fmt.Errorf("save session: %w", err)
	}
	return out, nil
}

func (m *Manager) newSession(identity Identity) *Session {
	now := m.now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
}

func (m *Manager) setCookie(c *gin.Context, s *Session) error {
	value, err := m.tokens.Sign(s.ID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	maxAge := int(s.ExpiresAt.Sub(m.now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, value, maxAge, "/", "", m.opts.Secure, true)
	return nil
}
