// Package websession keeps one dashboard per browser. A browser session owns
// the local-storage stand-in, the backend client reading its token from it and
// the dashboard page state.
package websession

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/dashboard"
	"github.com/paperiq/dashboard/internal/session"
	"github.com/paperiq/dashboard/internal/upload"
	"go.uber.org/zap"
)

// MaxSessions limits concurrent browser sessions to bound memory use.
const MaxSessions = 500

// Defaults used when Config leaves a field zero.
const (
	DefaultTTL             = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// Config tunes the manager.
type Config struct {
	TTL             time.Duration // idle time before a session expires
	CleanupInterval time.Duration
	MaxSessions     int
	BackendURL      string
	HTTPClient      *http.Client // shared by every session's backend client
}

// Session is one browser's state.
type Session struct {
	ID        string
	Storage   *session.MemoryStorage
	Client    *backend.Client
	Dashboard *dashboard.Dashboard
	CreatedAt time.Time
}

// Authenticated reports whether the browser holds a login.
func (s *Session) Authenticated() bool {
	return session.IsAuthenticated(s.Storage)
}

// Manager stores sessions in a TTL cache. Reading a session renews it; an
// expired or deleted session has its uploaded document removed.
type Manager struct {
	cache   *cache.Cache
	cfg     Config
	uploads *upload.Manager
	logger  *zap.Logger
}

// NewManager creates a manager. The cache janitor runs for the life of the
// process.
func NewManager(cfg Config, uploads *upload.Manager, logger *zap.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = MaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		cache:   cache.New(cfg.TTL, cfg.CleanupInterval),
		cfg:     cfg,
		uploads: uploads,
		logger:  logger,
	}
	m.cache.OnEvicted(m.onEvicted)
	return m
}

// Create starts a fresh, signed-out session.
func (m *Manager) Create() *Session {
	m.evictOldestIfFull()

	id := uuid.New().String()
	store := session.NewMemoryStorage()
	log := m.logger.With(zap.String("session", shortID(id)))

	client := backend.New(m.cfg.BackendURL, store,
		backend.WithHTTPClient(m.cfg.HTTPClient),
		backend.WithLogger(log),
		backend.WithUnauthorizedHandler(func() {
			log.Info("backend session expired, login required")
		}),
	)

	s := &Session{
		ID:        id,
		Storage:   store,
		Client:    client,
		Dashboard: dashboard.New(client, m.uploads, log),
		CreatedAt: time.Now(),
	}
	m.cache.SetDefault(id, s)
	return s
}

// Get returns the session and renews its expiry.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	x, found := m.cache.Get(id)
	if !found {
		return nil, false
	}
	s := x.(*Session)
	m.cache.SetDefault(id, s)
	return s, true
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.cache.Delete(id)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// CleanupExpired drops expired sessions now instead of waiting for the
// janitor.
func (m *Manager) CleanupExpired() {
	m.cache.DeleteExpired()
}

func (m *Manager) onEvicted(id string, v any) {
	s, ok := v.(*Session)
	if !ok {
		return
	}
	s.Dashboard.ClearFile()
	m.logger.Debug("session ended", zap.String("session", shortID(id)),
		zap.Duration("age", time.Since(s.CreatedAt).Round(time.Second)))
}

// evictOldestIfFull removes the session closest to expiry when at capacity.
func (m *Manager) evictOldestIfFull() {
	items := m.cache.Items()
	if len(items) < m.cfg.MaxSessions {
		return
	}
	var oldestID string
	var oldest int64
	for id, item := range items {
		if oldestID == "" || item.Expiration < oldest {
			oldestID, oldest = id, item.Expiration
		}
	}
	m.logger.Info("session limit reached, evicting oldest", zap.String("session", shortID(oldestID)))
	m.cache.Delete(oldestID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
