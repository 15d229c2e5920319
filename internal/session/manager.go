package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/askmydata/backend/internal/ingest"
	"github.com/askmydata/backend/internal/models"
	"github.com/askmydata/backend/internal/prompt"
)

// DefaultMaxSessions limits concurrent sessions to prevent memory exhaustion
const DefaultMaxSessions = 100

// DefaultSessionTTL is how long an idle session is kept
const DefaultSessionTTL = 60 * time.Minute

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoData          = errors.New("no data loaded: upload a file first")
	ErrNoRecords       = errors.New("file contains no records")
	// ErrEmptyQuestion marks an ask with no text; callers treat it as a no-op.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Answerer turns a prompt into answer text. Implementations report
// failures inside the answer rather than as errors.
type Answerer interface {
	Query(ctx context.Context, prompt string) string
}

// Options configures a Manager.
type Options struct {
	TTL         time.Duration
	MaxSessions int
	Registry    *ingest.Registry
	// AllowedExtensions restricts uploads; empty allows every supported type.
	AllowedExtensions []string
	Prompt            *prompt.Builder
	Answerer          Answerer
	Logger            *zap.Logger
}

// Manager owns the per-user data sessions. Each session carries its own
// table and conversation log; nothing is shared between sessions.
type Manager struct {
	sessions    *cache.Cache
	createMu    sync.Mutex
	ttl         time.Duration
	maxSessions int
	registry    *ingest.Registry
	allowed     []string
	prompt      *prompt.Builder
	answerer    Answerer
	log         *zap.Logger
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Registry == nil {
		opts.Registry = ingest.GetGlobalRegistry()
	}
	if opts.Prompt == nil {
		opts.Prompt = prompt.NewBuilder(prompt.DefaultMaxRows)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := &Manager{
		// Expiry is swept by CleanupOldSessions, not by a cache janitor.
		sessions:    cache.New(opts.TTL, 0),
		ttl:         opts.TTL,
		maxSessions: opts.MaxSessions,
		registry:    opts.Registry,
		allowed:     opts.AllowedExtensions,
		prompt:      opts.Prompt,
		answerer:    opts.Answerer,
		log:         opts.Logger.With(zap.String("component", "session")),
	}
	m.sessions.OnEvicted(func(id string, _ interface{}) {
		m.log.Debug("session removed", zap.String("session", shortID(id)))
	})
	return m
}

// Create starts a new empty session.
func (m *Manager) Create() *models.DataSession {
	m.createMu.Lock()
	defer m.createMu.Unlock()

	m.evictIfNeeded()

	s := models.NewDataSession(uuid.New().String())
	m.sessions.Set(s.ID, s, cache.DefaultExpiration)
	m.log.Info("session created", zap.String("session", shortID(s.ID)), zap.Int("active", m.sessions.ItemCount()))
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*models.DataSession, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*models.DataSession)
	m.touch(s)
	return s, true
}

// Touch extends a session's lifetime. It returns false for unknown sessions.
func (m *Manager) Touch(id string) bool {
	_, ok := m.Get(id)
	return ok
}

func (m *Manager) touch(s *models.DataSession) {
	s.Mu.Lock()
	s.LastAccessed = time.Now()
	s.Mu.Unlock()
	m.sessions.Set(s.ID, s, cache.DefaultExpiration)
}

// Delete ends a session.
func (m *Manager) Delete(id string) bool {
	if _, ok := m.sessions.Get(id); !ok {
		return false
	}
	m.sessions.Delete(id)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot(id string) (models.SessionSnapshot, error) {
	s, ok := m.Get(id)
	if !ok {
		return models.SessionSnapshot{}, ErrSessionNotFound
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Snapshot(), nil
}

// Table returns the session's current table. Records are immutable and the
// table is only ever replaced, so the slice is safe to read without a lock.
func (m *Manager) Table(id string) (models.Table, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Table, nil
}

// SetTable replaces the session's data wholesale.
func (m *Manager) SetTable(id string, upload models.UploadInfo, table models.Table, warnings []models.ParseWarning) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if warnings == nil {
		warnings = make([]models.ParseWarning, 0)
	}

	s.Mu.Lock()
	s.Upload = &upload
	s.Table = table
	s.Warnings = warnings
	s.Mu.Unlock()
	return nil
}

// LoadFile ingests an uploaded file into the session. Any failure leaves the
// session untouched; ingestion errors are *ingest.Error values.
func (m *Manager) LoadFile(id, filename string, data []byte) (models.SessionSnapshot, error) {
	if _, ok := m.Get(id); !ok {
		return models.SessionSnapshot{}, ErrSessionNotFound
	}

	start := time.Now()
	format, err := ingest.FormatFromFilenameAllowed(filename, m.allowed)
	if err != nil {
		m.log.Info("upload rejected", zap.String("session", shortID(id)), zap.String("file", filename), zap.Error(err))
		return models.SessionSnapshot{}, err
	}

	table, warnings, err := m.registry.Load(format, data)
	if err != nil {
		m.log.Warn("ingestion failed",
			zap.String("session", shortID(id)),
			zap.String("file", filename),
			zap.String("format", string(format)),
			zap.Error(err))
		return models.SessionSnapshot{}, err
	}
	if table.IsEmpty() {
		m.log.Info("upload contained no records", zap.String("session", shortID(id)), zap.String("file", filename))
		return models.SessionSnapshot{}, ErrNoRecords
	}

	upload := models.UploadInfo{
		Name:     filename,
		Format:   string(format),
		Size:     int64(len(data)),
		LoadedAt: time.Now(),
	}
	if err := m.SetTable(id, upload, table, warnings); err != nil {
		return models.SessionSnapshot{}, err
	}

	m.log.Info("file loaded",
		zap.String("session", shortID(id)),
		zap.String("file", filename),
		zap.String("format", string(format)),
		zap.Int("records", table.Len()),
		zap.Int("columns", len(table.Columns())),
		zap.Int("warnings", len(warnings)),
		zap.Duration("elapsed", time.Since(start)))

	return m.Snapshot(id)
}

// AllowedExtensions lists the upload extensions this manager accepts.
func (m *Manager) AllowedExtensions() []string {
	if len(m.allowed) == 0 {
		return append([]string(nil), ingest.SupportedExtensions...)
	}
	return append([]string(nil), m.allowed...)
}

// Summary formats the session's table for a prompt. maxRows <= 0 uses the
// configured sample size.
func (m *Manager) Summary(id string, maxRows int) (string, error) {
	table, err := m.Table(id)
	if err != nil {
		return "", err
	}
	if maxRows <= 0 {
		return m.prompt.Summary(table), nil
	}
	return prompt.FormatTable(table, maxRows), nil
}

// Ask answers a question about the session's table and appends the exchange
// to the conversation log. Failed model calls are recorded like answers.
func (m *Manager) Ask(ctx context.Context, id, question string) (models.ConversationEntry, error) {
	if question == "" {
		return models.ConversationEntry{}, ErrEmptyQuestion
	}

	s, ok := m.Get(id)
	if !ok {
		return models.ConversationEntry{}, ErrSessionNotFound
	}

	s.Mu.Lock()
	hasData := s.HasData()
	table := s.Table
	s.Mu.Unlock()

	if !hasData {
		return models.ConversationEntry{}, ErrNoData
	}
	if m.answerer == nil {
		return models.ConversationEntry{}, errors.New("no answerer configured")
	}

	askedAt := time.Now()
	answer := m.answerer.Query(ctx, m.prompt.Build(table, question))

	entry := models.ConversationEntry{
		Question: question,
		Answer:   answer,
		AskedAt:  askedAt,
	}
	if err := m.AppendEntry(id, entry); err != nil {
		return models.ConversationEntry{}, err
	}

	m.log.Info("question answered",
		zap.String("session", shortID(id)),
		zap.Int("questionChars", len(question)),
		zap.Duration("elapsed", time.Since(askedAt)))
	return entry, nil
}

// AppendEntry adds an exchange to the conversation log.
func (m *Manager) AppendEntry(id string, entry models.ConversationEntry) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.Mu.Lock()
	s.History = append(s.History, entry)
	s.Mu.Unlock()
	return nil
}

// History returns a copy of the conversation log.
func (m *Manager) History(id string) ([]models.ConversationEntry, error) {
	snap, err := m.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return snap.History, nil
}

// ClearHistory empties the conversation log. The table is kept.
func (m *Manager) ClearHistory(id string) error {
	s, ok := m.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.Mu.Lock()
	s.History = make([]models.ConversationEntry, 0)
	s.Mu.Unlock()
	m.log.Info("history cleared", zap.String("session", shortID(id)))
	return nil
}

// CleanupOldSessions removes sessions idle for longer than maxAge as well as
// any the cache has already expired.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, item := range m.sessions.Items() {
		s := item.Object.(*models.DataSession)
		s.Mu.Lock()
		last := s.LastAccessed
		s.Mu.Unlock()

		if last.Before(cutoff) {
			m.sessions.Delete(id)
			removed++
			m.log.Info("cleaned up idle session",
				zap.String("session", shortID(id)),
				zap.Duration("idle", time.Since(last).Round(time.Second)))
		}
	}
	m.sessions.DeleteExpired()

	if removed > 0 {
		m.log.Debug("session cleanup complete", zap.Int("removed", removed), zap.Int("active", m.sessions.ItemCount()))
	}
}

// evictIfNeeded removes the least recently used sessions when at capacity.
// Callers must hold createMu.
func (m *Manager) evictIfNeeded() {
	items := m.sessions.Items()
	if len(items) < m.maxSessions {
		return
	}

	type aged struct {
		id   string
		last time.Time
	}
	list := make([]aged, 0, len(items))
	for id, item := range items {
		s := item.Object.(*models.DataSession)
		s.Mu.Lock()
		list = append(list, aged{id: id, last: s.LastAccessed})
		s.Mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].last.Before(list[j].last)
	})

	toFree := len(list) - m.maxSessions + 1
	for i := 0; i < toFree; i++ {
		m.sessions.Delete(list[i].id)
		m.log.Info("evicted least recently used session", zap.String("session", shortID(list[i].id)))
	}
}

// shortID safely truncates an ID for logging
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
