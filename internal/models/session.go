package models

import (
	"sync"
	"time"
)

// DataSession is the per-user context: the current table and the
// conversation about it. All access goes through the session manager,
// which holds Mu while reading or mutating the fields.
type DataSession struct {
	Mu sync.Mutex

	ID           string
	Upload       *UploadInfo
	Table        Table
	Warnings     []ParseWarning
	History      []ConversationEntry
	CreatedAt    time.Time
	LastAccessed time.Time
}

// NewDataSession creates an empty session with no upload.
func NewDataSession(id string) *DataSession {
	now := time.Now()
	return &DataSession{
		ID:           id,
		Table:        Table{},
		Warnings:     make([]ParseWarning, 0),
		History:      make([]ConversationEntry, 0),
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// HasData reports whether a file has been loaded into the session.
func (s *DataSession) HasData() bool {
	return s.Upload != nil && !s.Table.IsEmpty()
}

// SessionSnapshot is the read-only JSON view of a session.
type SessionSnapshot struct {
	ID           string              `json:"id"`
	FileUploaded bool                `json:"fileUploaded"`
	Upload       *UploadInfo         `json:"upload,omitempty"`
	RowCount     int                 `json:"rowCount"`
	Columns      []string            `json:"columns"`
	Warnings     []ParseWarning      `json:"warnings,omitempty"`
	History      []ConversationEntry `json:"history"`
	CreatedAt    time.Time           `json:"createdAt"`
	LastAccessed time.Time           `json:"lastAccessed"`
}

// Snapshot copies the session state. Callers must hold Mu.
func (s *DataSession) Snapshot() SessionSnapshot {
	history := make([]ConversationEntry, len(s.History))
	copy(history, s.History)
	warnings := make([]ParseWarning, len(s.Warnings))
	copy(warnings, s.Warnings)

	var upload *UploadInfo
	if s.Upload != nil {
		u := *s.Upload
		upload = &u
	}

	return SessionSnapshot{
		ID:           s.ID,
		FileUploaded: s.HasData(),
		Upload:       upload,
		RowCount:     s.Table.Len(),
		Columns:      s.Table.Columns(),
		Warnings:     warnings,
		History:      history,
		CreatedAt:    s.CreatedAt,
		LastAccessed: s.LastAccessed,
	}
}
