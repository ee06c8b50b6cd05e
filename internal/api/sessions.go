package api

import (
	"context"
	"errors"
	"sync"

	"arlingtonfleet/fleetmaint/internal/docviewer"
)

var ErrNoOpenSession = errors.New("no open document session")

// SessionManager tracks open traceability editing sessions by record id.
// The viewer screen only ever shows one sheet, but closing is async, so
// a short-lived overlap between sessions of different records is allowed.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*docviewer.Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*docviewer.Session)}
}

// Put registers a session, closing any previous one for the same record.
func (m *SessionManager) Put(ctx context.Context, s *docviewer.Session) error {
	m.mu.Lock()
	previous := m.sessions[s.RecordID()]
	m.sessions[s.RecordID()] = s
	m.mu.Unlock()

	if previous != nil {
		return previous.Close(ctx)
	}
	return nil
}

// Get returns the open session of a record.
func (m *SessionManager) Get(recordID string) (*docviewer.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[recordID]
	if !ok {
		return nil, ErrNoOpenSession
	}
	return s, nil
}

// Close flushes and removes a record's session.
func (m *SessionManager) Close(ctx context.Context, recordID string) error {
	m.mu.Lock()
	s, ok := m.sessions[recordID]
	delete(m.sessions, recordID)
	m.mu.Unlock()

	if !ok {
		return ErrNoOpenSession
	}
	return s.Close(ctx)
}

// CloseAll flushes every open session, for shutdown.
func (m *SessionManager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	open := make([]*docviewer.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.sessions = make(map[string]*docviewer.Session)
	m.mu.Unlock()

	for _, s := range open {
		_ = s.Close(ctx)
	}
}

// Len reports the number of open sessions, for the metrics gauge.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
