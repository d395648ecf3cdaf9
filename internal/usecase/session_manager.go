package usecase

import (
	"strconv"
	"sync"

	"SigTrail/internal/domain/models"
	domrepo "SigTrail/internal/domain/repository"
	applogger "SigTrail/pkg/logger"
)

// SessionManager hands out one TrackingSession per query scope. Sessions are
// created lazily and reused so repeated requests for the same scope share
// fetch dedup and aggregated metrics.
type SessionManager struct {
	source    domrepo.SignalSource
	directory domrepo.AccountDirectory
	metrics   domrepo.Metrics
	log       *applogger.Logger
	opts      []SessionOption

	mu       sync.Mutex
	sessions map[string]*TrackingSession
}

func NewSessionManager(source domrepo.SignalSource, directory domrepo.AccountDirectory, metrics domrepo.Metrics, log *applogger.Logger, opts ...SessionOption) *SessionManager {
	return &SessionManager{
		source:    source,
		directory: directory,
		metrics:   metrics,
		log:       log,
		opts:      opts,
		sessions:  make(map[string]*TrackingSession),
	}
}

// Session returns the session for the scope, creating it on first use.
func (m *SessionManager) Session(scope models.QueryScope) *TrackingSession {
	key := scopeKey(scope)
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := NewTrackingSession(m.source, m.directory, m.metrics, m.log, scope, m.opts...)
	m.sessions[key] = s
	return s
}

// Close stops every session's aggregation loop.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.sessions {
		s.Close()
		delete(m.sessions, key)
	}
}

func scopeKey(scope models.QueryScope) string {
	return scope.BotID + "|" + scope.OwnerID + "|" + strconv.FormatBool(scope.Privileged)
}
