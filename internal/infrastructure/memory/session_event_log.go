package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vytalle/storefront/internal/core/domain"
)

// SessionEventLog is the audit sink used when no database is configured. It
// keeps events in memory and writes each one to the log.
type SessionEventLog struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	log    zerolog.Logger
}

func NewSessionEventLog(log zerolog.Logger) *SessionEventLog {
	return &SessionEventLog{log: log}
}

func (l *SessionEventLog) InsertSessionEvent(_ context.Context, event *domain.SessionEvent) error {
	l.mu.Lock()
	l.events = append(l.events, *event)
	l.mu.Unlock()

	l.log.Info().
		Str("event", "session_audit").
		Str("kind", string(event.Kind)).
		Str("email", event.Email).
		Str("user_id", event.UserID).
		Time("occurred_at", event.OccurredAt).
		Msg("session event")
	return nil
}

// Events returns a copy of everything recorded so far.
func (l *SessionEventLog) Events() []domain.SessionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.SessionEvent(nil), l.events...)
}
