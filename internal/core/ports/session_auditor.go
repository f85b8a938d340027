package ports

import (
	"context"

	"github.com/vytalle/storefront/internal/core/domain"
)

// SessionAuditor receives session lifecycle events. Record must not block the
// caller for long; implementations typically enqueue.
type SessionAuditor interface {
	Record(event domain.SessionEvent)
}

// SessionEventRepository persists audit events.
type SessionEventRepository interface {
	InsertSessionEvent(ctx context.Context, event *domain.SessionEvent) error
}
