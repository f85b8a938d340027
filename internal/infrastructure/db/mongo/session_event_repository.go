package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
)

const collectionSessionEvents = "session_events"

// SessionEventRepository appends to the session_events audit collection.
type SessionEventRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewSessionEventRepository(db *mongo.Database) ports.SessionEventRepository {
	return &SessionEventRepository{col: db.Collection(collectionSessionEvents), now: time.Now}
}

func sessionEventDoc(event *domain.SessionEvent, processedAt time.Time) bson.M {
	doc := bson.M{
		"kind":         string(event.Kind),
		"email":        event.Email,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": processedAt.UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
		doc["role"] = event.Role.String()
	}
	return doc
}

func (r *SessionEventRepository) InsertSessionEvent(ctx context.Context, event *domain.SessionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, sessionEventDoc(event, r.now())); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}
