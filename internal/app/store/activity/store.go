// internal/app/store/activity/store.go
package activity

import (
	"context"
	"time"

	"github.com/metacode22/study-somoim/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding activity events.
const CollectionName = "activity_events"

// Event types for the user-facing activity log.
const (
	EventJoin     = "join"     // applied to a group
	EventLeave    = "leave"    // cancelled an application
	EventSelect   = "select"   // selected as a regular member
	EventUnselect = "unselect" // moved back to the applicant list
	EventFinalize = "finalize" // leader finalized registration
	EventCreate   = "create"   // opened a new group
)

// Label returns the Korean badge text for an event type.
func Label(eventType string) string {
	switch eventType {
	case EventJoin:
		return "신청"
	case EventLeave:
		return "취소"
	case EventSelect:
		return "선발"
	case EventUnselect:
		return "선발 취소"
	case EventFinalize:
		return "최종 등록"
	case EventCreate:
		return "개설"
	}
	return "활동"
}

// Event is one entry in a user's activity log.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Timestamp time.Time          `bson:"timestamp"`

	EventType string `bson:"event_type"`

	ChapterID      string            `bson:"chapter_id,omitempty"`
	ChapterGroupID string            `bson:"chapter_group_id,omitempty"`
	GroupName      string            `bson:"group_name,omitempty"`
	GroupType      string            `bson:"group_type,omitempty"`
	Description    string            `bson:"description,omitempty"`
	Details        map[string]string `bson:"details,omitempty"`
}

// Label returns the badge text for e.
func (e Event) Label() string { return Label(e.EventType) }

// Store manages activity events.
type Store struct {
	c *mongo.Collection
}

// New creates a new activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activity_user"),
		},
		{
			Keys:    bson.D{{Key: "chapter_group_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_activity_group"),
		},
	}
	return indexes.Ensure(ctx, s.c, models)
}

// Create records a new activity event.
func (s *Store) Create(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// ListByUser retrieves a user's most recent events, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByGroup retrieves the events recorded against one chapter group.
func (s *Store) ListByGroup(ctx context.Context, chapterGroupID string, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"chapter_group_id": chapterGroupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
