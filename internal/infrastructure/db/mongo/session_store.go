package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

const collectionSessions = "console_sessions"

// SessionStore persists session records as one document per session id.
// Documents carry an expires_at field backed by a TTL index.
type SessionStore struct {
	coll *mongo.Collection
	ttl  time.Duration
	now  func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore uses the sessions collection of db. A non-positive ttl
// disables expiry.
func NewSessionStore(db *mongo.Database, ttl time.Duration) *SessionStore {
	return &SessionStore{
		coll: db.Collection(collectionSessions),
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type sessionDoc struct {
	ID          string     `bson:"_id"`
	Token       string     `bson:"token"`
	Role        string     `bson:"role"`
	DisplayName string     `bson:"display_name,omitempty"`
	UpdatedAt   int64      `bson:"updated_at"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty"`
}

// Load returns the record stored for id. Documents past their expiry are
// treated as missing even before the TTL monitor removes them.
func (s *SessionStore) Load(ctx context.Context, id string) (ports.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ports.SessionRecord{}, domain.ErrSessionNotFound
		}
		return ports.SessionRecord{}, fmt.Errorf("find session: %w", err)
	}
	if doc.ExpiresAt != nil && !doc.ExpiresAt.After(s.now()) {
		return ports.SessionRecord{}, domain.ErrSessionNotFound
	}

	if s.ttl > 0 {
		exp := s.now().Add(s.ttl)
		if _, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"expires_at": exp}}); err != nil {
			return ports.SessionRecord{}, fmt.Errorf("touch session: %w", err)
		}
	}

	return ports.SessionRecord{
		Token:       doc.Token,
		Role:        doc.Role,
		DisplayName: doc.DisplayName,
	}, nil
}

// Save upserts the record for id.
func (s *SessionStore) Save(ctx context.Context, id string, rec ports.SessionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := s.now()
	doc := sessionDoc{
		ID:          id,
		Token:       rec.Token,
		Role:        rec.Role,
		DisplayName: rec.DisplayName,
		UpdatedAt:   now.Unix(),
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		doc.ExpiresAt = &exp
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the record for id.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the TTL index that lets MongoDB drop expired sessions.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}
