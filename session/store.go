package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/simplymanage/simplymanage-server/models"
)

// Session is the server-side state behind one opaque cookie: the logged-in
// user and their cart. The cart has no other persistence.
type Session struct {
	ID   string              `json:"-"`
	User *models.SessionUser `json:"user,omitempty"`
	Cart models.Cart         `json:"cart,omitempty"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// DefaultStore is the process-wide session store, set once at startup.
var DefaultStore *Store

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Init connects the default store to redis.
func Init(rdb *redis.Client, ttl time.Duration) {
	DefaultStore = NewStore(rdb, ttl)
}

func key(id string) string      { return fmt.Sprintf("app:sess:%s", id) }
func userSetKey(uid int) string { return fmt.Sprintf("app:user_sessions:%d", uid) }

// Create stores a new session for the user and returns its opaque id.
func (s *Store) Create(ctx context.Context, user *models.SessionUser) (*Session, error) {
	sess := &Session{ID: uuid.NewString(), User: user, Cart: models.Cart{}}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(sess.ID), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(user.ID), sess.ID)
	pipe.Expire(ctx, userSetKey(user.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session and refreshes its TTL, so active sessions roll.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	sess.ID = id
	s.rdb.Expire(ctx, key(id), s.ttl)
	return &sess, nil
}

// Save writes the session back, keeping the TTL window.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(sess.ID), b, s.ttl).Err()
}

// Delete removes one session.
func (s *Store) Delete(ctx context.Context, id string) error {
	sess, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if sess != nil && sess.User != nil {
		pipe.SRem(ctx, userSetKey(sess.User.ID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser drops every session of a user, used when an account is
// deactivated.
func (s *Store) RevokeAllForUser(ctx context.Context, userID int) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
