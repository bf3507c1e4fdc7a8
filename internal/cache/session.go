package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionStore is ephemeral session-scoped storage used to hand a document
// from the submission request to the results request. Entries expire after
// the session TTL and never touch disk.
type SessionStore struct {
	memory *MemoryCache
	ttl    time.Duration
}

// NewSessionStore creates a session store with the given TTL
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		memory: NewMemoryCache(ttl, ttl/2),
		ttl:    ttl,
	}
}

// Put stores v as JSON under the session id
func (s *SessionStore) Put(sessionID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session value: %w", err)
	}
	return s.memory.Set(sessionKey(sessionID), data, s.ttl)
}

// Load decodes the value stored under the session id into v.
// It reports false when the session has no value or it expired.
func (s *SessionStore) Load(sessionID string, v any) (bool, error) {
	data, ok := s.memory.Get(sessionKey(sessionID))
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal session value: %w", err)
	}
	return true, nil
}

// Forget removes a session
func (s *SessionStore) Forget(sessionID string) {
	_ = s.memory.Delete(sessionKey(sessionID))
}

func sessionKey(id string) string {
	return "session:" + id
}
