package session

import (
	"maps"
	"time"
)

// Session is the persisted record of one browsing context.
// Timestamps are unix seconds; ExpiresAt always equals LastAccessedAt + TTL.
type Session struct {
	// Token is the session token, formatted as "<partition>.<secret>".
	Token string `json:"token"`
	// CSRFToken is compared against the value echoed by the client on
	// state-changing requests. It is never used for lookups.
	CSRFToken string `json:"csrf_token"`
	// Partition is the keyed hash of the owner key. The raw owner key is
	// never stored.
	Partition string `json:"partition"`

	Data map[string]any `json:"data,omitempty"`

	CreatedAt      int64 `json:"created_at"`
	LastAccessedAt int64 `json:"last_accessed_at"`
	ExpiresAt      int64 `json:"expires_at"`
	TTL            int64 `json:"ttl_seconds"`
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return s == nil || now.Unix() >= s.ExpiresAt
}

// ExpiresTime returns ExpiresAt as time.Time.
func (s *Session) ExpiresTime() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// TTLDuration returns TTL as time.Duration.
func (s *Session) TTLDuration() time.Duration {
	return time.Duration(s.TTL) * time.Second
}

// Clone returns a copy of the session with its own top-level data map.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Data != nil {
		c.Data = make(map[string]any, len(s.Data))
		maps.Copy(c.Data, s.Data)
	}
	return &c
}

// stamp sets the access and expiry timestamps together so they never diverge.
func (s *Session) stamp(now time.Time) {
	s.LastAccessedAt = now.Unix()
	s.ExpiresAt = s.LastAccessedAt + s.TTL
}

// Get retrieves a value from session data
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

// GetString retrieves a string value from session data
func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt retrieves an int value from session data.
// Numbers decoded from JSON-like backends arrive as float64 and are accepted.
func (s *Session) GetInt(key string) (int, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data
func (s *Session) GetBool(key string) (bool, bool) {
	val, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}
