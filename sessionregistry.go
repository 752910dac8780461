package rtspgateway

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SessionRegistry holds client sessions keyed by internal id and by RTSP
// Session token.
type SessionRegistry struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*Session
	byToken map[string]*Session
}

// NewSessionRegistry creates an empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byID:    make(map[uuid.UUID]*Session),
		byToken: make(map[string]*Session),
	}
}

// Add registers a Session by id, and by token if one has been minted.
func (r *SessionRegistry) Add(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sess.ID] = sess
	if tok := sess.Token(); tok != "" {
		r.byToken[tok] = sess
	}
}

// IndexToken records the token-keyed lookup for a Session that has just
// minted its token. Safe to call more than once.
func (r *SessionRegistry) IndexToken(sess *Session) {
	tok := sess.Token()
	if tok == "" {
		return
	}
	r.mu.Lock()
	r.byToken[tok] = sess
	r.mu.Unlock()
}

// Remove removes a Session from both indices.
func (r *SessionRegistry) Remove(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, sess.ID)
	if tok := sess.Token(); tok != "" {
		delete(r.byToken, tok)
	}
}

// FindByID looks up a Session by internal id.
func (r *SessionRegistry) FindByID(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.byID[id]
	return sess, ok
}

// FindByToken looks up a Session by its RTSP Session token, trimmed and
// compared case-sensitively.
func (r *SessionRegistry) FindByToken(token string) (*Session, bool) {
	token = strings.TrimSpace(token)

	r.mu.Lock()
	sess, ok := r.byToken[token]
	r.mu.Unlock()
	if ok {
		return sess, true
	}

	// token index may be briefly stale right after minting from a
	// different goroutine; fall back to a linear scan.
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.Token() == token {
			return s, true
		}
	}
	return nil, false
}

// Snapshot returns every registered Session.
func (r *SessionRegistry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}
