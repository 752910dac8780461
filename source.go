package rtspgateway

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rtspgateway/rtspgateway/pkg/auth"
	"github.com/rtspgateway/rtspgateway/pkg/description"
	"github.com/rtspgateway/rtspgateway/pkg/rtpmedia"
)

// SourceState is the lifecycle state of a Source.
type SourceState int

// source states.
const (
	SourceStateStopped SourceState = iota
	SourceStateStarting
	SourceStateStarted
	SourceStateFaulted
)

// String implements fmt.Stringer.
func (s SourceState) String() string {
	switch s {
	case SourceStateStopped:
		return "stopped"
	case SourceStateStarting:
		return "starting"
	case SourceStateStarted:
		return "started"
	case SourceStateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// AuthScheme is the authentication scheme enforced on a Source.
type AuthScheme int

// authentication schemes.
const (
	AuthSchemeNone AuthScheme = iota
	AuthSchemeBasic
	AuthSchemeDigest
)

// Credential is a username/password pair checked against Authorization
// headers for a protected Source.
type Credential struct {
	User string
	Pass string
}

// Puller is the upstream RTSP client collaborator that pulls media from an
// origin camera into a Source. It is outside this module's scope: Source
// only starts, stops and polls it.
type Puller interface {
	// Start connects to the origin and begins feeding the Source.
	Start(s *Source) error
	// Stop disconnects from the origin.
	Stop()
}

// Source represents one pullable upstream, keyed by a stable identifier and
// addressable by name or alias from the Source Registry.
type Source struct {
	ID         uuid.UUID
	Name       string
	Aliases    []string
	ForceTCP   bool
	AuthScheme AuthScheme
	Credential *Credential

	puller Puller

	mu       sync.Mutex
	state    SourceState
	ready    bool
	desc     *description.Session
	contexts []*rtpmedia.TransportContext
	nonce    string
}

// NewSource creates a Source in the Stopped state. puller may be nil for a
// source fed some other way (e.g. tests).
func NewSource(name string, aliases []string, puller Puller) *Source {
	lowered := make([]string, len(aliases))
	for i, a := range aliases {
		lowered[i] = strings.ToLower(a)
	}

	return &Source{
		ID:      uuid.New(),
		Name:    name,
		Aliases: lowered,
		puller:  puller,
		state:   SourceStateStopped,
	}
}

// Start transitions the source to Starting, invokes the puller (if any),
// and moves to Started on success or Faulted on failure.
func (s *Source) Start() error {
	s.mu.Lock()
	s.state = SourceStateStarting
	p := s.puller
	s.mu.Unlock()

	if p != nil {
		if err := p.Start(s); err != nil {
			s.mu.Lock()
			s.state = SourceStateFaulted
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Lock()
	s.state = SourceStateStarted
	s.mu.Unlock()
	return nil
}

// Stop stops the puller (if any) and resets readiness.
func (s *Source) Stop() {
	s.mu.Lock()
	p := s.puller
	s.state = SourceStateStopped
	s.ready = false
	s.desc = nil
	s.contexts = nil
	s.mu.Unlock()

	if p != nil {
		p.Stop()
	}
}

// State returns the current lifecycle state.
func (s *Source) State() SourceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether the source has started and received its first
// media description.
func (s *Source) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && s.state == SourceStateStarted
}

// SetDescription installs the session description once the first media has
// arrived from the puller, and marks the source ready.
func (s *Source) SetDescription(d *description.Session, contexts []*rtpmedia.TransportContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desc = d
	s.contexts = contexts
	s.ready = true
}

// Description returns the current session description, or nil if unknown.
func (s *Source) Description() *description.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// TransportContexts returns the source's per-track transport contexts.
func (s *Source) TransportContexts() []*rtpmedia.TransportContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*rtpmedia.TransportContext, len(s.contexts))
	copy(out, s.contexts)
	return out
}

// MatchesKey reports whether key (already lowercased by the caller) names
// this source by id, name or alias.
func (s *Source) MatchesKey(key string) bool {
	if strings.EqualFold(s.Name, key) || strings.EqualFold(s.ID.String(), key) {
		return true
	}
	for _, a := range s.Aliases {
		if a == key {
			return true
		}
	}
	return false
}

// currentNonce returns the nonce most recently issued in a challenge,
// generating one on first use.
func (s *Source) currentNonce() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonce == "" {
		n, err := auth.GenerateNonce()
		if err != nil {
			n = s.ID.String()
		}
		s.nonce = n
	}
	return s.nonce
}
