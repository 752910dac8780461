package rtspgateway

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SourceRegistry holds known media sources keyed by stable identifier.
type SourceRegistry struct {
	mu        sync.Mutex
	sources   map[uuid.UUID]*Source
	listening bool
}

// NewSourceRegistry creates an empty SourceRegistry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{sources: make(map[uuid.UUID]*Source)}
}

// SetListening marks whether the server is currently accepting clients.
// Sources added while listening are started immediately.
func (r *SourceRegistry) SetListening(v bool) {
	r.mu.Lock()
	r.listening = v
	r.mu.Unlock()
}

// Add registers a source. It fails if the identifier is already present.
// If the server is listening, the source is started immediately.
func (r *SourceRegistry) Add(src *Source) error {
	r.mu.Lock()
	if _, ok := r.sources[src.ID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("source %s is already present", src.ID)
	}
	r.sources[src.ID] = src
	listening := r.listening
	r.mu.Unlock()

	if listening {
		return src.Start()
	}
	return nil
}

// Remove removes a source by id, optionally stopping it. It returns whether
// a source was actually present.
func (r *SourceRegistry) Remove(id uuid.UUID, stop bool) bool {
	r.mu.Lock()
	src, ok := r.sources[id]
	if ok {
		delete(r.sources, id)
	}
	r.mu.Unlock()

	if ok && stop {
		src.Stop()
	}
	return ok
}

// Get returns the source with the given id.
func (r *SourceRegistry) Get(id uuid.UUID) (*Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[id]
	return src, ok
}

// Iter returns a snapshot of every registered source.
func (r *SourceRegistry) Iter() []*Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	return out
}

// Resolve maps a request path such as "/live/<name-or-id>/<track>" to a
// source. The segment following "live" or "archive" is the stream key,
// matched case-insensitively against the source name, id or any alias.
// Archive handling is a stub that always returns nil.
func (r *SourceRegistry) Resolve(requestPath string) *Source {
	segs := strings.Split(strings.Trim(requestPath, "/"), "/")

	for i, seg := range segs {
		switch strings.ToLower(seg) {
		case "live":
			if i+1 >= len(segs) {
				return nil
			}
			return r.findByKey(segs[i+1])

		case "archive":
			return nil
		}
	}

	return nil
}

func (r *SourceRegistry) findByKey(key string) *Source {
	lower := strings.ToLower(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sources {
		if s.MatchesKey(lower) {
			return s
		}
	}
	return nil
}
