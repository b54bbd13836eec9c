package api

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/clprng/internal/stream"
)

// streamEntry serializes every call on one stream.
type streamEntry struct {
	mu      sync.Mutex
	id      string
	device  string
	created time.Time
	s       *stream.Stream
	closed  bool
}

func (e *streamEntry) info() StreamInfo {
	cur := e.s.Cursor()
	return StreamInfo{
		ID:            e.id,
		Object:        "stream",
		CreatedAt:     e.created.Unix(),
		Device:        e.device,
		Algorithm:     e.s.Name(),
		Precision:     e.s.Precision().String(),
		Seed:          e.s.SeedValue(),
		State:         e.s.State().String(),
		Flags:         e.s.Flags(),
		Launch:        e.s.LaunchConfig(),
		BufferEntries: e.s.BufferEntries(),
		Valid:         cur.Valid(),
		Offset:        cur.Offset(),
	}
}

type StreamStore struct {
	mu      sync.Mutex
	streams map[string]*streamEntry
	limit   int
}

// NewStreamStore holds at most limit streams; limit <= 0 means unbounded.
func NewStreamStore(limit int) *StreamStore {
	return &StreamStore{
		streams: make(map[string]*streamEntry),
		limit:   limit,
	}
}

func (s *StreamStore) Add(st *stream.Stream, device string, now time.Time) (*streamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.streams) >= s.limit {
		return nil, ErrTooManyStreams
	}
	e := &streamEntry{
		id:      newStreamID(),
		device:  device,
		created: now,
		s:       st,
	}
	s.streams[e.id] = e
	return e, nil
}

func (s *StreamStore) Get(id string) (*streamEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.streams[id]
	return e, ok
}

// Remove detaches the entry; the caller closes its stream.
func (s *StreamStore) Remove(id string) (*streamEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.streams[id]
	if ok {
		delete(s.streams, id)
	}
	return e, ok
}

// List returns the entries ordered by creation time.
func (s *StreamStore) List() []*streamEntry {
	s.mu.Lock()
	out := make([]*streamEntry, 0, len(s.streams))
	for _, e := range s.streams {
		out = append(out, e)
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b *streamEntry) int {
		if c := a.created.Compare(b.created); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	return out
}

func (s *StreamStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

func (e *streamEntry) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.s.Close()
}

func newStreamID() string {
	return "strm_" + uuid.NewString()
}
