package generator

import (
	"context"
	"sync"
	"time"

	"icon_studio/errclass"
	"icon_studio/history"
)

// Session holds the generation history of one user. Model calls run without
// the lock held, so the current entry stays readable while a request is in
// flight. Only the most recently started request may append: a completion
// that was overtaken by a newer one is dropped with errclass.ErrSuperseded.
type Session struct {
	ID        string
	CreatedAt time.Time

	agent *Agent
	now   func() time.Time

	mu      sync.Mutex
	state   history.State[Record]
	issued  uint64
	pending int
	closed  bool
}

// Snapshot is a consistent view of a session for display.
type Snapshot struct {
	SessionID string   `json:"session_id"`
	Current   *Record  `json:"current,omitempty"`
	History   []Record `json:"history"`
	Cursor    int      `json:"cursor"`
	CanUndo   bool     `json:"can_undo"`
	CanRedo   bool     `json:"can_redo"`
	Pending   bool     `json:"pending"`
}

// NewSession creates a session with an empty history.
func NewSession(id string, agent *Agent) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		agent:     agent,
		now:       func() time.Time { return time.Now().UTC() },
		state:     history.New[Record](),
	}
}

// RestoreSession recreates a session from persisted records.
func RestoreSession(id string, createdAt time.Time, agent *Agent, records []Record, cursor int) (*Session, error) {
	state, err := history.Restore(records, cursor)
	if err != nil {
		return nil, err
	}
	s := NewSession(id, agent)
	s.CreatedAt = createdAt
	s.state = state
	return s, nil
}

// Generate asks the model for a new icon and, on success, appends it to the
// history as the current entry. On failure the history is unchanged.
func (s *Session) Generate(ctx context.Context, req Request) (Record, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Record{}, err
	}
	if s.Closed() {
		return Record{}, errclass.ErrNotFound.WithDetailsf("session %s was deleted", s.ID)
	}

	ticket := s.begin()
	res, err := s.agent.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if err != nil {
		return Record{}, err
	}
	if s.closed {
		return Record{}, errclass.ErrNotFound.WithDetailsf("session %s was deleted", s.ID)
	}
	if ticket != s.issued {
		return Record{}, errclass.ErrSuperseded.WithDetails("a newer generation was started")
	}

	rec := NewRecord(req, res, s.now())
	if last, ok := history.Current(s.state); ok && rec.CreatedAt.Before(last.CreatedAt) {
		rec.CreatedAt = last.CreatedAt
	}
	s.state = history.Append(s.state, rec)
	return rec, nil
}

// Regenerate resubmits the inputs of the current entry.
func (s *Session) Regenerate(ctx context.Context) (Record, error) {
	cur, ok := s.Current()
	if !ok {
		return Record{}, errclass.ErrInvalidRequest.WithDetails("nothing to regenerate")
	}
	return s.Generate(ctx, cur.Request())
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.pending++
	return s.issued
}

// Undo selects the previous entry; a no-op at the start of history.
func (s *Session) Undo() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = history.Undo(s.state)
	return s.snapshotLocked()
}

// Redo selects the next entry; a no-op at the end of history.
func (s *Session) Redo() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = history.Redo(s.state)
	return s.snapshotLocked()
}

// Current returns the selected record.
func (s *Session) Current() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return history.Current(s.state)
}

// Close marks the session deleted. Generations still in flight complete
// with errclass.ErrNotFound and leave the history alone.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// State returns the history value, for persistence.
func (s *Session) State() history.State[Record] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		History:   s.state.Entries(),
		Cursor:    s.state.Cursor(),
		CanUndo:   history.CanUndo(s.state),
		CanRedo:   history.CanRedo(s.state),
		Pending:   s.pending > 0,
	}
	if snap.History == nil {
		snap.History = []Record{}
	}
	if cur, ok := history.Current(s.state); ok {
		snap.Current = &cur
	}
	return snap
}
