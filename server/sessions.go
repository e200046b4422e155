package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"icon_studio/errclass"
	"icon_studio/generator"
	"icon_studio/storage"
)

// sessionStore keeps live sessions in memory and, when a database is
// configured, loads them lazily and writes every history change through.
type sessionStore struct {
	agent  *generator.Agent
	db     *storage.Store
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*generator.Session

	// saveMu orders snapshot capture and write so an older state never
	// overwrites a newer one.
	saveMu sync.Mutex
}

func newSessionStore(agent *generator.Agent, db *storage.Store, logger *slog.Logger) *sessionStore {
	return &sessionStore{
		agent:    agent,
		db:       db,
		logger:   logger,
		sessions: make(map[string]*generator.Session),
	}
}

func newSessionID() string {
	return uuid.NewString()
}

func (s *sessionStore) create() *generator.Session {
	sess := generator.NewSession(newSessionID(), s.agent)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.save(sess)
	return sess
}

func (s *sessionStore) get(id string) (*generator.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	if s.db == nil {
		return nil, errclass.ErrNotFound.WithDetailsf("session %s", id)
	}

	stored, err := s.db.LoadSession(id)
	if err != nil {
		return nil, err
	}
	sess, err := generator.RestoreSession(stored.ID, stored.CreatedAt, s.agent, stored.Records, stored.Cursor)
	if err != nil {
		return nil, errclass.ErrInternal.Wrap(err)
	}
	s.sessions[id] = sess
	s.logger.Debug("session restored", "session", id, "records", len(stored.Records))
	return sess, nil
}

// delete closes the live session, if any, and removes it from memory and
// the database. It holds saveMu so a save racing with it either lands
// before the row is deleted or sees the session closed and skips, and mu so
// get cannot reload the row halfway through.
func (s *sessionStore) delete(id string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, live := s.sessions[id]
	delete(s.sessions, id)
	if live {
		sess.Close()
	}

	if s.db == nil {
		if !live {
			return errclass.ErrNotFound.WithDetailsf("session %s", id)
		}
		return nil
	}
	err := s.db.DeleteSession(id)
	if live && errors.Is(err, errclass.ErrNotFound) {
		return nil
	}
	return err
}

// save writes the session history through. Closed sessions are skipped.
// Failures are logged; the in-memory session stays authoritative.
func (s *sessionStore) save(sess *generator.Session) {
	if s.db == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if sess.Closed() {
		return
	}
	if err := s.db.SaveSession(sess.ID, sess.CreatedAt, sess.State()); err != nil {
		s.logger.Error("persist session failed", "session", sess.ID, "error", err)
	}
}
