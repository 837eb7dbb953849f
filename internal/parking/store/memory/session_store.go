package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jmuhire/parkgate/internal/parking/store"
	"github.com/jmuhire/parkgate/internal/parking/types"
)

// SessionStore is an in-memory session ledger for tests and dev runs. It
// honors the same versioning contract as the sqlite store.
type SessionStore struct {
	mu       sync.Mutex
	nextSeq  int64
	sessions []types.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{nextSeq: 1}
}

func (s *SessionStore) LatestSession(_ context.Context, plate string) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].Plate == plate {
			out := cloneSession(s.sessions[i])
			return &out, nil
		}
	}
	return nil, nil
}

func (s *SessionStore) CreateSession(_ context.Context, plate string, entryTime time.Time) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := types.Session{
		SequenceID: s.nextSeq,
		Plate:      plate,
		EntryTime:  entryTime.UTC(),
		Status:     types.Unpaid,
	}
	s.nextSeq++
	s.sessions = append(s.sessions, sess)
	return cloneSession(sess), nil
}

func (s *SessionStore) UpdateSession(_ context.Context, sess types.Session, expectVersion int64) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].SequenceID != sess.SequenceID {
			continue
		}
		if s.sessions[i].Version != expectVersion {
			return types.Session{}, store.ErrVersionMismatch
		}
		s.sessions[i].ExitTime = cloneTime(sess.ExitTime)
		s.sessions[i].AmountDue = cloneAmount(sess.AmountDue)
		s.sessions[i].Status = sess.Status
		s.sessions[i].Version = expectVersion + 1
		return cloneSession(s.sessions[i]), nil
	}
	return types.Session{}, store.ErrVersionMismatch
}

func (s *SessionStore) ListSessions(_ context.Context) ([]types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = cloneSession(sess)
	}
	return out, nil
}

func cloneSession(sess types.Session) types.Session {
	sess.ExitTime = cloneTime(sess.ExitTime)
	sess.AmountDue = cloneAmount(sess.AmountDue)
	return sess
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneAmount(a *int64) *int64 {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}
