package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"hideseek-arcade/internal/game"
	"hideseek-arcade/internal/store"
)

const (
	maxSessions = 100
	stateEvery  = 2 // broadcast a state frame every N ticks
)

// ErrTooManySessions is returned when the session limit is reached
var ErrTooManySessions = errors.New("too many active sessions")

// Sender is anything that can receive messages for a session
type Sender interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// StatsStore is the persistence a session needs
type StatsStore interface {
	UserStats(ctx context.Context, username string) (game.Stats, error)
	UpdateStats(ctx context.Context, s game.Stats) error
}

// Session is one user's run plus the connections watching or driving it
type Session struct {
	ID       string
	Username string
	Game     *game.Session
	Created  time.Time

	mu          sync.RWMutex
	owner       Sender
	controllers map[Sender]bool
}

// OnUpdate relays every stateEvery-th snapshot as a msgpack frame
func (s *Session) OnUpdate(snap game.Snapshot) {
	if snap.Tick%stateEvery != 0 {
		return
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		log.Printf("session %s: marshal state: %v", s.ID, err)
		return
	}
	s.mu.RLock()
	owner := s.owner
	s.mu.RUnlock()
	if owner != nil {
		owner.SendBinary(data)
	}
}

// OnGameOver tells the owner and every controller the run has ended
func (s *Session) OnGameOver(final game.Stats, cause game.Cause) {
	msg := Envelope{T: MsgOver, Data: OverMsg{Stats: final, Cause: cause.String()}}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.owner != nil {
		s.owner.SendJSON(msg)
	}
	for c := range s.controllers {
		c.SendJSON(msg)
	}
}

// SetOwner replaces the connection that receives state frames
func (s *Session) SetOwner(owner Sender) {
	s.mu.Lock()
	s.owner = owner
	s.mu.Unlock()
}

// AddController attaches a phone controller and notifies the owner
func (s *Session) AddController(c Sender) {
	s.mu.Lock()
	s.controllers[c] = true
	owner := s.owner
	s.mu.Unlock()
	if owner != nil {
		owner.SendJSON(Envelope{T: MsgCtrlOn})
	}
}

// RemoveController detaches a phone controller and notifies the owner
func (s *Session) RemoveController(c Sender) {
	s.mu.Lock()
	_, ok := s.controllers[c]
	delete(s.controllers, c)
	owner := s.owner
	s.mu.Unlock()
	if ok && owner != nil {
		owner.SendJSON(Envelope{T: MsgCtrlOff})
	}
}

// ControllerCount returns the number of attached controllers
func (s *Session) ControllerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.controllers)
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	cfg       game.Config
	db        StatsStore
	analytics *store.Analytics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(cfg game.Config, db StatsStore, analytics *store.Analytics) *SessionManager {
	return &SessionManager{
		cfg:       cfg,
		db:        db,
		analytics: analytics,
		sessions:  make(map[string]*Session),
	}
}

// CreateSession seeds a new run from the user's stored stats. Ticking starts separately.
func (sm *SessionManager) CreateSession(ctx context.Context, username string, owner Sender) (*Session, error) {
	sm.mu.RLock()
	full := len(sm.sessions) >= maxSessions
	sm.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	seed := store.LoadStats(ctx, sm.db, username)
	sess := &Session{
		ID:          uuid.NewString(),
		Username:    username,
		Created:     time.Now(),
		owner:       owner,
		controllers: make(map[Sender]bool),
	}
	sess.Game = game.NewSession(sm.cfg, username, seed, game.Ports{
		Listener: sess,
		Stats:    &endRecorder{db: sm.db, analytics: sm.analytics, sid: sess.ID},
	})

	sm.mu.Lock()
	if len(sm.sessions) >= maxSessions {
		sm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	sm.sessions[sess.ID] = sess
	n := len(sm.sessions)
	sm.mu.Unlock()

	if sm.analytics != nil {
		sm.analytics.Track(store.EvtSessionStart, username, sess.ID, "")
		sm.analytics.SetActiveSessions(n)
	}
	return sess, nil
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemoveSession stops a session and forgets it. A run abandoned before
// defeat still has its progress saved.
func (sm *SessionManager) RemoveSession(ctx context.Context, id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	delete(sm.sessions, id)
	n := len(sm.sessions)
	sm.mu.Unlock()
	if !ok {
		return
	}

	sess.Game.Stop()
	if over, _ := sess.Game.Over(); !over {
		if err := sm.db.UpdateStats(ctx, sess.Game.Stats()); err != nil {
			log.Printf("session %s: save abandoned run: %v", id, err)
		}
		if sm.analytics != nil {
			sm.analytics.Track(store.EvtSessionEnd, sess.Username, id, `{"cause":"abandoned"}`)
		}
	}
	if sm.analytics != nil {
		sm.analytics.SetActiveSessions(n)
	}
}

// StopAll halts every session, saving runs still in progress
func (sm *SessionManager) StopAll(ctx context.Context) {
	sm.mu.RLock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.RUnlock()
	for _, id := range ids {
		sm.RemoveSession(ctx, id)
	}
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// endRecorder persists final stats and logs the end of the run
type endRecorder struct {
	db        StatsStore
	analytics *store.Analytics
	sid       string
}

func (r *endRecorder) UpdateStats(ctx context.Context, s game.Stats) error {
	if r.analytics != nil {
		data, _ := json.Marshal(map[string]interface{}{"score": s.Score, "ammo": s.Ammo})
		r.analytics.Track(store.EvtSessionEnd, s.Username, r.sid, string(data))
	}
	return r.db.UpdateStats(ctx, s)
}
