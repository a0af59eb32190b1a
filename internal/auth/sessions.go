package auth

import (
	"context"
	"sync"
)

// EventKind names a session lifecycle change.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventUserUpdated    EventKind = "user_updated"
	EventTokenRefreshed EventKind = "token_refreshed"
)

type Event struct {
	Kind    EventKind
	ChatID  int64
	Session *Session
}

// SessionStore persists sessions across restarts.
type SessionStore interface {
	SaveSession(ctx context.Context, chatID int64, session Session) error
	DeleteSession(ctx context.Context, chatID int64) error
	LoadSessions(ctx context.Context) (map[int64]Session, error)
}

// Sessions maps Telegram chats to signed-in users and notifies subscribers
// on every change.
type Sessions struct {
	mu          sync.RWMutex
	byChat      map[int64]Session
	store       SessionStore
	subscribers map[int]func(Event)
	nextID      int
}

// NewSessions returns a registry; store may be nil.
func NewSessions(store SessionStore) *Sessions {
	return &Sessions{
		byChat:      make(map[int64]Session),
		store:       store,
		subscribers: make(map[int]func(Event)),
	}
}

// Load restores persisted sessions.
func (s *Sessions) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	loaded, err := s.store.LoadSessions(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for chatID, session := range loaded {
		s.byChat[chatID] = session
	}
	s.mu.Unlock()
	return nil
}

// Put stores the session and emits kind.
func (s *Sessions) Put(ctx context.Context, chatID int64, session Session, kind EventKind) error {
	s.mu.Lock()
	s.byChat[chatID] = session
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveSession(ctx, chatID, session); err != nil {
			return err
		}
	}
	s.emit(Event{Kind: kind, ChatID: chatID, Session: &session})
	return nil
}

func (s *Sessions) Remove(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	_, ok := s.byChat[chatID]
	delete(s.byChat, chatID)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteSession(ctx, chatID); err != nil {
			return err
		}
	}
	if ok {
		s.emit(Event{Kind: EventSignedOut, ChatID: chatID})
	}
	return nil
}

func (s *Sessions) Get(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byChat[chatID]
	return session, ok
}

// All returns a copy of every session.
func (s *Sessions) All() map[int64]Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]Session, len(s.byChat))
	for chatID, session := range s.byChat {
		out[chatID] = session
	}
	return out
}

// Subscribe registers fn for every event and returns the unsubscribe func.
func (s *Sessions) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Sessions) emit(event Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}
