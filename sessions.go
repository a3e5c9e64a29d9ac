package main

import (
	"sync"
	"time"
)

// Session is a pending slot offer for one candidate.
type Session struct {
	Slots       [3]string
	RequesterID string
	CreatedAt   time.Time
}

// SessionStore holds the open slot offers, keyed by candidate id. It lives
// for the lifetime of the bot process; nothing is persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Get(candidateID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[candidateID]
	return session, ok
}

// Put stores the session, replacing any previous offer for the candidate.
func (s *SessionStore) Put(candidateID string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[candidateID] = session
}

func (s *SessionStore) Delete(candidateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, candidateID)
}

// Take removes and returns the candidate's session. Only one caller can win
// a given session.
func (s *SessionStore) Take(candidateID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[candidateID]
	if ok {
		delete(s.sessions, candidateID)
	}
	return session, ok
}

// CompareAndDelete removes the candidate's session only if it is still the
// given one, so a newer offer is never dropped by an older request.
func (s *SessionStore) CompareAndDelete(candidateID string, session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sessions[candidateID]; ok && current == session {
		delete(s.sessions, candidateID)
		return true
	}
	return false
}

// Restore puts a taken session back unless a newer one arrived meanwhile.
func (s *SessionStore) Restore(candidateID string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[candidateID]; !ok {
		s.sessions[candidateID] = session
	}
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Clear drops every open offer. Called on shutdown.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
}
