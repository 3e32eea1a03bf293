// Package memory is an in-memory implementation of the store interfaces,
// used in tests and single-instance development setups.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/sigil/core"
)

// Store holds every record behind one mutex. All methods return copies so
// callers never share memory with the store.
type Store struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]*core.Challenge
	users      map[string]*core.User
	limits     map[string]*core.RateLimitEntry
	events     []*core.SecurityEvent
	blacklist  map[string]*core.BlacklistEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		challenges: make(map[uuid.UUID]*core.Challenge),
		users:      make(map[string]*core.User),
		limits:     make(map[string]*core.RateLimitEntry),
		blacklist:  make(map[string]*core.BlacklistEntry),
	}
}

func limitKey(identifier, action string) string {
	return identifier + "|" + action
}

func (s *Store) CreateChallenge(_ context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *challenge
	s.challenges[c.ID] = &c
	return nil
}

func (s *Store) FindActiveChallenge(_ context.Context, address string, id uuid.UUID, now time.Time) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[id]
	if !ok || challenge.Address != address || !challenge.IsActive(now) {
		return nil, nil
	}

	c := *challenge
	return &c, nil
}

func (s *Store) ConsumeChallenge(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[id]
	if !ok || challenge.Used {
		return false, nil
	}

	challenge.Used = true
	return true, nil
}

func (s *Store) DeleteExpiredChallenges(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, challenge := range s.challenges {
		if challenge.ExpiresAt.Before(now) {
			delete(s.challenges, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) GetUserByAddress(_ context.Context, address string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[address]
	if !ok {
		return nil, nil
	}

	u := *user
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.users[u.Address] = &u
	return nil
}

func (s *Store) GetEntry(_ context.Context, identifier, action string) (*core.RateLimitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limits[limitKey(identifier, action)]
	if !ok {
		return nil, nil
	}

	e := *entry
	return &e, nil
}

func (s *Store) CreateEntry(_ context.Context, entry *core.RateLimitEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	s.limits[limitKey(e.Identifier, e.ActionType)] = &e
	return nil
}

func (s *Store) ResetEntry(_ context.Context, identifier, action string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limits[limitKey(identifier, action)]; ok {
		entry.AttemptCount = 1
		entry.WindowStart = now
		entry.LastAttempt = now
	}
	return nil
}

func (s *Store) IncrementEntry(_ context.Context, identifier, action string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limits[limitKey(identifier, action)]; ok {
		entry.AttemptCount++
		entry.LastAttempt = now
	}
	return nil
}

func (s *Store) DeleteEntriesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, entry := range s.limits {
		if entry.WindowStart.Before(cutoff) {
			delete(s.limits, key)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) RecordEvent(_ context.Context, event *core.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *event
	s.events = append(s.events, &e)
	return nil
}

// Events returns a snapshot of the recorded events, oldest first.
func (s *Store) Events() []core.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.SecurityEvent, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, *event)
	}
	return out
}

func (s *Store) Blacklist(_ context.Context, entry *core.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	s.blacklist[e.TokenID] = &e
	return nil
}

func (s *Store) IsBlacklisted(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.blacklist[tokenID]
	return ok, nil
}
