// Package notifications keeps the session's bounded, newest-first list of
// pushed notifications and derives the unread count from it.
package notifications

import (
	"sync"

	"github.com/fjod/gym_client/internal/domain"
)

// DefaultCapacity is the most notifications a store holds.
const DefaultCapacity = 50

type Store struct {
	mu       sync.RWMutex
	items    []domain.Notification // index 0 is the most recent arrival
	capacity int
	seen     *recentIDs // nil unless de-duplication is enabled
}

type Option func(*Store)

func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithDedupeWindow drops a notification whose id was among the last n ids
// added. Zero disables de-duplication.
func WithDedupeWindow(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.seen = newRecentIDs(n)
		} else {
			s.seen = nil
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.items = make([]domain.Notification, 0, s.capacity)
	return s
}

// AddNotification puts n at the front and evicts the oldest entries beyond capacity.
func (s *Store) AddNotification(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen != nil && !s.seen.add(n.ID) {
		return
	}

	if len(s.items) < s.capacity {
		s.items = append(s.items, domain.Notification{})
	}
	copy(s.items[1:], s.items[:len(s.items)-1])
	s.items[0] = n
}

func (s *Store) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
			return
		}
	}
}

func (s *Store) MarkAllAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].IsRead = true
	}
}

func (s *Store) ClearNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.items[:0]
}

// UnreadCount counts entries that are not read.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Notifications returns a copy of the list, most recent first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
