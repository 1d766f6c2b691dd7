package notifications

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fjod/gym_client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(id string, typ domain.NotificationType) domain.Notification {
	return domain.Notification{
		ID:        id,
		UserID:    "u1",
		Type:      typ,
		Title:     "title " + id,
		Message:   "message " + id,
		Priority:  domain.PriorityMedium,
		CreatedAt: "2024-01-01T00:00:00Z",
	}
}

func ids(list []domain.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestStore_AddPrependsNewest(t *testing.T) {
	s := NewStore()

	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("b", domain.NotificationOrder))

	assert.Equal(t, []string{"b", "a"}, ids(s.Notifications()))
	assert.Equal(t, 2, s.UnreadCount())
}

func TestStore_CapacityEvictsOldest(t *testing.T) {
	s := NewStore()

	for i := 0; i < 60; i++ {
		s.AddNotification(note(fmt.Sprintf("n%d", i), domain.NotificationGeneral))
	}

	list := s.Notifications()
	require.Len(t, list, DefaultCapacity)
	assert.Equal(t, "n59", list[0].ID)
	assert.Equal(t, "n10", list[len(list)-1].ID)
	for i, n := range list {
		assert.Equal(t, fmt.Sprintf("n%d", 59-i), n.ID)
	}
	assert.Equal(t, DefaultCapacity, s.UnreadCount())
}

func TestStore_CustomCapacity(t *testing.T) {
	s := NewStore(WithCapacity(2))

	s.AddNotification(note("a", domain.NotificationGeneral))
	s.AddNotification(note("b", domain.NotificationGeneral))
	s.AddNotification(note("c", domain.NotificationGeneral))

	assert.Equal(t, []string{"c", "b"}, ids(s.Notifications()))
}

func TestStore_NonPositiveCapacityKeepsDefault(t *testing.T) {
	s := NewStore(WithCapacity(0))

	for i := 0; i < DefaultCapacity+1; i++ {
		s.AddNotification(note(fmt.Sprintf("n%d", i), domain.NotificationGeneral))
	}
	assert.Equal(t, DefaultCapacity, s.Len())
}

func TestStore_MarkAsRead(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("b", domain.NotificationOrder))

	s.MarkAsRead("a")
	assert.Equal(t, 1, s.UnreadCount())

	s.MarkAsRead("a")
	assert.Equal(t, 1, s.UnreadCount())

	s.MarkAsRead("missing")
	assert.Equal(t, 1, s.UnreadCount())
	assert.Equal(t, []string{"b", "a"}, ids(s.Notifications()))
}

func TestStore_MarkAllAsRead(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("b", domain.NotificationOrder))

	s.MarkAllAsRead()
	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.Notifications() {
		assert.True(t, n.IsRead)
	}

	s.AddNotification(note("c", domain.NotificationMessage))
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_ClearNotification(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("b", domain.NotificationOrder))
	s.AddNotification(note("c", domain.NotificationMessage))

	s.ClearNotification("b")
	assert.Equal(t, []string{"c", "a"}, ids(s.Notifications()))
	assert.Equal(t, 2, s.UnreadCount())

	s.ClearNotification("missing")
	assert.Equal(t, 2, s.Len())
}

func TestStore_ClearReadNotificationKeepsUnreadCount(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("b", domain.NotificationOrder))
	s.MarkAsRead("a")

	s.ClearNotification("a")
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_ClearAllIsIdempotent(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))

	s.ClearAllNotifications()
	assert.Empty(t, s.Notifications())
	assert.Equal(t, 0, s.UnreadCount())

	s.ClearAllNotifications()
	assert.Empty(t, s.Notifications())
	assert.Equal(t, 0, s.UnreadCount())
}

func TestStore_SessionScenario(t *testing.T) {
	s := NewStore()

	s.AddNotification(note("1", domain.NotificationBooking))
	s.AddNotification(note("2", domain.NotificationOrder))
	s.AddNotification(note("3", domain.NotificationMessage))
	assert.Equal(t, []string{"3", "2", "1"}, ids(s.Notifications()))
	assert.Equal(t, 3, s.UnreadCount())

	s.MarkAsRead("2")
	assert.Equal(t, 2, s.UnreadCount())

	s.ClearNotification("3")
	assert.Equal(t, []string{"2", "1"}, ids(s.Notifications()))
	assert.Equal(t, 1, s.UnreadCount())

	s.MarkAllAsRead()
	assert.Equal(t, 0, s.UnreadCount())
}

func TestStore_DuplicateIDsKeptWithoutDedupe(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("a", domain.NotificationBooking))

	assert.Equal(t, 2, s.Len())
}

func TestStore_DedupeWindow(t *testing.T) {
	s := NewStore(WithDedupeWindow(2))

	s.AddNotification(note("a", domain.NotificationBooking))
	s.AddNotification(note("a", domain.NotificationBooking))
	assert.Equal(t, 1, s.Len())

	// "a" falls out of the window after two newer ids.
	s.AddNotification(note("b", domain.NotificationBooking))
	s.AddNotification(note("c", domain.NotificationBooking))
	s.AddNotification(note("a", domain.NotificationBooking))
	assert.Equal(t, []string{"a", "c", "b", "a"}, ids(s.Notifications()))

	s.AddNotification(note("", domain.NotificationGeneral))
	s.AddNotification(note("", domain.NotificationGeneral))
	assert.Equal(t, 6, s.Len())
}

func TestStore_NotificationsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddNotification(note("a", domain.NotificationBooking))

	list := s.Notifications()
	list[0].IsRead = true

	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				s.AddNotification(note(id, domain.NotificationGeneral))
				if i%3 == 0 {
					s.MarkAsRead(id)
				}
				_ = s.UnreadCount()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, DefaultCapacity, s.Len())
	assert.LessOrEqual(t, s.UnreadCount(), s.Len())
}
