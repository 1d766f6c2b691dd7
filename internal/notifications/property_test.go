package notifications

import (
	"strconv"
	"testing"

	"github.com/fjod/gym_client/internal/domain"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type op struct {
	kind int
	id   int
}

func genOp() gopter.Gen {
	return gopter.CombineGens(gen.IntRange(0, 4), gen.IntRange(0, 79)).Map(func(v []interface{}) op {
		return op{kind: v[0].(int), id: v[1].(int)}
	})
}

func apply(s *Store, o op) {
	id := strconv.Itoa(o.id)
	switch o.kind {
	case 0, 1:
		s.AddNotification(domain.Notification{ID: id, Type: domain.NotificationGeneral})
	case 2:
		s.MarkAsRead(id)
	case 3:
		s.ClearNotification(id)
	case 4:
		if o.id%20 == 0 {
			s.MarkAllAsRead()
		} else if o.id%31 == 0 {
			s.ClearAllNotifications()
		}
	}
}

func TestStoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("unread count matches the unread entries", prop.ForAll(
		func(ops []op) bool {
			s := NewStore()
			for _, o := range ops {
				apply(s, o)
				unread := 0
				for _, n := range s.Notifications() {
					if !n.IsRead {
						unread++
					}
				}
				if unread != s.UnreadCount() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp()),
	))

	properties.Property("list never exceeds capacity", prop.ForAll(
		func(ops []op) bool {
			s := NewStore()
			for _, o := range ops {
				apply(s, o)
				if s.Len() > DefaultCapacity {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(300, genOp()),
	))

	properties.Property("the last added notification is first", prop.ForAll(
		func(ops []op, id int) bool {
			s := NewStore()
			for _, o := range ops {
				apply(s, o)
			}
			s.AddNotification(domain.Notification{ID: "last-" + strconv.Itoa(id)})
			list := s.Notifications()
			return len(list) > 0 && list[0].ID == "last-"+strconv.Itoa(id) && !list[0].IsRead
		},
		gen.SliceOf(genOp()),
		gen.Int(),
	))

	properties.TestingRun(t)
}
