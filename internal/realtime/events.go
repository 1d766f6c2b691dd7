package realtime

// EventKind enumerates the server push events the client consumes.
type EventKind int

const (
	EventNotification EventKind = iota
	EventMessage
	EventBookingUpdate
	EventDietPlanUpdate
	EventWorkoutPlanUpdate
	EventProgressUpdate
	EventClassUpdate
	EventMembershipUpdate
	EventOrderUpdate

	eventKindCount
)

// methodRegisterUser binds the server-side push scope to a user id.
const methodRegisterUser = "RegisterUser"

var eventNames = [eventKindCount]string{
	EventNotification:      "ReceiveNotification",
	EventMessage:           "NewMessage",
	EventBookingUpdate:     "BookingUpdated",
	EventDietPlanUpdate:    "DietPlanUpdated",
	EventWorkoutPlanUpdate: "WorkoutPlanUpdated",
	EventProgressUpdate:    "ProgressUpdated",
	EventClassUpdate:       "ClassUpdated",
	EventMembershipUpdate:  "MembershipUpdated",
	EventOrderUpdate:       "OrderUpdated",
}

// EventKinds returns every kind in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, 0, eventKindCount)
	for k := EventKind(0); k < eventKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ServerName is the event name used on the wire.
func (k EventKind) ServerName() string {
	if !k.valid() {
		return ""
	}
	return eventNames[k]
}

func (k EventKind) String() string {
	if n := k.ServerName(); n != "" {
		return n
	}
	return "unknown"
}

func (k EventKind) valid() bool {
	return k >= 0 && k < eventKindCount
}
