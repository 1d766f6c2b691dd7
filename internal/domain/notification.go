package domain

type NotificationType string

const (
	NotificationMessage     NotificationType = "message"
	NotificationBooking     NotificationType = "booking"
	NotificationDietPlan    NotificationType = "dietPlan"
	NotificationWorkoutPlan NotificationType = "workoutPlan"
	NotificationProgress    NotificationType = "progress"
	NotificationClass       NotificationType = "class"
	NotificationMembership  NotificationType = "membership"
	NotificationOrder       NotificationType = "order"
	NotificationReview      NotificationType = "review"
	NotificationSystem      NotificationType = "system"
	NotificationFeature     NotificationType = "feature"
	NotificationGeneral     NotificationType = "general"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationMessage:     {},
	NotificationBooking:     {},
	NotificationDietPlan:    {},
	NotificationWorkoutPlan: {},
	NotificationProgress:    {},
	NotificationClass:       {},
	NotificationMembership:  {},
	NotificationOrder:       {},
	NotificationReview:      {},
	NotificationSystem:      {},
	NotificationFeature:     {},
	NotificationGeneral:     {},
}

func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

// UnmarshalText maps types outside the known set to NotificationGeneral.
func (t *NotificationType) UnmarshalText(text []byte) error {
	nt := NotificationType(text)
	if !nt.Valid() {
		nt = NotificationGeneral
	}
	*t = nt
	return nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Notification is a server-pushed notice for the authenticated user.
// CreatedAt is kept as the server's ISO-8601 string; it is for display only.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Priority  Priority         `json:"priority"`
	IsRead    bool             `json:"isRead"`
	CreatedAt string           `json:"createdAt"`
	ActionURL string           `json:"actionUrl,omitempty"`
}
