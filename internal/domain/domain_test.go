package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationUnmarshal(t *testing.T) {
	raw := `{"id":"n1","userId":"u1","type":"workoutPlan","title":"New plan","message":"Your plan is ready","priority":"high","isRead":false,"createdAt":"2024-05-01T10:00:00Z","actionUrl":"/plans/1"}`

	var n Notification
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, NotificationWorkoutPlan, n.Type)
	assert.Equal(t, PriorityHigh, n.Priority)
	assert.Equal(t, "2024-05-01T10:00:00Z", n.CreatedAt)
	assert.Equal(t, "/plans/1", n.ActionURL)
}

func TestNotificationUnknownTypeIsGeneral(t *testing.T) {
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n1","type":"promo"}`), &n))

	assert.Equal(t, NotificationGeneral, n.Type)
	assert.True(t, n.Type.Valid())
	assert.False(t, NotificationType("promo").Valid())
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		price, discount, want string
	}{
		{"100", "20", "80"},
		{"49.99", "0", "49.99"},
		{"10", "100", "0"},
		{"19.99", "15", "16.9915"},
	}
	for _, c := range cases {
		p := Product{SellingPrice: decimal.RequireFromString(c.price), Discount: decimal.RequireFromString(c.discount)}
		assert.True(t, decimal.RequireFromString(c.want).Equal(p.DiscountedPrice()), "%s at %s%%", c.price, c.discount)
	}
}

func TestLineTotal(t *testing.T) {
	item := CartItem{DiscountedPrice: decimal.RequireFromString("12.5"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("37.5").Equal(item.LineTotal()))
}
