package notify

import "time"

// Notification is one entry in the admin notifications feed. Sent
// tracks whether the WhatsApp message eventually went out; the feed
// row itself is written before any delivery attempt.
type Notification struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"order_id"`
	Message   string    `json:"message"`
	Sent      bool      `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}
