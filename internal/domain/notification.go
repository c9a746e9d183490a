package domain

import "time"

// Notification is a read-only transient copy of a backend-owned notification.
// The client never mutates these locally beyond discarding them; read state
// changes go through the backend mutation endpoints.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// MaxLatestNotifications caps how many recent unread notifications a
// NotificationUpdate carries.
const MaxLatestNotifications = 5

// NotificationUpdate is the event fanned out to poller listeners when the
// unread count changes. UnreadCount is always the backend's authoritative
// value at the time of the last successful fetch; the client never computes
// it independently.
type NotificationUpdate struct {
	UnreadCount int
	Latest      []Notification // at most MaxLatestNotifications, newest first
}
