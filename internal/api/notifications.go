package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/campease/client/internal/domain"
)

// wireNotification is the backend's notification shape.
type wireNotification struct {
	wireID
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Category  string   `json:"category"`
	Type      string   `json:"type"` // legacy name for category
	IsRead    bool     `json:"isRead"`
	CreatedAt wireTime `json:"createdAt"`
}

func (w wireNotification) toDomain() (domain.Notification, error) {
	if w.value() == "" {
		return domain.Notification{}, fmt.Errorf("notification without id: %w", domain.ErrDecode)
	}
	category := w.Category
	if category == "" {
		category = w.Type
	}
	return domain.Notification{
		ID:        w.value(),
		Title:     w.Title,
		Message:   w.Message,
		Category:  category,
		IsRead:    w.IsRead,
		CreatedAt: w.CreatedAt.Time(),
	}, nil
}

// UnreadCount returns the backend's authoritative unread notification count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		envelope
		UnreadCount int `json:"unreadCount"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, &resp); err != nil {
		return 0, fmt.Errorf("api.Client.UnreadCount: %w", err)
	}
	if err := resp.check(); err != nil {
		return 0, fmt.Errorf("api.Client.UnreadCount: %w", err)
	}
	if resp.UnreadCount < 0 {
		return 0, fmt.Errorf("api.Client.UnreadCount: negative count %d: %w", resp.UnreadCount, domain.ErrDecode)
	}
	return resp.UnreadCount, nil
}

// Notifications returns one page of the caller's notifications plus the
// backend's total count. Malformed entries are logged and skipped.
func (c *Client) Notifications(ctx context.Context, p domain.PaginationParams) ([]domain.Notification, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.UnreadOnly {
		q.Set("unreadOnly", "true")
	}

	var resp struct {
		envelope
		Notifications []wireNotification `json:"notifications"`
		TotalCount    int                `json:"totalCount"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications?"+q.Encode(), nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("api.Client.Notifications: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, 0, fmt.Errorf("api.Client.Notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(resp.Notifications))
	for _, raw := range resp.Notifications {
		n, err := raw.toDomain()
		if err != nil {
			c.log.WarnContext(ctx, "skipping malformed notification entry", "error", err)
			continue
		}
		out = append(out, n)
	}
	return out, resp.TotalCount, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	var resp struct{ envelope }
	if err := c.do(ctx, http.MethodPut, "/notifications/"+id+"/read", nil, &resp); err != nil {
		return fmt.Errorf("api.Client.MarkNotificationRead: %w", err)
	}
	if err := resp.check(); err != nil {
		return fmt.Errorf("api.Client.MarkNotificationRead: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification of the caller as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	var resp struct{ envelope }
	if err := c.do(ctx, http.MethodPut, "/notifications/read-all", nil, &resp); err != nil {
		return fmt.Errorf("api.Client.MarkAllNotificationsRead: %w", err)
	}
	if err := resp.check(); err != nil {
		return fmt.Errorf("api.Client.MarkAllNotificationsRead: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification.
// Returns domain.ErrNotFound when it does not exist.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	var resp struct{ envelope }
	if err := c.do(ctx, http.MethodDelete, "/notifications/"+id, nil, &resp); err != nil {
		return fmt.Errorf("api.Client.DeleteNotification: %w", err)
	}
	if err := resp.check(); err != nil {
		return fmt.Errorf("api.Client.DeleteNotification: %w", err)
	}
	return nil
}
