package api

import (
	"encoding/json"
	"time"

	"github.com/campease/client/internal/domain"
)

// The backend's payloads are loosely typed: IDs arrive as "id" or "_id",
// dates in more than one layout, enum-ish strings with arbitrary casing or
// missing entirely. Decoding here is tolerant per field — a missing or
// malformed field gets an explicit default — but an entry with no usable
// identity or primary date is rejected by the caller rather than passed on
// with zero values.

// wireID decodes an identifier that may arrive under "id" or "_id".
type wireID struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
}

// value returns the first non-empty identifier, or "" when both are absent.
func (w wireID) value() string {
	if w.ID != "" {
		return w.ID
	}
	return w.MongoID
}

// wireTime decodes a timestamp that may arrive as RFC 3339, as a bare date,
// or be absent. Zero value means "not present / unparsable".
type wireTime struct {
	t time.Time
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (w *wireTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Tolerate non-string timestamps (null, numbers) as "absent".
		w.t = time.Time{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			w.t = t
			return nil
		}
	}
	w.t = time.Time{}
	return nil
}

// Time returns the decoded timestamp; zero when absent or unparsable.
func (w wireTime) Time() time.Time { return w.t }

// IsZero reports whether no usable timestamp was decoded.
func (w wireTime) IsZero() bool { return w.t.IsZero() }

// bookingStatus maps a wire status string onto the closed BookingStatus set,
// defaulting to pending for anything unknown. The backend has historically
// emitted both "canceled" and "cancelled".
func bookingStatus(s string) domain.BookingStatus {
	switch s {
	case "pending", "":
		return domain.StatusPending
	case "approved", "confirmed":
		return domain.StatusApproved
	case "rejected":
		return domain.StatusRejected
	case "cancelled", "canceled":
		return domain.StatusCancelled
	case "completed":
		return domain.StatusCompleted
	default:
		return domain.StatusPending
	}
}

// userRole maps a wire role string onto the closed Role set, defaulting to
// the unprivileged role for anything unknown.
func userRole(s string) domain.Role {
	if s == string(domain.RoleAdmin) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}
