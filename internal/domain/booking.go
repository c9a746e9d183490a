package domain

import "time"

// BookingKind identifies which of the three backend booking shapes a unified
// Booking was normalized from.
type BookingKind string

const (
	KindCampsite  BookingKind = "campsite"
	KindActivity  BookingKind = "activity"
	KindEquipment BookingKind = "equipment"
)

// BookingStatus is the backend-owned lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Booking is the unified view model over the three heterogeneous backend
// booking shapes. It is never persisted client-side: callers re-fetch on
// every view to avoid staleness.
//
// PrimaryDate is the check-in date (campsite), activity date (activity), or
// rental start date (equipment). SecondaryDate is nil for activities.
// Duration is nights for campsites, rental days for equipment (minimum 1),
// and 0 for activities.
type Booking struct {
	ID            string
	Kind          BookingKind
	DisplayName   string
	PrimaryDate   time.Time
	SecondaryDate *time.Time
	Duration      int
	Price         float64
	Status        BookingStatus

	// Kind-specific fields. Zero values for kinds they do not apply to.
	Guests       int    // campsite
	TimeSlot     string // activity
	Participants int    // activity
	Quantity     int    // equipment
}

// DurationBetween computes the whole-day span between two dates, used for
// campsite nights and equipment rental days. Partial days round down; a
// negative or zero span clamps to the given floor.
func DurationBetween(from, to time.Time, floor int) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < floor {
		return floor
	}
	return d
}
