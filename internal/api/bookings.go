package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campease/client/internal/domain"
)

// The three booking kinds arrive in three different shapes from three
// different endpoints. Each wire type normalizes itself into the unified
// domain.Booking; entries with no identity or no usable primary date are
// skipped with a warn log instead of contributing zero-valued bookings.

// wireCampsiteBooking is the shape returned by GET /bookings.
type wireCampsiteBooking struct {
	wireID
	Campsite struct {
		Name string `json:"name"`
	} `json:"campsite"`
	CheckIn    wireTime `json:"checkIn"`
	CheckOut   wireTime `json:"checkOut"`
	Guests     int      `json:"guests"`
	TotalPrice float64  `json:"totalPrice"`
	Status     string   `json:"status"`
}

func (w wireCampsiteBooking) toDomain() (domain.Booking, error) {
	if w.value() == "" {
		return domain.Booking{}, fmt.Errorf("campsite booking without id: %w", domain.ErrDecode)
	}
	if w.CheckIn.IsZero() {
		return domain.Booking{}, fmt.Errorf("campsite booking %s without check-in date: %w", w.value(), domain.ErrDecode)
	}

	b := domain.Booking{
		ID:          w.value(),
		Kind:        domain.KindCampsite,
		DisplayName: w.Campsite.Name,
		PrimaryDate: w.CheckIn.Time(),
		Guests:      w.Guests,
		Price:       w.TotalPrice,
		Status:      bookingStatus(w.Status),
	}
	if !w.CheckOut.IsZero() {
		out := w.CheckOut.Time()
		b.SecondaryDate = &out
		// Nights stayed; a same-day checkout still counts as one night.
		b.Duration = domain.DurationBetween(b.PrimaryDate, out, 1)
	}
	return b, nil
}

// wireActivityBooking is the shape returned by GET /activity-bookings.
type wireActivityBooking struct {
	wireID
	Activity struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	} `json:"activity"`
	Date         wireTime `json:"date"`
	TimeSlot     string   `json:"timeSlot"`
	Participants int      `json:"participants"`
	TotalPrice   float64  `json:"totalPrice"`
	Status       string   `json:"status"`
}

func (w wireActivityBooking) toDomain() (domain.Booking, error) {
	if w.value() == "" {
		return domain.Booking{}, fmt.Errorf("activity booking without id: %w", domain.ErrDecode)
	}
	if w.Date.IsZero() {
		return domain.Booking{}, fmt.Errorf("activity booking %s without date: %w", w.value(), domain.ErrDecode)
	}

	name := w.Activity.Title
	if name == "" {
		name = w.Activity.Name
	}
	return domain.Booking{
		ID:           w.value(),
		Kind:         domain.KindActivity,
		DisplayName:  name,
		PrimaryDate:  w.Date.Time(),
		TimeSlot:     w.TimeSlot,
		Participants: w.Participants,
		Price:        w.TotalPrice,
		Status:       bookingStatus(w.Status),
	}, nil
}

// wireEquipmentBooking is the shape returned by GET /equipment-bookings.
type wireEquipmentBooking struct {
	wireID
	Equipment struct {
		Name string `json:"name"`
	} `json:"equipment"`
	StartDate  wireTime `json:"startDate"`
	EndDate    wireTime `json:"endDate"`
	Quantity   int      `json:"quantity"`
	TotalPrice float64  `json:"totalPrice"`
	Status     string   `json:"status"`
}

func (w wireEquipmentBooking) toDomain() (domain.Booking, error) {
	if w.value() == "" {
		return domain.Booking{}, fmt.Errorf("equipment booking without id: %w", domain.ErrDecode)
	}
	if w.StartDate.IsZero() {
		return domain.Booking{}, fmt.Errorf("equipment booking %s without start date: %w", w.value(), domain.ErrDecode)
	}

	b := domain.Booking{
		ID:          w.value(),
		Kind:        domain.KindEquipment,
		DisplayName: w.Equipment.Name,
		PrimaryDate: w.StartDate.Time(),
		Quantity:    w.Quantity,
		Price:       w.TotalPrice,
		Status:      bookingStatus(w.Status),
	}
	if !w.EndDate.IsZero() {
		end := w.EndDate.Time()
		b.SecondaryDate = &end
		// Rental days; same-day return is a one-day rental.
		b.Duration = domain.DurationBetween(b.PrimaryDate, end, 1)
	} else {
		b.Duration = 1
	}
	return b, nil
}

// bookingDecoder is satisfied by each wire booking shape.
type bookingDecoder interface {
	toDomain() (domain.Booking, error)
}

// bookingsResponse is the envelope shared by all three booking list
// endpoints; Data is decoded per kind by the caller.
type bookingsResponse[T bookingDecoder] struct {
	envelope
	Data []T `json:"data"`
}

// CampsiteBookings returns the caller's campsite bookings, normalized.
func (c *Client) CampsiteBookings(ctx context.Context) ([]domain.Booking, error) {
	return listBookings[wireCampsiteBooking](ctx, c, "/bookings")
}

// ActivityBookings returns the caller's activity bookings, normalized.
func (c *Client) ActivityBookings(ctx context.Context) ([]domain.Booking, error) {
	return listBookings[wireActivityBooking](ctx, c, "/activity-bookings")
}

// EquipmentBookings returns the caller's equipment rental bookings, normalized.
func (c *Client) EquipmentBookings(ctx context.Context) ([]domain.Booking, error) {
	return listBookings[wireEquipmentBooking](ctx, c, "/equipment-bookings")
}

// listBookings fetches one kind endpoint and normalizes its entries.
// Malformed entries are logged and skipped; only transport-level or
// envelope-level failures error out the whole list.
func listBookings[T bookingDecoder](ctx context.Context, c *Client, path string) ([]domain.Booking, error) {
	var resp bookingsResponse[T]
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("api.Client.listBookings: %w", err)
	}
	if err := resp.check(); err != nil {
		return nil, fmt.Errorf("api.Client.listBookings: %s: %w", path, err)
	}

	out := make([]domain.Booking, 0, len(resp.Data))
	for _, raw := range resp.Data {
		b, err := raw.toDomain()
		if err != nil {
			c.log.WarnContext(ctx, "skipping malformed booking entry", "path", path, "error", err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// CancelBooking cancels a campsite booking by ID.
// Returns domain.ErrNotFound when the booking does not exist.
func (c *Client) CancelBooking(ctx context.Context, id string) error {
	var resp struct{ envelope }
	if err := c.do(ctx, http.MethodPost, "/bookings/"+id+"/cancel", nil, &resp); err != nil {
		return fmt.Errorf("api.Client.CancelBooking: %w", err)
	}
	if err := resp.check(); err != nil {
		return fmt.Errorf("api.Client.CancelBooking: %w", err)
	}
	return nil
}
