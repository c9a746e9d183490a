package domain

// BookingRow is a single row in the flat CSV export of the unified booking
// list. Dates are pre-formatted so the CSV writer does not need to know
// about time zones or nil secondary dates.
type BookingRow struct {
	ID          string
	Kind        string
	DisplayName string
	PrimaryDate string // "2006-01-02" formatted date
	EndDate     string // empty string when the kind has no secondary date
	Duration    string // "3 nights", "2 days", or the time slot for activities
	Price       string
	Status      string
}

// ExportHeader is the column order for CSV export, matching BookingRow
// field order.
var ExportHeader = []string{"id", "kind", "name", "date", "end_date", "duration", "price", "status"}
