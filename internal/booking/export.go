package booking

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/campease/client/internal/domain"
)

// Rows flattens a unified booking list into pre-formatted export rows.
// One row per booking; the duration column renders per kind (nights for
// campsites, days for equipment, the time slot for activities).
func Rows(bookings []domain.Booking) []domain.BookingRow {
	rows := make([]domain.BookingRow, 0, len(bookings))
	for _, b := range bookings {
		row := domain.BookingRow{
			ID:          b.ID,
			Kind:        string(b.Kind),
			DisplayName: b.DisplayName,
			PrimaryDate: b.PrimaryDate.Format("2006-01-02"),
			Price:       strconv.FormatFloat(b.Price, 'f', 2, 64),
			Status:      string(b.Status),
		}
		if b.SecondaryDate != nil {
			row.EndDate = b.SecondaryDate.Format("2006-01-02")
		}
		switch b.Kind {
		case domain.KindCampsite:
			row.Duration = fmt.Sprintf("%d nights", b.Duration)
		case domain.KindEquipment:
			row.Duration = fmt.Sprintf("%d days", b.Duration)
		case domain.KindActivity:
			row.Duration = b.TimeSlot
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the unified booking list as CSV, header first.
func WriteCSV(w io.Writer, bookings []domain.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportHeader); err != nil {
		return fmt.Errorf("booking.WriteCSV: header: %w", err)
	}
	for _, row := range Rows(bookings) {
		record := []string{
			row.ID, row.Kind, row.DisplayName, row.PrimaryDate,
			row.EndDate, row.Duration, row.Price, row.Status,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("booking.WriteCSV: row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("booking.WriteCSV: flush: %w", err)
	}
	return nil
}
