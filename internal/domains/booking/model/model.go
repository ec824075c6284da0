package model

import (
	"rosariello/shared/model"
	"time"
)

const (
	TableName  = "room_bookings"
	EntityName = "booking"

	FieldID           = "id"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldGuestName    = "guest_name"
	FieldGuestSurname = "guest_surname"
	FieldGuestEmail   = "guest_email"
	FieldGuestCount   = "guest_count"
	FieldStatus       = "status"
	FieldNotes        = "notes"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// BlockingStatuses are the lifecycle states that make a date range unavailable.
// Cancelled bookings never block.
var BlockingStatuses = []string{StatusPending, StatusConfirmed}

type Booking struct {
	ID           string    `db:"id"`
	StartDate    time.Time `db:"start_date"`
	EndDate      time.Time `db:"end_date"`
	GuestName    string    `db:"guest_name"`
	GuestSurname string    `db:"guest_surname"`
	GuestEmail   string    `db:"guest_email"`
	GuestCount   int       `db:"guest_count"`
	Status       string    `db:"status"`
	Notes        string    `db:"notes"`
	model.Metadata
}

// dateOnly reduces an instant to its calendar date at UTC midnight. Date
// columns scan back from the database at UTC midnight while request dates are
// parsed in the app timezone, so bounds must never be compared as instants.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}

// Overlaps reports whether the booking's half-open range [StartDate, EndDate)
// intersects [start, end). Bounds are compared as calendar dates, and touching
// boundaries do not count as an overlap, so a checkout and a checkin on the
// same calendar day are compatible.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return dateOnly(b.StartDate).Before(dateOnly(end)) && dateOnly(b.EndDate).After(dateOnly(start))
}

// IsBlocking reports whether the booking occupies its date range.
func (b *Booking) IsBlocking() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Nights returns the number of nights between two calendar dates, ignoring
// any time-of-day or timezone component.
func Nights(start, end time.Time) int {
	return int(dateOnly(end).Sub(dateOnly(start)) / (24 * time.Hour))
}
