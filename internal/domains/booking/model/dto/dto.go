package dto

import (
	"fmt"
	"rosariello/internal/domains/booking/model"
	"rosariello/shared/constant"
	"rosariello/shared/dto"
	"rosariello/shared/failure"
	"rosariello/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	StartDate    string `json:"start_date"    validate:"required,dateformat"`
	EndDate      string `json:"end_date"      validate:"required,dateformat"`
	GuestName    string `json:"guest_name"    validate:"required,max=100"`
	GuestSurname string `json:"guest_surname" validate:"required,max=100"`
	GuestEmail   string `json:"guest_email"   validate:"required,email,max=255"`
	GuestCount   int    `json:"guest_count"   validate:"required,gte=1"`
	Notes        string `json:"notes"         validate:"omitempty,max=1000"`
}

func (d *CreateBookingRequest) ToModel(username string) (booking model.Booking, err error) {
	startDate, endDate, err := parseDateRange(d.StartDate, d.EndDate)
	if err != nil {
		return booking, err
	}

	booking = model.Booking{
		ID:           uuid.New().String(),
		StartDate:    startDate,
		EndDate:      endDate,
		GuestName:    d.GuestName,
		GuestSurname: d.GuestSurname,
		GuestEmail:   d.GuestEmail,
		GuestCount:   d.GuestCount,
		Notes:        d.Notes,
	}

	booking.CreatedAt = timezone.Now()
	booking.ModifiedAt = timezone.Now()
	booking.CreatedBy = username
	booking.ModifiedBy = username

	return booking, nil
}

type UpdateBookingRequest struct {
	StartDate    string `json:"start_date"    validate:"required,dateformat"`
	EndDate      string `json:"end_date"      validate:"required,dateformat"`
	GuestName    string `json:"guest_name"    validate:"required,max=100"`
	GuestSurname string `json:"guest_surname" validate:"required,max=100"`
	GuestEmail   string `json:"guest_email"   validate:"required,email,max=255"`
	GuestCount   int    `json:"guest_count"   validate:"required,gte=1"`
	Status       string `json:"status"        validate:"required,oneof=pending confirmed cancelled"`
	Notes        string `json:"notes"         validate:"omitempty,max=1000"`
}

func (d *UpdateBookingRequest) ParseDates() (startDate, endDate time.Time, err error) {
	return parseDateRange(d.StartDate, d.EndDate)
}

func parseDateRange(start, end string) (startDate, endDate time.Time, err error) {
	startDate, err = timezone.Parse(constant.DateFormat, start)
	if err != nil {
		return startDate, endDate, failure.BadRequestFromString(fmt.Sprintf("invalid start date: %s", start))
	}

	endDate, err = timezone.Parse(constant.DateFormat, end)
	if err != nil {
		return startDate, endDate, failure.BadRequestFromString(fmt.Sprintf("invalid end date: %s", end))
	}

	return startDate, endDate, nil
}

type BookingResponse struct {
	ID           string  `json:"id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	GuestName    string  `json:"guest_name"`
	GuestSurname string  `json:"guest_surname"`
	GuestEmail   string  `json:"guest_email"`
	GuestCount   int     `json:"guest_count"`
	Status       string  `json:"status"`
	Notes        string  `json:"notes,omitempty"`
	TotalPrice   float64 `json:"total_price"`
	dto.Metadata
}

// FromModel maps a stored booking into its response shape. The total price is
// always derived from the nights covered and the configured nightly rate, it
// is never stored alongside the booking.
func (d *BookingResponse) FromModel(booking model.Booking, nightlyRate float64) {
	d.ID = booking.ID
	d.StartDate = timezone.Format(booking.StartDate, constant.DateFormat)
	d.EndDate = timezone.Format(booking.EndDate, constant.DateFormat)
	d.GuestName = booking.GuestName
	d.GuestSurname = booking.GuestSurname
	d.GuestEmail = booking.GuestEmail
	d.GuestCount = booking.GuestCount
	d.Status = booking.Status
	d.Notes = booking.Notes
	d.TotalPrice = float64(model.Nights(booking.StartDate, booking.EndDate)) * nightlyRate

	d.Metadata.FromModel(booking.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (d *GetBookingsResponse) FromModels(bookings []model.Booking, totalData, totalPage int, nightlyRate float64) {
	d.Bookings = make([]BookingResponse, len(bookings))
	d.TotalData = totalData
	d.TotalPage = totalPage

	for i, booking := range bookings {
		d.Bookings[i].FromModel(booking, nightlyRate)
	}
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type NightlyRateResponse struct {
	NightlyRate float64  `json:"nightly_rate"`
	TotalPrice  *float64 `json:"total_price,omitempty"`
}
