package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=./mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"rosariello/infras/otel"
	"rosariello/infras/postgres"
	"rosariello/internal/domains/booking/model"
	"rosariello/shared/constant"
	"rosariello/shared/dto"
	"rosariello/shared/failure"
	"rosariello/shared/repository"
	"time"

	"github.com/lib/pq"
)

type Booking interface {
	Insert(ctx context.Context, booking model.Booking) error
	Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter dto.FilterGroup) (int, error)
	Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) error
	FindOverlapping(ctx context.Context, startDate, endDate time.Time, statuses []string) ([]model.Booking, error)
	FindOverlappingExcluding(ctx context.Context, startDate, endDate time.Time, statuses []string, excludedID string) ([]model.Booking, error)
}

type bookingRepositoryImpl struct {
	repository.Repository[model.Booking]
}

func New(db *postgres.Connection, otl otel.Otel) Booking {
	return &bookingRepositoryImpl{
		Repository: repository.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otl),
	}
}

// Insert persists a new booking. A row rejected by the date range exclusion
// constraint is reported as a conflict so that two requests racing for the
// same dates cannot both be stored.
func (repo *bookingRepositoryImpl) Insert(ctx context.Context, booking model.Booking) error {
	if err := repo.Repository.Insert(ctx, booking); err != nil {
		return translateConstraintError(err)
	}

	return nil
}

// Update applies the given fields to the bookings matching the filter,
// translating exclusion constraint violations the same way Insert does.
func (repo *bookingRepositoryImpl) Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) error {
	if err := repo.Repository.Update(ctx, fields, filter); err != nil {
		return translateConstraintError(err)
	}

	return nil
}

// FindOverlapping returns the bookings in the given statuses whose half-open
// [start_date, end_date) range intersects [startDate, endDate). The predicate
// is start_date < endDate AND end_date > startDate, so ranges that merely
// touch at a boundary are not returned.
func (repo *bookingRepositoryImpl) FindOverlapping(ctx context.Context, startDate, endDate time.Time, statuses []string) ([]model.Booking, error) {
	return repo.GetAll(ctx, dto.QueryParams{}, overlapFilter(startDate, endDate, statuses))
}

// FindOverlappingExcluding behaves like FindOverlapping but ignores the booking
// with the given id, so a booking never conflicts with itself during an update.
func (repo *bookingRepositoryImpl) FindOverlappingExcluding(ctx context.Context, startDate, endDate time.Time, statuses []string, excludedID string) ([]model.Booking, error) {
	filter := overlapFilter(startDate, endDate, statuses)
	filter.Filters = append(filter.Filters, dto.Filter{
		ArgName:  "excluded_id",
		Field:    model.FieldID,
		Value:    excludedID,
		Operator: dto.FilterOperatorNotEq,
		Table:    model.TableName,
	})

	return repo.GetAll(ctx, dto.QueryParams{}, filter)
}

func overlapFilter(startDate, endDate time.Time, statuses []string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{
				ArgName:  "range_end",
				Field:    model.FieldStartDate,
				Value:    endDate,
				Operator: dto.FilterOperatorLess,
				Table:    model.TableName,
			},
			dto.Filter{
				ArgName:  "range_start",
				Field:    model.FieldEndDate,
				Value:    startDate,
				Operator: dto.FilterOperatorGreater,
				Table:    model.TableName,
			},
			dto.Filter{
				Field:    model.FieldStatus,
				Value:    statuses,
				Operator: dto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}
}

// constraintGuestCount matches the named check constraint on room_bookings.
const constraintGuestCount = "chk_room_bookings_guest_count"

func translateConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeExclusionViolation:
		return failure.Conflict("the selected dates are no longer available")
	case constant.PqErrorCodeCheckViolation:
		if pqErr.Constraint == constraintGuestCount {
			return failure.BadRequestFromString("the number of guests must be at least 1")
		}

		return failure.BadRequestFromString("end date must be after start date")
	default:
		return err
	}
}
