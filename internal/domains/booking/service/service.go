package service

import (
	"context"
	"errors"
	"fmt"
	"rosariello/config"
	"rosariello/infras/otel"
	"rosariello/internal/domains/booking/model"
	"rosariello/internal/domains/booking/model/dto"
	"rosariello/internal/domains/booking/repository"
	"rosariello/shared"
	"rosariello/shared/cache"
	"rosariello/shared/constant"
	gDto "rosariello/shared/dto"
	"rosariello/shared/failure"
	"rosariello/shared/timezone"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	CheckAvailability(ctx context.Context, startDate, endDate time.Time) (bool, error)
	NightlyRate() float64
	TotalPrice(startDate, endDate time.Time) (float64, error)
}

type serviceImpl struct {
	repo  repository.Booking
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// Create stores a new booking for the requested dates. The guest count is
// checked first, then the date range, then availability, so an oversized
// party on taken dates is still reported as a guest count problem. A booking
// that survives validation is always stored as confirmed.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		user = constant.RoleGuest
	}

	if req.GuestCount > s.cfg.Booking.MaxGuests {
		return res, failure.BadRequestFromString(fmt.Sprintf("the maximum number of guests is %d", s.cfg.Booking.MaxGuests)) // nolint:wrapcheck
	}

	booking, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, err
	}

	if !booking.EndDate.After(booking.StartDate) {
		return res, failure.BadRequestFromString("end date must be after start date") // nolint:wrapcheck
	}

	conflicts, err := s.repo.FindOverlapping(ctx, booking.StartDate, booking.EndDate, model.BlockingStatuses)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking availability")

		return res, fmt.Errorf("failed to check booking availability: %w", err)
	}

	if hasBlockingConflict(conflicts, booking.StartDate, booking.EndDate) {
		return res, failure.Conflict(fmt.Sprintf("the dates %s to %s are not available", req.StartDate, req.EndDate)) // nolint:wrapcheck
	}

	booking.Status = model.StatusConfirmed

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, asFailureOr(err, "failed to create booking")
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	res.FromModel(booking, s.cfg.Booking.NightlyRate)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, shared.CalculateTotalPage(total, req.Limit), s.cfg.Booking.NightlyRate)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking, s.cfg.Booking.NightlyRate)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// Update replaces every guest-editable field of an existing booking. The
// availability re-check only runs when the dates changed or the status moves
// into a blocking state, so fixing a typo in the guest name of a booking
// surrounded by other bookings never trips a false conflict. The booking id
// and creation metadata are preserved.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		user = constant.RoleGuest
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	startDate, endDate, err := req.ParseDates()
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, err
	}

	if !endDate.After(startDate) {
		return res, failure.BadRequestFromString("end date must be after start date") // nolint:wrapcheck
	}

	// Calendar dates, not instants. The stored bounds come back at UTC
	// midnight while the request bounds are parsed in the app timezone, so an
	// instant comparison would report unchanged dates as changed.
	datesChanged := !model.SameDate(startDate, booking.StartDate) || !model.SameDate(endDate, booking.EndDate)
	statusEscalating := req.Status != booking.Status && (req.Status == model.StatusPending || req.Status == model.StatusConfirmed)

	if datesChanged || statusEscalating {
		conflicts, err := s.repo.FindOverlappingExcluding(ctx, startDate, endDate, model.BlockingStatuses, id)
		if err != nil {
			log.Error().Err(err).Msg("failed to check booking availability")

			return res, fmt.Errorf("failed to check booking availability: %w", err)
		}

		if hasBlockingConflict(conflicts, startDate, endDate) {
			return res, failure.Conflict(fmt.Sprintf("the dates %s to %s are not available", req.StartDate, req.EndDate)) // nolint:wrapcheck
		}
	}

	if req.GuestCount < 1 || req.GuestCount > s.cfg.Booking.MaxGuests {
		return res, failure.BadRequestFromString(fmt.Sprintf("the number of guests must be between 1 and %d", s.cfg.Booking.MaxGuests)) // nolint:wrapcheck
	}

	booking.StartDate = startDate
	booking.EndDate = endDate
	booking.GuestName = req.GuestName
	booking.GuestSurname = req.GuestSurname
	booking.GuestEmail = req.GuestEmail
	booking.GuestCount = req.GuestCount
	booking.Status = req.Status
	booking.Notes = req.Notes
	booking.ModifiedAt = timezone.Now()
	booking.ModifiedBy = user

	updatedFields := map[string]any{
		model.FieldStartDate:     booking.StartDate,
		model.FieldEndDate:       booking.EndDate,
		model.FieldGuestName:     booking.GuestName,
		model.FieldGuestSurname:  booking.GuestSurname,
		model.FieldGuestEmail:    booking.GuestEmail,
		model.FieldGuestCount:    booking.GuestCount,
		model.FieldStatus:        booking.Status,
		model.FieldNotes:         booking.Notes,
		constant.FieldModifiedAt: booking.ModifiedAt,
		constant.FieldModifiedBy: booking.ModifiedBy,
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return res, asFailureOr(err, "failed to update booking")
	}

	s.invalidateBookingCaches(ctx, id)

	res.FromModel(booking, s.cfg.Booking.NightlyRate)

	return res, nil
}

// Cancel marks a booking as cancelled, freeing its dates for new bookings.
// Cancelling an already cancelled booking succeeds without side effects, and
// no availability check runs since releasing a range can never conflict.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		user = constant.RoleGuest
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	booking.Status = model.StatusCancelled
	booking.ModifiedAt = timezone.Now()
	booking.ModifiedBy = user

	updatedFields := map[string]any{
		model.FieldStatus:        booking.Status,
		constant.FieldModifiedAt: booking.ModifiedAt,
		constant.FieldModifiedBy: booking.ModifiedBy,
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.invalidateBookingCaches(ctx, id)

	res.FromModel(booking, s.cfg.Booking.NightlyRate)

	return res, nil
}

// CheckAvailability reports whether [startDate, endDate) is free of blocking
// bookings. An empty or inverted range is simply unavailable, not an error.
// The answer is never cached, a stale availability result is worse than the
// extra query.
func (s *serviceImpl) CheckAvailability(ctx context.Context, startDate, endDate time.Time) (available bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !endDate.After(startDate) {
		return false, nil
	}

	conflicts, err := s.repo.FindOverlapping(ctx, startDate, endDate, model.BlockingStatuses)
	if err != nil {
		log.Error().Err(err).Msg("failed to check availability")

		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	return !hasBlockingConflict(conflicts, startDate, endDate), nil
}

func (s *serviceImpl) NightlyRate() float64 {
	return s.cfg.Booking.NightlyRate
}

// TotalPrice returns the price of a stay, the number of nights times the
// configured nightly rate.
func (s *serviceImpl) TotalPrice(startDate, endDate time.Time) (float64, error) {
	if !endDate.After(startDate) {
		return 0, failure.BadRequestFromString("end date must be after start date") // nolint:wrapcheck
	}

	return float64(model.Nights(startDate, endDate)) * s.cfg.Booking.NightlyRate, nil
}

func (s *serviceImpl) invalidateBookingCaches(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}

// hasBlockingConflict re-applies the blocking-status and range predicate to
// the rows the overlap query returned, so the engine never treats a row that
// does not actually block [start, end) as a conflict.
func hasBlockingConflict(bookings []model.Booking, start, end time.Time) bool {
	for i := range bookings {
		if bookings[i].IsBlocking() && bookings[i].Overlaps(start, end) {
			return true
		}
	}

	return false
}

// asFailureOr passes client-facing failures through untouched and wraps
// everything else. Constraint violations surfaced by the repository keep
// their status code this way.
func asFailureOr(err error, msg string) error {
	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
