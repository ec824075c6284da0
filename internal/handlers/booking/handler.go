package booking

import (
	"net/http"
	"rosariello/infras/otel"
	"rosariello/internal/domains/booking/model"
	"rosariello/internal/domains/booking/model/dto"
	"rosariello/internal/domains/booking/service"
	"rosariello/shared/constant"
	gDto "rosariello/shared/dto"
	"rosariello/shared/failure"
	"rosariello/shared/timezone"
	"rosariello/shared/validator"
	"rosariello/transport/http/middleware"
	"rosariello/transport/http/response"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.Booking, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/prezzo", handler.GetNightlyRate)
		routerGroup.Get("/disponibilita", handler.CheckAvailability)
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Put("/{id}", handler.UpdateBooking)
		routerGroup.Patch("/{id}/cancella", handler.CancelBooking)

		routerGroup.With(handler.auth.APIKey, handler.auth.Auth, handler.auth.RequireRole(constant.RoleAdmin)).
			Get("/", handler.GetBookings)
	})
}

// CreateBooking handles the creation of a new booking.
// @Summary Create a new booking
// @Description Book the room for a range of dates. The booking is stored as confirmed when the dates are free.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Booking created successfully")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetBookings retrieves all bookings based on query parameters.
// @Summary Get all bookings
// @Description Retrieve all bookings with optional filtering and pagination. Admin only.
// @Tags Booking
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param guest_email query string false "Filter by guest email"
// @Param status query string false "Filter by status (pending, confirmed, cancelled)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	guestEmail := r.URL.Query().Get(model.FieldGuestEmail)
	status := r.URL.Query().Get(model.FieldStatus)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if guestEmail != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldGuestEmail,
			Operator: gDto.FilterOperatorEq,
			Value:    guestEmail,
			Table:    model.TableName,
		})
	}

	if status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	bookings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Bookings retrieved successfully")

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Description Retrieve a booking by its unique identifier.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking retrieved successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// UpdateBooking replaces an existing booking by its ID.
// @Summary Update a booking by ID
// @Description Replace the details of an existing booking. The availability check only reruns when the dates change or the status moves into a blocking state.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Update Booking Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [put]
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking updated successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// CancelBooking cancels a booking by its ID.
// @Summary Cancel a booking by ID
// @Description Mark a booking as cancelled, freeing its dates. Cancelling twice is harmless.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking cancelled successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id}/cancella [patch]
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Cancel(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking cancelled successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// CheckAvailability reports whether the room is free for a date range.
// @Summary Check availability
// @Description Check whether the room is free for the half-open range [dataInizio, dataFine). Bookings ending on dataInizio do not block it.
// @Tags Booking
// @Accept json
// @Produce json
// @Param dataInizio query string true "Start date (YYYY-MM-DD)"
// @Param dataFine query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Availability"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/disponibilita [get]
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckAvailability")
	defer scope.End()

	startDate, endDate, err := dateRangeFromRequest(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse availability query")

		response.WithError(w, err)

		return
	}

	if !endDate.After(startDate) {
		response.WithJSON(w, http.StatusBadRequest, dto.AvailabilityResponse{Available: false})

		return
	}

	available, err := handler.service.CheckAvailability(ctx, startDate, endDate)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability checked successfully")

	response.WithJSON(w, http.StatusOK, dto.AvailabilityResponse{Available: available})
}

// GetNightlyRate returns the configured nightly rate, and the total price of a
// stay when a date range is supplied.
// @Summary Get the nightly rate
// @Description Retrieve the nightly rate. When dataInizio and dataFine are both given, the total price of the stay is included.
// @Tags Booking
// @Accept json
// @Produce json
// @Param dataInizio query string false "Start date (YYYY-MM-DD)"
// @Param dataFine query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.NightlyRateResponse] "Nightly rate"
// @Failure 400 {object} response.Error
// @Router /v1/bookings/prezzo [get]
func (handler *Handler) GetNightlyRate(w http.ResponseWriter, r *http.Request) {
	_, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetNightlyRate")
	defer scope.End()

	res := dto.NightlyRateResponse{NightlyRate: handler.service.NightlyRate()}

	if r.URL.Query().Get(constant.RequestParamStartDate) != "" || r.URL.Query().Get(constant.RequestParamEndDate) != "" {
		startDate, endDate, err := dateRangeFromRequest(r)
		if err != nil {
			scope.TraceError(err)

			response.WithError(w, err)

			return
		}

		totalPrice, err := handler.service.TotalPrice(startDate, endDate)
		if err != nil {
			scope.TraceError(err)

			response.WithError(w, err)

			return
		}

		res.TotalPrice = &totalPrice
	}

	response.WithJSON(w, http.StatusOK, res)
}

func dateRangeFromRequest(r *http.Request) (startDate, endDate time.Time, err error) {
	startParam := r.URL.Query().Get(constant.RequestParamStartDate)
	endParam := r.URL.Query().Get(constant.RequestParamEndDate)

	startDate, err = timezone.Parse(constant.DateFormat, startParam)
	if err != nil {
		return startDate, endDate, failure.InvalidDateParam
	}

	endDate, err = timezone.Parse(constant.DateFormat, endParam)
	if err != nil {
		return startDate, endDate, failure.InvalidDateParam
	}

	return startDate, endDate, nil
}
