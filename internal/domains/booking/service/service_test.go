package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"rosariello/config"
	"rosariello/infras/otel/mocks"
	"rosariello/internal/domains/booking/model"
	"rosariello/internal/domains/booking/model/dto"
	bookingMocks "rosariello/internal/domains/booking/repository/mocks"
	"rosariello/internal/domains/booking/service"
	cacheMocks "rosariello/shared/cache/mocks"
	"rosariello/shared/constant"
	gDto "rosariello/shared/dto"
	"rosariello/shared/failure"
	gModel "rosariello/shared/model"
	"rosariello/shared/timezone"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Booking.NightlyRate = 60
	cfg.Booking.MaxGuests = 2
	cfg.Cache.TTL = 3600

	return cfg
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()

	date, err := timezone.Parse(constant.DateFormat, value)
	assert.NoError(t, err)

	return date
}

func storedBooking(t *testing.T, id, start, end, status string) model.Booking {
	t.Helper()

	return model.Booking{
		ID:           id,
		StartDate:    mustDate(t, start),
		EndDate:      mustDate(t, end),
		GuestName:    "Maria",
		GuestSurname: "Rossi",
		GuestEmail:   "maria.rossi@example.com",
		GuestCount:   2,
		Status:       status,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  constant.RoleGuest,
			ModifiedBy: constant.RoleGuest,
		},
	}
}

func TestBookingService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	validReq := dto.CreateBookingRequest{
		StartDate:    "2026-06-01",
		EndDate:      "2026-06-04",
		GuestName:    "Maria",
		GuestSurname: "Rossi",
		GuestEmail:   "maria.rossi@example.com",
		GuestCount:   2,
	}

	tests := []struct {
		name      string
		req       dto.CreateBookingRequest
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful creation is stored as confirmed",
			req:  validReq,
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), mustDate(t, "2026-06-01"), mustDate(t, "2026-06-04"), model.BlockingStatuses).
					Return(nil, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						assert.Equal(t, model.StatusConfirmed, booking.Status)

						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "too many guests fails before any repository call",
			req: dto.CreateBookingRequest{
				StartDate:    "2026-06-01",
				EndDate:      "2026-06-04",
				GuestName:    "Maria",
				GuestSurname: "Rossi",
				GuestEmail:   "maria.rossi@example.com",
				GuestCount:   3,
			},
			setupMock: func() {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "end date equal to start date is rejected",
			req: dto.CreateBookingRequest{
				StartDate:    "2026-06-01",
				EndDate:      "2026-06-01",
				GuestName:    "Maria",
				GuestSurname: "Rossi",
				GuestEmail:   "maria.rossi@example.com",
				GuestCount:   2,
			},
			setupMock: func() {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "overlapping booking causes a conflict",
			req:  validReq,
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{storedBooking(t, "other-id", "2026-06-03", "2026-06-06", model.StatusConfirmed)}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "insert losing the race keeps the conflict status",
			req:  validReq,
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, nil)

				mockRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(failure.Conflict("the selected dates are no longer available"))
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "availability query error",
			req:  validReq,
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database error"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Create(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, model.StatusConfirmed, res.Status)
				assert.Equal(t, float64(180), res.TotalPrice)
			}
		})
	}
}

func TestBookingService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	baseReq := dto.UpdateBookingRequest{
		StartDate:    "2026-06-01",
		EndDate:      "2026-06-04",
		GuestName:    "Maria",
		GuestSurname: "Rossi",
		GuestEmail:   "maria.rossi@example.com",
		GuestCount:   2,
		Status:       model.StatusConfirmed,
	}

	tests := []struct {
		name      string
		req       dto.UpdateBookingRequest
		id        string
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "metadata only change skips the availability check",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.GuestName = "Lucia"

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "metadata only change with dates stored at utc midnight skips the availability check",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.Notes = "late arrival"

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				// Date columns scan back at UTC midnight regardless of the
				// app timezone the request dates are parsed in.
				stored := storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed)
				stored.StartDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
				stored.EndDate = time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(stored, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "metadata only change with dates stored at an offset skips the availability check",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.Notes = "late arrival"

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				offset := time.FixedZone("UTC+2", 2*60*60)

				stored := storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed)
				stored.StartDate = time.Date(2026, 6, 1, 0, 0, 0, 0, offset)
				stored.EndDate = time.Date(2026, 6, 4, 0, 0, 0, 0, offset)

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(stored, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "changed dates rerun the availability check",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.StartDate = "2026-06-10"
				req.EndDate = "2026-06-12"

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)

				mockRepo.EXPECT().
					FindOverlappingExcluding(gomock.Any(), mustDate(t, "2026-06-10"), mustDate(t, "2026-06-12"), model.BlockingStatuses, "test-id").
					Return(nil, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "changed dates landing on a taken range conflict",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.StartDate = "2026-06-10"
				req.EndDate = "2026-06-12"

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)

				mockRepo.EXPECT().
					FindOverlappingExcluding(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{storedBooking(t, "other-id", "2026-06-11", "2026-06-13", model.StatusConfirmed)}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "reactivating a cancelled booking rechecks availability",
			req:  baseReq,
			id:   "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusCancelled), nil)

				mockRepo.EXPECT().
					FindOverlappingExcluding(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "test-id").
					Return(nil, nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "too many guests",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.GuestCount = 3

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "zero guests",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.GuestCount = 0

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "booking not found",
			req:  baseReq,
			id:   "nonexistent-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "end date before start date is rejected",
			req: func() dto.UpdateBookingRequest {
				req := baseReq
				req.StartDate = "2026-06-04"
				req.EndDate = "2026-06-01"

				return req
			}(),
			id: "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Update(context.Background(), tt.req, tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.id, res.ID)
				assert.Equal(t, tt.req.Status, res.Status)
			}
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful cancellation",
			id:   "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])

						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "cancelling an already cancelled booking succeeds",
			id:   "test-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusCancelled), nil)

				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "booking not found",
			id:   "nonexistent-id",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Cancel(context.Background(), tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, model.StatusCancelled, res.Status)
			}
		})
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	tests := []struct {
		name          string
		start         string
		end           string
		setupMock     func()
		wantErr       bool
		wantAvailable bool
	}{
		{
			name:  "free range is available",
			start: "2026-06-01",
			end:   "2026-06-04",
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), model.BlockingStatuses).
					Return(nil, nil)
			},
			wantAvailable: true,
		},
		{
			name:  "taken range is unavailable",
			start: "2026-06-01",
			end:   "2026-06-04",
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{storedBooking(t, "other-id", "2026-06-03", "2026-06-06", model.StatusPending)}, nil)
			},
			wantAvailable: false,
		},
		{
			name:          "equal dates are unavailable without querying",
			start:         "2026-06-01",
			end:           "2026-06-01",
			setupMock:     func() {},
			wantAvailable: false,
		},
		{
			name:          "inverted range is unavailable without querying",
			start:         "2026-06-04",
			end:           "2026-06-01",
			setupMock:     func() {},
			wantAvailable: false,
		},
		{
			name:  "repository error",
			start: "2026-06-01",
			end:   "2026-06-04",
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			available, err := svc.CheckAvailability(context.Background(), mustDate(t, tt.start), mustDate(t, tt.end))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantAvailable, available)
			}
		})
	}
}

func TestBookingService_TotalPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	assert.Equal(t, float64(60), svc.NightlyRate())

	price, err := svc.TotalPrice(mustDate(t, "2026-06-01"), mustDate(t, "2026-06-04"))
	assert.NoError(t, err)
	assert.Equal(t, float64(180), price)

	price, err = svc.TotalPrice(mustDate(t, "2026-06-01"), mustDate(t, "2026-06-02"))
	assert.NoError(t, err)
	assert.Equal(t, float64(60), price)

	_, err = svc.TotalPrice(mustDate(t, "2026-06-04"), mustDate(t, "2026-06-04"))
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestBookingService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
		wantPrice float64
	}{
		{
			name: "cache hit",
			id:   "test-id",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "cache miss derives the price from the stored dates",
			id:   "test-id",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed), nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantPrice: 180,
		},
		{
			name: "booking not found",
			id:   "nonexistent-id",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Get(context.Background(), tt.id)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.wantPrice > 0 {
					assert.Equal(t, tt.wantPrice, res.TotalPrice)
				}
			}
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, testConfig(), mockCache, mockOtel)

	params := gDto.QueryParams{Page: 1, Limit: 10}

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss")).
		Times(2)

	mockRepo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{storedBooking(t, "test-id", "2026-06-01", "2026-06-04", model.StatusConfirmed)}, nil)

	mockCache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, float64(180), res.Bookings[0].TotalPrice)
}
