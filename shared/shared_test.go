package shared_test

import (
	"reflect"
	"rosariello/shared"
	"rosariello/shared/constant"
	"rosariello/shared/dto"
	"strings"
	"testing"
	"time"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{
			name:     "zero total returns 1",
			total:    0,
			limit:    10,
			expected: 1,
		},
		{
			name:     "zero limit returns 1",
			total:    100,
			limit:    0,
			expected: 1,
		},
		{
			name:     "negative limit returns 1",
			total:    100,
			limit:    -5,
			expected: 1,
		},
		{
			name:     "exact division",
			total:    100,
			limit:    10,
			expected: 10,
		},
		{
			name:     "division with remainder",
			total:    101,
			limit:    10,
			expected: 11,
		},
		{
			name:     "limit greater than total",
			total:    5,
			limit:    10,
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.CalculateTotalPage(tt.total, tt.limit)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestTransformFields(t *testing.T) {
	type updateRequest struct {
		Status     string    `db:"status"`
		EndDate    time.Time `db:"end_date"`
		GuestCount int       `db:"guest_count"`
		NoDBTag    string
	}

	endDate := time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC)

	data := updateRequest{
		Status:  "cancelled",
		EndDate: endDate,
		// GuestCount stays zero and must be skipped
		NoDBTag: "ignored",
	}

	result := shared.TransformFields(data, "admin")

	if result["status"] != "cancelled" {
		t.Errorf("expected status to be 'cancelled', got %v", result["status"])
	}

	if result["end_date"] != endDate {
		t.Errorf("expected end_date to be %v, got %v", endDate, result["end_date"])
	}

	if _, exists := result["guest_count"]; exists {
		t.Error("expected zero-valued guest_count to be skipped")
	}

	if result[constant.FieldModifiedBy] != "admin" {
		t.Errorf("expected modified_by to be 'admin', got %v", result[constant.FieldModifiedBy])
	}

	if _, ok := result[constant.FieldModifiedAt].(time.Time); !ok {
		t.Error("expected modified_at to be a time.Time")
	}

	if len(result) != 4 {
		t.Errorf("expected 4 fields, got %d: %+v", len(result), result)
	}
}

func TestTransformFields_AllZeroValues(t *testing.T) {
	type updateRequest struct {
		Status string `db:"status"`
		Notes  string `db:"notes"`
	}

	result := shared.TransformFields(updateRequest{}, "admin")

	// Only the audit fields survive
	if len(result) != 2 {
		t.Errorf("expected only the audit fields, got %+v", result)
	}
}

func TestFilterByID(t *testing.T) {
	result := shared.FilterByID("test-id", "id", "room_bookings")

	expected := dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    "id",
				Value:    "test-id",
				Operator: dto.FilterOperatorEq,
				Table:    "room_bookings",
			},
		},
	}

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %+v, got %+v", expected, result)
	}
}

func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{
			name:     "single part",
			parts:    []string{"booking:gets"},
			expected: "booking:gets",
		},
		{
			name:     "multiple parts",
			parts:    []string{"booking", "get", "test-id"},
			expected: "booking:get:test-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.BuildCacheKey(tt.parts...)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 2, Limit: 10, SortBy: "start_date", SortDir: "DESC"}
	filter := shared.FilterByID("test-id", "id", "room_bookings")

	key := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)

	if !strings.HasPrefix(key, "booking:gets:") {
		t.Errorf("expected key to start with the prefix, got %s", key)
	}

	for _, part := range []string{"p2", "l10", "start_date", "DESC", "test-id"} {
		if !strings.Contains(key, part) {
			t.Errorf("expected key to contain %q, got %s", part, key)
		}
	}

	// Different filters must produce different keys, otherwise cached
	// listings would leak across queries.
	otherKey := shared.BuildCacheKeyWithQuery("booking:gets", params, shared.FilterByID("other-id", "id", "room_bookings"))
	if key == otherKey {
		t.Errorf("expected distinct keys for distinct filters, both were %s", key)
	}
}
