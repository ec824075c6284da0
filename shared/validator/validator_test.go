package validator_test

import (
	"rosariello/shared/validator"
	"strings"
	"testing"
)

type bookingPayload struct {
	StartDate  string `validate:"required,dateformat" json:"start_date"`
	EndDate    string `validate:"required,dateformat" json:"end_date"`
	GuestEmail string `validate:"required,email"      json:"guest_email"`
	GuestCount int    `validate:"required,gte=1"      json:"guest_count"`
	Status     string `validate:"omitempty,oneof=pending confirmed cancelled" json:"status"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        *bookingPayload
		expectError bool
	}{
		{
			name: "valid payload",
			data: &bookingPayload{
				StartDate:  "2026-06-01",
				EndDate:    "2026-06-04",
				GuestEmail: "maria.rossi@example.com",
				GuestCount: 2,
				Status:     "confirmed",
			},
			expectError: false,
		},
		{
			name: "missing required field",
			data: &bookingPayload{
				EndDate:    "2026-06-04",
				GuestEmail: "maria.rossi@example.com",
				GuestCount: 2,
			},
			expectError: true,
		},
		{
			name: "date not in calendar form",
			data: &bookingPayload{
				StartDate:  "01/06/2026",
				EndDate:    "2026-06-04",
				GuestEmail: "maria.rossi@example.com",
				GuestCount: 2,
			},
			expectError: true,
		},
		{
			name: "date with time component",
			data: &bookingPayload{
				StartDate:  "2026-06-01T00:00:00Z",
				EndDate:    "2026-06-04",
				GuestEmail: "maria.rossi@example.com",
				GuestCount: 2,
			},
			expectError: true,
		},
		{
			name: "invalid email",
			data: &bookingPayload{
				StartDate:  "2026-06-01",
				EndDate:    "2026-06-04",
				GuestEmail: "not-an-email",
				GuestCount: 2,
			},
			expectError: true,
		},
		{
			name: "guest count below minimum",
			data: &bookingPayload{
				StartDate:  "2026-06-01",
				EndDate:    "2026-06-04",
				GuestEmail: "maria.rossi@example.com",
				GuestCount: 0,
			},
			expectError: true,
		},
		{
			name: "unknown status",
			data: &bookingPayload{
				StartDate:  "2026-06-01",
				EndDate:    "2026-06-04",
				GuestEmail: "maria.rossi@example.com",
				GuestCount: 2,
				Status:     "maybe",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(tt.data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       interface{}
		tag         string
		expectError bool
	}{
		{
			name:        "valid date",
			field:       "2026-06-01",
			tag:         "dateformat",
			expectError: false,
		},
		{
			name:        "invalid date",
			field:       "June 1st 2026",
			tag:         "dateformat",
			expectError: true,
		},
		{
			name:        "valid required string",
			field:       "test",
			tag:         "required",
			expectError: false,
		},
		{
			name:        "empty required string",
			field:       "",
			tag:         "required",
			expectError: true,
		},
		{
			name:        "valid oneof",
			field:       "cancelled",
			tag:         "oneof=pending confirmed cancelled",
			expectError: false,
		},
		{
			name:        "invalid oneof",
			field:       "archived",
			tag:         "oneof=pending confirmed cancelled",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		jsonBody    string
		expectError bool
	}{
		{
			name:        "valid JSON",
			jsonBody:    `{"start_date":"2026-06-01","end_date":"2026-06-04","guest_email":"maria.rossi@example.com","guest_count":2}`,
			expectError: false,
		},
		{
			name:        "JSON failing validation",
			jsonBody:    `{"start_date":"2026-06-01","end_date":"2026-06-04","guest_email":"not-an-email","guest_count":2}`,
			expectError: true,
		},
		{
			name:        "malformed JSON",
			jsonBody:    `{"start_date":"2026-06-01","end_date":}`,
			expectError: true,
		},
		{
			name:        "empty JSON",
			jsonBody:    `{}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := strings.NewReader(tt.jsonBody)
			var data bookingPayload
			err := validator.Validate(reader, &data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	data := &bookingPayload{}
	err := validator.ValidateStruct(data)

	if err == nil {
		t.Fatal("expected validation error for empty struct")
	}

	if errorMsg := err.Error(); !strings.Contains(errorMsg, "required") {
		t.Errorf("expected descriptive error message containing 'required', got: %s", errorMsg)
	}
}
