package checkins

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
)

func validRequest() SubmitCheckInRequest {
	w := 81.4
	return SubmitCheckInRequest{WeightKg: &w, Mood: 7, Energy: 6, Sleep: 8, Stress: 3, Hunger: 5}
}

func TestValidateSubmitDefaultsToToday(t *testing.T) {
	date, err := validateSubmit(validRequest())
	if err != nil {
		t.Fatalf("valid check-in rejected: %v", err)
	}
	if !date.Equal(features.Today()) {
		t.Errorf("date = %v, want today", date)
	}
}

func TestValidateSubmitWeightOptional(t *testing.T) {
	req := validRequest()
	req.WeightKg = nil
	if _, err := validateSubmit(req); err != nil {
		t.Errorf("check-in without weight rejected: %v", err)
	}
}

func TestValidateSubmitRanges(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*SubmitCheckInRequest)
		field string
	}{
		{"mood zero", func(r *SubmitCheckInRequest) { r.Mood = 0 }, "mood"},
		{"energy eleven", func(r *SubmitCheckInRequest) { r.Energy = 11 }, "energy"},
		{"sleep negative", func(r *SubmitCheckInRequest) { r.Sleep = -1 }, "sleep"},
		{"stress high", func(r *SubmitCheckInRequest) { r.Stress = 42 }, "stress"},
		{"hunger missing", func(r *SubmitCheckInRequest) { r.Hunger = 0 }, "hunger"},
		{"weight low", func(r *SubmitCheckInRequest) { w := 12.0; r.WeightKg = &w }, "weight_kg"},
		{"weight high", func(r *SubmitCheckInRequest) { w := 450.0; r.WeightKg = &w }, "weight_kg"},
		{"bad date", func(r *SubmitCheckInRequest) { r.Date = "01/02/2024" }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mod(&req)
			_, err := validateSubmit(req)
			ve, ok := validate.As(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := ve[tt.field]; !ok {
				t.Errorf("missing %s in %v", tt.field, ve)
			}
		})
	}
}
