package customers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/gofiber/fiber/v2"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func completeForm() CustomerForm {
	return CustomerForm{
		FullName:            "Dana Client",
		Email:               "dana@example.com",
		DateOfBirth:         "1990-04-12",
		Gender:              "female",
		HeightCm:            fptr(168),
		StartingWeightKg:    fptr(82.5),
		TargetWeightKg:      fptr(70),
		ActivityLevel:       "moderate",
		Goals:               []string{"lose weight", "sleep better"},
		DietaryRestrictions: []string{"vegetarian"},
		DailyCalorieTarget:  iptr(1800),
		PortalPassword:      "portal-pass",
	}
}

func TestValidateAllComplete(t *testing.T) {
	f := completeForm()
	if err := ValidateAll(&f); err != nil {
		t.Fatalf("complete form rejected: %v", err)
	}
}

func TestValidateStep(t *testing.T) {
	tests := []struct {
		name   string
		step   int
		mod    func(*CustomerForm)
		fields []string
	}{
		{"identity missing", StepIdentity, func(f *CustomerForm) { f.FullName = ""; f.Email = "" }, []string{"full_name", "email"}},
		{"identity bad email", StepIdentity, func(f *CustomerForm) { f.Email = "not-an-email" }, []string{"email"}},
		{"height too low", StepMetrics, func(f *CustomerForm) { f.HeightCm = fptr(49) }, []string{"height_cm"}},
		{"height too high", StepMetrics, func(f *CustomerForm) { f.HeightCm = fptr(273) }, []string{"height_cm"}},
		{"weights out of range", StepMetrics, func(f *CustomerForm) {
			f.StartingWeightKg = fptr(19)
			f.TargetWeightKg = fptr(401)
		}, []string{"starting_weight_kg", "target_weight_kg"}},
		{"unknown gender", StepMetrics, func(f *CustomerForm) { f.Gender = "robot" }, []string{"gender"}},
		{"future birth date", StepMetrics, func(f *CustomerForm) { f.DateOfBirth = "2999-01-01" }, []string{"date_of_birth"}},
		{"blank goal", StepGoals, func(f *CustomerForm) { f.Goals = []string{"ok", " "} }, []string{"goals"}},
		{"calorie target", StepGoals, func(f *CustomerForm) { f.DailyCalorieTarget = iptr(100) }, []string{"daily_calorie_target"}},
		{"short password", StepPortal, func(f *CustomerForm) { f.PortalPassword = "short" }, []string{"portal_password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := completeForm()
			tt.mod(&f)
			ve, ok := validate.As(ValidateStep(tt.step, &f))
			if !ok {
				t.Fatalf("expected validation errors")
			}
			for _, field := range tt.fields {
				if _, ok := ve[field]; !ok {
					t.Errorf("missing error for %s: %v", field, ve)
				}
			}
		})
	}
}

func TestValidateStepOnlyChecksItsFields(t *testing.T) {
	f := CustomerForm{FullName: "A", Email: "a@example.com"}
	if err := ValidateStep(StepIdentity, &f); err != nil {
		t.Errorf("step 1 should pass with identity only: %v", err)
	}
	for _, step := range []int{StepMetrics, StepGoals, StepPortal} {
		if err := ValidateStep(step, &f); err != nil {
			t.Errorf("step %d has only optional fields: %v", step, err)
		}
	}
	if err := ValidateStep(5, &f); err != ErrInvalidStep {
		t.Errorf("step 5 err = %v", err)
	}
}

func TestCleanList(t *testing.T) {
	got := cleanList([]string{" Vegan ", "vegan", "", "Keto"})
	if len(got) != 2 || got[0] != "Vegan" || got[1] != "Keto" {
		t.Errorf("cleanList = %v", got)
	}
}

func TestWeightChange(t *testing.T) {
	if WeightChange(nil, fptr(80)) != nil {
		t.Error("missing start should give nil")
	}
	if d := WeightChange(fptr(82.5), fptr(79.25)); d == nil || *d != -3.3 {
		t.Errorf("change = %v, want -3.3", d)
	}
	if d := WeightChange(fptr(60), fptr(61.04)); d == nil || *d != 1 {
		t.Errorf("change = %v, want 1", d)
	}
}

func TestValidateStepHandler(t *testing.T) {
	app := fiber.New()
	h := NewCustomerHandler(nil)
	app.Post("/customers/validate", h.ValidateStep)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
	}{
		{"valid step", "?step=1", `{"full_name":"Dana","email":"dana@example.com"}`, 200},
		{"invalid step data", "?step=2", `{"height_cm":20}`, 400},
		{"unknown step", "?step=9", `{}`, 400},
		{"missing step", "", `{}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/customers/validate"+tt.query, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.name == "invalid step data" {
				var body dto.ErrorResponse
				json.NewDecoder(resp.Body).Decode(&body)
				if body.Fields["height_cm"] == "" {
					t.Errorf("expected height_cm field error, got %+v", body)
				}
			}
		})
	}
}
