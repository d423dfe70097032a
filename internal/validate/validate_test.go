package validate

import (
	"fmt"
	"testing"
)

func TestErrorsCollectFirstProblemPerField(t *testing.T) {
	e := Errors{}
	Required(e, "full_name", "  ")
	MaxLen(e, "full_name", "this would be second", 3)
	Email(e, "email", "not-an-email")
	IntRange(e, "mood", 11, 1, 10)

	if len(e) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(e), e)
	}
	if e["full_name"] != "is required" {
		t.Errorf("full_name = %q, want first message kept", e["full_name"])
	}
	if e["mood"] != "must be between 1 and 10" {
		t.Errorf("mood = %q", e["mood"])
	}

	want := "validation failed: email: must be a valid email address; full_name: is required; mood: must be between 1 and 10"
	if e.Error() != want {
		t.Errorf("Error() = %q\nwant      %q", e.Error(), want)
	}
}

func TestErrNilWhenEmpty(t *testing.T) {
	e := Errors{}
	Required(e, "name", "Ana")
	OneOf(e, "meal_type", "lunch", "breakfast", "lunch", "dinner", "snack")
	OptionalFloatRange(e, "weight_kg", nil, 20, 400)
	OptionalIntRange(e, "sleep", nil, 1, 10)
	if err := e.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	e := Errors{}
	NonNegative(e, "calories", -5)
	wrapped := fmt.Errorf("create food log: %w", e.Err())

	got, ok := As(wrapped)
	if !ok {
		t.Fatal("As() did not find validation errors")
	}
	if got["calories"] != "must not be negative" {
		t.Errorf("calories = %q", got["calories"])
	}

	if _, ok := As(fmt.Errorf("plain")); ok {
		t.Error("As() matched a non-validation error")
	}
}

func TestOptionalFloatRange(t *testing.T) {
	w := 450.0
	e := Errors{}
	OptionalFloatRange(e, "weight_kg", &w, 20, 400)
	if e["weight_kg"] != "must be between 20 and 400" {
		t.Errorf("weight_kg = %q", e["weight_kg"])
	}
}
