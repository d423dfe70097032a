package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/gofiber/fiber/v2"
)

var errThingGone = errors.New("thing gone")

func TestMap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
		field   string
	}{
		{"validation", validate.Errors{"email": "is required"}, 400, "Validation failed", "email"},
		{"wrapped validation", fmt.Errorf("create: %w", validate.Errors{"name": "too long"}), 400, "Validation failed", "name"},
		{"customer not found", authctx.ErrCustomerNotFound, 404, "customer not found", ""},
		{"storage disabled", storage.ErrStorageDisabled, 503, storage.ErrStorageDisabled.Error(), ""},
		{"upload too large", fmt.Errorf("upload: %w", storage.ErrTooLarge), 413, storage.ErrTooLarge.Error(), ""},
		{"mapped sentinel", fmt.Errorf("x: %w", errThingGone), 410, "thing gone", ""},
		{"unknown", errors.New("pq: connection refused"), 500, "Failed to do it", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return Map(c, tt.err, "Failed to do it", Status{Err: errThingGone, Code: fiber.StatusGone})
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.code {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.code)
			}
			var body dto.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if !body.Error || body.Message != tt.message {
				t.Errorf("body = %+v, want message %q", body, tt.message)
			}
			if tt.field != "" && body.Fields[tt.field] == "" {
				t.Errorf("fields = %v, want %q", body.Fields, tt.field)
			}
		})
	}
}
