package features

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"", "05/03/2024", "2024-13-01", "2024-03-05T10:00:00Z"} {
		if _, err := ParseDate(bad); err != ErrInvalidDate {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	in := time.Date(2024, 1, 2, 1, 30, 0, 0, loc) // 2024-01-01 22:30 UTC
	if got := Day(in); !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day = %v", got)
	}
}

func TestPageAndRange(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		limit, offset := Page(c, 20, 100)
		from, to, err := Range(c, 7)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return c.JSON(fiber.Map{
			"limit": limit, "offset": offset,
			"from": from.Format(DateLayout), "to": to.Format(DateLayout),
		})
	})

	tests := []struct {
		name   string
		query  string
		status int
		want   string
	}{
		{"defaults clamp", "?limit=500&offset=-4&to=2024-05-10", 200,
			`{"from":"2024-05-04","limit":100,"offset":0,"to":"2024-05-10"}`},
		{"explicit range", "?limit=5&offset=10&from=2024-05-01&to=2024-05-03", 200,
			`{"from":"2024-05-01","limit":5,"offset":10,"to":"2024-05-03"}`},
		{"inverted range", "?from=2024-05-04&to=2024-05-03", 400, ""},
		{"bad date", "?from=yesterday", 400, ""},
		{"full year", "?from=2024-01-01&to=2024-12-31", 200,
			`{"from":"2024-01-01","limit":20,"offset":0,"to":"2024-12-31"}`},
		{"too long", "?from=2023-01-01&to=2024-12-31", 400, ""},
		{"extreme bounds", "?from=0001-01-01&to=9999-12-31", 400, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.want != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.want {
					t.Errorf("body = %s, want %s", body, tt.want)
				}
			}
		})
	}
}
