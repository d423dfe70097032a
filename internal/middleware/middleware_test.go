package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testSecret = "test-secret-please-ignore"

func signToken(t *testing.T, role, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   uuid.New().String(),
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func newAdminApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/admin", JWTProtected(cfg), AdminRequired(nil, cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, AdminEmails: "Boss@Example.com, other@example.com"}
	app := newAdminApp(cfg)

	tests := []struct {
		name  string
		token string
		query bool
		want  int
	}{
		{"no token", "", false, fiber.StatusUnauthorized},
		{"garbage token", "nope", false, fiber.StatusUnauthorized},
		{"admin role", signToken(t, "admin", "coach@example.com"), false, fiber.StatusOK},
		{"admin role via query", signToken(t, "admin", "coach@example.com"), true, fiber.StatusOK},
		{"customer role", signToken(t, "customer", "client@example.com"), false, fiber.StatusForbidden},
		{"bootstrap admin email", signToken(t, "customer", "boss@example.com"), false, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/admin"
			if tt.query {
				target += "?token=" + tt.token
			}
			req := httptest.NewRequest("GET", target, nil)
			if tt.token != "" && !tt.query {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestCustomerRequiredRejectsCoaches(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	// A nil DB proves the role check happens before any lookup.
	app.Get("/portal", JWTProtected(cfg), CustomerRequired(nil), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/portal", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin", "coach@example.com"))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/customers/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, id := range []string{"a", "b", "c"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/customers/"+id, nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
	}

	got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/customers/:id", "200"))
	if got != 3 {
		t.Errorf("counter = %v, want 3", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options = %q", resp.Header.Get("X-Frame-Options"))
	}
}
