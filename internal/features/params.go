package features

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// ParseDate parses a calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateOrToday parses s, or returns today's date when s is empty.
func DateOrToday(s string) (time.Time, error) {
	if s == "" {
		return Today(), nil
	}
	return ParseDate(s)
}

// Today returns the current UTC date at midnight.
func Today() time.Time {
	return Day(time.Now())
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParamID reads a UUID route parameter.
func ParamID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// Page reads limit/offset query parameters, clamping limit to max.
func Page(c *fiber.Ctx, def, max int) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", strconv.Itoa(def)))
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// MaxRangeDays bounds any from/to query window.
const MaxRangeDays = 366

var ErrRangeTooLong = fmt.Errorf("range must not exceed %d days", MaxRangeDays)

// Range reads from/to date query parameters. Missing bounds default to the
// last days days ending today.
func Range(c *fiber.Ctx, days int) (from, to time.Time, err error) {
	to = Today()
	if s := c.Query("to"); s != "" {
		if to, err = ParseDate(s); err != nil {
			return
		}
	}
	from = to.AddDate(0, 0, -(days - 1))
	if s := c.Query("from"); s != "" {
		if from, err = ParseDate(s); err != nil {
			return
		}
	}
	if from.After(to) {
		err = errors.New("from must not be after to")
		return
	}
	if to.Sub(from) >= MaxRangeDays*24*time.Hour {
		err = ErrRangeTooLong
	}
	return
}
