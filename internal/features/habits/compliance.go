package habits

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const dayKey = "2006-01-02"

// Expected is how many completions a habit calls for over a range of days.
// Weekly habits scale TargetPerWeek to the range length, rounding up.
func Expected(h Habit, days int) int {
	if days <= 0 {
		return 0
	}
	if h.Frequency == FrequencyWeekly {
		target := h.TargetPerWeek
		if target <= 0 {
			target = 1
		}
		return int(math.Ceil(float64(target*days) / 7))
	}
	return days
}

// Compliance computes completion percentages over [from, to] and the current
// streak as of today. Percentages are capped at 100 and rounded to one
// decimal; Overall is the mean across habits.
func Compliance(habits []Habit, logs []HabitLog, from, to, today time.Time) ComplianceReport {
	days := calendarDays(from, to)

	done := make(map[uuid.UUID]map[string]bool, len(habits))
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		if done[l.HabitID] == nil {
			done[l.HabitID] = map[string]bool{}
		}
		done[l.HabitID][l.LogDate.UTC().Format(dayKey)] = true
	}

	report := ComplianceReport{
		From:   from.Format(dayKey),
		To:     to.Format(dayKey),
		Habits: make([]HabitCompliance, 0, len(habits)),
	}
	var sum float64
	for _, h := range habits {
		completed := 0
		for key := range done[h.ID] {
			if key >= report.From && key <= report.To {
				completed++
			}
		}
		expected := Expected(h, days)
		pct := percent(completed, expected)
		sum += pct
		report.Habits = append(report.Habits, HabitCompliance{
			HabitID:       h.ID,
			Name:          h.Name,
			Completed:     completed,
			Expected:      expected,
			Percent:       pct,
			CurrentStreak: Streak(done[h.ID], today),
		})
	}
	if len(habits) > 0 {
		report.Overall = round1(sum / float64(len(habits)))
	}
	return report
}

// Streak counts consecutive completed days ending today, or ending yesterday
// when today is not logged yet.
func Streak(completed map[string]bool, today time.Time) int {
	d := today
	if !completed[d.Format(dayKey)] {
		d = d.AddDate(0, 0, -1)
	}
	streak := 0
	for completed[d.Format(dayKey)] {
		streak++
		d = d.AddDate(0, 0, -1)
	}
	return streak
}

// calendarDays counts the dates in [from, to] without going through
// time.Duration, which overflows past roughly 292 years.
func calendarDays(from, to time.Time) int {
	f := from.UTC().Truncate(24 * time.Hour).Unix()
	t := to.UTC().Truncate(24 * time.Hour).Unix()
	if t < f {
		return 0
	}
	return int((t-f)/86400) + 1
}

func percent(n, of int) float64 {
	if of <= 0 {
		return 0
	}
	p := float64(n) / float64(of) * 100
	if p > 100 {
		p = 100
	}
	return round1(p)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
