package habits

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func day(s string) time.Time {
	t, _ := time.Parse(dayKey, s)
	return t
}

func TestExpected(t *testing.T) {
	tests := []struct {
		name  string
		habit Habit
		days  int
		want  int
	}{
		{"daily week", Habit{Frequency: FrequencyDaily}, 7, 7},
		{"daily month", Habit{Frequency: FrequencyDaily}, 30, 30},
		{"weekly 3x over a week", Habit{Frequency: FrequencyWeekly, TargetPerWeek: 3}, 7, 3},
		{"weekly 3x over two weeks", Habit{Frequency: FrequencyWeekly, TargetPerWeek: 3}, 14, 6},
		{"weekly rounds up", Habit{Frequency: FrequencyWeekly, TargetPerWeek: 2}, 3, 1},
		{"weekly zero target", Habit{Frequency: FrequencyWeekly}, 7, 1},
		{"empty range", Habit{Frequency: FrequencyDaily}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expected(tt.habit, tt.days); got != tt.want {
				t.Errorf("Expected = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreak(t *testing.T) {
	today := day("2024-04-10")
	tests := []struct {
		name string
		done []string
		want int
	}{
		{"none", nil, 0},
		{"today only", []string{"2024-04-10"}, 1},
		{"ends yesterday", []string{"2024-04-08", "2024-04-09"}, 2},
		{"ends today", []string{"2024-04-08", "2024-04-09", "2024-04-10"}, 3},
		{"gap breaks", []string{"2024-04-06", "2024-04-07", "2024-04-09", "2024-04-10"}, 2},
		{"stale", []string{"2024-04-05", "2024-04-06"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := map[string]bool{}
			for _, d := range tt.done {
				m[d] = true
			}
			if got := Streak(m, today); got != tt.want {
				t.Errorf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompliance(t *testing.T) {
	water := Habit{ID: uuid.New(), Name: "Water", Frequency: FrequencyDaily}
	gym := Habit{ID: uuid.New(), Name: "Gym", Frequency: FrequencyWeekly, TargetPerWeek: 3}

	from, to := day("2024-04-04"), day("2024-04-10")
	var logs []HabitLog
	for _, d := range []string{"2024-04-04", "2024-04-05", "2024-04-08", "2024-04-09", "2024-04-10"} {
		logs = append(logs, HabitLog{HabitID: water.ID, LogDate: day(d), Completed: true})
	}
	// Gym done 4 times against a target of 3, plus one unchecked day.
	for _, d := range []string{"2024-04-04", "2024-04-06", "2024-04-08", "2024-04-10"} {
		logs = append(logs, HabitLog{HabitID: gym.ID, LogDate: day(d), Completed: true})
	}
	logs = append(logs, HabitLog{HabitID: gym.ID, LogDate: day("2024-04-09"), Completed: false})
	// Outside the range: counts for the streak only.
	logs = append(logs, HabitLog{HabitID: water.ID, LogDate: day("2024-04-03"), Completed: true})

	report := Compliance([]Habit{water, gym}, logs, from, to, to)

	if report.From != "2024-04-04" || report.To != "2024-04-10" {
		t.Errorf("range = %s..%s", report.From, report.To)
	}
	if len(report.Habits) != 2 {
		t.Fatalf("habits = %d", len(report.Habits))
	}

	w := report.Habits[0]
	if w.Completed != 5 || w.Expected != 7 || w.Percent != 71.4 || w.CurrentStreak != 3 {
		t.Errorf("water = %+v", w)
	}
	g := report.Habits[1]
	if g.Completed != 4 || g.Expected != 3 || g.Percent != 100 || g.CurrentStreak != 1 {
		t.Errorf("gym = %+v", g)
	}
	if report.Overall != 85.7 {
		t.Errorf("overall = %v, want 85.7", report.Overall)
	}
}

func TestComplianceNoHabits(t *testing.T) {
	report := Compliance(nil, nil, day("2024-04-04"), day("2024-04-10"), day("2024-04-10"))
	if report.Overall != 0 || len(report.Habits) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestCalendarDays(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     int
	}{
		{"same day", "2024-04-10", "2024-04-10", 1},
		{"week", "2024-04-04", "2024-04-10", 7},
		{"leap year", "2024-01-01", "2024-12-31", 366},
		{"inverted", "2024-04-10", "2024-04-09", 0},
		{"beyond duration range", "0001-01-01", "9999-12-31", 3652059},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calendarDays(day(tt.from), day(tt.to)); got != tt.want {
				t.Errorf("calendarDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComplianceExtremeRange(t *testing.T) {
	h := Habit{ID: uuid.New(), Name: "Walk", Frequency: FrequencyDaily}
	logs := []HabitLog{
		{HabitID: h.ID, LogDate: day("2024-04-09"), Completed: true},
		{HabitID: h.ID, LogDate: day("2024-04-10"), Completed: true},
	}
	report := Compliance([]Habit{h}, logs, day("0001-01-01"), day("9999-12-31"), day("2024-04-10"))
	got := report.Habits[0]
	if got.Completed != 2 {
		t.Errorf("Completed = %d, want 2", got.Completed)
	}
	if got.Expected != 3652059 {
		t.Errorf("Expected = %d, want 3652059", got.Expected)
	}
	if got.Percent < 0 || got.Percent > 100 {
		t.Errorf("Percent = %v out of bounds", got.Percent)
	}
}
