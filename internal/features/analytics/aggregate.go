package analytics

import (
	"math"
	"regexp"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/checkins"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/tracking"
)

const dayKey = "2006-01-02"

var eventTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_.]{1,63}$`)

// ValidEventType reports whether name is a lowercase dotted identifier of
// 2 to 64 characters.
func ValidEventType(name string) bool {
	return eventTypePattern.MatchString(name)
}

// AverageScores averages the wellness scores of a set of check-ins,
// rounded to one decimal.
func AverageScores(items []checkins.CheckIn) ScoreAverages {
	out := ScoreAverages{Count: len(items)}
	if len(items) == 0 {
		return out
	}
	var mood, energy, sleep, stress, hunger int
	for _, c := range items {
		mood += c.Mood
		energy += c.Energy
		sleep += c.Sleep
		stress += c.Stress
		hunger += c.Hunger
	}
	n := float64(len(items))
	out.Mood = round1(float64(mood) / n)
	out.Energy = round1(float64(energy) / n)
	out.Sleep = round1(float64(sleep) / n)
	out.Stress = round1(float64(stress) / n)
	out.Hunger = round1(float64(hunger) / n)
	return out
}

// DailyIntake returns one point per day in [from, to], zero-filled.
func DailyIntake(from, to time.Time, foods []tracking.FoodLog, waters []tracking.WaterLog) []DayIntake {
	cal := map[string]int{}
	for _, f := range foods {
		cal[f.LogDate.UTC().Format(dayKey)] += f.Calories
	}
	water := map[string]int{}
	for _, w := range waters {
		water[w.LogDate.UTC().Format(dayKey)] += w.AmountMl
	}

	var out []DayIntake
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		k := d.Format(dayKey)
		out = append(out, DayIntake{Date: k, Calories: cal[k], WaterMl: water[k]})
	}
	return out
}

// WeightSeries keeps the last weight logged on each day, in date order.
// Logs must be sorted by date then creation time.
func WeightSeries(logs []tracking.WeightLog) []WeightPoint {
	out := []WeightPoint{}
	for _, l := range logs {
		k := l.LogDate.UTC().Format(dayKey)
		if n := len(out); n > 0 && out[n-1].Date == k {
			out[n-1].WeightKg = l.WeightKg
			continue
		}
		out = append(out, WeightPoint{Date: k, WeightKg: l.WeightKg})
	}
	return out
}

type weightPair struct {
	Starting *float64
	Current  *float64
}

// averageWeightChange is the mean of current minus starting weight over the
// customers that have both, or nil when none do.
func averageWeightChange(pairs []weightPair) *float64 {
	var sum float64
	n := 0
	for _, p := range pairs {
		if p.Starting == nil || p.Current == nil {
			continue
		}
		sum += *p.Current - *p.Starting
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round1(sum / float64(n))
	return &avg
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
