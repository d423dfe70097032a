package tracking

import (
	"math"
	"time"
)

// Summarize folds one day's logs into totals and target percentages.
// Percentages are not capped so overshooting a target stays visible.
func Summarize(date time.Time, foods []FoodLog, waters []WaterLog, calorieTarget, waterTarget int) DailySummary {
	s := DailySummary{
		Date:           date.Format("2006-01-02"),
		CaloriesByMeal: make(map[string]int, len(MealTypes)),
		CalorieTarget:  calorieTarget,
		WaterTargetMl:  waterTarget,
		FoodEntries:    foods,
		WaterEntries:   waters,
	}
	for _, m := range MealTypes {
		s.CaloriesByMeal[m] = 0
	}
	if s.FoodEntries == nil {
		s.FoodEntries = []FoodLog{}
	}
	if s.WaterEntries == nil {
		s.WaterEntries = []WaterLog{}
	}

	for _, f := range foods {
		s.Totals.Calories += f.Calories
		s.Totals.ProteinG += f.ProteinG
		s.Totals.CarbsG += f.CarbsG
		s.Totals.FatG += f.FatG
		s.CaloriesByMeal[f.MealType] += f.Calories
	}
	for _, w := range waters {
		s.WaterMl += w.AmountMl
	}

	s.CaloriePercent = ratio(s.Totals.Calories, calorieTarget)
	s.WaterPercent = ratio(s.WaterMl, waterTarget)
	return s
}

func ratio(n, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(target)*1000) / 10
}
