package mealplans

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
)

func mealIndex(mealType string) int {
	for i, m := range MealTypes {
		if m == mealType {
			return i
		}
	}
	return -1
}

// BuildGrid places plan items into their cells. Items with an out of range
// day or unknown meal type are ignored; a later item wins a duplicate cell.
func BuildGrid(items []MealItem) Grid {
	var g Grid
	for _, it := range items {
		m := mealIndex(it.MealType)
		if it.DayOfWeek < 0 || it.DayOfWeek >= DaysPerWeek || m < 0 {
			continue
		}
		g[it.DayOfWeek][m] = &MealEntry{
			Title:       it.Title,
			Description: it.Description,
			Calories:    it.Calories,
			ProteinG:    it.ProteinG,
			CarbsG:      it.CarbsG,
			FatG:        it.FatG,
		}
	}
	return g
}

// FlattenGrid turns the non-empty cells into rows for planID.
func FlattenGrid(planID uuid.UUID, g Grid) []MealItem {
	var items []MealItem
	for d := 0; d < DaysPerWeek; d++ {
		for m, mealType := range MealTypes {
			e := g[d][m]
			if e == nil {
				continue
			}
			items = append(items, MealItem{
				ID:          uuid.New(),
				MealPlanID:  planID,
				DayOfWeek:   d,
				MealType:    mealType,
				Title:       strings.TrimSpace(e.Title),
				Description: e.Description,
				Calories:    e.Calories,
				ProteinG:    e.ProteinG,
				CarbsG:      e.CarbsG,
				FatG:        e.FatG,
			})
		}
	}
	return items
}

// Totals sums calories and macros for each day of the grid.
func Totals(g Grid) [DaysPerWeek]DayTotals {
	var out [DaysPerWeek]DayTotals
	for d := 0; d < DaysPerWeek; d++ {
		for _, e := range g[d] {
			if e == nil {
				continue
			}
			out[d].Calories += e.Calories
			out[d].ProteinG += e.ProteinG
			out[d].CarbsG += e.CarbsG
			out[d].FatG += e.FatG
		}
	}
	return out
}

// ValidateGrid checks every filled cell.
func ValidateGrid(g Grid) error {
	errs := validate.Errors{}
	for d := 0; d < DaysPerWeek; d++ {
		for m, mealType := range MealTypes {
			e := g[d][m]
			if e == nil {
				continue
			}
			field := fmt.Sprintf("grid[%d].%s", d, mealType)
			validate.Required(errs, field+".title", e.Title)
			validate.MaxLen(errs, field+".title", e.Title, 255)
			validate.NonNegative(errs, field+".calories", float64(e.Calories))
			validate.NonNegative(errs, field+".protein_g", e.ProteinG)
			validate.NonNegative(errs, field+".carbs_g", e.CarbsG)
			validate.NonNegative(errs, field+".fat_g", e.FatG)
		}
	}
	return errs.Err()
}
