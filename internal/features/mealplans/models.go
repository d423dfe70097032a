package mealplans

import (
	"time"

	"github.com/google/uuid"
)

const (
	Breakfast = "breakfast"
	Lunch     = "lunch"
	Dinner    = "dinner"
	Snack     = "snack"

	DaysPerWeek = 7
)

// MealTypes is the column order of a plan grid.
var MealTypes = [...]string{Breakfast, Lunch, Dinner, Snack}

type MealPlan struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CoachID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"coach_id"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	WeekStart  time.Time  `gorm:"type:date;not null" json:"week_start"`
	Notes      string     `gorm:"type:text" json:"notes"`
	Active     bool       `gorm:"default:false;index" json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Items      []MealItem `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE" json:"-"`
}

type MealItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MealPlanID  uuid.UUID `gorm:"type:uuid;not null;index" json:"meal_plan_id"`
	DayOfWeek   int       `gorm:"not null" json:"day_of_week"`
	MealType    string    `gorm:"size:20;not null" json:"meal_type"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
}

func (MealItem) TableName() string {
	return "meal_plan_items"
}

// MealEntry is one cell of the weekly grid.
type MealEntry struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
}

// Grid is indexed by day (0 = first day of the week) then meal type.
// A nil cell is an empty slot.
type Grid [DaysPerWeek][len(MealTypes)]*MealEntry

type DayTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// --- DTOs ---

type CreatePlanRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
	WeekStart  string    `json:"week_start"`
	Notes      string    `json:"notes"`
	Active     bool      `json:"active"`
}

type UpdatePlanRequest struct {
	Name      *string `json:"name"`
	WeekStart *string `json:"week_start"`
	Notes     *string `json:"notes"`
	Active    *bool   `json:"active"`
}

type DuplicatePlanRequest struct {
	WeekStart string `json:"week_start"`
	Name      string `json:"name"`
}

type SaveGridRequest struct {
	Grid Grid `json:"grid"`
}

type PlanWithGrid struct {
	Plan   MealPlan               `json:"plan"`
	Grid   Grid                   `json:"grid"`
	Totals [DaysPerWeek]DayTotals `json:"totals"`
}
