package tracking

import (
	"time"

	"github.com/google/uuid"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

type FoodLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index:idx_food_log_day,priority:1" json:"customer_id"`
	LogDate    time.Time `gorm:"type:date;not null;index:idx_food_log_day,priority:2" json:"log_date"`
	MealType   string    `gorm:"size:20;not null" json:"meal_type"`
	FoodName   string    `gorm:"size:255;not null" json:"food_name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `gorm:"size:30" json:"unit"`
	Calories   int       `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type WaterLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index:idx_water_log_day,priority:1" json:"customer_id"`
	LogDate    time.Time `gorm:"type:date;not null;index:idx_water_log_day,priority:2" json:"log_date"`
	AmountMl   int       `gorm:"not null" json:"amount_ml"`
	CreatedAt  time.Time `json:"created_at"`
}

type WeightLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index:idx_weight_log_day,priority:1" json:"customer_id"`
	LogDate    time.Time `gorm:"type:date;not null;index:idx_weight_log_day,priority:2" json:"log_date"`
	WeightKg   float64   `gorm:"not null" json:"weight_kg"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// --- DTOs ---

type FoodLogRequest struct {
	Date     string  `json:"date"`
	MealType string  `json:"meal_type"`
	FoodName string  `json:"food_name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type WaterLogRequest struct {
	Date     string `json:"date"`
	AmountMl int    `json:"amount_ml"`
}

type WeightLogRequest struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
	Note     string  `json:"note"`
}

type Macros struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type DailySummary struct {
	Date           string         `json:"date"`
	Totals         Macros         `json:"totals"`
	CaloriesByMeal map[string]int `json:"calories_by_meal"`
	CalorieTarget  int            `json:"calorie_target"`
	CaloriePercent float64        `json:"calorie_percent"`
	WaterMl        int            `json:"water_ml"`
	WaterTargetMl  int            `json:"water_target_ml"`
	WaterPercent   float64        `json:"water_percent"`
	LatestWeightKg *float64       `json:"latest_weight_kg"`
	FoodEntries    []FoodLog      `json:"food_entries"`
	WaterEntries   []WaterLog     `json:"water_entries"`
}
