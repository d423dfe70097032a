// Package all lists every coaching feature in mount order. It lives apart
// from package features so the feature packages can import that one.
package all

import (
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/analytics"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/bookings"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/checkins"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/customers"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/habits"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/mealplans"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/messaging"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/tracking"
)

func Features() []features.Feature {
	return []features.Feature{
		customers.New(),
		bookings.New(),
		mealplans.New(),
		messaging.New(),
		habits.New(),
		checkins.New(),
		tracking.New(),
		analytics.New(),
	}
}

// Models collects every feature-owned model for AutoMigrate.
func Models() []interface{} {
	var out []interface{}
	for _, f := range Features() {
		out = append(out, f.Models()...)
	}
	return out
}
