package all

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/analytics"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/bookings"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/checkins"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/customers"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/habits"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/mealplans"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/messaging"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/tracking"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/notify"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func testAuth(db *gorm.DB) *services.AuthService {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	auth := services.NewAuthService(db, cfg, services.NewSettingsService(db))
	auth.SetCoachPurge(customers.PurgeCoach)
	return auth
}

// newPortalCustomer creates a customer with a portal login for coach. The
// coach's whole tree is purged on cleanup.
func newPortalCustomer(t *testing.T, db *gorm.DB, coach *models.User, startKg float64) *models.Customer {
	t.Helper()
	svc := customers.NewCustomerService(db, services.NewSettingsService(db), notify.NewNoopSender(), storage.Disabled{})
	c, err := svc.Create(coach.ID, customers.CustomerForm{
		FullName:         "Portal Client",
		Email:            "client-" + uuid.NewString()[:8] + "@example.com",
		StartingWeightKg: &startKg,
		PortalPassword:   "portalpass",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		db.Transaction(func(tx *gorm.DB) error { return customers.PurgeCoach(tx, coach.ID) })
	})
	return c
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Unscoped().Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCoachDeleteAccountCascades(t *testing.T) {
	db := setupDB(t)
	auth := testAuth(db)

	coachEmail := "coach-" + uuid.NewString()[:8] + "@example.com"
	reg, err := auth.Register(&dto.RegisterRequest{Email: coachEmail, Password: "password123", FullName: "Leaving Coach"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var coach models.User
	if err := db.First(&coach, "id = ?", reg.User.ID).Error; err != nil {
		t.Fatal(err)
	}
	customer := newPortalCustomer(t, db, &coach, 80)
	portalID := *customer.UserID

	msgs := messaging.NewMessageService(db, nil, nil)
	if _, err := msgs.SendToCustomer(coach.ID, customer.ID, "Welcome aboard"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := msgs.SendToCoach(portalID, customer.ID, "Thanks!"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	habit, err := habits.NewHabitService(db).Create(coach.ID, habits.CreateHabitRequest{
		CustomerID: customer.ID, Name: "Walk", Frequency: habits.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if _, err := habits.NewHabitService(db).Log(customer.ID, habit.ID, habits.LogHabitRequest{}); err != nil {
		t.Fatalf("log habit: %v", err)
	}
	if _, err := tracking.NewTrackingService(db).AddWeight(customer.ID, tracking.WeightLogRequest{WeightKg: 79.4}); err != nil {
		t.Fatalf("add weight: %v", err)
	}
	plan, err := mealplans.NewMealPlanService(db).Create(coach.ID, mealplans.CreatePlanRequest{
		CustomerID: customer.ID, Name: "Week 1", WeekStart: features.Today().Format(features.DateLayout),
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	var g mealplans.Grid
	g[0][0] = &mealplans.MealEntry{Title: "Oats", Calories: 350}
	if _, err := mealplans.NewMealPlanService(db).SaveGrid(coach.ID, plan.ID, g); err != nil {
		t.Fatalf("save grid: %v", err)
	}
	events := []analytics.Event{
		{ID: uuid.New(), UserID: coach.ID, EventType: "dashboard.viewed", OccurredAt: time.Now()},
		{ID: uuid.New(), UserID: portalID, CustomerID: &customer.ID, EventType: "meal.logged", OccurredAt: time.Now()},
	}
	if err := db.Create(&events).Error; err != nil {
		t.Fatalf("events: %v", err)
	}

	if err := auth.DeleteAccount(coach.ID, "password123"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	checks := []struct {
		name  string
		model interface{}
		query string
		args  []interface{}
	}{
		{"coach user", &models.User{}, "id = ?", []interface{}{coach.ID}},
		{"portal user", &models.User{}, "id = ?", []interface{}{portalID}},
		{"customers", &models.Customer{}, "coach_id = ?", []interface{}{coach.ID}},
		{"settings", &models.CoachSetting{}, "coach_id = ?", []interface{}{coach.ID}},
		{"tokens", &models.RefreshToken{}, "user_id IN ?", []interface{}{[]uuid.UUID{coach.ID, portalID}}},
		{"messages", &messaging.Message{}, "sender_id = ? OR recipient_id = ?", []interface{}{coach.ID, coach.ID}},
		{"events", &analytics.Event{}, "user_id IN ?", []interface{}{[]uuid.UUID{coach.ID, portalID}}},
		{"habits", &habits.Habit{}, "customer_id = ?", []interface{}{customer.ID}},
		{"habit logs", &habits.HabitLog{}, "customer_id = ?", []interface{}{customer.ID}},
		{"weights", &tracking.WeightLog{}, "customer_id = ?", []interface{}{customer.ID}},
		{"plans", &mealplans.MealPlan{}, "customer_id = ?", []interface{}{customer.ID}},
		{"plan items", &mealplans.MealItem{}, "meal_plan_id = ?", []interface{}{plan.ID}},
	}
	for _, c := range checks {
		if n := count(t, db, c.model, c.query, c.args...); n != 0 {
			t.Errorf("%s: %d rows survived", c.name, n)
		}
	}

	// Both emails are free again.
	again, err := auth.Register(&dto.RegisterRequest{Email: coachEmail, Password: "password123", FullName: "Returning Coach"})
	if err != nil {
		t.Fatalf("re-register coach email: %v", err)
	}
	t.Cleanup(func() {
		db.Transaction(func(tx *gorm.DB) error {
			if err := customers.PurgeCoach(tx, again.User.ID); err != nil {
				return err
			}
			return tx.Unscoped().Delete(&models.User{}, "id = ?", again.User.ID).Error
		})
	})
	err = db.Transaction(func(tx *gorm.DB) error {
		u, err := services.CreateUser(tx, customer.Email, "portalpass", "Reused", models.RoleCustomer)
		if err != nil {
			return err
		}
		return tx.Unscoped().Delete(u).Error
	})
	if err != nil {
		t.Errorf("reuse portal email: %v", err)
	}
}

func TestCustomerDeleteAccountKeepsRecord(t *testing.T) {
	db := setupDB(t)
	auth := testAuth(db)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 70)

	if err := auth.DeleteAccount(*customer.UserID, "wrong-password"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if err := auth.DeleteAccount(*customer.UserID, "portalpass"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	var kept models.Customer
	if err := db.First(&kept, "id = ?", customer.ID).Error; err != nil {
		t.Fatalf("customer record should remain: %v", err)
	}
	if kept.UserID != nil {
		t.Errorf("user_id = %v, want unlinked", kept.UserID)
	}
	if n := count(t, db, &models.User{}, "email = ?", customer.Email); n != 0 {
		t.Errorf("portal user row survived: %d", n)
	}
}

func TestCreateUserIgnoresCaseAndSoftDeletes(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)

	// A soft-deleted row still holds the unique email.
	if err := db.Delete(coach).Error; err != nil {
		t.Fatal(err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := services.CreateUser(tx, "  "+coach.Email+" ", "password123", "Dup", models.RoleAdmin)
		return err
	})
	if !errors.Is(err, services.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestDeleteWeightRestoresCurrentWeight(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 90)
	svc := tracking.NewTrackingService(db)

	today := features.Today()
	older, err := svc.AddWeight(customer.ID, tracking.WeightLogRequest{
		Date: today.AddDate(0, 0, -3).Format(features.DateLayout), WeightKg: 88.5,
	})
	if err != nil {
		t.Fatalf("add older: %v", err)
	}
	latest, err := svc.AddWeight(customer.ID, tracking.WeightLogRequest{WeightKg: 87})
	if err != nil {
		t.Fatalf("add latest: %v", err)
	}

	current := func() *float64 {
		t.Helper()
		var c models.Customer
		if err := db.First(&c, "id = ?", customer.ID).Error; err != nil {
			t.Fatal(err)
		}
		return c.CurrentWeightKg
	}
	if w := current(); w == nil || *w != 87 {
		t.Fatalf("current = %v, want 87", w)
	}

	if err := svc.DeleteWeight(customer.ID, latest.ID); err != nil {
		t.Fatalf("delete latest: %v", err)
	}
	if w := current(); w == nil || *w != 88.5 {
		t.Errorf("after deleting latest current = %v, want 88.5", w)
	}

	if err := svc.DeleteWeight(customer.ID, older.ID); err != nil {
		t.Fatalf("delete older: %v", err)
	}
	if w := current(); w == nil || *w != 90 {
		t.Errorf("with no logs current = %v, want starting weight 90", w)
	}

	if err := svc.DeleteWeight(customer.ID, older.ID); !errors.Is(err, tracking.ErrLogNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestBookingConflictRules(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 75)
	svc := bookings.NewBookingService(db, nil, nil)

	at := time.Now().Add(72 * time.Hour).Truncate(time.Hour)
	book := func(title string, start time.Time, minutes int) (*bookings.Booking, error) {
		return svc.Create(coach.ID, bookings.CreateBookingRequest{
			CustomerID: customer.ID, Title: title, Type: bookings.TypeFollowUp,
			StartsAt: start, DurationMinutes: minutes,
		})
	}

	first, err := book("First", at, 60)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := book("Back to back", first.EndsAt(), 30); err != nil {
		t.Errorf("back-to-back booking rejected: %v", err)
	}
	if _, err := book("Before", at.Add(-30*time.Minute), 30); err != nil {
		t.Errorf("booking ending at start rejected: %v", err)
	}
	if _, err := book("Overlap", at.Add(15*time.Minute), 30); !errors.Is(err, bookings.ErrBookingConflict) {
		t.Errorf("overlap err = %v, want conflict", err)
	}
	if _, err := book("Long before", at.Add(-7*time.Hour), bookings.MaxDuration); !errors.Is(err, bookings.ErrBookingConflict) {
		t.Errorf("long booking reaching into the slot err = %v, want conflict", err)
	}

	// Moving a booking across its own slot does not conflict with itself.
	shifted := at.Add(15 * time.Minute)
	longer := 45
	if _, err := svc.Update(coach.ID, first.ID, bookings.UpdateBookingRequest{StartsAt: &shifted, DurationMinutes: &longer}); err != nil {
		t.Errorf("self reschedule rejected: %v", err)
	}

	// Cancelled bookings free their slot.
	if _, err := svc.UpdateStatus(coach.ID, first.ID, bookings.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := book("Replacement", at.Add(10*time.Minute), 30); err != nil {
		t.Errorf("slot of cancelled booking still blocked: %v", err)
	}
}

func TestSaveGridLastWriteWins(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 75)
	svc := mealplans.NewMealPlanService(db)

	plan, err := svc.Create(coach.ID, mealplans.CreatePlanRequest{
		CustomerID: customer.ID, Name: "Cut", WeekStart: features.Today().Format(features.DateLayout),
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	grids := make([]mealplans.Grid, 4)
	for i := range grids {
		for d := 0; d <= i; d++ {
			grids[i][d][0] = &mealplans.MealEntry{Title: "Eggs", Calories: 300 + i}
		}
	}

	var wg sync.WaitGroup
	for _, g := range grids {
		wg.Add(1)
		go func(g mealplans.Grid) {
			defer wg.Done()
			if _, err := svc.SaveGrid(coach.ID, plan.ID, g); err != nil {
				t.Errorf("save grid: %v", err)
			}
		}(g)
	}
	wg.Wait()

	got, err := svc.GetGrid(coach.ID, plan.ID)
	if err != nil {
		t.Fatalf("get grid: %v", err)
	}
	matched := false
	for _, g := range grids {
		if gridValue(got.Grid) == gridValue(g) {
			matched = true
		}
	}
	if !matched {
		t.Errorf("stored grid is a mix of concurrent saves: %+v", got.Grid)
	}

	// A sequential save replaces everything.
	var last mealplans.Grid
	last[6][3] = &mealplans.MealEntry{Title: "Yogurt", Calories: 150}
	if _, err := svc.SaveGrid(coach.ID, plan.ID, last); err != nil {
		t.Fatal(err)
	}
	if n := count(t, db, &mealplans.MealItem{}, "meal_plan_id = ?", plan.ID); n != 1 {
		t.Errorf("items = %d, want 1", n)
	}
}

// gridValue copies the cells so grids can be compared by value.
func gridValue(g mealplans.Grid) [mealplans.DaysPerWeek][len(mealplans.MealTypes)]mealplans.MealEntry {
	var out [mealplans.DaysPerWeek][len(mealplans.MealTypes)]mealplans.MealEntry
	for d := range g {
		for m := range g[d] {
			if g[d][m] != nil {
				out[d][m] = *g[d][m]
			}
		}
	}
	return out
}

func TestHabitLogUpsertKeepsOneRow(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 75)
	svc := habits.NewHabitService(db)

	habit, err := svc.Create(coach.ID, habits.CreateHabitRequest{
		CustomerID: customer.ID, Name: "Water", Frequency: habits.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	first, err := svc.Log(customer.ID, habit.ID, habits.LogHabitRequest{Note: "done"})
	if err != nil {
		t.Fatalf("first log: %v", err)
	}
	no := false
	second, err := svc.Log(customer.ID, habit.ID, habits.LogHabitRequest{Completed: &no, Note: "missed"})
	if err != nil {
		t.Fatalf("second log: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert returned id %s, stored row is %s", second.ID, first.ID)
	}
	if second.Completed || second.Note != "missed" {
		t.Errorf("second = %+v, want latest values", second)
	}
	if n := count(t, db, &habits.HabitLog{}, "habit_id = ?", habit.ID); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
	var stored habits.HabitLog
	if err := db.First(&stored, "id = ?", second.ID).Error; err != nil {
		t.Fatalf("returned id not stored: %v", err)
	}
	if stored.Completed {
		t.Error("stored row kept the earlier completed value")
	}
}

func TestMessagingInboxAndRead(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 75)
	portalID := *customer.UserID
	svc := messaging.NewMessageService(db, nil, nil)

	for _, body := range []string{"Hi", "How was the week?"} {
		if _, err := svc.SendToCustomer(coach.ID, customer.ID, body); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if _, err := svc.Send(portalID, uuid.New(), "stranger"); !errors.Is(err, messaging.ErrNotPaired) {
		t.Errorf("unpaired send err = %v", err)
	}

	unread, err := svc.UnreadCount(portalID)
	if err != nil || unread != 2 {
		t.Fatalf("unread = %d (%v), want 2", unread, err)
	}

	inbox, err := svc.Inbox(portalID)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("conversations = %d, want 1", len(inbox))
	}
	conv := inbox[0]
	if conv.CounterpartyID != coach.ID || conv.CounterpartyName != coach.FullName || conv.Unread != 2 {
		t.Errorf("conversation = %+v", conv)
	}
	if conv.LastMessage.Body != "How was the week?" {
		t.Errorf("last message = %q", conv.LastMessage.Body)
	}

	marked, err := svc.MarkRead(portalID, coach.ID)
	if err != nil || marked != 2 {
		t.Fatalf("marked = %d (%v), want 2", marked, err)
	}
	if again, _ := svc.MarkRead(portalID, coach.ID); again != 0 {
		t.Errorf("second mark = %d, want 0", again)
	}
	if unread, _ := svc.UnreadCount(portalID); unread != 0 {
		t.Errorf("unread after mark = %d", unread)
	}
	// The coach's own sent messages never count as unread for them.
	if unread, _ := svc.UnreadCount(coach.ID); unread != 0 {
		t.Errorf("coach unread = %d", unread)
	}
}

func TestCustomerUpdateSyncsPortal(t *testing.T) {
	db := setupDB(t)
	auth := testAuth(db)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 75)
	svc := customers.NewCustomerService(db, nil, nil, storage.Disabled{})

	session, err := auth.Login(&dto.LoginRequest{Email: customer.Email, Password: "portalpass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	newEmail := "moved-" + uuid.NewString()[:8] + "@example.com"
	if _, err := svc.Update(coach.ID, customer.ID, customers.UpdateCustomerRequest{Email: &newEmail}); err != nil {
		t.Fatalf("update email: %v", err)
	}
	if _, err := auth.Login(&dto.LoginRequest{Email: newEmail, Password: "portalpass"}); err != nil {
		t.Errorf("login with new email: %v", err)
	}

	taken := coach.Email
	if _, err := svc.Update(coach.ID, customer.ID, customers.UpdateCustomerRequest{Email: &taken}); !errors.Is(err, services.ErrEmailTaken) {
		t.Errorf("taken email err = %v", err)
	}

	archived := models.CustomerArchived
	if _, err := svc.Update(coach.ID, customer.ID, customers.UpdateCustomerRequest{Status: &archived}); err != nil {
		t.Fatalf("archive via update: %v", err)
	}
	if _, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: session.RefreshToken}); !errors.Is(err, services.ErrInvalidToken) {
		t.Errorf("refresh after archive err = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRotatesOnce(t *testing.T) {
	db := setupDB(t)
	auth := testAuth(db)
	coach := newCoach(t, db)

	session, err := auth.Login(&dto.LoginRequest{Email: coach.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const racers = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: session.RefreshToken})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, services.ErrInvalidToken) {
				t.Errorf("refresh err = %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("%d refreshes succeeded with one token, want 1", wins)
	}
}

func TestConcurrentCheckInSameDay(t *testing.T) {
	db := setupDB(t)
	coach := newCoach(t, db)
	customer := newPortalCustomer(t, db, coach, 75)
	svc := checkins.NewCheckInService(db, nil, storage.Disabled{})

	const racers = 4
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(customer.ID, checkins.SubmitCheckInRequest{
				Mood: 6, Energy: 6, Sleep: 7, Stress: 4, Hunger: 5,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, checkins.ErrCheckInExists):
			t.Errorf("duplicate submit err = %v, want ErrCheckInExists", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d check-ins stored for one day, want 1", ok)
	}
}
