package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/analytics"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/bookings"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/checkins"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/habits"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/mealplans"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/messaging"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/features/tracking"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/notify"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/storage"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/validate"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrPortalExists = errors.New("customer already has a portal account")

type CustomerService struct {
	db       *gorm.DB
	settings *services.SettingsService
	mailer   notify.Sender
	uploader storage.Uploader
}

func NewCustomerService(db *gorm.DB, settings *services.SettingsService, mailer notify.Sender, uploader storage.Uploader) *CustomerService {
	return &CustomerService{db: db, settings: settings, mailer: mailer, uploader: uploader}
}

func jsonList(items []string) datatypes.JSON {
	raw, _ := json.Marshal(cleanList(items))
	return datatypes.JSON(raw)
}

// Create submits the finished wizard. With a portal password the customer's
// login is created in the same transaction.
func (s *CustomerService) Create(coachID uuid.UUID, f CustomerForm) (*models.Customer, error) {
	if err := ValidateAll(&f); err != nil {
		return nil, err
	}

	calories := 2000
	water := 2500
	if s.settings != nil {
		calories = s.settings.Int(coachID, services.SettingCalorieTarget, calories)
		water = s.settings.Int(coachID, services.SettingWaterTarget, water)
	}
	if f.DailyCalorieTarget != nil {
		calories = *f.DailyCalorieTarget
	}
	if f.DailyWaterTargetMl != nil {
		water = *f.DailyWaterTargetMl
	}

	customer := models.Customer{
		ID:                  uuid.New(),
		CoachID:             coachID,
		FullName:            strings.TrimSpace(f.FullName),
		Email:               strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:               strings.TrimSpace(f.Phone),
		Gender:              f.Gender,
		HeightCm:            f.HeightCm,
		StartingWeightKg:    f.StartingWeightKg,
		CurrentWeightKg:     f.StartingWeightKg,
		TargetWeightKg:      f.TargetWeightKg,
		ActivityLevel:       f.ActivityLevel,
		Goals:               jsonList(f.Goals),
		DietaryRestrictions: jsonList(f.DietaryRestrictions),
		Allergies:           f.Allergies,
		MedicalNotes:        f.MedicalNotes,
		DailyCalorieTarget:  calories,
		DailyWaterTargetMl:  water,
		Status:              models.CustomerActive,
	}
	if f.DateOfBirth != "" {
		dob, _ := features.ParseDate(f.DateOfBirth)
		customer.DateOfBirth = &dob
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if f.PortalPassword != "" {
			user, err := services.CreateUser(tx, customer.Email, f.PortalPassword, customer.FullName, models.RoleCustomer)
			if err != nil {
				return err
			}
			customer.UserID = &user.ID
		}
		return tx.Create(&customer).Error
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if customer.UserID != nil {
		s.sendWelcome(coachID, &customer)
	}
	return &customer, nil
}

func (s *CustomerService) sendWelcome(coachID uuid.UUID, customer *models.Customer) {
	if s.mailer == nil {
		return
	}
	var coach models.User
	s.db.Select("full_name").First(&coach, "id = ?", coachID)

	html, err := notify.Render(notify.Email{
		Title:     "Welcome to your coaching portal",
		BodyMD:    fmt.Sprintf("Hi %s,\n\n%s has set up your portal account. Sign in with **%s** to log meals, water and check-ins.", customer.FullName, coach.FullName, customer.Email),
		CoachName: coach.FullName,
	})
	if err != nil {
		return
	}
	notify.SendAsync(s.mailer, notify.SendRequest{
		To:      []string{customer.Email},
		Subject: "Your coaching portal is ready",
		HTML:    html,
	})
}

func (s *CustomerService) List(coachID uuid.UUID, f ListFilter) (*CustomerListResponse, error) {
	q := s.db.Model(&models.Customer{}).Scopes(authctx.ForCoach(coachID))
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	var list []models.Customer
	if err := q.Order("full_name ASC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, err
	}
	return &CustomerListResponse{Customers: list, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *CustomerService) Get(coachID, id uuid.UUID) (*models.Customer, error) {
	return authctx.CustomerForCoach(s.db, coachID, id)
}

func (s *CustomerService) Update(coachID, id uuid.UUID, req UpdateCustomerRequest) (*models.Customer, error) {
	c, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}

	// Re-use the wizard rules on the fields being changed.
	f := CustomerForm{FullName: c.FullName, Email: c.Email}
	errs := validate.Errors{}
	if req.FullName != nil {
		f.FullName = *req.FullName
	}
	if req.Email != nil {
		f.Email = *req.Email
	}
	if req.Phone != nil {
		f.Phone = *req.Phone
	}
	validateIdentity(errs, &f)

	if req.DateOfBirth != nil {
		f.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		f.Gender = *req.Gender
	}
	if req.ActivityLevel != nil {
		f.ActivityLevel = *req.ActivityLevel
	}
	f.HeightCm = req.HeightCm
	f.TargetWeightKg = req.TargetWeightKg
	f.StartingWeightKg = req.CurrentWeightKg
	validateMetrics(errs, &f)
	if errs["starting_weight_kg"] != "" {
		errs["current_weight_kg"] = errs["starting_weight_kg"]
		delete(errs, "starting_weight_kg")
	}

	if req.Goals != nil {
		f.Goals = *req.Goals
	}
	if req.DietaryRestrictions != nil {
		f.DietaryRestrictions = *req.DietaryRestrictions
	}
	if req.Allergies != nil {
		f.Allergies = *req.Allergies
	}
	if req.MedicalNotes != nil {
		f.MedicalNotes = *req.MedicalNotes
	}
	f.DailyCalorieTarget = req.DailyCalorieTarget
	f.DailyWaterTargetMl = req.DailyWaterTargetMl
	validateGoals(errs, &f)

	if req.Status != nil {
		validate.OneOf(errs, "status", *req.Status, Statuses...)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	c.FullName = strings.TrimSpace(f.FullName)
	c.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			c.DateOfBirth = nil
		} else {
			dob, _ := features.ParseDate(*req.DateOfBirth)
			c.DateOfBirth = &dob
		}
	}
	if req.Gender != nil {
		c.Gender = *req.Gender
	}
	if req.HeightCm != nil {
		c.HeightCm = req.HeightCm
	}
	if req.CurrentWeightKg != nil {
		c.CurrentWeightKg = req.CurrentWeightKg
	}
	if req.TargetWeightKg != nil {
		c.TargetWeightKg = req.TargetWeightKg
	}
	if req.ActivityLevel != nil {
		c.ActivityLevel = *req.ActivityLevel
	}
	if req.Goals != nil {
		c.Goals = jsonList(*req.Goals)
	}
	if req.DietaryRestrictions != nil {
		c.DietaryRestrictions = jsonList(*req.DietaryRestrictions)
	}
	if req.Allergies != nil {
		c.Allergies = *req.Allergies
	}
	if req.MedicalNotes != nil {
		c.MedicalNotes = *req.MedicalNotes
	}
	if req.DailyCalorieTarget != nil {
		c.DailyCalorieTarget = *req.DailyCalorieTarget
	}
	if req.DailyWaterTargetMl != nil {
		c.DailyWaterTargetMl = *req.DailyWaterTargetMl
	}
	archiving := false
	if req.Status != nil {
		archiving = *req.Status == models.CustomerArchived && c.Status != models.CustomerArchived
		c.Status = *req.Status
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Coach").Save(c).Error; err != nil {
			return err
		}
		if c.UserID == nil {
			return nil
		}
		// The portal login follows the customer's email.
		if req.Email != nil {
			if err := syncPortalEmail(tx, *c.UserID, c.Email); err != nil {
				return err
			}
		}
		if archiving {
			return models.RevokeSessions(tx, *c.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func syncPortalEmail(tx *gorm.DB, userID uuid.UUID, email string) error {
	var taken int64
	if err := tx.Unscoped().Model(&models.User{}).
		Where("email = ? AND id <> ?", email, userID).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return services.ErrEmailTaken
	}
	err := tx.Model(&models.User{}).Where("id = ?", userID).Update("email", email).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return services.ErrEmailTaken
	}
	return err
}

func (s *CustomerService) Archive(coachID, id uuid.UUID) (*models.Customer, error) {
	c, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}
	c.Status = models.CustomerArchived
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(c).Update("status", models.CustomerArchived).Error; err != nil {
			return err
		}
		if c.UserID != nil {
			// Archived customers lose portal sessions.
			return models.RevokeSessions(tx, *c.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the customer, every row hanging off it and its portal login.
func (s *CustomerService) Delete(coachID, id uuid.UUID) error {
	c, err := s.Get(coachID, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return purgeCustomers(tx, []uuid.UUID{c.ID})
	})
}

// PurgeCoach hard-deletes everything a coach owns: customers with their
// records and portal logins, messages the coach took part in, the coach's
// analytics events, settings and sessions. The coach's user row is left to
// the caller.
func PurgeCoach(tx *gorm.DB, coachID uuid.UUID) error {
	var ids []uuid.UUID
	if err := tx.Unscoped().Model(&models.Customer{}).Where("coach_id = ?", coachID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if err := purgeCustomers(tx, ids); err != nil {
		return err
	}
	if err := tx.Where("sender_id = ? OR recipient_id = ?", coachID, coachID).Delete(&messaging.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", coachID).Delete(&analytics.Event{}).Error; err != nil {
		return err
	}
	if err := tx.Where("coach_id = ?", coachID).Delete(&models.CoachSetting{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", coachID).Delete(&models.RefreshToken{}).Error
}

func purgeCustomers(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	plans := tx.Model(&mealplans.MealPlan{}).Select("id").Where("customer_id IN ?", ids)
	if err := tx.Where("meal_plan_id IN (?)", plans).Delete(&mealplans.MealItem{}).Error; err != nil {
		return err
	}
	byCustomer := []interface{}{
		&mealplans.MealPlan{},
		&bookings.Booking{},
		&habits.HabitLog{},
		&habits.Habit{},
		&checkins.CheckIn{},
		&tracking.FoodLog{},
		&tracking.WaterLog{},
		&tracking.WeightLog{},
		&messaging.Message{},
		&analytics.Event{},
	}
	for _, m := range byCustomer {
		if err := tx.Where("customer_id IN ?", ids).Delete(m).Error; err != nil {
			return err
		}
	}

	var userIDs []uuid.UUID
	if err := tx.Unscoped().Model(&models.Customer{}).
		Where("id IN ? AND user_id IS NOT NULL", ids).Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}
	if len(userIDs) > 0 {
		if err := tx.Where("user_id IN ?", userIDs).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id IN ?", userIDs).Delete(&analytics.Event{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("id IN ?", ids).Delete(&models.Customer{}).Error; err != nil {
		return err
	}
	if len(userIDs) > 0 {
		return tx.Unscoped().Where("id IN ?", userIDs).Delete(&models.User{}).Error
	}
	return nil
}

// EnablePortal creates a login for an existing customer.
func (s *CustomerService) EnablePortal(coachID, id uuid.UUID, password string) (*models.Customer, error) {
	c, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != nil {
		return nil, ErrPortalExists
	}
	if len(password) < services.MinPasswordLength {
		return nil, validate.Errors{"portal_password": fmt.Sprintf("must be at least %d characters", services.MinPasswordLength)}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		user, err := services.CreateUser(tx, c.Email, password, c.FullName, models.RoleCustomer)
		if err != nil {
			return err
		}
		c.UserID = &user.ID
		return tx.Model(c).Update("user_id", user.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.sendWelcome(coachID, c)
	return c, nil
}

func (s *CustomerService) UploadAvatar(ctx context.Context, coachID, id uuid.UUID, fh *multipart.FileHeader) (string, error) {
	c, err := s.Get(coachID, id)
	if err != nil {
		return "", err
	}
	url, err := storage.ReplaceImage(ctx, s.uploader, fh, "customers", c.ID, c.AvatarURL)
	if err != nil {
		return "", err
	}
	if err := s.db.Model(c).Update("avatar_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}

func (s *CustomerService) Overview(coachID, id uuid.UUID) (*Overview, error) {
	c, err := s.Get(coachID, id)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		Customer:         *c,
		HasPortalAccount: c.UserID != nil,
		WeightChangeKg:   WeightChange(c.StartingWeightKg, c.CurrentWeightKg),
	}
	if c.TargetWeightKg != nil && c.CurrentWeightKg != nil {
		d := roundKg(*c.CurrentWeightKg - *c.TargetWeightKg)
		out.ToGoalKg = &d
	}

	if out.LatestCheckIn, err = checkins.Latest(s.db, c.ID); err != nil {
		return nil, err
	}
	if out.ActivePlan, err = mealplans.ActiveForCustomer(s.db, c.ID); err != nil {
		return nil, err
	}
	if out.NextBooking, err = bookings.NextForCustomer(s.db, c.ID); err != nil {
		return nil, err
	}

	to := features.Today()
	report, err := habits.ComplianceFor(s.db, c.ID, to.AddDate(0, 0, -6), to)
	if err != nil {
		return nil, err
	}
	out.HabitCompliance = report.Overall
	return out, nil
}

// ForPortal loads the customer record behind a portal session.
func (s *CustomerService) ForPortal(customerID uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.First(&c, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authctx.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}
