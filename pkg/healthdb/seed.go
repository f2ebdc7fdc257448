package healthdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	defaultSeedUsers = 100
	seedHistoryDays  = 30
)

var (
	seedDietaryPrefs = []string{"vegetarian", "vegan", "non-vegetarian"}

	seedMedicalConditions = []string{
		"Type 2 diabetes",
		"Hypertension",
		"High cholesterol",
		"Heart disease",
		"Asthma",
		"Arthritis",
		"None",
	}

	seedPhysicalLimitations = []string{
		"Mobility issues",
		"Visual impairment",
		"Hearing impairment",
		"Limited dexterity",
		"None",
	}

	seedMoods = []string{"happy", "sad", "tired", "energetic", "stressed", "calm", "anxious", "excited"}
)

// glucoseRange is a weighted band of synthetic readings. Bands depend on the
// user's conditions so seeded histories look plausible per profile.
type glucoseRange struct {
	normal  [2]float64
	hyper   [2]float64
	hypo    [2]float64
	weights [3]float64 // normal, hyper, hypo
}

func rangesForConditions(conditions string) glucoseRange {
	lowered := strings.ToLower(conditions)
	switch {
	case strings.Contains(lowered, "type 2 diabetes"):
		return glucoseRange{
			normal:  [2]float64{70, 180},
			hyper:   [2]float64{181, 300},
			hypo:    [2]float64{40, 69},
			weights: [3]float64{0.6, 0.3, 0.1},
		}
	case strings.Contains(lowered, "hypertension"),
		strings.Contains(lowered, "high cholesterol"),
		strings.Contains(lowered, "heart disease"):
		return glucoseRange{
			normal:  [2]float64{80, 150},
			hyper:   [2]float64{151, 220},
			hypo:    [2]float64{60, 79},
			weights: [3]float64{0.85, 0.1, 0.05},
		}
	default:
		return glucoseRange{
			normal:  [2]float64{70, 120},
			hyper:   [2]float64{121, 140},
			hypo:    [2]float64{65, 69},
			weights: [3]float64{0.95, 0.04, 0.01},
		}
	}
}

func (r glucoseRange) pick(f *gofakeit.Faker) float64 {
	band := r.normal
	roll := f.Float64Range(0, 1)
	switch {
	case roll < r.weights[2]:
		band = r.hypo
	case roll < r.weights[2]+r.weights[1]:
		band = r.hyper
	}

	reading := f.Float64Range(band[0], band[1])
	// ±5% measurement noise
	reading *= f.Float64Range(0.95, 1.05)
	return float64(int(reading*10)) / 10
}

// Seed populates the database with synthetic users, condition-dependent
// glucose histories, and mood logs. It returns the number of users created.
func (db *DB) Seed(ctx context.Context, userCount int) (int, error) {
	if userCount <= 0 {
		userCount = defaultSeedUsers
	}

	f := gofakeit.New(0)
	now := time.Now().UTC()

	for i := 0; i < userCount; i++ {
		firstName := f.FirstName()
		lastName := f.LastName()

		conditions := pickConditions(f)
		user := &User{
			FirstName:           firstName,
			LastName:            lastName,
			Email:               fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(firstName), strings.ToLower(lastName), i),
			City:                f.City(),
			DateOfBirth:         f.DateRange(now.AddDate(-65, 0, 0), now.AddDate(-18, 0, 0)),
			DietaryPreference:   seedDietaryPrefs[f.IntRange(0, len(seedDietaryPrefs)-1)],
			MedicalConditions:   conditions,
			PhysicalLimitations: seedPhysicalLimitations[f.IntRange(0, len(seedPhysicalLimitations)-1)],
		}
		if _, err := db.bun.NewInsert().Model(user).Exec(ctx); err != nil {
			return i, fmt.Errorf("insert seed user %d: %w", i, err)
		}

		if err := db.seedReadings(ctx, f, user.ID, conditions, now); err != nil {
			return i, err
		}
		if err := db.seedMoodLogs(ctx, f, user.ID, now); err != nil {
			return i, err
		}
	}

	return userCount, nil
}

func pickConditions(f *gofakeit.Faker) string {
	first := seedMedicalConditions[f.IntRange(0, len(seedMedicalConditions)-1)]
	if f.Float64Range(0, 1) < 0.5 {
		return first
	}
	second := seedMedicalConditions[f.IntRange(0, len(seedMedicalConditions)-1)]
	if second == first {
		return first
	}
	return first + ", " + second
}

func (db *DB) seedReadings(ctx context.Context, f *gofakeit.Faker, userID int64, conditions string, now time.Time) error {
	ranges := rangesForConditions(conditions)

	for day := 0; day < seedHistoryDays; day++ {
		hours := []int{8, 12, 16, 20}
		if f.Float64Range(0, 1) <= 0.3 {
			hours = []int{8, 12, 20}
		}

		rows := make([]*GlucoseReading, 0, len(hours))
		for _, hour := range hours {
			ts := now.AddDate(0, 0, -day).
				Truncate(24 * time.Hour).
				Add(time.Duration(hour)*time.Hour + time.Duration(f.IntRange(0, 59))*time.Minute)
			if ts.After(now) {
				continue
			}
			rows = append(rows, &GlucoseReading{
				UserID:    userID,
				Reading:   ranges.pick(f),
				Timestamp: ts,
			})
		}
		if len(rows) == 0 {
			continue
		}
		if _, err := db.bun.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert seed readings for user %d: %w", userID, err)
		}
	}
	return nil
}

func (db *DB) seedMoodLogs(ctx context.Context, f *gofakeit.Faker, userID int64, now time.Time) error {
	rows := make([]*WellbeingLog, 0, seedHistoryDays)
	for day := 0; day < seedHistoryDays; day++ {
		// roughly 70% of days have a mood entry
		if f.Float64Range(0, 1) >= 0.7 {
			continue
		}
		rows = append(rows, &WellbeingLog{
			UserID:    userID,
			Mood:      seedMoods[f.IntRange(0, len(seedMoods)-1)],
			Timestamp: now.AddDate(0, 0, -day).Add(-time.Duration(f.IntRange(8, 20)) * time.Hour),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := db.bun.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert seed mood logs for user %d: %w", userID, err)
	}
	return nil
}
