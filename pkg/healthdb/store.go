package healthdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserProfile is the read model handed to tools and agents.
type UserProfile struct {
	ID                  int64
	FirstName           string
	LastName            string
	DietaryPreference   string
	MedicalConditions   string
	PhysicalLimitations string
}

func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// GlucoseStats summarizes a user's reading history. HasReadings false means
// no prior readings exist, which is a valid state rather than an error.
type GlucoseStats struct {
	HasReadings bool
	LastReading float64
	LastTakenAt time.Time
	Avg3Day     float64
	Avg7Day     float64
}

// ConversationEntry is one chat message to persist.
type ConversationEntry struct {
	UserID    int64
	SessionID string
	Role      string
	Message   string
	Metadata  string
	At        time.Time
}

// GetUser loads a profile by id. Unknown ids return ErrUserNotFound.
func (db *DB) GetUser(ctx context.Context, userID int64) (*UserProfile, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}

	var user User
	err := db.bun.NewSelect().Model(&user).Where("u.id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id=%d", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("select user id=%d: %w", userID, err)
	}

	return &UserProfile{
		ID:                  user.ID,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		DietaryPreference:   user.DietaryPreference,
		MedicalConditions:   user.MedicalConditions,
		PhysicalLimitations: user.PhysicalLimitations,
	}, nil
}

// RecordMood appends a timestamped wellbeing row for the user.
func (db *DB) RecordMood(ctx context.Context, userID int64, mood string) error {
	if userID <= 0 {
		return ErrInvalidUser
	}
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return errors.New("mood is empty")
	}

	entry := &WellbeingLog{
		UserID:    userID,
		Mood:      mood,
		Timestamp: time.Now().UTC(),
	}
	if _, err := db.bun.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("insert wellbeing log: %w", err)
	}
	return nil
}

// RecordGlucose appends a timestamped reading row in mg/dL.
func (db *DB) RecordGlucose(ctx context.Context, userID int64, reading float64) error {
	if userID <= 0 {
		return ErrInvalidUser
	}
	if reading <= 0 {
		return errors.New("glucose reading must be positive")
	}

	row := &GlucoseReading{
		UserID:    userID,
		Reading:   reading,
		Timestamp: time.Now().UTC(),
	}
	if _, err := db.bun.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert glucose reading: %w", err)
	}
	return nil
}

// GlucoseStats returns the most recent reading plus rolling averages over
// the last 3 and 7 days.
func (db *DB) GlucoseStats(ctx context.Context, userID int64) (GlucoseStats, error) {
	if userID <= 0 {
		return GlucoseStats{}, ErrInvalidUser
	}

	var last GlucoseReading
	err := db.bun.NewSelect().
		Model(&last).
		Where("gr.user_id = ?", userID).
		OrderExpr("gr.timestamp DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return GlucoseStats{}, nil
	}
	if err != nil {
		return GlucoseStats{}, fmt.Errorf("select last reading: %w", err)
	}

	now := time.Now().UTC()
	avg3, err := db.averageSince(ctx, userID, now.AddDate(0, 0, -3))
	if err != nil {
		return GlucoseStats{}, err
	}
	avg7, err := db.averageSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return GlucoseStats{}, err
	}

	return GlucoseStats{
		HasReadings: true,
		LastReading: last.Reading,
		LastTakenAt: last.Timestamp,
		Avg3Day:     avg3,
		Avg7Day:     avg7,
	}, nil
}

func (db *DB) averageSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	var avg sql.NullFloat64
	err := db.bun.NewSelect().
		Model((*GlucoseReading)(nil)).
		ColumnExpr("AVG(gr.reading)").
		Where("gr.user_id = ?", userID).
		Where("gr.timestamp >= ?", since).
		Scan(ctx, &avg)
	if err != nil {
		return 0, fmt.Errorf("average readings since %s: %w", since.Format(time.RFC3339), err)
	}
	return avg.Float64, nil
}

// LogConversation appends one chat message row. Callers treat failures as
// diagnostics, not turn failures.
func (db *DB) LogConversation(ctx context.Context, entry ConversationEntry) error {
	if entry.UserID <= 0 {
		return ErrInvalidUser
	}
	if strings.TrimSpace(entry.SessionID) == "" {
		return errors.New("session id is empty")
	}

	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}
	row := &ConversationLog{
		UserID:    entry.UserID,
		SessionID: entry.SessionID,
		Role:      entry.Role,
		Message:   entry.Message,
		Timestamp: at.UTC(),
		Metadata:  entry.Metadata,
	}
	if _, err := db.bun.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert conversation log: %w", err)
	}
	return nil
}
