package healthdb

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a health app user profile row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                  int64     `bun:"id,pk,autoincrement"`
	FirstName           string    `bun:"first_name,notnull"`
	LastName            string    `bun:"last_name,notnull"`
	Email               string    `bun:"email,notnull,unique"`
	City                string    `bun:"city,notnull"`
	DateOfBirth         time.Time `bun:"date_of_birth,notnull"`
	DietaryPreference   string    `bun:"dietary_preference,notnull"`
	MedicalConditions   string    `bun:"medical_conditions,notnull"`   // comma-separated
	PhysicalLimitations string    `bun:"physical_limitations,notnull"` // comma-separated
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero"`
}

// GlucoseReading is one CGM sample in mg/dL.
type GlucoseReading struct {
	bun.BaseModel `bun:"table:glucose_readings,alias:gr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Reading   float64   `bun:"reading,notnull"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// WellbeingLog is one mood entry.
type WellbeingLog struct {
	bun.BaseModel `bun:"table:wellbeing_logs,alias:wl"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Mood      string    `bun:"mood"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ConversationLog groups chat messages by session for later review.
type ConversationLog struct {
	bun.BaseModel `bun:"table:conversation_logs,alias:cl"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	SessionID string    `bun:"session_id,notnull"`
	Role      string    `bun:"role,notnull"` // "user" or "assistant"
	Message   string    `bun:"message,notnull"`
	Timestamp time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`
	Metadata  string    `bun:"metadata,nullzero"`
}
