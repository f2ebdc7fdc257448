package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/ace139/healthmate/agent/contract"
	statex "github.com/ace139/healthmate/agent/state"
	"github.com/ace139/healthmate/pkg/healthdb"
)

// Fact keys written into the shared context for later agents to read.
const (
	FactUserName      = "user_name"
	FactLastMood      = "last_mood"
	FactLastReading   = "last_reading"
	FactGlucoseStatus = "glucose_status"
)

type VerifyIdentityOutput struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type RecordMoodOutput struct {
	Mood    string `json:"mood"`
	Message string `json:"message"`
}

type RecordGlucoseOutput struct {
	Reading        float64        `json:"reading"`
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
}

type HealthProfileOutput struct {
	Name                string `json:"name"`
	DietaryPreference   string `json:"dietary_preference"`
	MedicalConditions   string `json:"medical_conditions"`
	PhysicalLimitations string `json:"physical_limitations"`
}

type GlucoseHistoryOutput struct {
	HasReadings bool    `json:"has_readings"`
	LastReading float64 `json:"last_reading,omitempty"`
	LastTakenAt string  `json:"last_taken_at,omitempty"`
	Avg3Day     float64 `json:"avg_3day,omitempty"`
	Avg7Day     float64 `json:"avg_7day,omitempty"`
	NormalRange string  `json:"normal_range"`
}

type MealSlot struct {
	Slot     string `json:"slot"`
	Guidance string `json:"guidance"`
}

type MealPlanOutput struct {
	GlucoseStatus       string     `json:"glucose_status"`
	DietaryPreference   string     `json:"dietary_preference"`
	MedicalConditions   string     `json:"medical_conditions"`
	PhysicalLimitations string     `json:"physical_limitations"`
	Meals               []MealSlot `json:"meals"`
}

func executeVerifyIdentity(ctx context.Context, store contractx.HealthStore, req contractx.ToolRequest) (contractx.ToolResult, error) {
	userID, err := intArg(req.Args, "user_id")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}

	profile, err := store.GetUser(ctx, userID)
	if errors.Is(err, healthdb.ErrUserNotFound) || errors.Is(err, healthdb.ErrInvalidUser) {
		return failure(req.Tool, fmt.Sprintf("user ID %d not found, please provide a valid ID", userID)), nil
	}
	if err != nil {
		return failure(req.Tool, fmt.Sprintf("could not verify ID: %v", err)), nil
	}

	return contractx.ToolResult{
		Tool: req.Tool,
		Result: VerifyIdentityOutput{
			UserID:  profile.ID,
			Name:    profile.FullName(),
			Message: fmt.Sprintf("Verification successful. Welcome, %s!", profile.FullName()),
		},
		Context: &statex.Delta{
			UserID: profile.ID,
			Facts:  map[string]string{FactUserName: profile.FullName()},
		},
	}, nil
}

func executeRecordMood(ctx context.Context, store contractx.HealthStore, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if !sctx.Verified() {
		return failure(req.Tool, "user is not verified yet, identity must be confirmed first"), nil
	}

	mood, err := stringArg(req.Args, "mood")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}

	if err := store.RecordMood(ctx, sctx.UserID, mood); err != nil {
		return failure(req.Tool, fmt.Sprintf("could not record mood: %v", err)), nil
	}

	return contractx.ToolResult{
		Tool: req.Tool,
		Result: RecordMoodOutput{
			Mood:    mood,
			Message: fmt.Sprintf("Your mood has been recorded as %q.", mood),
		},
		Context: &statex.Delta{
			Facts: map[string]string{FactLastMood: mood},
		},
	}, nil
}

func executeRecordGlucose(ctx context.Context, store contractx.HealthStore, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if !sctx.Verified() {
		return failure(req.Tool, "user is not verified yet, identity must be confirmed first"), nil
	}

	reading, err := floatArg(req.Args, "value")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}
	if reading <= 0 {
		return failure(req.Tool, "glucose reading must be a positive number of mg/dL"), nil
	}

	if err := store.RecordGlucose(ctx, sctx.UserID, reading); err != nil {
		return failure(req.Tool, fmt.Sprintf("could not record glucose reading: %v", err)), nil
	}

	classification := ClassifyGlucose(reading)
	var message string
	switch classification {
	case GlucoseLow:
		message = fmt.Sprintf("Your glucose reading of %.1f mg/dL has been recorded. It is below the normal range; consider having a snack or meal soon.", reading)
	case GlucoseHigh:
		message = fmt.Sprintf("Your glucose reading of %.1f mg/dL has been recorded. It is above the normal range.", reading)
	default:
		message = fmt.Sprintf("Your glucose reading of %.1f mg/dL has been recorded. Great job, it is within the normal range.", reading)
	}

	return contractx.ToolResult{
		Tool: req.Tool,
		Result: RecordGlucoseOutput{
			Reading:        reading,
			Classification: classification,
			Message:        message,
		},
		Context: &statex.Delta{
			Facts: map[string]string{
				FactLastReading:   fmt.Sprintf("%.1f", reading),
				FactGlucoseStatus: string(classification),
			},
		},
	}, nil
}

func executeGetHealthProfile(ctx context.Context, store contractx.HealthStore, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if !sctx.Verified() {
		return failure(req.Tool, "user is not verified yet, identity must be confirmed first"), nil
	}

	profile, err := store.GetUser(ctx, sctx.UserID)
	if errors.Is(err, healthdb.ErrUserNotFound) {
		return failure(req.Tool, fmt.Sprintf("user ID %d not found", sctx.UserID)), nil
	}
	if err != nil {
		return failure(req.Tool, fmt.Sprintf("could not fetch health profile: %v", err)), nil
	}

	return contractx.ToolResult{
		Tool: req.Tool,
		Result: HealthProfileOutput{
			Name:                profile.FullName(),
			DietaryPreference:   profile.DietaryPreference,
			MedicalConditions:   profile.MedicalConditions,
			PhysicalLimitations: profile.PhysicalLimitations,
		},
	}, nil
}

func executeGetGlucoseHistory(ctx context.Context, store contractx.HealthStore, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if !sctx.Verified() {
		return failure(req.Tool, "user is not verified yet, identity must be confirmed first"), nil
	}

	stats, err := store.GlucoseStats(ctx, sctx.UserID)
	if err != nil {
		return failure(req.Tool, fmt.Sprintf("could not fetch glucose history: %v", err)), nil
	}

	out := GlucoseHistoryOutput{
		HasReadings: stats.HasReadings,
		NormalRange: "70-140 mg/dL",
	}
	if stats.HasReadings {
		out.LastReading = stats.LastReading
		out.LastTakenAt = stats.LastTakenAt.Format(time.RFC3339)
		out.Avg3Day = stats.Avg3Day
		out.Avg7Day = stats.Avg7Day
	}

	return contractx.ToolResult{Tool: req.Tool, Result: out}, nil
}

func executeGenerateMealPlan(ctx context.Context, store contractx.HealthStore, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if !sctx.Verified() {
		return failure(req.Tool, "user is not verified yet, identity must be confirmed first"), nil
	}

	status, err := stringArg(req.Args, "glucose_status")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}
	status = strings.ToLower(strings.TrimSpace(status))
	switch Classification(status) {
	case GlucoseLow, GlucoseNormal, GlucoseHigh:
	default:
		return failure(req.Tool, "glucose_status must be one of 'low', 'normal', 'high'"), nil
	}

	profile, err := store.GetUser(ctx, sctx.UserID)
	if err != nil {
		return failure(req.Tool, fmt.Sprintf("could not fetch health profile: %v", err)), nil
	}

	// The skeleton fixes the shape (three meals); the agent fills in the
	// concrete food suggestions when presenting it.
	out := MealPlanOutput{
		GlucoseStatus:       status,
		DietaryPreference:   profile.DietaryPreference,
		MedicalConditions:   profile.MedicalConditions,
		PhysicalLimitations: profile.PhysicalLimitations,
		Meals: []MealSlot{
			{Slot: "next meal", Guidance: guidanceFor(Classification(status))},
			{Slot: "following meal", Guidance: guidanceFor(Classification(status))},
			{Slot: "later meal", Guidance: guidanceFor(Classification(status))},
		},
	}

	// Meal-plan delivery completes the intake workflow.
	return contractx.ToolResult{
		Tool:    req.Tool,
		Result:  out,
		Context: &statex.Delta{RequestExit: true},
	}, nil
}

func guidanceFor(status Classification) string {
	switch status {
	case GlucoseLow:
		return "include foods that raise blood sugar safely, such as fruits or whole grains"
	case GlucoseHigh:
		return "focus on low-glycemic foods, complex carbs, protein, and fiber"
	default:
		return "balanced meal that helps maintain stable glucose levels"
	}
}

func executeGetHealthInformation(ctx context.Context, store contractx.HealthStore, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	query, err := stringArg(req.Args, "query")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}

	if info, ok := lookupHealthTopic(query); ok {
		return contractx.ToolResult{Tool: req.Tool, Result: info}, nil
	}

	// Miss is a named failure, not an exception. Include profile context when
	// available so the agent can still answer helpfully.
	reason := fmt.Sprintf("no matching entry for %q in the knowledge base", query)
	if sctx.Verified() {
		if profile, perr := store.GetUser(ctx, sctx.UserID); perr == nil {
			reason = fmt.Sprintf(
				"no matching entry for %q in the knowledge base; user profile: dietary preference %s, medical conditions %s",
				query, profile.DietaryPreference, profile.MedicalConditions,
			)
		}
	}
	return failure(req.Tool, reason), nil
}

func executeAnswerHealthQuestion(ctx context.Context, subAgent SubAgentFunc, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	if subAgent == nil {
		return failure(req.Tool, "health Q&A capability is not available"), nil
	}

	question, err := stringArg(req.Args, "question")
	if err != nil {
		return failure(req.Tool, err.Error()), nil
	}

	answer, err := subAgent(ctx, sctx, question)
	if err != nil {
		return failure(req.Tool, fmt.Sprintf("could not answer health question: %v", err)), nil
	}

	return contractx.ToolResult{Tool: req.Tool, Result: answer}, nil
}

func failure(tool, reason string) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Error: reason}
}
