package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/identity_verifier.txt
	identityVerifierRaw string

	//go:embed template/mood_recorder.txt
	moodRecorderRaw string

	//go:embed template/glucose_collector.txt
	glucoseCollectorRaw string

	//go:embed template/meal_planner.txt
	mealPlannerRaw string

	//go:embed template/health_qna.txt
	healthQnARaw string
)

// PromptSet holds the instruction payload for each agent. The texts are
// opaque to the orchestration core.
type PromptSet struct {
	IdentityVerifier string
	MoodRecorder     string
	GlucoseCollector string
	MealPlanner      string
	HealthQnA        string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		IdentityVerifier: strings.TrimSpace(identityVerifierRaw),
		MoodRecorder:     strings.TrimSpace(moodRecorderRaw),
		GlucoseCollector: strings.TrimSpace(glucoseCollectorRaw),
		MealPlanner:      strings.TrimSpace(mealPlannerRaw),
		HealthQnA:        strings.TrimSpace(healthQnARaw),
	}
}
