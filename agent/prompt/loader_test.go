package prompt

import (
	"strings"
	"testing"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	prompts := map[string]string{
		"identity_verifier": set.IdentityVerifier,
		"mood_recorder":     set.MoodRecorder,
		"glucose_collector": set.GlucoseCollector,
		"meal_planner":      set.MealPlanner,
		"health_qna":        set.HealthQnA,
	}
	for name, text := range prompts {
		if text == "" {
			t.Errorf("prompt %s is empty", name)
		}
		if strings.TrimSpace(text) != text {
			t.Errorf("prompt %s is not trimmed", name)
		}
	}
	if !strings.Contains(set.GlucoseCollector, "record_glucose_reading") {
		t.Error("glucose collector prompt does not mention its tool")
	}
}
