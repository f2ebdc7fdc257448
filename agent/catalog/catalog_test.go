package catalog

import (
	"errors"
	"testing"

	contractx "github.com/ace139/healthmate/agent/contract"
	toolx "github.com/ace139/healthmate/agent/tool"
)

func TestEntryAgent(t *testing.T) {
	t.Parallel()

	c := New()
	if got := c.Entry(); got != contractx.AgentIdentityVerifier {
		t.Fatalf("entry agent = %s", got)
	}
}

func TestHandoffTable(t *testing.T) {
	t.Parallel()

	c := New()
	cases := []struct {
		source contractx.AgentName
		target contractx.AgentName
		want   bool
	}{
		{contractx.AgentIdentityVerifier, contractx.AgentMoodRecorder, true},
		{contractx.AgentMoodRecorder, contractx.AgentGlucoseCollector, true},
		{contractx.AgentGlucoseCollector, contractx.AgentMealPlanner, true},
		{contractx.AgentIdentityVerifier, contractx.AgentGlucoseCollector, false},
		{contractx.AgentIdentityVerifier, contractx.AgentMealPlanner, false},
		{contractx.AgentMoodRecorder, contractx.AgentIdentityVerifier, false},
		{contractx.AgentMealPlanner, contractx.AgentIdentityVerifier, false},
		{contractx.AgentMealPlanner, contractx.AgentHealthQnA, false},
		{contractx.AgentHealthQnA, contractx.AgentMealPlanner, false},
		{"ghost", contractx.AgentMoodRecorder, false},
	}
	for _, tc := range cases {
		if got := c.CanHandoff(tc.source, tc.target); got != tc.want {
			t.Errorf("CanHandoff(%s, %s) = %v, want %v", tc.source, tc.target, got, tc.want)
		}
	}
}

func TestGetUnknownAgent(t *testing.T) {
	t.Parallel()

	_, err := New().Get("ghost")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDescriptorsHaveInstructionsAndTools(t *testing.T) {
	t.Parallel()

	c := New()
	for _, name := range c.Names() {
		d, err := c.Get(name)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", name, err)
		}
		if d.Instructions == "" {
			t.Errorf("agent %s has no instructions", name)
		}
		if len(d.Tools) == 0 {
			t.Errorf("agent %s has no tools", name)
		}
	}
}

func TestToolGrants(t *testing.T) {
	t.Parallel()

	c := New()
	identity, err := c.Get(contractx.AgentIdentityVerifier)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !identity.CanUseTool(toolx.ToolVerifyIdentity) {
		t.Fatal("identity verifier cannot use verify_identity")
	}
	if identity.CanUseTool(toolx.ToolGenerateMealPlan) {
		t.Fatal("identity verifier granted generate_meal_plan")
	}

	planner, err := c.Get(contractx.AgentMealPlanner)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(planner.Handoffs) != 0 {
		t.Fatalf("meal planner declares handoffs: %v", planner.Handoffs)
	}
}
