package catalog

import (
	"fmt"
	"slices"

	contractx "github.com/ace139/healthmate/agent/contract"
	promptx "github.com/ace139/healthmate/agent/prompt"
	toolx "github.com/ace139/healthmate/agent/tool"
)

// Descriptor declares one agent variant: its opaque instruction payload, the
// tools it may invoke, and the agents it may hand off to. The workflow order
// identity -> mood -> glucose -> (conditionally) meal planner is encoded
// entirely in the Handoffs sets; nothing else grants a transition.
type Descriptor struct {
	Name         contractx.AgentName
	Instructions string
	Tools        []string
	Handoffs     []contractx.AgentName
}

func (d Descriptor) CanUseTool(name string) bool {
	return slices.Contains(d.Tools, name)
}

func (d Descriptor) CanHandoffTo(target contractx.AgentName) bool {
	return slices.Contains(d.Handoffs, target)
}

// Catalog is the fixed agent set, immutable after construction.
type Catalog struct {
	byName map[contractx.AgentName]Descriptor
	entry  contractx.AgentName
}

// New builds the five-agent intake catalog.
func New() *Catalog {
	prompts := promptx.LoadPromptSet()

	descriptors := []Descriptor{
		{
			Name:         contractx.AgentIdentityVerifier,
			Instructions: prompts.IdentityVerifier,
			Tools:        []string{toolx.ToolVerifyIdentity},
			Handoffs:     []contractx.AgentName{contractx.AgentMoodRecorder},
		},
		{
			Name:         contractx.AgentMoodRecorder,
			Instructions: prompts.MoodRecorder,
			Tools:        []string{toolx.ToolRecordMood, toolx.ToolAnswerHealthQuestion},
			Handoffs:     []contractx.AgentName{contractx.AgentGlucoseCollector},
		},
		{
			Name:         contractx.AgentGlucoseCollector,
			Instructions: prompts.GlucoseCollector,
			Tools:        []string{toolx.ToolRecordGlucoseReading},
			Handoffs:     []contractx.AgentName{contractx.AgentMealPlanner},
		},
		{
			Name:         contractx.AgentMealPlanner,
			Instructions: prompts.MealPlanner,
			Tools: []string{
				toolx.ToolGetHealthProfile,
				toolx.ToolGetGlucoseHistory,
				toolx.ToolGenerateMealPlan,
				toolx.ToolAnswerHealthQuestion,
			},
		},
		{
			Name:         contractx.AgentHealthQnA,
			Instructions: prompts.HealthQnA,
			Tools:        []string{toolx.ToolGetHealthProfile, toolx.ToolGetHealthInformation},
		},
	}

	byName := make(map[contractx.AgentName]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	return &Catalog{
		byName: byName,
		entry:  contractx.AgentIdentityVerifier,
	}
}

// Entry returns the designated entry agent for a fresh session.
func (c *Catalog) Entry() contractx.AgentName {
	return c.entry
}

func (c *Catalog) Get(name contractx.AgentName) (Descriptor, error) {
	d, ok := c.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: unknown agent %q", contractx.ErrValidation, name)
	}
	return d, nil
}

// CanHandoff reports whether the catalog declares a transition from source
// to target.
func (c *Catalog) CanHandoff(source, target contractx.AgentName) bool {
	d, ok := c.byName[source]
	if !ok {
		return false
	}
	return d.CanHandoffTo(target)
}

func (c *Catalog) Names() []contractx.AgentName {
	names := make([]contractx.AgentName, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
