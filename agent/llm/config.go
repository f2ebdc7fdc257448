package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/ace139/healthmate/agent/contract"
	openaix "github.com/ace139/healthmate/pkg/openai"
)

// Config carries the default chat model settings plus optional per-agent
// overrides, all loaded under the OPENAI prefix.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4.1-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`

	IdentityModel    string  `envconfig:"IDENTITY_MODEL" split_words:"true"`
	MoodModel        string  `envconfig:"MOOD_MODEL" split_words:"true"`
	GlucoseModel     string  `envconfig:"GLUCOSE_MODEL" split_words:"true"`
	MealPlannerModel string  `envconfig:"MEAL_PLANNER_MODEL" split_words:"true"`
	QnAModel         string  `envconfig:"QNA_MODEL" split_words:"true"`
	MealPlannerTemp  float32 `envconfig:"MEAL_PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	QnATemp          float32 `envconfig:"QNA_TEMPERATURE" split_words:"true" default:"-1"`
	CollectorTemp    float32 `envconfig:"COLLECTOR_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openai api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// ModelFor resolves the chat model config for one agent, applying any
// override on top of the defaults.
func (c Config) ModelFor(agent contractx.AgentName) openaix.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agent {
	case contractx.AgentIdentityVerifier:
		if v := strings.TrimSpace(c.IdentityModel); v != "" {
			modelName = v
		}
		if c.CollectorTemp >= 0 {
			temp = c.CollectorTemp
		}
	case contractx.AgentMoodRecorder:
		if v := strings.TrimSpace(c.MoodModel); v != "" {
			modelName = v
		}
		if c.CollectorTemp >= 0 {
			temp = c.CollectorTemp
		}
	case contractx.AgentGlucoseCollector:
		if v := strings.TrimSpace(c.GlucoseModel); v != "" {
			modelName = v
		}
		if c.CollectorTemp >= 0 {
			temp = c.CollectorTemp
		}
	case contractx.AgentMealPlanner:
		if v := strings.TrimSpace(c.MealPlannerModel); v != "" {
			modelName = v
		}
		if c.MealPlannerTemp >= 0 {
			temp = c.MealPlannerTemp
		}
	case contractx.AgentHealthQnA:
		if v := strings.TrimSpace(c.QnAModel); v != "" {
			modelName = v
		}
		if c.QnATemp >= 0 {
			temp = c.QnATemp
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openaix.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
