package sweep

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cdsim/internal/config"
	"github.com/san-kum/cdsim/internal/dynamo"
	"github.com/san-kum/cdsim/internal/experiment"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset or config file plus parameter
// overrides.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Model      string             `yaml:"model"`
	Preset     string             `yaml:"preset"`
	ConfigFile string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves the step into a run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.ConfigFile != "":
		loaded, err := config.Load(s.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Model, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", s.Model, s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}
	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	for k, v := range s.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes all steps in order. The returned configs line up
// with the results.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *zap.Logger) ([]*config.Config, []*dynamo.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	configs := make([]*config.Config, 0, len(scenario.Steps))
	results := make([]*dynamo.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step",
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("name", step.Name),
		)

		cfg, err := step.Config()
		if err != nil {
			return configs, results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(registry, nil); err != nil {
			return configs, results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return configs, results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		configs = append(configs, cfg)
		results = append(results, result)
	}

	return configs, results, nil
}
