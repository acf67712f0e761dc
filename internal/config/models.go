package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ModelSpec names the primary and backup models for one stage, with the
// sampling temperature both share.
type ModelSpec struct {
	Model       string  `yaml:"model"`
	Backup      string  `yaml:"backup"`
	Temperature float64 `yaml:"temperature"`
}

// Models maps each pipeline stage to its model choice. SQL covers both the
// generate and the validate sub-stages of the query agent.
type Models struct {
	Rewrite  ModelSpec `yaml:"rewrite"`
	Classify ModelSpec `yaml:"classify"`
	Answer   ModelSpec `yaml:"answer"`
	Fallback ModelSpec `yaml:"fallback"`
	SQL      ModelSpec `yaml:"sql"`
}

// DefaultModels returns the built-in per-stage model choices. Deterministic
// stages run at temperature 0; the user-facing stages get some warmth.
func DefaultModels() Models {
	deterministic := ModelSpec{Model: "gpt-4o-mini", Backup: "gpt-4o", Temperature: 0}
	conversational := ModelSpec{Model: "gpt-4o-mini", Backup: "gpt-4o", Temperature: 0.7}
	return Models{
		Rewrite:  deterministic,
		Classify: deterministic,
		Answer:   conversational,
		Fallback: conversational,
		SQL:      deterministic,
	}
}

// EnsureModels writes the default model config if none exists.
func EnsureModels() error {
	path := ModelsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	defaults := DefaultModels()
	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadModels reads the per-stage model config, backfilling any stage the
// file leaves unset.
func LoadModels() (Models, error) {
	models := DefaultModels()

	data, err := os.ReadFile(ModelsPath())
	if err != nil {
		return models, nil
	}
	if err := yaml.Unmarshal(data, &models); err != nil {
		return DefaultModels(), err
	}

	defaults := DefaultModels()
	fill := func(spec *ModelSpec, fallback ModelSpec) {
		if spec.Model == "" {
			*spec = fallback
		}
	}
	fill(&models.Rewrite, defaults.Rewrite)
	fill(&models.Classify, defaults.Classify)
	fill(&models.Answer, defaults.Answer)
	fill(&models.Fallback, defaults.Fallback)
	fill(&models.SQL, defaults.SQL)

	return models, nil
}
