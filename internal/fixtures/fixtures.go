// Package fixtures holds the records a fresh store is seeded with.
package fixtures

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed is the full set of seed records.
type Seed struct {
	Surveys       []domain.SurveyRecord `yaml:"surveys" validate:"dive"`
	LandChanges   []domain.LandChange   `yaml:"landChanges" validate:"dive"`
	CivilRequests []domain.CivilRequest `yaml:"civilRequests" validate:"dive"`
}

// Load decodes and validates the embedded seed. Every call returns fresh copies.
func Load() (*Seed, error) {
	return Parse(seedYAML)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("validate seed: %w", err)
	}
	return &s, nil
}
