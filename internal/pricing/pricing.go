package pricing

import (
	"encoding/json"
	"fmt"
	"os"
)

// Model is one pricing tier: a model name, the BPE encoding it tokenizes
// with, and its price in USD per 1000 encoded tokens.
type Model struct {
	Name       string  `json:"name"`
	Encoding   string  `json:"encoding"`
	PricePer1K float64 `json:"price_per_1k"`
}

// Default returns the stock pricing tiers.
func Default() []Model {
	return []Model{
		{Name: "gpt-4o-mini", Encoding: "o200k_base", PricePer1K: 0.00015},
		{Name: "gpt-4o", Encoding: "o200k_base", PricePer1K: 0.0025},
	}
}

// Load reads a pricing table from a JSON file, a list of Model objects.
// Deployments point BOOKSTATS_PRICING or --pricing at one to re-rate
// without recompiling.
func Load(path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing table: %w", err)
	}

	var models []Model
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("failed to parse pricing table: %w", err)
	}

	if err := Validate(models); err != nil {
		return nil, fmt.Errorf("invalid pricing table %s: %w", path, err)
	}

	return models, nil
}

// Validate checks a pricing table for empty names, duplicates, missing
// encodings and negative rates.
func Validate(models []Model) error {
	if len(models) == 0 {
		return fmt.Errorf("pricing table is empty")
	}

	seen := make(map[string]bool)
	for _, m := range models {
		if m.Name == "" {
			return fmt.Errorf("pricing model with empty name")
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate pricing model %q", m.Name)
		}
		seen[m.Name] = true

		if m.Encoding == "" {
			return fmt.Errorf("pricing model %q has no encoding", m.Name)
		}
		if m.PricePer1K < 0 {
			return fmt.Errorf("pricing model %q has a negative price", m.Name)
		}
	}

	return nil
}

// Cost estimates the charge in USD for running the given number of encoded
// tokens through the model. Zero tokens cost zero.
func Cost(tokens int, m Model) float64 {
	return float64(tokens) / 1000.0 * m.PricePer1K
}
