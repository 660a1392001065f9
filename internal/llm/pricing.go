package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed pricing.yaml
var pricingYAML []byte

// ModelCost is a model's list price in USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64 `yaml:"input"`
	OutputPerMTok float64 `yaml:"output"`
}

// Cost is the USD price of a request with the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

var priceTable = sync.OnceValue(func() map[string]ModelCost {
	table, err := parsePricing(pricingYAML)
	if err != nil {
		panic(err)
	}
	return table
})

// parsePricing flattens the per-provider sections into one table.
func parsePricing(data []byte) (map[string]ModelCost, error) {
	var byProvider map[string]map[string]ModelCost
	if err := yaml.Unmarshal(data, &byProvider); err != nil {
		return nil, fmt.Errorf("parse pricing table: %w", err)
	}
	table := make(map[string]ModelCost)
	for _, models := range byProvider {
		for id, cost := range models {
			table[id] = cost
		}
	}
	return table, nil
}

// LookupCost returns the price for modelID, or nil when it is not listed.
// Gateway ids like "anthropic/claude-haiku-4-5" are matched on the part
// after the slash.
func LookupCost(modelID string) *ModelCost {
	if i := strings.LastIndexByte(modelID, '/'); i >= 0 {
		modelID = modelID[i+1:]
	}
	table := priceTable()
	if c, ok := table[modelID]; ok {
		return &c
	}

	var best string
	for id := range table {
		if len(id) > len(best) && strings.HasPrefix(modelID, id+"-") {
			best = id
		}
	}
	if best == "" {
		return nil
	}
	c := table[best]
	return &c
}
