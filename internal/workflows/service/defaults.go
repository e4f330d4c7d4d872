package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultVariant is one template in the default workflow pack.
type DefaultVariant struct {
	Name         string `yaml:"name"`
	Subject      string `yaml:"subject"`
	Body         string `yaml:"body"`
	SplitPercent int    `yaml:"split_percent"`
}

// DefaultWorkflow is one entry in the default workflow pack shipped with
// the application and seeded into new companies.
type DefaultWorkflow struct {
	Name         string           `yaml:"name"`
	Trigger      string           `yaml:"trigger"`
	DelayMinutes int              `yaml:"delay_minutes"`
	Variants     []DefaultVariant `yaml:"variants"`
}

type defaultsFile struct {
	Workflows []DefaultWorkflow `yaml:"workflows"`
}

var validTriggers = map[string]bool{
	TriggerLeadCreated:   true,
	TriggerQuoteSent:     true,
	TriggerQuoteAccepted: true,
}

// LoadDefaults reads the default workflow pack from a YAML file. An
// empty path disables seeding.
func LoadDefaults(path string) ([]DefaultWorkflow, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow defaults: %w", err)
	}

	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse workflow defaults: %w", err)
	}

	for _, wf := range file.Workflows {
		if !validTriggers[wf.Trigger] {
			return nil, fmt.Errorf("workflow %q has unknown trigger %q", wf.Name, wf.Trigger)
		}
		total := 0
		for _, v := range wf.Variants {
			total += v.SplitPercent
		}
		if total != 100 {
			return nil, fmt.Errorf("workflow %q variant splits sum to %d, want 100", wf.Name, total)
		}
	}
	return file.Workflows, nil
}
