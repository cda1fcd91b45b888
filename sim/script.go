package sim

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Step changes the target at a point in time
type Step struct {
	AtUS   uint64  `yaml:"at_us"`
	Target float32 `yaml:"target"`
	Now    bool    `yaml:"now"` // use SetNow instead of Set
}

// Script is a list of steps ordered by time
type Script []Step

// ParseScript decodes a YAML list of steps, for example
//
//   - {at_us: 0, target: 0.2}
//   - {at_us: 500000, target: 0.8, now: true}
func ParseScript(data []byte) (Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range script {
		if step.Target < 0 || step.Target > 1 {
			return nil, fmt.Errorf("step %d: target %v outside [0, 1]", i, step.Target)
		}
	}
	script.sort()
	return script, nil
}

// End returns the time of the last step
func (s Script) End() uint64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].AtUS
}

func (s Script) sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].AtUS < s[j].AtUS })
}
