package billing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Plan describes a subscription plan. The ID field is the payment provider's
// price ID so checkout requests and webhook events map directly onto the
// catalogue.
type Plan struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Features    []Feature       `yaml:"features"`
	Price       Money           `yaml:"price"`
	Interval    BillingInterval `yaml:"interval"`
}

// HasFeature reports whether the plan includes a capability.
func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

// PlansListSource defines how plans are loaded into the billing service.
type PlansListSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory source with a copy of the given plans.
// Panics if no plans are provided so the service always has a catalogue.
func NewInMemSource(plans ...Plan) PlansListSource {
	if len(plans) < 1 {
		panic("billing: at least one plan is required")
	}
	copied := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		plan.Features = slices.Clone(plan.Features)
		copied[plan.ID] = plan
	}
	return &inMemSource{plans: copied}
}

func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := maps.Clone(s.plans)
	for id, plan := range out {
		plan.Features = slices.Clone(plan.Features)
		out[id] = plan
	}
	return out, nil
}

type yamlSource struct {
	path string
}

// NewYAMLSource returns a source that reads the plan catalogue from a YAML
// file. The file holds a list of plans; see Plan field tags for the schema.
func NewYAMLSource(path string) PlansListSource {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var plans []Plan
	if err := yaml.Unmarshal(data, &plans); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	out := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		if plan.ID == "" {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %q has no price ID", plan.Name))
		}
		if _, exists := out[plan.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan ID %s", plan.ID))
		}
		out[plan.ID] = plan
	}
	return out, nil
}
