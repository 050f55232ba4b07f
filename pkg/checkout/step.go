// pkg/checkout/step.go
//
// Package checkout models a multi-step checkout as an explicit state
// machine. The current step is derived from the page's observable location
// on demand, never stored, and every state-gated action asserts the step it
// requires before touching the page.
package checkout

import (
	"fmt"
	"strings"
)

// Step is one discrete stage of the checkout process.
type Step int

const (
	// StepUnknown is the catch-all when the location matches no known step.
	StepUnknown Step = iota
	StepIdentification
	StepDelivery
	StepPayment
	// StepConfirmation is terminal: no transitions leave it.
	StepConfirmation
)

var stepNames = map[Step]string{
	StepUnknown:        "unknown",
	StepIdentification: "identification",
	StepDelivery:       "delivery",
	StepPayment:        "payment",
	StepConfirmation:   "confirmation",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ParseStep maps a configuration key to a Step.
func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if step != StepUnknown && n == strings.ToLower(strings.TrimSpace(name)) {
			return step, nil
		}
	}
	return StepUnknown, fmt.Errorf("unknown checkout step %q", name)
}

// classifyOrder fixes the match order so overlapping fragments resolve
// deterministically: first match wins.
var classifyOrder = []Step{StepIdentification, StepDelivery, StepPayment, StepConfirmation}

// Classifier derives a Step from an observable page location. It is a pure
// function, unit-testable without a live session.
type Classifier func(location string) Step

// NewFragmentClassifier builds a Classifier from per-step URL fragments.
// The location is matched against each step's fragments in checkout order;
// the first containing match wins and no match yields StepUnknown.
func NewFragmentClassifier(fragments map[Step][]string) (Classifier, error) {
	if len(fragments) == 0 {
		return nil, fmt.Errorf("no step fragments configured")
	}
	for step, frags := range fragments {
		if step == StepUnknown {
			return nil, fmt.Errorf("fragments must not be mapped to the unknown step")
		}
		for _, f := range frags {
			if strings.TrimSpace(f) == "" {
				return nil, fmt.Errorf("step %s has an empty fragment", step)
			}
		}
	}

	return func(location string) Step {
		for _, step := range classifyOrder {
			for _, fragment := range fragments[step] {
				if strings.Contains(location, fragment) {
					return step
				}
			}
		}
		return StepUnknown
	}, nil
}

// FragmentsFromConfig converts a configuration map keyed by step name into
// the typed fragment map NewFragmentClassifier expects.
func FragmentsFromConfig(raw map[string][]string) (map[Step][]string, error) {
	out := make(map[Step][]string, len(raw))
	for name, frags := range raw {
		step, err := ParseStep(name)
		if err != nil {
			return nil, err
		}
		out[step] = frags
	}
	return out, nil
}
