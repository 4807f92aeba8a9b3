package core

import (
	"errors"
	"fmt"

	"github.com/arnavsurve/virtuoso-converter/pkg/types"
)

// ErrNotArray is returned when the candidate is not a JSON array.
var ErrNotArray = errors.New("steps is not an array")

// StepError is the first fatal schema violation found in a step list.
type StepError struct {
	Index  int
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Index, e.Reason)
}

// StepWarning is a non-fatal inconsistency. A stepIndex that disagrees with
// the array position is reported but never fails validation.
type StepWarning struct {
	Index     int
	StepIndex any
}

func (w StepWarning) String() string {
	return fmt.Sprintf("Step %d has stepIndex %v", w.Index, w.StepIndex)
}

// CheckSteps applies the Virtuoso step rules in order and stops at the first
// violation. A missing stepIndex key is fatal while a mismatched value only
// produces a warning.
func CheckSteps(candidate any) ([]StepWarning, error) {
	items, ok := candidate.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	var warnings []StepWarning
	for i, item := range items {
		step, _ := item.(map[string]any)

		if step == nil {
			return warnings, &StepError{Index: i, Reason: "is not an object"}
		}
		if !truthy(step["checkpointId"]) {
			return warnings, &StepError{Index: i, Reason: "is missing required field 'checkpointId'"}
		}
		stepIndex, hasStepIndex := step["stepIndex"]
		if !hasStepIndex {
			return warnings, &StepError{Index: i, Reason: "is missing required field 'stepIndex'"}
		}
		if !truthy(step["parsedStep"]) {
			return warnings, &StepError{Index: i, Reason: "is missing required field 'parsedStep'"}
		}

		if n, isInt := Step(step).StepIndex(); !isInt || n != i {
			warnings = append(warnings, StepWarning{Index: i, StepIndex: stepIndex})
		}

		parsedStep := Step(step).ParsedStep()
		for _, field := range []string{"action", "target", "meta"} {
			if !truthy(parsedStep[field]) {
				return warnings, &StepError{Index: i, Reason: fmt.Sprintf("parsedStep is missing required field '%s'", field)}
			}
		}

		action, _ := parsedStep["action"].(string)
		if !RequiresElement(action) {
			continue
		}

		if !truthy(parsedStep["element"]) {
			return warnings, &StepError{Index: i, Reason: fmt.Sprintf("with action %s is missing 'element' field", action)}
		}
		element, _ := parsedStep["element"].(map[string]any)
		for _, field := range []string{"id", "target"} {
			if !truthy(element[field]) {
				return warnings, &StepError{Index: i, Reason: fmt.Sprintf("element is missing required field '%s'", field)}
			}
		}
		target, _ := element["target"].(map[string]any)
		if !truthy(target["selectors"]) {
			return warnings, &StepError{Index: i, Reason: "element target is missing selectors"}
		}
	}

	return warnings, nil
}

// ValidateSteps reports whether candidate is a valid Virtuoso step list.
// Diagnostics go to logger; nothing is returned beyond the verdict.
func ValidateSteps(candidate any, logger types.Logger) bool {
	warnings, err := CheckSteps(candidate)

	for _, w := range warnings {
		logger.Warn().Int("step_index", w.Index).Msg(w.String())
	}

	if err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			logger.Error().Int("step_index", stepErr.Index).Msgf("Step %d %s", stepErr.Index, stepErr.Reason)
		} else {
			logger.Error().Msg("Steps is not an array")
		}
		return false
	}

	logger.Info().Msg("All steps validated successfully!")
	return true
}

// truthy mirrors JSON-value truthiness: null, false, 0 and "" are false,
// every object and array is true.
func truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return typed != ""
	default:
		return true
	}
}
