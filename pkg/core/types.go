package core

// Actions whose steps must describe the element they act on.
const (
	ActionClick        = "CLICK"
	ActionWrite        = "WRITE"
	ActionAssertExists = "ASSERT_EXISTS"
	ActionAssertEquals = "ASSERT_EQUALS"
)

var elementActions = map[string]bool{
	ActionClick:        true,
	ActionWrite:        true,
	ActionAssertExists: true,
	ActionAssertEquals: true,
}

// RequiresElement reports whether steps with this action must carry
// parsedStep.element.
func RequiresElement(action string) bool {
	return elementActions[action]
}

// Step is one translated Virtuoso step as decoded from the assistant's JSON.
// Fields other than the validated ones are kept untouched.
type Step map[string]any

// StepList is the ordered output of one conversion.
type StepList []Step

func (s Step) CheckpointID() any {
	return s["checkpointId"]
}

// StepIndex returns the declared index when it is an integral JSON number.
func (s Step) StepIndex() (int, bool) {
	f, ok := s["stepIndex"].(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func (s Step) ParsedStep() map[string]any {
	parsed, _ := s["parsedStep"].(map[string]any)
	return parsed
}

func (s Step) Action() string {
	action, _ := s.ParsedStep()["action"].(string)
	return action
}

// ToStepList converts a decoded candidate into a StepList. Callers validate
// first; elements that are not objects become empty steps.
func ToStepList(candidate any) StepList {
	items, ok := candidate.([]any)
	if !ok {
		return nil
	}
	steps := make(StepList, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		steps = append(steps, Step(m))
	}
	return steps
}
