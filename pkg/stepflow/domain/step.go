package domain

// StepType is the closed set of actions a step can perform.
type StepType string

const (
	StepTypeSendEmail   StepType = "sendEmail"
	StepTypeUpdateGrant StepType = "updateGrant"
)

// StepTypes returns every supported step type.
func StepTypes() []StepType {
	return []StepType{StepTypeSendEmail, StepTypeUpdateGrant}
}

func (t StepType) Valid() bool {
	for _, known := range StepTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Step is a unit of work inside a workflow definition. Name is unique within
// its workflow and DependsOn names other steps of the same workflow.
type Step struct {
	Name      string   `json:"name" yaml:"name"`
	Type      StepType `json:"type" yaml:"type"`
	DependsOn []string `json:"dependsOn" yaml:"dependsOn"`
	Fail      bool     `json:"fail" yaml:"fail"` // simulate a failure for this step
}
