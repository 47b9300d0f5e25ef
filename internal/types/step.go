package types

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepActive    StepStatus = "active"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// Step is one stage of the fixed thinking pipeline shown while a
// response streams in.
type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
}
