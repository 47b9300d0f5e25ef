package progress

import "lucas/internal/types"

// The fixed thinking pipeline shown while a response streams in.
var stageNames = [...]string{
	"Analyzing Request",
	"Retrieving Market Data",
	"Generating Backtest Script",
	"Running Simulation",
	"Finalizing Report",
}

// Backend tool names mapped to the stage they evidence. Tools outside
// this table do not move the pipeline.
var toolStages = map[string]int{
	"data_retriever": 1,
	"code_saver":     2,
	"sandbox_runner": 3,
	"exit_loop":      4,
}

// Tracker is a pure state-transition table over the stage sequence. It
// performs no I/O; timing (the delayed clear) belongs to the caller.
type Tracker struct {
	steps []types.Step
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin instantiates a fresh sequence with the first stage active.
func (t *Tracker) Begin() {
	t.steps = make([]types.Step, len(stageNames))
	for i, name := range stageNames {
		status := types.StepPending
		if i == 0 {
			status = types.StepActive
		}
		t.steps[i] = types.Step{Name: name, Status: status}
	}
}

// Advance resolves a tool name to its stage: every earlier stage becomes
// completed, the resolved stage active, later stages stay pending.
// Unknown tools leave the sequence unchanged.
func (t *Tracker) Advance(tool string) bool {
	index, ok := toolStages[tool]
	if !ok || len(t.steps) == 0 {
		return false
	}
	for i := range t.steps {
		switch {
		case i < index:
			t.steps[i].Status = types.StepCompleted
		case i == index:
			t.steps[i].Status = types.StepActive
		}
	}
	return true
}

// FailActive marks the currently active stage as errored.
func (t *Tracker) FailActive() {
	for i := range t.steps {
		if t.steps[i].Status == types.StepActive {
			t.steps[i].Status = types.StepError
		}
	}
}

// CompleteAll marks every stage completed (graceful stream end).
func (t *Tracker) CompleteAll() {
	for i := range t.steps {
		t.steps[i].Status = types.StepCompleted
	}
}

func (t *Tracker) Clear() {
	t.steps = nil
}

func (t *Tracker) Active() bool {
	return len(t.steps) > 0
}

// Steps returns a copy of the current sequence; empty when cleared.
func (t *Tracker) Steps() []types.Step {
	out := make([]types.Step, len(t.steps))
	copy(out, t.steps)
	return out
}
