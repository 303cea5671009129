package model

// Change kinds reported by an upload comparison.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
	ChangeCost    = "cost"
)

// CostValues are the resource cost sums of one task in one upload.
type CostValues struct {
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
	Remain float64 `json:"remain"`
}

// Total is actual + target + remain.
func (c CostValues) Total() float64 { return c.Actual + c.Target + c.Remain }

// ChangeValues wraps CostValues the way the comparison payload nests them.
type ChangeValues struct {
	Cost CostValues `json:"cost"`
}

// Comparison is one task that differs between two uploads.
type Comparison struct {
	TaskID    string        `json:"task_id"`
	TaskName  string        `json:"task_name"`
	Project   string        `json:"project"`
	Changes   []string      `json:"changes"`
	OldValues *ChangeValues `json:"old_values,omitempty"`
	NewValues *ChangeValues `json:"new_values,omitempty"`
}

// Kind returns the first recorded change, which is the only one the comparison emits.
func (c Comparison) Kind() string {
	if len(c.Changes) == 0 {
		return ""
	}
	return c.Changes[0]
}

// ComparisonSummary counts the changes in a comparison.
type ComparisonSummary struct {
	TotalChanges    int     `json:"total_changes"`
	AddedTasks      int     `json:"added_tasks"`
	RemovedTasks    int     `json:"removed_tasks"`
	CostChanges     int     `json:"cost_changes"`
	TotalCostChange float64 `json:"total_cost_change"`
}

// Movement is the full comparison between two uploads of a project.
type Movement struct {
	Summary ComparisonSummary `json:"summary"`
	Details []Comparison      `json:"details"`
}
