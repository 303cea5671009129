package model

// CostPeriodRecord is one reporting period of the cost forecast.
// Amounts are for that period only.
type CostPeriodRecord struct {
	Period     string  `json:"period"`
	ActualCost float64 `json:"actual_cost"`
	TargetCost float64 `json:"target_cost"`
}

// CumulativeCostPoint is a CostPeriodRecord with running totals.
// Each plotted value is a named field so nothing depends on dataset positions.
type CumulativeCostPoint struct {
	Period           string  `json:"period"`
	ActualCost       float64 `json:"actual_cost"`
	TargetCost       float64 `json:"target_cost"`
	CumulativeActual float64 `json:"cumulative_actual"`
	CumulativeTarget float64 `json:"cumulative_target"`
}

// OverallCosts holds project totals across resource assignments and expenses.
type OverallCosts struct {
	TotalActual float64 `json:"total_actual_cost"`
	TotalTarget float64 `json:"total_target_cost"`
	TotalRemain float64 `json:"total_remain_cost"`
}

// TaskCostRow is the per-task cost sum read from storage, before any filtering.
type TaskCostRow struct {
	TaskID      string
	TaskName    string
	TargetStart string
	Actual      float64
	Target      float64
	Remain      float64
}

// TaskCost is a task with its summed resource costs.
type TaskCost struct {
	TaskID     string  `json:"task_id"`
	TaskName   string  `json:"task_name"`
	ActualCost float64 `json:"actual_cost"`
	TargetCost float64 `json:"target_cost"`
	RemainCost float64 `json:"remain_cost"`
}

// ResourceCost is a resource with its summed assignment costs.
type ResourceCost struct {
	ResourceID   string  `json:"rsrc_id"`
	ResourceName string  `json:"rsrc_name"`
	ResourceType string  `json:"rsrc_type"`
	ActualCost   float64 `json:"actual_cost"`
	TargetCost   float64 `json:"target_cost"`
	RemainCost   float64 `json:"remain_cost"`
}

// CostTotals sums a filtered set of task costs.
type CostTotals struct {
	Actual float64 `json:"actual_cost"`
	Target float64 `json:"target_cost"`
	Remain float64 `json:"remain_cost"`
}
