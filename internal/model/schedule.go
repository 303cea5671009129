package model

import "time"

// Upload is one imported XER file. Its ID is the xer_file_id every schedule row is keyed by.
type Upload struct {
	ID         int64     `json:"id"`
	Ref        string    `json:"ref"`
	FileName   string    `json:"file_name"`
	Path       string    `json:"path"`
	MtimeNs    int64     `json:"-"`
	SizeBytes  int64     `json:"-"`
	ImportedAt time.Time `json:"imported_at"`
}

// Project is a PROJECT row.
type Project struct {
	ID        string `json:"id"`
	ShortName string `json:"name"`
}

// Task is a TASK row. Dates are kept as the raw XER text ("2006-01-02 15:04").
type Task struct {
	ID              string  `json:"task_id"`
	ProjectID       string  `json:"proj_id"`
	WBSID           string  `json:"wbs_id"`
	Name            string  `json:"task_name"`
	EarlyStart      string  `json:"early_start_date"`
	EarlyEnd        string  `json:"early_end_date"`
	TargetStart     string  `json:"target_start_date"`
	TargetEnd       string  `json:"target_end_date"`
	TotalFloatHrs   float64 `json:"total_float_hr_cnt"`
	RemainDrtnHrs   float64 `json:"remain_drtn_hr_cnt"`
	HasFloat        bool    `json:"-"`
	DrivingPathFlag string  `json:"driving_path_flag"`
}

// OnDrivingPath reports whether the task is flagged as driving the project finish.
func (t Task) OnDrivingPath() bool { return t.DrivingPathFlag == "Y" }

// TaskPred is a TASKPRED relationship: PredTaskID must happen before TaskID.
type TaskPred struct {
	ID         string  `json:"task_pred_id"`
	TaskID     string  `json:"task_id"`
	PredTaskID string  `json:"pred_task_id"`
	ProjectID  string  `json:"proj_id"`
	PredType   string  `json:"pred_type"`
	LagHrs     float64 `json:"lag_hr_cnt"`
}

// TaskRsrc is a TASKRSRC resource assignment and its costs.
type TaskRsrc struct {
	ID         string  `json:"taskrsrc_id"`
	TaskID     string  `json:"task_id"`
	ProjectID  string  `json:"proj_id"`
	ResourceID string  `json:"rsrc_id"`
	ActRegCost float64 `json:"act_reg_cost"`
	ActOTCost  float64 `json:"act_ot_cost"`
	TargetCost float64 `json:"target_cost"`
	RemainCost float64 `json:"remain_cost"`
}

// Resource is an RSRC row.
type Resource struct {
	ID   string `json:"rsrc_id"`
	Name string `json:"rsrc_name"`
	Type string `json:"rsrc_type"`
}

// ProjCost is a PROJCOST expense item attached to a task.
type ProjCost struct {
	ID         string  `json:"proj_cost_id"`
	TaskID     string  `json:"task_id"`
	ProjectID  string  `json:"proj_id"`
	ActCost    float64 `json:"act_cost"`
	TargetCost float64 `json:"target_cost"`
	RemainCost float64 `json:"remain_cost"`
}

// Schedule is everything one XER file contributes to the store.
type Schedule struct {
	Projects  []Project
	Tasks     []Task
	Preds     []TaskPred
	Rsrcs     []TaskRsrc
	Resources []Resource
	ProjCosts []ProjCost
}
