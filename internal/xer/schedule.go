package xer

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/xercost/internal/model"
)

// Schedule maps the tables this tool uses into model rows. Tables missing
// from the file simply contribute nothing.
func (f *File) Schedule() model.Schedule {
	var s model.Schedule

	if t := f.Table("PROJECT"); t != nil {
		for _, r := range t.Rows {
			s.Projects = append(s.Projects, model.Project{
				ID:        t.Get(r, "proj_id"),
				ShortName: t.Get(r, "proj_short_name"),
			})
		}
	}

	if t := f.Table("TASK"); t != nil {
		for _, r := range t.Rows {
			float, hasFloat := parseNumber(t.Get(r, "total_float_hr_cnt"))
			remain, _ := parseNumber(t.Get(r, "remain_drtn_hr_cnt"))
			flag := strings.ToUpper(strings.TrimSpace(t.Get(r, "driving_path_flag")))
			if flag == "" {
				flag = "N"
			}
			s.Tasks = append(s.Tasks, model.Task{
				ID:              t.Get(r, "task_id"),
				ProjectID:       t.Get(r, "proj_id"),
				WBSID:           t.Get(r, "wbs_id"),
				Name:            t.Get(r, "task_name"),
				EarlyStart:      t.Get(r, "early_start_date"),
				EarlyEnd:        t.Get(r, "early_end_date"),
				TargetStart:     t.Get(r, "target_start_date"),
				TargetEnd:       t.Get(r, "target_end_date"),
				TotalFloatHrs:   float,
				HasFloat:        hasFloat,
				RemainDrtnHrs:   remain,
				DrivingPathFlag: flag,
			})
		}
	}

	if t := f.Table("TASKPRED"); t != nil {
		for _, r := range t.Rows {
			lag, _ := parseNumber(t.Get(r, "lag_hr_cnt"))
			s.Preds = append(s.Preds, model.TaskPred{
				ID:         t.Get(r, "task_pred_id"),
				TaskID:     t.Get(r, "task_id"),
				PredTaskID: t.Get(r, "pred_task_id"),
				ProjectID:  t.Get(r, "proj_id"),
				PredType:   NormalizePredType(t.Get(r, "pred_type")),
				LagHrs:     lag,
			})
		}
	}

	if t := f.Table("TASKRSRC"); t != nil {
		for _, r := range t.Rows {
			s.Rsrcs = append(s.Rsrcs, model.TaskRsrc{
				ID:         t.Get(r, "taskrsrc_id"),
				TaskID:     t.Get(r, "task_id"),
				ProjectID:  t.Get(r, "proj_id"),
				ResourceID: t.Get(r, "rsrc_id"),
				ActRegCost: number(t.Get(r, "act_reg_cost")),
				ActOTCost:  number(t.Get(r, "act_ot_cost")),
				TargetCost: number(t.Get(r, "target_cost")),
				RemainCost: number(t.Get(r, "remain_cost")),
			})
		}
	}

	if t := f.Table("RSRC"); t != nil {
		for _, r := range t.Rows {
			s.Resources = append(s.Resources, model.Resource{
				ID:   t.Get(r, "rsrc_id"),
				Name: t.Get(r, "rsrc_name"),
				Type: t.Get(r, "rsrc_type"),
			})
		}
	}

	if t := f.Table("PROJCOST"); t != nil {
		for _, r := range t.Rows {
			s.ProjCosts = append(s.ProjCosts, model.ProjCost{
				ID:         t.Get(r, "cost_item_id"),
				TaskID:     t.Get(r, "task_id"),
				ProjectID:  t.Get(r, "proj_id"),
				ActCost:    number(t.Get(r, "act_cost")),
				TargetCost: number(t.Get(r, "target_cost")),
				RemainCost: number(t.Get(r, "remain_cost")),
			})
		}
	}

	return s
}

// NormalizePredType turns P6 relationship codes such as "PR_FS" into "FS".
func NormalizePredType(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "PR_")
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func number(s string) float64 {
	v, _ := parseNumber(s)
	return v
}
