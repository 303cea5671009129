package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

// Gantt bar colors.
const (
	DrivingPathColor = "#FFB3BA"
	NormalTaskColor  = "#AEC6CF"
)

var linkTypes = map[string]string{"FS": "0", "SS": "1", "FF": "2", "SF": "3"}

// LinkType maps a relationship type to the Gantt link code. Unknown types are
// drawn as finish-to-start.
func LinkType(predType string) string {
	if code, ok := linkTypes[predType]; ok {
		return code
	}
	return "0"
}

// BuildGantt orders tasks by early finish (grouped by WBS when useWBS is set)
// and converts relationships into links.
func BuildGantt(tasks []model.Task, preds []model.TaskPred, useWBS bool) model.Gantt {
	sorted := append([]model.Task(nil), tasks...)
	endOf := func(t model.Task) time.Time {
		if end, ok := forecast.ParseDate(t.EarlyEnd); ok {
			return end
		}
		return maxTime
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if useWBS && sorted[i].WBSID != sorted[j].WBSID {
			return sorted[i].WBSID < sorted[j].WBSID
		}
		return endOf(sorted[i]).Before(endOf(sorted[j]))
	})

	g := model.Gantt{
		Data:  make([]model.GanttTask, 0, len(sorted)),
		Links: make([]model.GanttLink, 0, len(preds)),
	}
	for _, t := range sorted {
		gt := model.GanttTask{
			ID:        t.ID,
			Text:      t.Name,
			StartDate: ganttDate(t.EarlyStart),
			EndDate:   ganttDate(t.EarlyEnd),
			Progress:  taskProgress(t),
			Color:     NormalTaskColor,
			TextStyle: "normal",
			WBSID:     t.WBSID,
		}
		if t.OnDrivingPath() {
			gt.Color = DrivingPathColor
			gt.TextStyle = "bold"
		}
		g.Data = append(g.Data, gt)
	}
	for _, p := range preds {
		g.Links = append(g.Links, model.GanttLink{
			ID:     p.ID,
			Source: p.PredTaskID,
			Target: p.TaskID,
			Type:   LinkType(p.PredType),
		})
	}
	return g
}

var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// taskProgress estimates completion as 1 - remaining/float, clamped to [0, 1].
// Tasks without positive float report 0.
func taskProgress(t model.Task) float64 {
	if t.TotalFloatHrs <= 0 {
		return 0
	}
	return forecast.Clamp(1-t.RemainDrtnHrs/t.TotalFloatHrs, 0, 1)
}

// ganttDate reformats an XER "2006-01-02 15:04" date with seconds; anything
// else becomes null.
func ganttDate(s string) *string {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		return nil
	}
	out := t.Format("2006-01-02 15:04:05")
	return &out
}
