package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/xercost/internal/model"
)

// CostChangeThreshold is the smallest difference treated as a cost change.
const CostChangeThreshold = 0.01

// Comparison methods: match tasks across uploads by task id or by task name.
const (
	MatchByID   = "id"
	MatchByName = "name"
)

// ErrInvalidMethod is returned for an unknown comparison method.
var ErrInvalidMethod = errors.New("invalid comparison method")

// ParseCompareMethod validates a comparison method, defaulting to id.
func ParseCompareMethod(s string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(s)); m {
	case "", MatchByID:
		return MatchByID, nil
	case MatchByName:
		return MatchByName, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// UploadSnapshot is one side of a comparison: the project's tasks in an
// upload and their resource cost sums keyed by task id.
type UploadSnapshot struct {
	Tasks []model.Task
	Costs map[string]model.CostValues
}

// CostsByTask indexes task cost rows by task id.
func CostsByTask(rows []model.TaskCostRow) map[string]model.CostValues {
	m := make(map[string]model.CostValues, len(rows))
	for _, r := range rows {
		m[r.TaskID] = model.CostValues{Actual: r.Actual, Target: r.Target, Remain: r.Remain}
	}
	return m
}

// CompareUploads reports tasks that were added, removed, or whose costs moved
// by more than CostChangeThreshold between two uploads. Results are ordered
// by match key.
func CompareUploads(old, cur UploadSnapshot, method string) []model.Comparison {
	keyOf := func(t model.Task) string { return t.ID }
	if method == MatchByName {
		keyOf = func(t model.Task) string { return t.Name }
	}

	index := func(tasks []model.Task) map[string]model.Task {
		m := make(map[string]model.Task, len(tasks))
		for _, t := range tasks {
			m[keyOf(t)] = t
		}
		return m
	}
	oldIdx, curIdx := index(old.Tasks), index(cur.Tasks)

	keys := make([]string, 0, len(oldIdx)+len(curIdx))
	for k := range oldIdx {
		keys = append(keys, k)
	}
	for k := range curIdx {
		if _, ok := oldIdx[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []model.Comparison
	for _, k := range keys {
		o, inOld := oldIdx[k]
		n, inCur := curIdx[k]

		switch {
		case inOld && inCur:
			oc, nc := old.Costs[o.ID], cur.Costs[n.ID]
			if !costsDiffer(oc, nc) {
				continue
			}
			out = append(out, model.Comparison{
				TaskID:    o.ID,
				TaskName:  o.Name,
				Project:   o.ProjectID,
				Changes:   []string{model.ChangeCost},
				OldValues: &model.ChangeValues{Cost: oc},
				NewValues: &model.ChangeValues{Cost: nc},
			})
		case inOld:
			out = append(out, model.Comparison{
				TaskID:    o.ID,
				TaskName:  o.Name,
				Project:   o.ProjectID,
				Changes:   []string{model.ChangeRemoved},
				OldValues: &model.ChangeValues{Cost: old.Costs[o.ID]},
			})
		default:
			out = append(out, model.Comparison{
				TaskID:    n.ID,
				TaskName:  n.Name,
				Project:   n.ProjectID,
				Changes:   []string{model.ChangeAdded},
				NewValues: &model.ChangeValues{Cost: cur.Costs[n.ID]},
			})
		}
	}
	return out
}

func costsDiffer(a, b model.CostValues) bool {
	return math.Abs(a.Actual-b.Actual) > CostChangeThreshold ||
		math.Abs(a.Target-b.Target) > CostChangeThreshold ||
		math.Abs(a.Remain-b.Remain) > CostChangeThreshold
}

// Summarize counts changes by kind. TotalCostChange sums new minus old totals
// over cost changes only.
func Summarize(details []model.Comparison) model.ComparisonSummary {
	s := model.ComparisonSummary{TotalChanges: len(details)}
	total := decimal.Zero
	for _, d := range details {
		switch d.Kind() {
		case model.ChangeAdded:
			s.AddedTasks++
		case model.ChangeRemoved:
			s.RemovedTasks++
		case model.ChangeCost:
			s.CostChanges++
			if d.OldValues != nil && d.NewValues != nil {
				total = total.Add(decimal.NewFromFloat(d.NewValues.Cost.Total())).
					Sub(decimal.NewFromFloat(d.OldValues.Cost.Total()))
			}
		}
	}
	s.TotalCostChange, _ = total.Float64()
	return s
}

// ChangeFilter narrows a comparison for display or export.
type ChangeFilter struct {
	Text       string // matched against task id or name, depending on Method
	Method     string
	ChangeType string // "", "added", "removed" or "modified"
	CostChange string // "", "increased", "decreased" or "no_change"
}

// FilterModified selects cost changes in a ChangeFilter.
const FilterModified = "modified"

// FilterChanges applies f to details.
func FilterChanges(details []model.Comparison, f ChangeFilter) []model.Comparison {
	out := []model.Comparison{}
	for _, d := range details {
		field := d.TaskID
		if f.Method == MatchByName {
			field = d.TaskName
		}
		if f.Text != "" && !containsIgnoreCase(field, f.Text) {
			continue
		}

		switch f.ChangeType {
		case model.ChangeAdded, model.ChangeRemoved:
			if d.Kind() != f.ChangeType {
				continue
			}
		case FilterModified:
			if d.Kind() == model.ChangeAdded || d.Kind() == model.ChangeRemoved {
				continue
			}
		}

		if f.CostChange != "" && d.Kind() == model.ChangeCost && d.OldValues != nil && d.NewValues != nil {
			diff := d.NewValues.Cost.Total() - d.OldValues.Cost.Total()
			switch {
			case f.CostChange == "increased" && diff <= 0,
				f.CostChange == "decreased" && diff >= 0,
				f.CostChange == "no_change" && diff != 0:
				continue
			}
		}
		out = append(out, d)
	}
	return out
}
