// Package pipeline turns stored schedule rows into the cost, comparison,
// Gantt and graph views, and imports XER files into the store.
package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

// DefaultTopN is how many tasks the unfiltered task view shows.
const DefaultTopN = 10

// costSum accumulates money without float drift across many rows.
type costSum struct {
	actual, target, remain decimal.Decimal
}

func (c *costSum) add(actual, target, remain float64) {
	c.actual = c.actual.Add(decimal.NewFromFloat(actual))
	c.target = c.target.Add(decimal.NewFromFloat(target))
	c.remain = c.remain.Add(decimal.NewFromFloat(remain))
}

func (c costSum) floats() (actual, target, remain float64) {
	actual, _ = c.actual.Float64()
	target, _ = c.target.Float64()
	remain, _ = c.remain.Float64()
	return actual, target, remain
}

// AggregateForecast buckets task costs by the period of each task's target
// start and returns one record per period in chronological order. Tasks
// without a usable target start are left out.
func AggregateForecast(rows []model.TaskCostRow, period forecast.Period) []model.CostPeriodRecord {
	buckets := make(map[string]*costSum)
	for _, r := range rows {
		start, ok := forecast.ParseDate(r.TargetStart)
		if !ok {
			continue
		}
		label := period.Label(start)
		b, ok := buckets[label]
		if !ok {
			b = &costSum{}
			buckets[label] = b
		}
		b.add(r.Actual, r.Target, 0)
	}

	labels := make([]string, 0, len(buckets))
	for l := range buckets {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	records := make([]model.CostPeriodRecord, 0, len(labels))
	for _, l := range labels {
		actual, target, _ := buckets[l].floats()
		records = append(records, model.CostPeriodRecord{Period: l, ActualCost: actual, TargetCost: target})
	}
	return records
}

// AggregateOverall totals resource costs and project expenses.
func AggregateOverall(rows []model.TaskCostRow, expenses []model.ProjCost) model.OverallCosts {
	var sum costSum
	for _, r := range rows {
		sum.add(r.Actual, r.Target, r.Remain)
	}
	for _, e := range expenses {
		sum.add(e.ActCost, e.TargetCost, e.RemainCost)
	}
	a, t, r := sum.floats()
	return model.OverallCosts{TotalActual: a, TotalTarget: t, TotalRemain: r}
}

// AggregateTaskCosts keeps tasks with any cost and sorts them by actual cost,
// highest first.
func AggregateTaskCosts(rows []model.TaskCostRow) []model.TaskCost {
	out := make([]model.TaskCost, 0, len(rows))
	for _, r := range rows {
		if r.Actual+r.Target+r.Remain <= 0 {
			continue
		}
		out = append(out, model.TaskCost{
			TaskID:     r.TaskID,
			TaskName:   r.TaskName,
			ActualCost: r.Actual,
			TargetCost: r.Target,
			RemainCost: r.Remain,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActualCost > out[j].ActualCost
	})
	return out
}

// AggregateResourceCosts sorts resources by actual cost, highest first.
func AggregateResourceCosts(rows []model.ResourceCost) []model.ResourceCost {
	out := append([]model.ResourceCost(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActualCost > out[j].ActualCost
	})
	return out
}

// TopTasks returns the tasks whose name contains query (case-insensitive),
// or the first n tasks when query is empty.
func TopTasks(costs []model.TaskCost, query string, n int) []model.TaskCost {
	query = strings.TrimSpace(query)
	if query == "" {
		if n <= 0 {
			n = DefaultTopN
		}
		if len(costs) > n {
			costs = costs[:n]
		}
		return append([]model.TaskCost{}, costs...)
	}

	out := []model.TaskCost{}
	for _, c := range costs {
		if containsIgnoreCase(c.TaskName, query) {
			out = append(out, c)
		}
	}
	return out
}

// TaskTitle is the heading for a TopTasks result.
func TaskTitle(query string, n int) string {
	if strings.TrimSpace(query) != "" {
		return "Filtered Task Costs"
	}
	if n <= 0 {
		n = DefaultTopN
	}
	return "Top " + strconv.Itoa(n) + " Task Costs"
}

// SumTaskCosts totals a task list.
func SumTaskCosts(costs []model.TaskCost) model.CostTotals {
	var sum costSum
	for _, c := range costs {
		sum.add(c.ActualCost, c.TargetCost, c.RemainCost)
	}
	a, t, r := sum.floats()
	return model.CostTotals{Actual: a, Target: t, Remain: r}
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
