package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

func costRows() []model.TaskCostRow {
	return []model.TaskCostRow{
		{TaskID: "T1", TaskName: "Piling", TargetStart: "2024-01-08 08:00", Actual: 60, Target: 100, Remain: 5},
		{TaskID: "T2", TaskName: "Survey", TargetStart: "2024-01-20 08:00", Actual: 40, Target: 60},
		{TaskID: "T3", TaskName: "Deck pour", TargetStart: "2024-02-05 08:00", Actual: 80, Target: 90, Remain: 10},
		{TaskID: "T4", TaskName: "Handover", TargetStart: "", Actual: 0, Target: 0},
		{TaskID: "T5", TaskName: "Deck finish", TargetStart: "2024-04-01 08:00", Actual: 0.1, Target: 0.2},
	}
}

func TestAggregateForecast_Monthly(t *testing.T) {
	got := AggregateForecast(costRows(), forecast.Monthly)
	want := []model.CostPeriodRecord{
		{Period: "2024-01", ActualCost: 100, TargetCost: 160},
		{Period: "2024-02", ActualCost: 80, TargetCost: 90},
		{Period: "2024-04", ActualCost: 0.1, TargetCost: 0.2},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAggregateForecast_QuarterlyMerges(t *testing.T) {
	got := AggregateForecast(costRows(), forecast.Quarterly)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Period != "2024-Q1" || got[0].ActualCost != 180 || got[0].TargetCost != 250 {
		t.Errorf("Q1 = %+v, want 180/250", got[0])
	}
	if got[1].Period != "2024-Q2" {
		t.Errorf("second period = %q, want 2024-Q2", got[1].Period)
	}
}

func TestAggregateForecast_FeedsCumulativeSeries(t *testing.T) {
	series := forecast.BuildCumulativeSeries(AggregateForecast(costRows(), forecast.Yearly))
	if len(series) != 1 {
		t.Fatalf("len = %d, want 1", len(series))
	}
	if math.Abs(series[0].CumulativeActual-180.1) > 1e-9 {
		t.Errorf("CumulativeActual = %v, want 180.1", series[0].CumulativeActual)
	}
}

func TestAggregateOverall(t *testing.T) {
	got := AggregateOverall(costRows(), []model.ProjCost{{ActCost: 7, TargetCost: 8, RemainCost: 1}})
	if math.Abs(got.TotalActual-187.1) > 1e-9 {
		t.Errorf("TotalActual = %v, want 187.1", got.TotalActual)
	}
	if math.Abs(got.TotalTarget-258.2) > 1e-9 {
		t.Errorf("TotalTarget = %v, want 258.2", got.TotalTarget)
	}
	if got.TotalRemain != 16 {
		t.Errorf("TotalRemain = %v, want 16", got.TotalRemain)
	}
}

func TestAggregateTaskCosts_DropsZeroAndSorts(t *testing.T) {
	got := AggregateTaskCosts(costRows())
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4 (zero-cost task dropped)", len(got))
	}
	wantOrder := []string{"T3", "T1", "T2", "T5"}
	for i, id := range wantOrder {
		if got[i].TaskID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].TaskID, id)
		}
	}
}

func TestTopTasks(t *testing.T) {
	costs := AggregateTaskCosts(costRows())

	if got := TopTasks(costs, "", 2); len(got) != 2 || got[0].TaskID != "T3" {
		t.Errorf("TopTasks(\"\", 2) = %+v, want T3 first of 2", got)
	}
	if got := TopTasks(costs, "", 0); len(got) != 4 {
		t.Errorf("TopTasks(\"\", 0) len = %d, want 4", len(got))
	}

	got := TopTasks(costs, "  DECK ", 1)
	if len(got) != 2 {
		t.Fatalf("search returned %d tasks, want every match (2)", len(got))
	}
	if got[0].TaskName != "Deck pour" || got[1].TaskName != "Deck finish" {
		t.Errorf("search order = %s, %s", got[0].TaskName, got[1].TaskName)
	}
}

func TestTaskTitle(t *testing.T) {
	if got := TaskTitle("", 0); got != "Top 10 Task Costs" {
		t.Errorf("TaskTitle(\"\", 0) = %q", got)
	}
	if got := TaskTitle("", 25); got != "Top 25 Task Costs" {
		t.Errorf("TaskTitle(\"\", 25) = %q", got)
	}
	if got := TaskTitle("deck", 10); got != "Filtered Task Costs" {
		t.Errorf("TaskTitle(deck) = %q", got)
	}
}

func TestSumTaskCosts(t *testing.T) {
	got := SumTaskCosts([]model.TaskCost{
		{ActualCost: 0.1, TargetCost: 1, RemainCost: 2},
		{ActualCost: 0.2, TargetCost: 3, RemainCost: 4},
	})
	if got.Actual != 0.3 {
		t.Errorf("Actual = %v, want exactly 0.3", got.Actual)
	}
	if got.Target != 4 || got.Remain != 6 {
		t.Errorf("totals = %+v", got)
	}
}

func TestAggregateResourceCosts_Sorts(t *testing.T) {
	in := []model.ResourceCost{
		{ResourceID: "R1", ActualCost: 10},
		{ResourceID: "R2", ActualCost: 30},
	}
	got := AggregateResourceCosts(in)
	if got[0].ResourceID != "R2" {
		t.Errorf("first = %s, want R2", got[0].ResourceID)
	}
	if in[0].ResourceID != "R1" {
		t.Error("input was reordered")
	}
}
