package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/theirongolddev/xercost/internal/model"
)

// chain builds n driving tasks in one project, each finishing before the next.
func chain(n int) ([]model.Task, []model.TaskPred) {
	tasks := make([]model.Task, n)
	var preds []model.TaskPred
	for i := range tasks {
		tasks[i] = model.Task{
			ID:              fmt.Sprintf("A%02d", i),
			ProjectID:       "P1",
			Name:            fmt.Sprintf("Step %d", i),
			EarlyStart:      fmt.Sprintf("2024-01-%02d 08:00", i+1),
			EarlyEnd:        fmt.Sprintf("2024-01-%02d 17:00", i+1),
			HasFloat:        true,
			DrivingPathFlag: "Y",
		}
		if i > 0 {
			preds = append(preds, model.TaskPred{
				ID: fmt.Sprintf("L%02d", i), TaskID: tasks[i].ID, PredTaskID: tasks[i-1].ID, ProjectID: "P1", PredType: "FS",
			})
		}
	}
	return tasks, preds
}

func TestBuildGraph_NodeCountBounds(t *testing.T) {
	tasks, preds := chain(3)
	for _, n := range []int{10, 24, 1001} {
		if _, err := BuildGraph(tasks, preds, nil, GraphOptions{NodeCount: n}); !errors.Is(err, ErrNodeCount) {
			t.Errorf("NodeCount %d: err = %v, want ErrNodeCount", n, err)
		}
	}
}

func TestBuildGraph_NoTasks(t *testing.T) {
	if _, err := BuildGraph(nil, nil, nil, GraphOptions{}); !errors.Is(err, ErrNoTasks) {
		t.Errorf("err = %v, want ErrNoTasks", err)
	}
}

func TestBuildGraph_SelectsAndExpands(t *testing.T) {
	tasks, preds := chain(30)
	g, err := BuildGraph(tasks, preds, nil, GraphOptions{NodeCount: 25})
	if err != nil {
		t.Fatal(err)
	}
	// 25 selected plus A25 as the direct successor of A24.
	if len(g.Nodes) != 26 {
		t.Fatalf("nodes = %d, want 26", len(g.Nodes))
	}
	if len(g.Links) != 25 {
		t.Errorf("links = %d, want 25", len(g.Links))
	}
	if g.KeyStartNode == nil || *g.KeyStartNode != "A00" {
		t.Errorf("KeyStartNode = %v, want A00", g.KeyStartNode)
	}
	if g.KeyEndNode == nil || *g.KeyEndNode != "A25" {
		t.Errorf("KeyEndNode = %v, want A25", g.KeyEndNode)
	}

	last := g.Nodes[len(g.Nodes)-1]
	if last.ID != "A25" || last.Level != 25 || last.Y != 1 {
		t.Errorf("last node = %s level %d y %v", last.ID, last.Level, last.Y)
	}
	// Relationship counts come from the whole schedule.
	if last.Successors != 1 {
		t.Errorf("A25 successors = %d, want 1", last.Successors)
	}
	if g.LayoutType != LayoutSpring {
		t.Errorf("LayoutType = %q, want spring", g.LayoutType)
	}
}

func TestBuildGraph_SkipsSlackTasks(t *testing.T) {
	tasks, preds := chain(3)
	tasks = append(tasks,
		model.Task{ID: "S1", ProjectID: "P1", HasFloat: true, TotalFloatHrs: 80, DrivingPathFlag: "N"},
		model.Task{ID: "S2", ProjectID: "P1", HasFloat: true, TotalFloatHrs: 39, DrivingPathFlag: "N"},
	)
	g, err := BuildGraph(tasks, preds, nil, GraphOptions{NodeCount: 25})
	if err != nil {
		t.Fatal(err)
	}
	found := make(map[string]bool)
	for _, n := range g.Nodes {
		found[n.ID] = true
	}
	if found["S1"] {
		t.Error("task with 80h float should not be selected")
	}
	if !found["S2"] {
		t.Error("task with 39h float should be selected")
	}
}

func TestBuildGraph_TruncatesByPriority(t *testing.T) {
	var tasks []model.Task
	for p := 0; p < 30; p++ {
		flag := "N"
		if p%10 == 0 {
			flag = "Y"
		}
		tasks = append(tasks, model.Task{
			ID: fmt.Sprintf("T%02d", p), ProjectID: fmt.Sprintf("P%02d", p),
			HasFloat: true, TotalFloatHrs: float64(p), DrivingPathFlag: flag,
		})
	}
	// 30 projects share 25 slots: one each, then truncated to 25.
	g, err := BuildGraph(tasks, nil, nil, GraphOptions{NodeCount: 25})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 25 {
		t.Fatalf("nodes = %d, want 25", len(g.Nodes))
	}
	found := make(map[string]bool)
	for _, n := range g.Nodes {
		found[n.ID] = true
	}
	for _, id := range []string{"T20", "T00", "T10"} {
		if !found[id] {
			t.Errorf("driving task %s dropped", id)
		}
	}
	for _, id := range []string{"T29", "T28", "T27", "T26", "T25"} {
		if found[id] {
			t.Errorf("high-float task %s kept", id)
		}
	}
}

func TestBuildGraph_HoverAndCosts(t *testing.T) {
	tasks, preds := chain(2)
	tasks[0].TargetStart = "2024-01-01 08:00"
	costs := map[string]model.CostValues{"A00": {Actual: 12.5, Target: 20, Remain: 7.25}}
	g, err := BuildGraph(tasks, preds, costs, GraphOptions{NodeCount: 25})
	if err != nil {
		t.Fatal(err)
	}
	n := g.Nodes[0]
	if n.ActualCost != 12.5 {
		t.Errorf("ActualCost = %v, want 12.5", n.ActualCost)
	}
	for _, want := range []string{
		"Task: Step 0",
		"Start: 2024-01-01 08:00",
		"End: N/A",
		"On Driving Path: Yes",
		"Successors: 1",
		"Actual Cost: £12.50",
		"Remaining Cost: £7.25",
	} {
		if !strings.Contains(n.HoverInfo, want) {
			t.Errorf("hover info missing %q:\n%s", want, n.HoverInfo)
		}
	}
}

func TestBuildGraph_LayoutsAreDeterministic(t *testing.T) {
	tasks, preds := chain(5)
	a, _ := BuildGraph(tasks, preds, nil, GraphOptions{NodeCount: 25})
	b, _ := BuildGraph(tasks, preds, nil, GraphOptions{NodeCount: 25, Layout: "spectral"})
	if b.LayoutType != LayoutSpring {
		t.Errorf("unsupported layout reported as %q, want spring", b.LayoutType)
	}
	for i := range a.Nodes {
		if a.Nodes[i].X != b.Nodes[i].X || a.Nodes[i].Y != b.Nodes[i].Y {
			t.Fatalf("node %d moved between runs", i)
		}
	}

	layered, _ := BuildGraph(tasks, preds, nil, GraphOptions{NodeCount: 25, Layout: LayoutLayered})
	for _, n := range layered.Nodes {
		if n.X != 0.5 {
			t.Errorf("%s x = %v, want 0.5 (one node per level)", n.ID, n.X)
		}
	}
	if layered.Nodes[4].Y != 1 || layered.Nodes[0].Y != 0 {
		t.Errorf("y = %v..%v, want 0..1", layered.Nodes[0].Y, layered.Nodes[4].Y)
	}
}

func TestKeyNodes_TieBreaks(t *testing.T) {
	nodes := []model.GraphNode{
		{ID: "a", Start: "2024-01-01 08:00", End: "2024-02-01 08:00", Successors: 1, Predecessors: 3},
		{ID: "b", Start: "2024-01-01 08:00", End: "2024-02-01 08:00", Successors: 4, Predecessors: 1},
		{ID: "c", Start: "N/A", End: "2024-12-01 08:00"},
	}
	start, end := KeyNodes(nodes)
	if start == nil || start.ID != "b" {
		t.Errorf("start = %v, want b", start)
	}
	if end == nil || end.ID != "a" {
		t.Errorf("end = %v, want a", end)
	}
	if s, e := KeyNodes(nodes[2:]); s != nil || e != nil {
		t.Error("nodes without both dates should yield no key nodes")
	}
}
