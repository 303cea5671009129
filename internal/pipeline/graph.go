package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

// Node count bounds for the driving path graph.
const (
	MinNodeCount     = 25
	MaxNodeCount     = 1000
	DefaultNodeCount = 50

	// ImportantFloatHrs is the float below which a task is treated as near-critical.
	ImportantFloatHrs = 40
)

// Layouts.
const (
	LayoutSpring  = "spring"
	LayoutLayered = "layered"
)

// ErrNodeCount is returned when the requested node count is out of bounds.
var ErrNodeCount = fmt.Errorf("node_count must be between %d and %d", MinNodeCount, MaxNodeCount)

// ErrNoTasks is returned when the selected projects have no tasks.
var ErrNoTasks = errors.New("no tasks found for the given projects")

// GraphOptions controls BuildGraph.
type GraphOptions struct {
	NodeCount int
	Layout    string
	Projects  []string
	Currency  string
}

// digraph is a task dependency graph: edges run predecessor -> successor.
type digraph struct {
	nodes map[string]model.Task
	order []string // insertion order, for deterministic iteration
	succ  map[string][]string
	pred  map[string][]string
	edges map[[2]string]model.TaskPred
}

func newDigraph(tasks []model.Task, preds []model.TaskPred) *digraph {
	g := &digraph{
		nodes: make(map[string]model.Task, len(tasks)),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
		edges: make(map[[2]string]model.TaskPred),
	}
	for _, t := range tasks {
		if _, ok := g.nodes[t.ID]; !ok {
			g.order = append(g.order, t.ID)
		}
		g.nodes[t.ID] = t
	}
	for _, p := range preds {
		key := [2]string{p.PredTaskID, p.TaskID}
		if _, dup := g.edges[key]; dup {
			g.edges[key] = p
			continue
		}
		// Relationships to tasks outside the selection still add the node,
		// named by id only.
		for _, id := range []string{p.PredTaskID, p.TaskID} {
			if _, ok := g.nodes[id]; !ok {
				g.nodes[id] = model.Task{ID: id, ProjectID: p.ProjectID, DrivingPathFlag: "N"}
				g.order = append(g.order, id)
			}
		}
		g.edges[key] = p
		g.succ[p.PredTaskID] = append(g.succ[p.PredTaskID], p.TaskID)
		g.pred[p.TaskID] = append(g.pred[p.TaskID], p.PredTaskID)
	}
	return g
}

// selectNodes picks the near-critical tasks, balanced across projects and
// capped at nodeCount, then adds their direct neighbours.
func (g *digraph) selectNodes(nodeCount int) map[string]bool {
	var important []string
	projects := make(map[string]bool)
	var projectOrder []string
	for _, id := range g.order {
		t := g.nodes[id]
		if !projects[t.ProjectID] {
			projects[t.ProjectID] = true
			projectOrder = append(projectOrder, t.ProjectID)
		}
		if t.OnDrivingPath() || (t.HasFloat && t.TotalFloatHrs < ImportantFloatHrs) {
			important = append(important, id)
		}
	}

	perProject := max(1, nodeCount/max(1, len(projectOrder)))
	var balanced []string
	for _, proj := range projectOrder {
		n := 0
		for _, id := range important {
			if g.nodes[id].ProjectID != proj {
				continue
			}
			if n == perProject {
				break
			}
			balanced = append(balanced, id)
			n++
		}
	}
	log.Debug().Int("important", len(important)).Int("balanced", len(balanced)).Msg("graph node selection")

	if len(balanced) > nodeCount {
		floatOf := func(id string) float64 {
			t := g.nodes[id]
			if !t.HasFloat {
				return math.Inf(1)
			}
			return t.TotalFloatHrs
		}
		sort.SliceStable(balanced, func(i, j int) bool {
			a, b := balanced[i], balanced[j]
			da, db := g.nodes[a].OnDrivingPath(), g.nodes[b].OnDrivingPath()
			if da != db {
				return da
			}
			if fa, fb := floatOf(a), floatOf(b); fa != fb {
				return fa < fb
			}
			return len(g.pred[a]) > len(g.pred[b])
		})
		balanced = balanced[:nodeCount]
	}

	selected := make(map[string]bool, len(balanced)*3)
	for _, id := range balanced {
		selected[id] = true
		for _, p := range g.pred[id] {
			selected[p] = true
		}
		for _, s := range g.succ[id] {
			selected[s] = true
		}
	}
	return selected
}

// subgraph is the induced graph on the selected nodes.
type subgraph struct {
	ids  []string
	succ map[string][]string
	pred map[string][]string
}

func (g *digraph) induce(selected map[string]bool) subgraph {
	sg := subgraph{succ: make(map[string][]string), pred: make(map[string][]string)}
	for _, id := range g.order {
		if !selected[id] {
			continue
		}
		sg.ids = append(sg.ids, id)
		for _, s := range g.succ[id] {
			if selected[s] {
				sg.succ[id] = append(sg.succ[id], s)
				sg.pred[s] = append(sg.pred[s], id)
			}
		}
	}
	return sg
}

// levels assigns each node the deepest breadth-first layer it appears in
// from any root (node without predecessors).
func (sg subgraph) levels() map[string]int {
	levels := make(map[string]int, len(sg.ids))
	for _, root := range sg.ids {
		if len(sg.pred[root]) > 0 {
			continue
		}
		seen := map[string]bool{root: true}
		layer := []string{root}
		for depth := 0; len(layer) > 0; depth++ {
			var next []string
			for _, id := range layer {
				if depth > levels[id] {
					levels[id] = depth
				}
				for _, s := range sg.succ[id] {
					if !seen[s] {
						seen[s] = true
						next = append(next, s)
					}
				}
			}
			layer = next
		}
	}
	return levels
}

// BuildGraph selects the driving path subgraph of the given tasks and lays it
// out. costs holds resource cost sums per task id.
func BuildGraph(tasks []model.Task, preds []model.TaskPred, costs map[string]model.CostValues, opts GraphOptions) (model.Graph, error) {
	if opts.NodeCount == 0 {
		opts.NodeCount = DefaultNodeCount
	}
	if opts.NodeCount < MinNodeCount || opts.NodeCount > MaxNodeCount {
		return model.Graph{}, ErrNodeCount
	}
	switch opts.Layout {
	case LayoutSpring, LayoutLayered:
	case "":
		opts.Layout = LayoutSpring
	default:
		log.Warn().Str("layout", opts.Layout).Msg("unsupported graph layout, using spring")
		opts.Layout = LayoutSpring
	}
	if opts.Currency == "" {
		opts.Currency = "£"
	}
	if len(tasks) == 0 {
		return model.Graph{}, ErrNoTasks
	}

	full := newDigraph(tasks, preds)
	sg := full.induce(full.selectNodes(opts.NodeCount))
	levels := sg.levels()
	pos := layout(sg, levels, opts.Layout)

	graph := model.Graph{
		Nodes:      make([]model.GraphNode, 0, len(sg.ids)),
		LayoutType: opts.Layout,
		Projects:   opts.Projects,
	}
	for _, id := range sg.ids {
		t := full.nodes[id]
		name := t.Name
		if name == "" {
			name = "Task " + id
		}
		c := costs[id]
		// Relationship counts come from the whole schedule, not the subgraph.
		n := model.GraphNode{
			ID:                id,
			Name:              name,
			Project:           t.ProjectID,
			Start:             orNA(t.EarlyStart),
			End:               orNA(t.EarlyEnd),
			Float:             t.TotalFloatHrs,
			RemainingDuration: t.RemainDrtnHrs,
			DrivingPath:       t.DrivingPathFlag,
			Level:             levels[id],
			Predecessors:      len(full.pred[id]),
			Successors:        len(full.succ[id]),
			X:                 pos[id].x,
			Y:                 pos[id].y,
			ActualCost:        c.Actual,
			TargetCost:        c.Target,
			RemainCost:        c.Remain,
		}
		n.HoverInfo = hoverInfo(n, t, opts.Currency)
		graph.Nodes = append(graph.Nodes, n)
	}

	for _, from := range sg.ids {
		for _, to := range sg.succ[from] {
			p := full.edges[[2]string{from, to}]
			graph.Links = append(graph.Links, model.GraphLink{Source: from, Target: to, Type: p.PredType, Lag: p.LagHrs})
		}
	}

	start, end := KeyNodes(graph.Nodes)
	if start != nil {
		graph.KeyStartNode = &start.ID
	}
	if end != nil {
		graph.KeyEndNode = &end.ID
	}
	return graph, nil
}

// KeyNodes picks the node that starts the selection (earliest start, most
// successors) and the one that finishes it (latest end, most predecessors).
// Nodes without both dates are ignored.
func KeyNodes(nodes []model.GraphNode) (start, end *model.GraphNode) {
	type dated struct {
		n          *model.GraphNode
		start, end time.Time
	}
	var valid []dated
	for i := range nodes {
		s, ok1 := forecast.ParseDate(nodes[i].Start)
		e, ok2 := forecast.ParseDate(nodes[i].End)
		if ok1 && ok2 {
			valid = append(valid, dated{&nodes[i], s, e})
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	first, last := valid[0], valid[0]
	for _, d := range valid[1:] {
		if d.start.Before(first.start) || (d.start.Equal(first.start) && d.n.Successors > first.n.Successors) {
			first = d
		}
		if d.end.After(last.end) || (d.end.Equal(last.end) && d.n.Predecessors > last.n.Predecessors) {
			last = d
		}
	}
	return first.n, last.n
}

func hoverInfo(n model.GraphNode, t model.Task, currency string) string {
	drive := "No"
	if n.DrivingPath == "Y" {
		drive = "Yes"
	}
	lines := []string{
		"Task: " + n.Name,
		"Project: " + n.Project,
		"Start: " + orNA(t.TargetStart),
		"End: " + orNA(t.TargetEnd),
		fmt.Sprintf("Float: %g", n.Float),
		fmt.Sprintf("Remaining Duration: %g", n.RemainingDuration),
		"On Driving Path: " + drive,
		fmt.Sprintf("Predecessors: %d", n.Predecessors),
		fmt.Sprintf("Successors: %d", n.Successors),
		fmt.Sprintf("Actual Cost: %s%.2f", currency, n.ActualCost),
		fmt.Sprintf("Target Cost: %s%.2f", currency, n.TargetCost),
		fmt.Sprintf("Remaining Cost: %s%.2f", currency, n.RemainCost),
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
