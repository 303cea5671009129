package model

// GanttTask is one bar of the Gantt view.
type GanttTask struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Progress  float64 `json:"progress"`
	Color     string  `json:"color"`
	TextStyle string  `json:"text_style"`
	WBSID     string  `json:"wbs_id"`
}

// GanttLink is a dependency arrow; Type is "0".."3" for FS, SS, FF, SF.
type GanttLink struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Gantt is the Gantt payload.
type Gantt struct {
	Data  []GanttTask `json:"data"`
	Links []GanttLink `json:"links"`
}

// GraphNode is a task in the driving path graph.
type GraphNode struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Project           string  `json:"project"`
	Start             string  `json:"start"`
	End               string  `json:"end"`
	Float             float64 `json:"float"`
	RemainingDuration float64 `json:"remaining_duration"`
	DrivingPath       string  `json:"driving_path"`
	Level             int     `json:"level"`
	Predecessors      int     `json:"predecessors"`
	Successors        int     `json:"successors"`
	HoverInfo         string  `json:"hover_info"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	ActualCost        float64 `json:"actual_cost"`
	TargetCost        float64 `json:"target_cost"`
	RemainCost        float64 `json:"remain_cost"`
}

// GraphLink is a predecessor relationship between two graph nodes.
type GraphLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Lag    float64 `json:"lag"`
}

// Graph is the driving path graph payload.
type Graph struct {
	Nodes        []GraphNode `json:"nodes"`
	Links        []GraphLink `json:"links"`
	LayoutType   string      `json:"layout_type"`
	KeyStartNode *string     `json:"key_start_node"`
	KeyEndNode   *string     `json:"key_end_node"`
	Projects     []string    `json:"projects"`
}
