package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/export"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TasksResponse is served at /api/cost_dashboard/tasks when a search or
// limit is given.
type TasksResponse struct {
	Title  string           `json:"title"`
	Tasks  []model.TaskCost `json:"tasks"`
	Totals model.CostTotals `json:"totals"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// fail reports err: bad input as 400 with its message, anything else as 500
// with the generic message while the detail goes to the log.
func fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	if dashboard.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg(generic)
	writeError(w, http.StatusInternalServerError, generic)
}

// int64Param reads an integer query parameter; missing or malformed is 0.
func int64Param(r *http.Request, name string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func selection(r *http.Request) dashboard.Selection {
	return dashboard.Selection{
		UploadID:  int64Param(r, "xer_file_id"),
		ProjectID: r.URL.Query().Get("proj_id"),
	}
}

func periodParam(r *http.Request) (forecast.Period, error) {
	return forecast.ParsePeriod(r.URL.Query().Get("time_period"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.svc.Uploads(r.Context())
	if err != nil {
		fail(w, r, err, "Failed to fetch uploads")
		return
	}
	if uploads == nil {
		uploads = []model.Upload{}
	}
	writeJSON(w, http.StatusOK, uploads)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects(r.Context(), int64Param(r, "xer_file_id"))
	if err != nil {
		fail(w, r, err, "Failed to fetch projects")
		return
	}
	if len(projects) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodeCount := pipeline.DefaultNodeCount
	if v, err := strconv.Atoi(q.Get("node_count")); err == nil {
		nodeCount = v
	}
	var projects []string
	for _, p := range q["proj_id"] {
		if p != "" {
			projects = append(projects, p)
		}
	}

	g, err := s.svc.Graph(r.Context(), dashboard.GraphQuery{
		UploadID:   int64Param(r, "xer_file_id"),
		ProjectIDs: projects,
		Layout:     q.Get("layout"),
		NodeCount:  nodeCount,
	})
	if errors.Is(err, dashboard.ErrNoTasks) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		fail(w, r, err, "Failed to build graph")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGantt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g, err := s.svc.Gantt(r.Context(), dashboard.GanttQuery{
		UploadID:  int64Param(r, "xer_file_id"),
		ProjectID: q.Get("project_id"),
		UseWBS:    strings.EqualFold(q.Get("use_wbs"), "true"),
	})
	if err != nil {
		fail(w, r, err, "Failed to fetch Gantt data")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleOverall(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Overall(r.Context(), selection(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch overall costs")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks(r.Context(), selection(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch task costs")
		return
	}

	q := r.URL.Query()
	search, hasSearch := q["search"]
	top, hasTop := q["top"]
	if !hasSearch && !hasTop {
		writeJSON(w, http.StatusOK, tasks)
		return
	}

	query := ""
	if hasSearch {
		query = search[0]
	}
	n := pipeline.DefaultTopN
	if hasTop {
		if v, err := strconv.Atoi(top[0]); err == nil && v > 0 {
			n = v
		}
	}
	shown := pipeline.TopTasks(tasks, query, n)
	writeJSON(w, http.StatusOK, TasksResponse{
		Title:  pipeline.TaskTitle(query, n),
		Tasks:  shown,
		Totals: pipeline.SumTaskCosts(shown),
	})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Resources(r.Context(), selection(r))
	if err != nil {
		fail(w, r, err, "Failed to fetch resource costs")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time period")
		return
	}
	records, err := s.svc.Forecast(r.Context(), selection(r), period)
	if err != nil {
		fail(w, r, err, "Failed to fetch cost forecast")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExportForecast(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time period")
		return
	}
	records, err := s.svc.Forecast(r.Context(), selection(r), period)
	if err != nil {
		fail(w, r, err, "Failed to export cost forecast")
		return
	}
	series := forecast.BuildCumulativeSeries(records)

	var buf bytes.Buffer
	var contentType, ext string
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "csv":
		contentType, ext = "text/csv", "csv"
		err = export.WriteForecastCSV(&buf, series)
	case "xlsx":
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
		err = export.WriteForecastXLSX(&buf, series)
	default:
		writeError(w, http.StatusBadRequest, "Invalid export format")
		return
	}
	if err != nil {
		fail(w, r, err, "Failed to export cost forecast")
		return
	}
	attach(w, contentType, export.ForecastFilename(period, ext), buf.Bytes())
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time period")
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatPNG
	}
	if format != export.FormatPNG && format != export.FormatSVG {
		writeError(w, http.StatusBadRequest, "Invalid image format")
		return
	}

	sel := selection(r)
	records, err := s.svc.Forecast(r.Context(), sel, period)
	if err != nil {
		fail(w, r, err, "Failed to render cost forecast")
		return
	}
	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	chart, err := export.NewChart(forecast.BuildCumulativeSeries(records), export.ChartOptions{
		Title:    fmt.Sprintf("Cost forecast %s (%s)", sel.ProjectID, period),
		Currency: s.cfg.Currency,
	})
	if err != nil {
		fail(w, r, err, "Failed to render cost forecast")
		return
	}
	defer func() { _ = chart.Close() }()

	var buf bytes.Buffer
	if err := chart.Render(&buf, format); err != nil {
		fail(w, r, err, "Failed to render cost forecast")
		return
	}
	contentType := "image/png"
	if format == export.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}

func movementQuery(r *http.Request) dashboard.MovementQuery {
	q := r.URL.Query()
	return dashboard.MovementQuery{
		OldUploadID: int64Param(r, "upload_id_1"),
		NewUploadID: int64Param(r, "upload_id_2"),
		ProjectID:   q.Get("proj_id"),
		Method:      q.Get("comparison_method"),
		Filter: pipeline.ChangeFilter{
			Text:       q.Get("search"),
			ChangeType: q.Get("change_type"),
			CostChange: q.Get("cost_change"),
		},
	}
}

func (s *Server) handleMovement(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Movement(r.Context(), movementQuery(r))
	if err != nil {
		fail(w, r, err, "Failed to compare uploads")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMovementExport(w http.ResponseWriter, r *http.Request) {
	q := movementQuery(r)
	m, err := s.svc.Movement(r.Context(), q)
	if err != nil {
		fail(w, r, err, "Failed to export comparison")
		return
	}
	var buf bytes.Buffer
	if err := export.WriteMovementCSV(&buf, m.Details); err != nil {
		fail(w, r, err, "Failed to export comparison")
		return
	}
	method, _ := pipeline.ParseCompareMethod(q.Method)
	attach(w, "text/csv", export.MovementFilename(method), buf.Bytes())
}

func attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(body)
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]ImportEvent, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan ImportEvent, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, ImportEvent{Type: EventHello, Timestamp: time.Now()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev ImportEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
