// Package dashboard answers the cost dashboard queries from the upload store.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/pipeline"
	"github.com/theirongolddev/xercost/internal/store"
)

// Validation errors. Callers map these to a bad request.
var (
	ErrMissingParam  = errors.New("missing required parameters")
	ErrInvalidPeriod = forecast.ErrInvalidPeriod
	ErrNodeCount     = pipeline.ErrNodeCount
	ErrInvalidMethod = pipeline.ErrInvalidMethod
)

// ErrNoTasks is returned by Graph when the selected projects have no tasks.
var ErrNoTasks = pipeline.ErrNoTasks

// IsValidation reports whether err was caused by bad input rather than a failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingParam) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNodeCount) ||
		errors.Is(err, ErrInvalidMethod)
}

// Selection identifies one project within one upload.
type Selection struct {
	UploadID  int64
	ProjectID string
}

func (s Selection) validate() error {
	if s.UploadID <= 0 || s.ProjectID == "" {
		return fmt.Errorf("%w: xer_file_id and proj_id", ErrMissingParam)
	}
	return nil
}

// MovementQuery selects two uploads of a project to compare.
type MovementQuery struct {
	OldUploadID int64
	NewUploadID int64
	ProjectID   string
	Method      string
	Filter      pipeline.ChangeFilter
}

// GanttQuery selects the tasks for the Gantt view. A zero UploadID means the
// latest upload containing the project.
type GanttQuery struct {
	UploadID  int64
	ProjectID string
	UseWBS    bool
}

// GraphQuery selects the driving path graph. An empty ProjectIDs means every
// project in the upload.
type GraphQuery struct {
	UploadID   int64
	ProjectIDs []string
	Layout     string
	NodeCount  int
}

// Source is the set of dashboard queries. It is served locally by Service and
// remotely by the API client.
type Source interface {
	Uploads(ctx context.Context) ([]model.Upload, error)
	Projects(ctx context.Context, uploadID int64) ([]model.Project, error)
	Forecast(ctx context.Context, sel Selection, period forecast.Period) ([]model.CostPeriodRecord, error)
	Overall(ctx context.Context, sel Selection) (model.OverallCosts, error)
	Tasks(ctx context.Context, sel Selection) ([]model.TaskCost, error)
	Resources(ctx context.Context, sel Selection) ([]model.ResourceCost, error)
	Movement(ctx context.Context, q MovementQuery) (model.Movement, error)
	Gantt(ctx context.Context, q GanttQuery) (model.Gantt, error)
	Graph(ctx context.Context, q GraphQuery) (model.Graph, error)
}

// Service runs the dashboard queries against a local store.
type Service struct {
	store    *store.Store
	currency string
}

var _ Source = (*Service)(nil)

// New returns a Service over st. currency prefixes amounts in graph hover text.
func New(st *store.Store, currency string) *Service {
	return &Service{store: st, currency: currency}
}

// Uploads lists every imported file.
func (s *Service) Uploads(ctx context.Context) ([]model.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Uploads()
}

// Projects lists the projects of an upload, or every project when uploadID is 0.
func (s *Service) Projects(ctx context.Context, uploadID int64) ([]model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Projects(uploadID)
}

// Forecast returns per-period actual and target costs in period order.
func (s *Service) Forecast(ctx context.Context, sel Selection, period forecast.Period) ([]model.CostPeriodRecord, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	if _, err := forecast.ParsePeriod(string(period)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.store.TaskCostRows(sel.UploadID, sel.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("reading task costs: %w", err)
	}
	return pipeline.AggregateForecast(rows, period), nil
}

// Overall totals resource and expense costs of the project.
func (s *Service) Overall(ctx context.Context, sel Selection) (model.OverallCosts, error) {
	if err := sel.validate(); err != nil {
		return model.OverallCosts{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.OverallCosts{}, err
	}
	rows, err := s.store.TaskCostRows(sel.UploadID, sel.ProjectID)
	if err != nil {
		return model.OverallCosts{}, fmt.Errorf("reading task costs: %w", err)
	}
	expenses, err := s.store.ProjCostRows(sel.UploadID, sel.ProjectID)
	if err != nil {
		return model.OverallCosts{}, fmt.Errorf("reading expenses: %w", err)
	}
	return pipeline.AggregateOverall(rows, expenses), nil
}

// Tasks returns every costed task of the project, highest actual cost first.
func (s *Service) Tasks(ctx context.Context, sel Selection) ([]model.TaskCost, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.store.TaskCostRows(sel.UploadID, sel.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("reading task costs: %w", err)
	}
	return pipeline.AggregateTaskCosts(rows), nil
}

// Resources returns resource cost sums, highest actual cost first.
func (s *Service) Resources(ctx context.Context, sel Selection) ([]model.ResourceCost, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.store.ResourceCostRows(sel.UploadID, sel.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("reading resource costs: %w", err)
	}
	return pipeline.AggregateResourceCosts(rows), nil
}

// Movement compares a project across two uploads. The summary covers every
// change; the details are narrowed by q.Filter.
func (s *Service) Movement(ctx context.Context, q MovementQuery) (model.Movement, error) {
	if q.OldUploadID <= 0 || q.NewUploadID <= 0 || q.ProjectID == "" {
		return model.Movement{}, fmt.Errorf("%w: upload_id_1, upload_id_2 and proj_id", ErrMissingParam)
	}
	method, err := pipeline.ParseCompareMethod(q.Method)
	if err != nil {
		return model.Movement{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.Movement{}, err
	}

	old, err := s.snapshot(q.OldUploadID, q.ProjectID)
	if err != nil {
		return model.Movement{}, err
	}
	cur, err := s.snapshot(q.NewUploadID, q.ProjectID)
	if err != nil {
		return model.Movement{}, err
	}

	details := pipeline.CompareUploads(old, cur, method)
	filter := q.Filter
	filter.Method = method
	return model.Movement{
		Summary: pipeline.Summarize(details),
		Details: pipeline.FilterChanges(details, filter),
	}, nil
}

func (s *Service) snapshot(uploadID int64, projectID string) (pipeline.UploadSnapshot, error) {
	tasks, err := s.store.Tasks(uploadID, []string{projectID})
	if err != nil {
		return pipeline.UploadSnapshot{}, fmt.Errorf("reading tasks of upload %d: %w", uploadID, err)
	}
	rows, err := s.store.TaskCostRows(uploadID, projectID)
	if err != nil {
		return pipeline.UploadSnapshot{}, fmt.Errorf("reading task costs of upload %d: %w", uploadID, err)
	}
	return pipeline.UploadSnapshot{Tasks: tasks, Costs: pipeline.CostsByTask(rows)}, nil
}

// Gantt returns the project's tasks and relationships for the Gantt view.
func (s *Service) Gantt(ctx context.Context, q GanttQuery) (model.Gantt, error) {
	if q.ProjectID == "" {
		return model.Gantt{}, fmt.Errorf("%w: project_id", ErrMissingParam)
	}
	if err := ctx.Err(); err != nil {
		return model.Gantt{}, err
	}
	uploadID := q.UploadID
	if uploadID <= 0 {
		id, err := s.store.LatestUploadFor(q.ProjectID)
		if errors.Is(err, store.ErrNoUpload) {
			return pipeline.BuildGantt(nil, nil, q.UseWBS), nil
		}
		if err != nil {
			return model.Gantt{}, err
		}
		uploadID = id
	}

	ids := []string{q.ProjectID}
	tasks, err := s.store.Tasks(uploadID, ids)
	if err != nil {
		return model.Gantt{}, fmt.Errorf("reading tasks: %w", err)
	}
	preds, err := s.store.TaskPreds(uploadID, ids)
	if err != nil {
		return model.Gantt{}, fmt.Errorf("reading relationships: %w", err)
	}
	return pipeline.BuildGantt(tasks, preds, q.UseWBS), nil
}

// Graph builds the driving path graph of the selected projects.
func (s *Service) Graph(ctx context.Context, q GraphQuery) (model.Graph, error) {
	if q.UploadID <= 0 {
		return model.Graph{}, fmt.Errorf("%w: xer_file_id", ErrMissingParam)
	}
	if q.NodeCount == 0 {
		q.NodeCount = pipeline.DefaultNodeCount
	}
	if q.NodeCount < pipeline.MinNodeCount || q.NodeCount > pipeline.MaxNodeCount {
		return model.Graph{}, ErrNodeCount
	}
	if err := ctx.Err(); err != nil {
		return model.Graph{}, err
	}

	ids := q.ProjectIDs
	if len(ids) == 0 {
		var err error
		if ids, err = s.store.ProjectIDs(q.UploadID); err != nil {
			return model.Graph{}, fmt.Errorf("reading projects: %w", err)
		}
	}

	tasks, err := s.store.Tasks(q.UploadID, ids)
	if err != nil {
		return model.Graph{}, fmt.Errorf("reading tasks: %w", err)
	}
	preds, err := s.store.TaskPreds(q.UploadID, ids)
	if err != nil {
		return model.Graph{}, fmt.Errorf("reading relationships: %w", err)
	}
	costs := make(map[string]model.CostValues)
	for _, id := range ids {
		rows, err := s.store.TaskCostRows(q.UploadID, id)
		if err != nil {
			return model.Graph{}, fmt.Errorf("reading task costs: %w", err)
		}
		for k, v := range pipeline.CostsByTask(rows) {
			costs[k] = v
		}
	}

	return pipeline.BuildGraph(tasks, preds, costs, pipeline.GraphOptions{
		NodeCount: q.NodeCount,
		Layout:    q.Layout,
		Projects:  ids,
		Currency:  s.currency,
	})
}
