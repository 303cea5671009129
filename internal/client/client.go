// Package client reads the dashboard API of a running xercost server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 32 << 20 // 32 MB
)

var (
	// ErrNotFound indicates the server has no such route.
	ErrNotFound = errors.New("client: not found")
	// ErrServer indicates the server failed to answer the query.
	ErrServer = errors.New("client: server error")
	// ErrNoContent indicates the query matched nothing (HTTP 204).
	ErrNoContent = errors.New("client: no content")
)

// BadRequestError carries the message of a 400 response. It unwraps to
// dashboard.ErrMissingParam so callers can treat it as a validation error.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return "client: bad request: " + e.Message }

func (e *BadRequestError) Unwrap() error { return dashboard.ErrMissingParam }

// Client queries a remote server. It satisfies dashboard.Source.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

var _ dashboard.Source = (*Client)(nil)

// New creates a client for the server at baseURL ("http://host:port").
// Returns nil if baseURL is empty.
func New(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, timeout: defaultTimeout, http: &http.Client{}}
}

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// Uploads lists every imported file.
func (c *Client) Uploads(ctx context.Context) ([]model.Upload, error) {
	var out []model.Upload
	_, err := c.getJSON(ctx, "/api/uploads", nil, &out)
	return out, err
}

// Projects lists the projects of an upload. An upload with no projects yields nil.
func (c *Client) Projects(ctx context.Context, uploadID int64) ([]model.Project, error) {
	params := url.Values{}
	if uploadID > 0 {
		params.Set("xer_file_id", strconv.FormatInt(uploadID, 10))
	}
	var out []model.Project
	_, err := c.getJSON(ctx, "/api/projects", params, &out)
	return out, err
}

// Forecast returns per-period costs for a project.
func (c *Client) Forecast(ctx context.Context, sel dashboard.Selection, period forecast.Period) ([]model.CostPeriodRecord, error) {
	params := selectionParams(sel)
	params.Set("time_period", string(period))
	var out []model.CostPeriodRecord
	_, err := c.getJSON(ctx, "/api/cost_dashboard/forecast", params, &out)
	return out, err
}

// Overall returns the cost totals for a project.
func (c *Client) Overall(ctx context.Context, sel dashboard.Selection) (model.OverallCosts, error) {
	var out model.OverallCosts
	_, err := c.getJSON(ctx, "/api/cost_dashboard/overall", selectionParams(sel), &out)
	return out, err
}

// Tasks returns per-task costs for a project.
func (c *Client) Tasks(ctx context.Context, sel dashboard.Selection) ([]model.TaskCost, error) {
	var out []model.TaskCost
	_, err := c.getJSON(ctx, "/api/cost_dashboard/tasks", selectionParams(sel), &out)
	return out, err
}

// Resources returns per-resource costs for a project.
func (c *Client) Resources(ctx context.Context, sel dashboard.Selection) ([]model.ResourceCost, error) {
	var out []model.ResourceCost
	_, err := c.getJSON(ctx, "/api/cost_dashboard/resources", selectionParams(sel), &out)
	return out, err
}

// Movement compares two uploads of a project.
func (c *Client) Movement(ctx context.Context, q dashboard.MovementQuery) (model.Movement, error) {
	var out model.Movement
	_, err := c.getJSON(ctx, "/api/movement_comparison", movementParams(q), &out)
	return out, err
}

// Gantt returns the Gantt payload for a project.
func (c *Client) Gantt(ctx context.Context, q dashboard.GanttQuery) (model.Gantt, error) {
	params := url.Values{"project_id": {q.ProjectID}, "use_wbs": {strconv.FormatBool(q.UseWBS)}}
	if q.UploadID > 0 {
		params.Set("xer_file_id", strconv.FormatInt(q.UploadID, 10))
	}
	var out model.Gantt
	_, err := c.getJSON(ctx, "/api/gantt_data", params, &out)
	return out, err
}

// Graph returns the driving path graph. A 204 yields an error matching both
// ErrNoContent and dashboard.ErrNoTasks.
func (c *Client) Graph(ctx context.Context, q dashboard.GraphQuery) (model.Graph, error) {
	params := url.Values{"xer_file_id": {strconv.FormatInt(q.UploadID, 10)}}
	for _, p := range q.ProjectIDs {
		params.Add("proj_id", p)
	}
	if q.Layout != "" {
		params.Set("layout", q.Layout)
	}
	if q.NodeCount > 0 {
		params.Set("node_count", strconv.Itoa(q.NodeCount))
	}

	var out model.Graph
	status, err := c.getJSON(ctx, "/api/graph", params, &out)
	if err == nil && status == http.StatusNoContent {
		return model.Graph{}, fmt.Errorf("%w: %w", ErrNoContent, dashboard.ErrNoTasks)
	}
	return out, err
}

// ExportForecast downloads the forecast export in format ("csv" or "xlsx").
func (c *Client) ExportForecast(ctx context.Context, sel dashboard.Selection, period forecast.Period, format string) ([]byte, error) {
	params := selectionParams(sel)
	params.Set("time_period", string(period))
	params.Set("format", format)
	_, body, err := c.get(ctx, "/api/cost_dashboard/export_forecast", params)
	return body, err
}

// ExportMovement downloads the comparison detail CSV.
func (c *Client) ExportMovement(ctx context.Context, q dashboard.MovementQuery) ([]byte, error) {
	_, body, err := c.get(ctx, "/api/movement_comparison/export", movementParams(q))
	return body, err
}

func selectionParams(sel dashboard.Selection) url.Values {
	return url.Values{
		"xer_file_id": {strconv.FormatInt(sel.UploadID, 10)},
		"proj_id":     {sel.ProjectID},
	}
}

func movementParams(q dashboard.MovementQuery) url.Values {
	params := url.Values{
		"upload_id_1": {strconv.FormatInt(q.OldUploadID, 10)},
		"upload_id_2": {strconv.FormatInt(q.NewUploadID, 10)},
		"proj_id":     {q.ProjectID},
	}
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	set("comparison_method", q.Method)
	set("search", q.Filter.Text)
	set("change_type", q.Filter.ChangeType)
	set("cost_change", q.Filter.CostChange)
	return params
}

// getJSON decodes the response into v. A 204 leaves v untouched.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) (int, error) {
	status, body, err := c.get(ctx, path, params)
	if err != nil || status == http.StatusNoContent {
		return status, err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return status, fmt.Errorf("client: parsing %s: %w", path, err)
	}
	return status, nil
}

// get performs a GET request and returns the status and body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/xercost/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("client: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return resp.StatusCode, nil, &BadRequestError{Message: errorMessage(body)}
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil, ErrNotFound
	case resp.StatusCode >= 500:
		return resp.StatusCode, nil, fmt.Errorf("%w: %s", ErrServer, errorMessage(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return resp.StatusCode, nil, fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
