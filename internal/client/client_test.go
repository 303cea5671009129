package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/xercost/internal/dashboard"
	"github.com/theirongolddev/xercost/internal/forecast"
	"github.com/theirongolddev/xercost/internal/model"
	"github.com/theirongolddev/xercost/internal/server"
	"github.com/theirongolddev/xercost/internal/store"
)

func seeded(t *testing.T) (*Client, int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "xercost.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	up, err := st.SaveUpload(model.Upload{FileName: "jan.xer", Path: "/data/jan.xer"}, model.Schedule{
		Projects: []model.Project{{ID: "P1", ShortName: "Bridge"}},
		Tasks: []model.Task{
			{ID: "T1", ProjectID: "P1", Name: "Piling", EarlyStart: "2024-01-08 08:00", TargetStart: "2024-01-08 08:00"},
			{ID: "T2", ProjectID: "P1", Name: "Deck", EarlyStart: "2024-03-04 08:00", TargetStart: "2024-03-04 08:00"},
		},
		Preds: []model.TaskPred{{ID: "L1", TaskID: "T2", PredTaskID: "T1", ProjectID: "P1", PredType: "FS"}},
		Rsrcs: []model.TaskRsrc{
			{ID: "A1", TaskID: "T1", ProjectID: "P1", ResourceID: "R1", ActRegCost: 100, TargetCost: 120},
			{ID: "A2", TaskID: "T2", ProjectID: "P1", ResourceID: "R1", TargetCost: 90, RemainCost: 90},
		},
		Resources: []model.Resource{{ID: "R1", Name: "Crane"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(server.New(server.Config{}, st).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL), up.ID
}

func TestNew(t *testing.T) {
	if New("  ") != nil {
		t.Error("New(empty) should return nil")
	}
	c := New("localhost:8080/")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.WithTimeout(0).timeout != defaultTimeout {
		t.Errorf("timeout = %v, want default", c.timeout)
	}
	if c.WithTimeout(time.Second).timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", c.timeout)
	}
}

func TestClient_Queries(t *testing.T) {
	c, id := seeded(t)
	ctx := context.Background()
	sel := dashboard.Selection{UploadID: id, ProjectID: "P1"}

	uploads, err := c.Uploads(ctx)
	if err != nil || len(uploads) != 1 || uploads[0].ID != id {
		t.Fatalf("Uploads = %+v, %v", uploads, err)
	}

	projects, err := c.Projects(ctx, id)
	if err != nil || len(projects) != 1 {
		t.Fatalf("Projects = %+v, %v", projects, err)
	}
	if none, err := c.Projects(ctx, 999); err != nil || none != nil {
		t.Errorf("Projects(999) = %+v, %v; want nil, nil", none, err)
	}

	records, err := c.Forecast(ctx, sel, forecast.Quarterly)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Period != "2024-Q1" || records[0].TargetCost != 210 {
		t.Errorf("Forecast = %+v", records)
	}

	tasks, err := c.Tasks(ctx, sel)
	if err != nil || len(tasks) != 2 {
		t.Errorf("Tasks = %+v, %v", tasks, err)
	}

	res, err := c.Resources(ctx, sel)
	if err != nil || len(res) != 1 || res[0].ResourceName != "Crane" {
		t.Errorf("Resources = %+v, %v", res, err)
	}

	gantt, err := c.Gantt(ctx, dashboard.GanttQuery{ProjectID: "P1"})
	if err != nil || len(gantt.Data) != 2 {
		t.Errorf("Gantt = %+v, %v", gantt, err)
	}

	g, err := c.Graph(ctx, dashboard.GraphQuery{UploadID: id})
	if err != nil || len(g.Nodes) != 2 {
		t.Errorf("Graph = %d nodes, %v", len(g.Nodes), err)
	}

	body, err := c.ExportForecast(ctx, sel, forecast.Monthly, "csv")
	if err != nil || len(body) == 0 {
		t.Errorf("ExportForecast = %d bytes, %v", len(body), err)
	}
}

func TestClient_Errors(t *testing.T) {
	c, id := seeded(t)
	ctx := context.Background()

	_, err := c.Forecast(ctx, dashboard.Selection{UploadID: id, ProjectID: "P1"}, forecast.Period("weekly"))
	var bad *BadRequestError
	if !errors.As(err, &bad) || bad.Message != "Invalid time period" {
		t.Fatalf("err = %v, want BadRequestError", err)
	}
	if !dashboard.IsValidation(err) {
		t.Error("bad request should count as a validation error")
	}

	_, err = c.Graph(ctx, dashboard.GraphQuery{UploadID: 999})
	if !errors.Is(err, dashboard.ErrNoTasks) || !errors.Is(err, ErrNoContent) {
		t.Errorf("Graph(999) err = %v, want ErrNoContent and ErrNoTasks", err)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/uploads":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to fetch uploads"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	c := New(ts.URL)

	if _, err := c.Uploads(context.Background()); !errors.Is(err, ErrServer) {
		t.Errorf("Uploads err = %v, want ErrServer", err)
	}
	if _, err := c.Overall(context.Background(), dashboard.Selection{UploadID: 1, ProjectID: "P"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Overall err = %v, want ErrNotFound", err)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	c, _ := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Uploads(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}
