package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/xercost/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixtureSchedule() model.Schedule {
	return model.Schedule{
		Projects: []model.Project{{ID: "P1", ShortName: "Bridge"}, {ID: "P2", ShortName: "Depot"}},
		Tasks: []model.Task{
			{ID: "T1", ProjectID: "P1", Name: "Piling", TargetStart: "2024-01-08 08:00", TotalFloatHrs: 0, HasFloat: true, DrivingPathFlag: "Y"},
			{ID: "T2", ProjectID: "P1", Name: "Deck", TargetStart: "2024-02-05 08:00", RemainDrtnHrs: 16, DrivingPathFlag: "N"},
			{ID: "T3", ProjectID: "P1", Name: "Survey", TargetStart: "2024-01-02 08:00", DrivingPathFlag: "N"},
		},
		Preds: []model.TaskPred{{ID: "L1", TaskID: "T2", PredTaskID: "T1", ProjectID: "P1", PredType: "FS"}},
		Rsrcs: []model.TaskRsrc{
			{ID: "A1", TaskID: "T1", ProjectID: "P1", ResourceID: "R1", ActRegCost: 90, ActOTCost: 10, TargetCost: 120, RemainCost: 20},
			{ID: "A2", TaskID: "T1", ProjectID: "P1", ResourceID: "R2", ActRegCost: 50, TargetCost: 40},
			{ID: "A3", TaskID: "T2", ProjectID: "P1", ResourceID: "R1", ActRegCost: 80, TargetCost: 90, RemainCost: 5},
		},
		Resources: []model.Resource{{ID: "R1", Name: "Crane", Type: "RT_Equip"}, {ID: "R2", Name: "Labour", Type: "RT_Labor"}},
		ProjCosts: []model.ProjCost{{ID: "C1", TaskID: "T3", ProjectID: "P1", ActCost: 7, TargetCost: 8, RemainCost: 1}},
	}
}

func saveFixture(t *testing.T, s *Store, path string) model.Upload {
	t.Helper()
	u, err := s.SaveUpload(model.Upload{FileName: filepath.Base(path), Path: path, MtimeNs: 1, SizeBytes: 10}, fixtureSchedule())
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	return u
}

func TestSaveUpload_AssignsIDAndRef(t *testing.T) {
	s := openTestStore(t)
	u := saveFixture(t, s, "/data/a.xer")

	if u.ID == 0 || u.Ref == "" {
		t.Fatalf("upload = %+v, want id and ref", u)
	}
	uploads, err := s.Uploads()
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 1 || uploads[0].FileName != "a.xer" || uploads[0].Ref != u.Ref {
		t.Errorf("Uploads = %+v", uploads)
	}
}

func TestSaveUpload_ReimportKeepsIDAndReplacesRows(t *testing.T) {
	s := openTestStore(t)
	first := saveFixture(t, s, "/data/a.xer")

	sched := fixtureSchedule()
	sched.Rsrcs = sched.Rsrcs[:1]
	second, err := s.SaveUpload(model.Upload{FileName: "a.xer", Path: "/data/a.xer", MtimeNs: 2, SizeBytes: 11}, sched)
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if second.ID != first.ID || second.Ref != first.Ref {
		t.Errorf("reimport id/ref = %d/%s, want %d/%s", second.ID, second.Ref, first.ID, first.Ref)
	}

	rows, err := s.TaskCostRows(first.ID, "P1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("task cost rows = %d, want 1 after reimport", len(rows))
	}

	tracked, err := s.TrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if tracked["/data/a.xer"].MtimeNs != 2 {
		t.Errorf("tracked = %+v", tracked)
	}
}

func TestProjects(t *testing.T) {
	s := openTestStore(t)
	u := saveFixture(t, s, "/data/a.xer")

	projects, err := s.Projects(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	// P2 has no tasks in the upload.
	if len(projects) != 1 || projects[0].ID != "P1" || projects[0].ShortName != "Bridge" {
		t.Errorf("Projects(upload) = %+v", projects)
	}

	all, err := s.Projects(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("Projects(0) = %+v, want 2", all)
	}

	none, err := s.Projects(u.ID + 100)
	if err != nil || len(none) != 0 {
		t.Errorf("unknown upload: %+v, %v", none, err)
	}
}

func TestTaskCostRows_SumsAssignments(t *testing.T) {
	s := openTestStore(t)
	u := saveFixture(t, s, "/data/a.xer")

	rows, err := s.TaskCostRows(u.ID, "P1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (T3 has no assignments)", len(rows))
	}
	t1 := rows[0]
	if t1.TaskID != "T1" || t1.Actual != 150 || t1.Target != 160 || t1.Remain != 20 {
		t.Errorf("T1 = %+v, want actual 150 target 160 remain 20", t1)
	}
	if t1.TargetStart != "2024-01-08 08:00" {
		t.Errorf("TargetStart = %q", t1.TargetStart)
	}
}

func TestResourceAndExpenseRows(t *testing.T) {
	s := openTestStore(t)
	u := saveFixture(t, s, "/data/a.xer")

	res, err := s.ResourceCostRows(u.ID, "P1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("resources = %d, want 2", len(res))
	}
	if res[0].ResourceName != "Crane" || res[0].ActualCost != 180 {
		t.Errorf("Crane = %+v, want actual 180", res[0])
	}

	pc, err := s.ProjCostRows(u.ID, "P1")
	if err != nil {
		t.Fatal(err)
	}
	if len(pc) != 1 || pc[0].ActCost != 7 {
		t.Errorf("ProjCostRows = %+v", pc)
	}
}

func TestTasksAndPreds(t *testing.T) {
	s := openTestStore(t)
	u := saveFixture(t, s, "/data/a.xer")

	tasks, err := s.Tasks(u.ID, []string{"P1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(tasks))
	}
	if !tasks[0].HasFloat || tasks[1].HasFloat {
		t.Errorf("float presence not preserved: %+v %+v", tasks[0], tasks[1])
	}

	preds, err := s.TaskPreds(u.ID, []string{"P1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 1 || preds[0].PredTaskID != "T1" {
		t.Errorf("preds = %+v", preds)
	}

	if empty, err := s.Tasks(u.ID, nil); err != nil || empty != nil {
		t.Errorf("Tasks(nil) = %v, %v", empty, err)
	}
}

func TestLatestUploadFor(t *testing.T) {
	s := openTestStore(t)
	saveFixture(t, s, "/data/a.xer")
	second := saveFixture(t, s, "/data/b.xer")

	id, err := s.LatestUploadFor("P1")
	if err != nil {
		t.Fatal(err)
	}
	if id != second.ID {
		t.Errorf("LatestUploadFor = %d, want %d", id, second.ID)
	}

	if _, err := s.LatestUploadFor("nope"); !errors.Is(err, ErrNoUpload) {
		t.Errorf("err = %v, want ErrNoUpload", err)
	}
}

func TestDeleteUpload_Cascades(t *testing.T) {
	s := openTestStore(t)
	u := saveFixture(t, s, "/data/a.xer")

	if err := s.DeleteUpload(u.ID); err != nil {
		t.Fatal(err)
	}
	n, err := s.UploadCount()
	if err != nil || n != 0 {
		t.Errorf("UploadCount = %d, %v", n, err)
	}
	rows, err := s.TaskCostRows(u.ID, "P1")
	if err != nil || len(rows) != 0 {
		t.Errorf("rows after delete = %d, %v", len(rows), err)
	}
}
