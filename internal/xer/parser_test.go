package xer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleXER = "ERMHDR\t19.12\t2024-02-01\tProject\tadmin\n" +
	"%T\tPROJECT\n" +
	"%F\tproj_id\tproj_short_name\n" +
	"%R\t1001\tDEMO\n" +
	"%T\tTASK\n" +
	"%F\ttask_id\tproj_id\twbs_id\ttask_name\tearly_start_date\tearly_end_date\ttarget_start_date\ttarget_end_date\ttotal_float_hr_cnt\tremain_drtn_hr_cnt\tdriving_path_flag\n" +
	"%R\t1\t1001\tW1\tExcavate\t2024-01-08 08:00\t2024-01-19 17:00\t2024-01-08 08:00\t2024-01-19 17:00\t0\t40\tY\n" +
	"%R\t2\t1001\tW1\tPour slab\t2024-02-05 08:00\t2024-02-16 17:00\t2024-02-05 08:00\t2024-02-16 17:00\t\t80\t\n" +
	"%T\tTASKPRED\n" +
	"%F\ttask_pred_id\ttask_id\tpred_task_id\tproj_id\tpred_type\tlag_hr_cnt\n" +
	"%R\t10\t2\t1\t1001\tPR_FS\t0\n" +
	"%T\tTASKRSRC\n" +
	"%F\ttaskrsrc_id\ttask_id\tproj_id\trsrc_id\tact_reg_cost\tact_ot_cost\ttarget_cost\tremain_cost\n" +
	"%R\t100\t1\t1001\tR1\t90\t10\t120\t20\n" +
	"%T\tRSRC\n" +
	"%F\trsrc_id\trsrc_name\trsrc_type\n" +
	"%R\tR1\tExcavator\tRT_Equip\n" +
	"%E\n"

func TestParse_Tables(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleXER))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Order) != 5 {
		t.Fatalf("tables = %v, want 5", f.Order)
	}
	if f.Header[0] != "19.12" {
		t.Errorf("Header[0] = %q, want 19.12", f.Header[0])
	}
	task := f.Table("TASK")
	if task == nil || len(task.Rows) != 2 {
		t.Fatalf("TASK table = %+v", task)
	}
	if got := task.Get(task.Rows[1], "task_name"); got != "Pour slab" {
		t.Errorf("task_name = %q, want Pour slab", got)
	}
	if got := task.Get(task.Rows[0], "no_such_field"); got != "" {
		t.Errorf("missing field = %q, want empty", got)
	}
}

func TestSchedule_Mapping(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleXER))
	if err != nil {
		t.Fatal(err)
	}
	s := f.Schedule()

	if len(s.Projects) != 1 || s.Projects[0].ShortName != "DEMO" {
		t.Errorf("Projects = %+v", s.Projects)
	}
	if len(s.Tasks) != 2 {
		t.Fatalf("Tasks = %d, want 2", len(s.Tasks))
	}
	if !s.Tasks[0].OnDrivingPath() || !s.Tasks[0].HasFloat {
		t.Errorf("task 1 = %+v, want driving path with float", s.Tasks[0])
	}
	if s.Tasks[1].HasFloat || s.Tasks[1].DrivingPathFlag != "N" {
		t.Errorf("task 2 = %+v, want no float and flag N", s.Tasks[1])
	}
	if s.Preds[0].PredType != "FS" {
		t.Errorf("PredType = %q, want FS", s.Preds[0].PredType)
	}
	r := s.Rsrcs[0]
	if r.ActRegCost != 90 || r.ActOTCost != 10 || r.TargetCost != 120 || r.RemainCost != 20 {
		t.Errorf("TaskRsrc = %+v", r)
	}
	if s.Resources[0].Name != "Excavator" {
		t.Errorf("Resource = %+v", s.Resources[0])
	}
	if len(s.ProjCosts) != 0 {
		t.Errorf("ProjCosts = %d, want 0 (no table)", len(s.ProjCosts))
	}
}

func TestParse_MalformedLines(t *testing.T) {
	input := "%R\torphan\n" +
		"garbage line\n" +
		"%T\tPROJECT\n" +
		"%F\tproj_id\tproj_short_name\n" +
		"%R\t1\tA\n" +
		"%E\n"

	path := filepath.Join(t.TempDir(), "bad.xer")
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatal(err)
	}
	res := ParseFile(DiscoveredFile{Path: path})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", res.ParseErrors)
	}
	if len(res.Data.Table("PROJECT").Rows) != 1 {
		t.Errorf("PROJECT rows = %d, want 1", len(res.Data.Table("PROJECT").Rows))
	}
}

func TestParse_NotXER(t *testing.T) {
	_, err := Parse(strings.NewReader("just some text\n"))
	if !errors.Is(err, ErrNotXER) {
		t.Errorf("err = %v, want ErrNotXER", err)
	}
}

func TestParse_Windows1252(t *testing.T) {
	// 0xA3 is the pound sign in Windows-1252 and invalid as UTF-8 on its own.
	input := []byte("%T\tTASK\n%F\ttask_id\ttask_name\n%R\t1\tBudget \xA3 review\n%E\n")
	f, err := Parse(strings.NewReader(string(input)))
	if err != nil {
		t.Fatal(err)
	}
	tbl := f.Table("TASK")
	if got := tbl.Get(tbl.Rows[0], "task_name"); got != "Budget £ review" {
		t.Errorf("task_name = %q, want %q", got, "Budget £ review")
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archive")
	if err := os.MkdirAll(sub, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(dir, "b.xer"),
		filepath.Join(sub, "a.XER"),
		filepath.Join(dir, "notes.txt"),
	} {
		if err := os.WriteFile(p, []byte(sampleXER), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	if files[0].Name != "a.XER" || files[1].Name != "b.xer" {
		t.Errorf("order = %s, %s", files[0].Name, files[1].Name)
	}
	if files[0].SizeBytes != int64(len(sampleXER)) {
		t.Errorf("SizeBytes = %d", files[0].SizeBytes)
	}

	missing, err := ScanDir(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("missing dir: files %v err %v", missing, err)
	}
}

func FuzzParse(f *testing.F) {
	f.Add([]byte(sampleXER))
	f.Add([]byte("%T\n%F\n%R\n"))
	f.Add([]byte(""))
	f.Add([]byte("%R\tx\ty\n%E"))

	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := Parse(strings.NewReader(string(data)))
		if err != nil {
			return
		}
		// Must never panic when mapping arbitrary tables.
		_ = file.Schedule()
	})
}
