package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/xercost/internal/store"
)

const importXER = "ERMHDR\t19.12\t2024-02-01\tProject\tadmin\n" +
	"%T\tPROJECT\n" +
	"%F\tproj_id\tproj_short_name\n" +
	"%R\tP1\tBRIDGE\n" +
	"%T\tTASK\n" +
	"%F\ttask_id\tproj_id\ttask_name\ttarget_start_date\n" +
	"%R\tT1\tP1\tPiling\t2024-01-08 08:00\n" +
	"%T\tTASKRSRC\n" +
	"%F\ttaskrsrc_id\ttask_id\tproj_id\trsrc_id\tact_reg_cost\tact_ot_cost\ttarget_cost\tremain_cost\n" +
	"%R\tA1\tT1\tP1\tR1\t90\t10\t120\t20\n" +
	"%E\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "xercost.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestImport_ParsesAndSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.xer"), importXER)
	writeFile(t, filepath.Join(dir, "nested", "b.XER"), importXER)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	st := openStore(t)

	var calls atomic.Int64
	res, err := Import(dir, st, func(current, total int) {
		calls.Add(1)
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.TotalFiles != 2 || res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("first import = %+v", res)
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want 2", calls.Load())
	}

	rows, err := st.TaskCostRows(res.Uploads[0].ID, "P1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Actual != 100 {
		t.Errorf("imported cost rows = %+v", rows)
	}

	again, err := Import(dir, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.Imported != 0 || again.Skipped != 2 {
		t.Errorf("second import = %+v, want everything skipped", again)
	}
}

func TestImport_ReimportsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.xer")
	writeFile(t, path, importXER)
	st := openStore(t)

	first, err := Import(dir, st, nil)
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, importXER+"\n")
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	second, err := Import(dir, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Imported != 1 {
		t.Fatalf("changed file not reimported: %+v", second)
	}
	if second.Uploads[0].ID != first.Uploads[0].ID {
		t.Errorf("upload id changed: %d -> %d", first.Uploads[0].ID, second.Uploads[0].ID)
	}
	if n, _ := st.UploadCount(); n != 1 {
		t.Errorf("UploadCount = %d, want 1", n)
	}
}

func TestImport_CountsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.xer"), importXER)
	writeFile(t, filepath.Join(dir, "bad.xer"), "this is not an export\n")
	st := openStore(t)

	res, err := Import(dir, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || res.FileErrors != 1 {
		t.Errorf("result = %+v, want 1 imported, 1 file error", res)
	}
}

func TestImport_MissingDir(t *testing.T) {
	res, err := Import(filepath.Join(t.TempDir(), "nope"), openStore(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", res.TotalFiles)
	}
}
