// Package store keeps imported XER uploads in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/xercost/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is the upload database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the upload database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening upload db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	UploadID  int64
	MtimeNs   int64
	SizeBytes int64
}

// TrackedFiles returns a map of file_path -> FileInfo for every upload.
func (s *Store) TrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT id, file_path, mtime_ns, size_bytes FROM upload")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&fi.UploadID, &path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveUpload stores a parsed schedule. Re-importing a path keeps its upload
// id and replaces every row that came from the previous version of the file.
func (s *Store) SaveUpload(u model.Upload, sched model.Schedule) (model.Upload, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return u, err
	}
	defer func() { _ = tx.Rollback() }()

	if u.ImportedAt.IsZero() {
		u.ImportedAt = time.Now().UTC()
	}

	var existing int64
	err = tx.QueryRow("SELECT id FROM upload WHERE file_path = ?", u.Path).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if u.Ref == "" {
			u.Ref = uuid.NewString()
		}
		res, err := tx.Exec(`INSERT INTO upload (ref, file_name, file_path, mtime_ns, size_bytes, imported_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.Ref, u.FileName, u.Path, u.MtimeNs, u.SizeBytes, u.ImportedAt.Format(time.RFC3339))
		if err != nil {
			return u, fmt.Errorf("inserting upload: %w", err)
		}
		if u.ID, err = res.LastInsertId(); err != nil {
			return u, err
		}
	case err != nil:
		return u, err
	default:
		u.ID = existing
		if err := tx.QueryRow("SELECT ref FROM upload WHERE id = ?", existing).Scan(&u.Ref); err != nil {
			return u, err
		}
		if _, err := tx.Exec(`UPDATE upload SET file_name = ?, mtime_ns = ?, size_bytes = ?, imported_at = ? WHERE id = ?`,
			u.FileName, u.MtimeNs, u.SizeBytes, u.ImportedAt.Format(time.RFC3339), u.ID); err != nil {
			return u, fmt.Errorf("updating upload: %w", err)
		}
		for _, table := range []string{"project", "task", "taskpred", "taskrsrc", "rsrc", "projcost"} {
			if _, err := tx.Exec("DELETE FROM "+table+" WHERE xer_file_id = ?", u.ID); err != nil {
				return u, fmt.Errorf("clearing %s: %w", table, err)
			}
		}
	}

	if err := insertSchedule(tx, u.ID, sched); err != nil {
		return u, err
	}
	return u, tx.Commit()
}

func insertSchedule(tx *sql.Tx, id int64, sched model.Schedule) error {
	batch := func(query string, n int, args func(i int) []any) error {
		if n == 0 {
			return nil
		}
		stmt, err := tx.Prepare(query)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for i := 0; i < n; i++ {
			if _, err := stmt.Exec(args(i)...); err != nil {
				return err
			}
		}
		return nil
	}

	if err := batch(`INSERT OR REPLACE INTO project (xer_file_id, proj_id, proj_short_name) VALUES (?, ?, ?)`,
		len(sched.Projects), func(i int) []any {
			p := sched.Projects[i]
			return []any{id, p.ID, p.ShortName}
		}); err != nil {
		return fmt.Errorf("inserting projects: %w", err)
	}

	if err := batch(`INSERT OR REPLACE INTO task
		(xer_file_id, task_id, proj_id, wbs_id, task_name, early_start_date, early_end_date,
		 target_start_date, target_end_date, total_float_hr_cnt, remain_drtn_hr_cnt, driving_path_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(sched.Tasks), func(i int) []any {
			t := sched.Tasks[i]
			var float any
			if t.HasFloat {
				float = t.TotalFloatHrs
			}
			return []any{id, t.ID, t.ProjectID, t.WBSID, t.Name, t.EarlyStart, t.EarlyEnd,
				t.TargetStart, t.TargetEnd, float, t.RemainDrtnHrs, t.DrivingPathFlag}
		}); err != nil {
		return fmt.Errorf("inserting tasks: %w", err)
	}

	if err := batch(`INSERT OR REPLACE INTO taskpred
		(xer_file_id, task_pred_id, task_id, pred_task_id, proj_id, pred_type, lag_hr_cnt)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(sched.Preds), func(i int) []any {
			p := sched.Preds[i]
			return []any{id, p.ID, p.TaskID, p.PredTaskID, p.ProjectID, p.PredType, p.LagHrs}
		}); err != nil {
		return fmt.Errorf("inserting relationships: %w", err)
	}

	if err := batch(`INSERT OR REPLACE INTO taskrsrc
		(xer_file_id, taskrsrc_id, task_id, proj_id, rsrc_id, act_reg_cost, act_ot_cost, target_cost, remain_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(sched.Rsrcs), func(i int) []any {
			r := sched.Rsrcs[i]
			return []any{id, r.ID, r.TaskID, r.ProjectID, r.ResourceID, r.ActRegCost, r.ActOTCost, r.TargetCost, r.RemainCost}
		}); err != nil {
		return fmt.Errorf("inserting assignments: %w", err)
	}

	if err := batch(`INSERT OR REPLACE INTO rsrc (xer_file_id, rsrc_id, rsrc_name, rsrc_type) VALUES (?, ?, ?, ?)`,
		len(sched.Resources), func(i int) []any {
			r := sched.Resources[i]
			return []any{id, r.ID, r.Name, r.Type}
		}); err != nil {
		return fmt.Errorf("inserting resources: %w", err)
	}

	if err := batch(`INSERT INTO projcost (xer_file_id, proj_cost_id, task_id, proj_id, act_cost, target_cost, remain_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(sched.ProjCosts), func(i int) []any {
			c := sched.ProjCosts[i]
			return []any{id, c.ID, c.TaskID, c.ProjectID, c.ActCost, c.TargetCost, c.RemainCost}
		}); err != nil {
		return fmt.Errorf("inserting expenses: %w", err)
	}

	return nil
}

// DeleteUpload removes an upload and all of its rows.
func (s *Store) DeleteUpload(id int64) error {
	_, err := s.db.Exec("DELETE FROM upload WHERE id = ?", id)
	return err
}

// UploadCount returns the number of stored uploads.
func (s *Store) UploadCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM upload").Scan(&count)
	return count, err
}
