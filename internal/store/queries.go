package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/theirongolddev/xercost/internal/model"
)

// ErrNoUpload is returned when a project has never been imported.
var ErrNoUpload = errors.New("store: no upload contains the project")

// Uploads returns every upload, oldest first.
func (s *Store) Uploads() ([]model.Upload, error) {
	rows, err := s.db.Query(`SELECT id, ref, file_name, file_path, mtime_ns, size_bytes, imported_at
		FROM upload ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var uploads []model.Upload
	for rows.Next() {
		var u model.Upload
		var imported string
		if err := rows.Scan(&u.ID, &u.Ref, &u.FileName, &u.Path, &u.MtimeNs, &u.SizeBytes, &imported); err != nil {
			return nil, err
		}
		u.ImportedAt, _ = time.Parse(time.RFC3339, imported)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// Projects returns the projects that have tasks in the upload, or every
// known project when uploadID is 0.
func (s *Store) Projects(uploadID int64) ([]model.Project, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if uploadID > 0 {
		rows, err = s.db.Query(`SELECT DISTINCT p.proj_id, COALESCE(p.proj_short_name, '')
			FROM project p
			JOIN task t ON t.proj_id = p.proj_id AND t.xer_file_id = p.xer_file_id
			WHERE p.xer_file_id = ?
			ORDER BY 2, 1`, uploadID)
	} else {
		rows, err = s.db.Query(`SELECT proj_id, COALESCE(MAX(proj_short_name), '')
			FROM project GROUP BY proj_id ORDER BY 2, 1`)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.ShortName); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectIDs returns the distinct project ids with tasks in the upload.
func (s *Store) ProjectIDs(uploadID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT proj_id FROM task WHERE xer_file_id = ? ORDER BY proj_id`, uploadID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestUploadFor returns the newest upload containing tasks of the project.
func (s *Store) LatestUploadFor(projectID string) (int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(xer_file_id) FROM task WHERE proj_id = ?`, projectID).Scan(&id)
	if err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, ErrNoUpload
	}
	return id.Int64, nil
}

// TaskCostRows returns per-task resource cost sums for tasks with at least one
// resource assignment. Actual cost is regular plus overtime.
func (s *Store) TaskCostRows(uploadID int64, projectID string) ([]model.TaskCostRow, error) {
	rows, err := s.db.Query(`SELECT
			t.task_id,
			COALESCE(t.task_name, ''),
			COALESCE(t.target_start_date, ''),
			SUM(COALESCE(tr.act_reg_cost, 0) + COALESCE(tr.act_ot_cost, 0)),
			SUM(COALESCE(tr.target_cost, 0)),
			SUM(COALESCE(tr.remain_cost, 0))
		FROM task t
		JOIN taskrsrc tr
			ON tr.task_id = t.task_id AND tr.proj_id = t.proj_id AND tr.xer_file_id = t.xer_file_id
		WHERE t.xer_file_id = ? AND t.proj_id = ?
		GROUP BY t.task_id, t.task_name, t.target_start_date
		ORDER BY t.task_id`, uploadID, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.TaskCostRow
	for rows.Next() {
		var r model.TaskCostRow
		if err := rows.Scan(&r.TaskID, &r.TaskName, &r.TargetStart, &r.Actual, &r.Target, &r.Remain); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProjCostRows returns expense sums per task of the project.
func (s *Store) ProjCostRows(uploadID int64, projectID string) ([]model.ProjCost, error) {
	rows, err := s.db.Query(`SELECT
			pc.task_id,
			SUM(COALESCE(pc.act_cost, 0)),
			SUM(COALESCE(pc.target_cost, 0)),
			SUM(COALESCE(pc.remain_cost, 0))
		FROM projcost pc
		JOIN task t ON t.task_id = pc.task_id AND t.xer_file_id = pc.xer_file_id
		WHERE pc.xer_file_id = ? AND t.proj_id = ?
		GROUP BY pc.task_id
		ORDER BY pc.task_id`, uploadID, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.ProjCost
	for rows.Next() {
		c := model.ProjCost{ProjectID: projectID}
		if err := rows.Scan(&c.TaskID, &c.ActCost, &c.TargetCost, &c.RemainCost); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ResourceCostRows returns assignment cost sums per resource for the project.
func (s *Store) ResourceCostRows(uploadID int64, projectID string) ([]model.ResourceCost, error) {
	rows, err := s.db.Query(`SELECT
			r.rsrc_id,
			COALESCE(r.rsrc_name, ''),
			COALESCE(r.rsrc_type, ''),
			SUM(COALESCE(tr.act_reg_cost, 0) + COALESCE(tr.act_ot_cost, 0)),
			SUM(COALESCE(tr.target_cost, 0)),
			SUM(COALESCE(tr.remain_cost, 0))
		FROM rsrc r
		JOIN taskrsrc tr ON tr.rsrc_id = r.rsrc_id AND tr.xer_file_id = r.xer_file_id
		JOIN task t ON t.task_id = tr.task_id AND t.xer_file_id = tr.xer_file_id
		WHERE tr.xer_file_id = ? AND t.proj_id = ?
		GROUP BY r.rsrc_id, r.rsrc_name, r.rsrc_type
		ORDER BY r.rsrc_id`, uploadID, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.ResourceCost
	for rows.Next() {
		var c model.ResourceCost
		if err := rows.Scan(&c.ResourceID, &c.ResourceName, &c.ResourceType, &c.ActualCost, &c.TargetCost, &c.RemainCost); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Tasks returns the tasks of the given projects in the upload.
func (s *Store) Tasks(uploadID int64, projectIDs []string) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT task_id, proj_id, COALESCE(wbs_id, ''), COALESCE(task_name, ''),
			COALESCE(early_start_date, ''), COALESCE(early_end_date, ''),
			COALESCE(target_start_date, ''), COALESCE(target_end_date, ''),
			total_float_hr_cnt, COALESCE(remain_drtn_hr_cnt, 0), driving_path_flag
		FROM task
		WHERE xer_file_id = ? AND proj_id IN (`+placeholders(len(projectIDs))+`)
		ORDER BY proj_id, task_id`, withUpload(uploadID, projectIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var float sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.WBSID, &t.Name, &t.EarlyStart, &t.EarlyEnd,
			&t.TargetStart, &t.TargetEnd, &float, &t.RemainDrtnHrs, &t.DrivingPathFlag); err != nil {
			return nil, err
		}
		t.TotalFloatHrs, t.HasFloat = float.Float64, float.Valid
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskPreds returns the relationships of the given projects in the upload.
func (s *Store) TaskPreds(uploadID int64, projectIDs []string) ([]model.TaskPred, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT task_pred_id, task_id, pred_task_id, proj_id,
			COALESCE(pred_type, ''), COALESCE(lag_hr_cnt, 0)
		FROM taskpred
		WHERE xer_file_id = ? AND proj_id IN (`+placeholders(len(projectIDs))+`)
		ORDER BY task_pred_id`, withUpload(uploadID, projectIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var preds []model.TaskPred
	for rows.Next() {
		var p model.TaskPred
		if err := rows.Scan(&p.ID, &p.TaskID, &p.PredTaskID, &p.ProjectID, &p.PredType, &p.LagHrs); err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func withUpload(uploadID int64, ids []string) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, uploadID)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
