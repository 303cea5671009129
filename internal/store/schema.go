package store

// Schedule tables mirror the XER tables they are loaded from; every row is
// keyed by the upload it came from (xer_file_id).
const schemaSQL = `
CREATE TABLE IF NOT EXISTS upload (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    ref                  TEXT NOT NULL UNIQUE,
    file_name            TEXT NOT NULL,
    file_path            TEXT NOT NULL UNIQUE,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    imported_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS project (
    xer_file_id          INTEGER NOT NULL REFERENCES upload(id) ON DELETE CASCADE,
    proj_id              TEXT NOT NULL,
    proj_short_name      TEXT,
    PRIMARY KEY (xer_file_id, proj_id)
);

CREATE TABLE IF NOT EXISTS task (
    xer_file_id          INTEGER NOT NULL REFERENCES upload(id) ON DELETE CASCADE,
    task_id              TEXT NOT NULL,
    proj_id              TEXT NOT NULL,
    wbs_id               TEXT,
    task_name            TEXT,
    early_start_date     TEXT,
    early_end_date       TEXT,
    target_start_date    TEXT,
    target_end_date      TEXT,
    total_float_hr_cnt   REAL,
    remain_drtn_hr_cnt   REAL,
    driving_path_flag    TEXT NOT NULL DEFAULT 'N',
    PRIMARY KEY (xer_file_id, task_id)
);

CREATE TABLE IF NOT EXISTS taskpred (
    xer_file_id          INTEGER NOT NULL REFERENCES upload(id) ON DELETE CASCADE,
    task_pred_id         TEXT NOT NULL,
    task_id              TEXT NOT NULL,
    pred_task_id         TEXT NOT NULL,
    proj_id              TEXT NOT NULL,
    pred_type            TEXT,
    lag_hr_cnt           REAL,
    PRIMARY KEY (xer_file_id, task_pred_id)
);

CREATE TABLE IF NOT EXISTS taskrsrc (
    xer_file_id          INTEGER NOT NULL REFERENCES upload(id) ON DELETE CASCADE,
    taskrsrc_id          TEXT NOT NULL,
    task_id              TEXT NOT NULL,
    proj_id              TEXT NOT NULL,
    rsrc_id              TEXT,
    act_reg_cost         REAL,
    act_ot_cost          REAL,
    target_cost          REAL,
    remain_cost          REAL,
    PRIMARY KEY (xer_file_id, taskrsrc_id)
);

CREATE TABLE IF NOT EXISTS rsrc (
    xer_file_id          INTEGER NOT NULL REFERENCES upload(id) ON DELETE CASCADE,
    rsrc_id              TEXT NOT NULL,
    rsrc_name            TEXT,
    rsrc_type            TEXT,
    PRIMARY KEY (xer_file_id, rsrc_id)
);

CREATE TABLE IF NOT EXISTS projcost (
    xer_file_id          INTEGER NOT NULL REFERENCES upload(id) ON DELETE CASCADE,
    proj_cost_id         TEXT,
    task_id              TEXT NOT NULL,
    proj_id              TEXT NOT NULL,
    act_cost             REAL,
    target_cost          REAL,
    remain_cost          REAL
);

CREATE INDEX IF NOT EXISTS idx_task_proj ON task(xer_file_id, proj_id);
CREATE INDEX IF NOT EXISTS idx_taskpred_proj ON taskpred(xer_file_id, proj_id);
CREATE INDEX IF NOT EXISTS idx_taskrsrc_task ON taskrsrc(xer_file_id, task_id);
CREATE INDEX IF NOT EXISTS idx_projcost_task ON projcost(xer_file_id, task_id);
`
