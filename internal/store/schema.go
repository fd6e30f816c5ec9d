package store

// Schema contains the complete DDL for the audit-history tables.
const Schema = `
-- Runs: one row per completed analysis cycle
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    page        TEXT NOT NULL DEFAULT '',
    started_at  INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    total       INTEGER NOT NULL DEFAULT 0,
    errors      INTEGER NOT NULL DEFAULT 0,
    warnings    INTEGER NOT NULL DEFAULT 0,
    info        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- Violations: the prioritised results of a run
CREATE TABLE IF NOT EXISTS violations (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   TEXT NOT NULL,
    position INTEGER NOT NULL,
    rule_id  TEXT NOT NULL,
    severity TEXT NOT NULL,
    category TEXT NOT NULL,
    wcag     TEXT NOT NULL DEFAULT '',
    selector TEXT NOT NULL,
    impact   REAL NOT NULL DEFAULT 0,
    message  TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_violations_run ON violations(run_id, position);
CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule_id);
`
