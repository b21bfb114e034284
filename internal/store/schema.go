package store

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS agents (
    id         TEXT PRIMARY KEY,
    model_type TEXT NOT NULL DEFAULT '32DOF-HUMANOID',
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

-- Health samples: the "slow" series, written through the cooldown/keepalive gate.
CREATE TABLE IF NOT EXISTS telemetry_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_id        TEXT NOT NULL REFERENCES agents(id),
    ts              TEXT NOT NULL,
    battery_voltage REAL NOT NULL,
    temperature     REAL NOT NULL,
    motor_load      INTEGER NOT NULL,
    cycle_count     INTEGER NOT NULL,
    status          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_telemetry_agent_ts ON telemetry_logs(agent_id, ts);

-- Path points: the "fast" series, written on every accepted ingest.
CREATE TABLE IF NOT EXISTS path_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_id    TEXT NOT NULL REFERENCES agents(id),
    ts          TEXT NOT NULL,
    x           REAL NOT NULL,
    y           REAL NOT NULL,
    orientation REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_path_agent_ts ON path_logs(agent_id, ts);

CREATE TABLE IF NOT EXISTS obstacles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    shape         TEXT NOT NULL,
    x             REAL NOT NULL,
    y             REAL NOT NULL,
    width         REAL NOT NULL DEFAULT 0,
    height        REAL NOT NULL DEFAULT 0,
    radius        REAL NOT NULL DEFAULT 0,
    buffer_margin REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS software_versions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_id        TEXT NOT NULL REFERENCES agents(id),
    component       TEXT NOT NULL,
    current_version TEXT NOT NULL,
    reported_at     TEXT NOT NULL,
    UNIQUE(agent_id, component)
);

CREATE TABLE IF NOT EXISTS version_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_id    TEXT NOT NULL REFERENCES agents(id),
    component   TEXT NOT NULL,
    old_version TEXT NOT NULL,
    new_version TEXT NOT NULL,
    changed_at  TEXT NOT NULL
);
`
