package store

const coreSchema = `
CREATE TABLE IF NOT EXISTS calls (
    call_key     VARCHAR PRIMARY KEY,
    call_type    VARCHAR NOT NULL,
    call_date    TIMESTAMP NOT NULL,
    call_number  VARCHAR NOT NULL,
    has_config   BOOLEAN NOT NULL DEFAULT false,
    fetched_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_calls_date ON calls(call_date);

CREATE TABLE IF NOT EXISTS artifacts (
    call_key  VARCHAR NOT NULL,
    name      VARCHAR NOT NULL,
    content   VARCHAR NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_call ON artifacts(call_key);

CREATE TABLE IF NOT EXISTS eips (
    id   INTEGER PRIMARY KEY,
    doc  JSON NOT NULL
);

CREATE TABLE IF NOT EXISTS query_log (
    id            VARCHAR PRIMARY KEY,
    session_id    VARCHAR NOT NULL,
    call_key      VARCHAR,
    query         VARCHAR NOT NULL,
    filter        VARCHAR,
    result_count  INTEGER NOT NULL,
    logged_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_log_ts ON query_log(logged_at);
`
