package database

const schema = `
CREATE TABLE IF NOT EXISTS searches (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    source_url TEXT NOT NULL DEFAULT '',
    bytes INTEGER NOT NULL DEFAULT 0,
    numres INTEGER NOT NULL DEFAULT 0,
    dedupe INTEGER NOT NULL DEFAULT 0,
    outcome TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches (created_at);
CREATE INDEX IF NOT EXISTS idx_searches_outcome ON searches (outcome);
`
