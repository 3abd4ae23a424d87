package store

// SQL schema constants for the Metadata Store's tables, mirroring the
// source's three-table layout: nodes (one row per code version seen),
// history (append-only log of every metadata write), and cache_metadata
// (the durable context-key -> fingerprint index itself).

const schemaNodes = `
CREATE TABLE IF NOT EXISTS nodes (
    code_version TEXT PRIMARY KEY,
    node_name TEXT NOT NULL,
    descriptor BLOB NOT NULL DEFAULT x'',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(node_name);
`

const schemaHistory = `
CREATE TABLE IF NOT EXISTS history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    context_key TEXT NOT NULL,
    run_id TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_run ON history(run_id);
CREATE INDEX IF NOT EXISTS idx_history_context_key ON history(context_key);
`

const schemaCacheMetadata = `
CREATE TABLE IF NOT EXISTS cache_metadata (
    context_key TEXT NOT NULL,
    node_name TEXT NOT NULL,
    code_version TEXT NOT NULL,
    data_version TEXT NOT NULL,
    created_at TEXT NOT NULL,
    hits INTEGER NOT NULL DEFAULT 0,
    misses INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (context_key, code_version)
);
CREATE INDEX IF NOT EXISTS idx_cache_metadata_node ON cache_metadata(node_name);
`

const schemaMigrations = `
CREATE TABLE IF NOT EXISTS migrations (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// allSchemas is the ordered list of schema DDL statements that form the
// initial (version-1) database layout.
var allSchemas = []string{
	schemaNodes,
	schemaHistory,
	schemaCacheMetadata,
	schemaMigrations,
}
