package store

// Schema is the DDL this package's queries assume. It is not applied
// automatically; operators run it via the path returned by
// config.MigrationsPath before pointing the pool at a database.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS memories (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	namespace text NOT NULL,
	sector text NOT NULL,
	content text NOT NULL,
	metadata jsonb NOT NULL DEFAULT '{}',
	strength double precision NOT NULL DEFAULT 1.0,
	salience double precision NOT NULL DEFAULT 0.5,
	access_count bigint NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	last_accessed_at timestamptz,
	deleted_at timestamptz
);
CREATE INDEX IF NOT EXISTS idx_memories_namespace_sector ON memories (namespace, sector);

CREATE TABLE IF NOT EXISTS memory_embeddings (
	namespace text NOT NULL,
	memory_id uuid NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	sector text NOT NULL,
	vector vector(1536) NOT NULL,
	PRIMARY KEY (memory_id, sector)
);
CREATE INDEX IF NOT EXISTS idx_memory_embeddings_namespace_sector ON memory_embeddings (namespace, sector);

CREATE TABLE IF NOT EXISTS memory_links (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	namespace text NOT NULL,
	source_id uuid NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	target_id uuid NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	link_type text NOT NULL,
	weight double precision NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	UNIQUE (source_id, target_id, link_type)
);
CREATE INDEX IF NOT EXISTS idx_memory_links_namespace ON memory_links (namespace);

CREATE TABLE IF NOT EXISTS memory_reinforcement_history (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	memory_id uuid NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	type text NOT NULL,
	boost double precision NOT NULL,
	timestamp timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_reinforcement_memory_ts ON memory_reinforcement_history (memory_id, timestamp DESC);
`
