package dialect

// Postgres extends ANSI with PostgreSQL's JSON/array vocabulary and its
// upsert and policy grammar. Quoting rules are not part of the profile: the
// lexer handles every quoting form the same way under all profiles.
var Postgres = Custom("postgres", ANSI, Snapshot{
	Keywords: []string{
		"jsonb", "json", "array", "ilike", "distinct", "conflict", "nothing",
		"do", "generated", "always", "stored", "identity", "concurrently",
		"unlogged", "inherits", "of", "oids", "sequence", "increment",
		"minvalue", "maxvalue", "start", "cache", "restart", "owned",
		"tablespace", "using", "btree", "gin", "gist", "spgist", "brin",
		"role", "public", "privileges", "option", "for", "to", "permissive",
		"restrictive", "instead", "force", "row", "each", "statement",
		"partition", "by", "range", "list", "hash", "extension", "language",
		"security", "invoker", "definer", "volatile", "stable", "immutable",
		"strict", "parallel", "safe", "leakproof", "cost", "rows",
		"costs", "buffers", "verbose", "format", "timing", "summary",
		"settings", "wal", "nowait", "skip", "locked", "share", "update",
		"vacuum", "full", "freeze", "analyze",
	},
	FunctionKeywords: []string{
		"jsonb_agg", "jsonb_build_object", "json_agg", "json_build_object",
		"array_agg", "string_agg", "to_jsonb", "to_json", "generate_series",
		"now", "current_timestamp", "date_trunc",
	},
	ClauseKeywords: []string{
		"conflict", "do", "nothing", "partition", "tablesample", "using",
	},
	StatementStarters: []string{
		"vacuum", "do", "listen", "notify", "copy", "begin", "commit",
		"rollback", "savepoint", "set", "reset", "show", "prepare",
		"execute", "deallocate", "cluster", "reindex", "comment", "call",
	},
})
