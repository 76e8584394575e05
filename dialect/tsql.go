package dialect

// TSQL extends ANSI with T-SQL's TOP/OUTPUT/MERGE-heavy vocabulary and table
// hints. Bracket-quoted identifiers are lexed under every profile, not only
// this one.
var TSQL = Custom("tsql", ANSI, Snapshot{
	Keywords: []string{
		"top", "output", "inserted", "deleted", "nolock", "readuncommitted",
		"readcommitted", "repeatableread", "rowlock", "paglock", "tablock",
		"tablockx", "updlock", "xlock", "holdlock", "pivot", "unpivot",
		"apply", "cross", "outer", "merge", "matched", "source", "target",
		"go", "backup", "restore", "database", "dbcc", "exec", "execute",
		"declare", "begin", "end", "try", "catch", "throw", "raiserror",
		"waitfor", "identity", "rowcount", "nocount", "transaction",
		"tran", "commit", "rollback", "save", "isolation", "level",
		"snapshot", "serializable", "repeatable", "uncommitted", "read",
		"with", "option", "recompile", "maxdop", "clustered",
		"nonclustered", "filestream", "sparse", "rowguidcol",
	},
	FunctionKeywords: []string{
		"getdate", "sysdatetime", "isnull", "stuff", "charindex",
		"string_agg", "json_query", "json_value", "iif",
	},
	ClauseKeywords: []string{
		"top", "output", "option", "merge", "matched",
	},
	StatementStarters: []string{
		"go", "backup", "restore", "dbcc", "exec", "execute", "declare",
		"set", "print", "use", "begin", "waitfor", "throw", "raiserror",
	},
})
