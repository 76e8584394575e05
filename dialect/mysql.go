package dialect

// MySQL extends ANSI with storage-engine/table-option vocabulary and
// MySQL's INSERT extensions. Backtick-quoted identifiers are lexed under
// every profile, not only this one.
var MySQL = Custom("mysql", ANSI, Snapshot{
	Keywords: []string{
		"auto_increment", "engine", "charset", "character", "collate",
		"unsigned", "signed", "zerofill", "storage", "memory", "disk",
		"tablespace", "data", "directory", "connection", "partition",
		"partitions", "subpartition", "subpartitions", "hash", "linear",
		"list", "less", "than", "maxvalue", "algorithm", "inplace", "copy",
		"lock", "none", "shared", "exclusive", "force", "use",
		"straight_join", "sql_calc_found_rows", "sql_small_result",
		"sql_big_result", "sql_buffer_result", "high_priority",
		"low_priority", "delayed", "quick", "concurrent", "local", "infile",
		"load", "outfile", "terminated", "enclosed", "escaped", "lines",
		"starting", "optionally", "fields", "replace", "ignore", "duplicate",
		"key", "change", "modify", "unsigned", "delimiter", "procedure",
		"function", "trigger", "event", "definer",
	},
	FunctionKeywords: []string{
		"group_concat", "ifnull", "if", "concat", "concat_ws", "date_format",
		"str_to_date", "unix_timestamp", "from_unixtime", "json_extract",
		"json_arrayagg", "json_objectagg",
	},
	ClauseKeywords: []string{
		"duplicate", "partition", "into",
	},
	StatementStarters: []string{
		"delimiter", "set", "lock", "unlock", "show", "use", "call",
		"load", "start", "flush", "reset", "purge", "kill", "xa",
	},
})
