package dialect

// ansiKeywords is the recognition set shared by every dialect: the core of
// SQL-92/SQL-99 reserved words plus the expression and windowing vocabulary
// every profile in this package builds on via Custom.
var ansiKeywords = []string{
	"select", "from", "where", "and", "or", "not", "in", "like", "similar",
	"between", "is", "null", "true", "false", "unknown", "as", "all",
	"distinct", "unique", "on",

	"join", "inner", "left", "right", "full", "outer", "cross", "natural",
	"using", "lateral",

	"order", "by", "asc", "desc", "nulls", "first", "last", "group", "having",
	"window", "partition", "over", "filter",

	"limit", "offset", "fetch", "next", "row", "rows", "only", "with", "ties",

	"union", "intersect", "except",

	"insert", "into", "values", "default", "returning", "update", "set",
	"replace",

	"delete", "merge", "when", "matched", "then",

	"create", "alter", "drop", "table", "index", "view", "schema", "policy",
	"if", "exists", "temporary", "temp", "primary", "key", "foreign", "references",
	"constraint", "check", "cascade", "restrict", "no", "action",
	"deferrable", "initially", "deferred", "immediate", "column", "add",
	"rename", "to", "grant", "revoke", "truncate", "explain", "analyze",

	"recursive", "materialized", "search", "cycle", "depth", "breadth",
	"set_val",

	"int", "integer", "smallint", "bigint", "real", "double", "precision",
	"float", "decimal", "numeric", "char", "varchar", "text", "date", "time",
	"timestamp", "interval", "boolean", "varying", "zone",

	"case", "when", "then", "else", "end", "cast", "collate", "extract",
	"substring", "position", "overlay", "trim", "leading", "trailing",
	"both", "for", "from", "array",

	"count", "sum", "avg", "min", "max", "coalesce", "nullif", "any", "some",

	"exists", "current", "unbounded", "preceding", "following", "range",
	"groups", "current_row",

	"tablesample", "system", "bernoulli",

	"escape",
}

var ansiFunctionKeywords = []string{
	"count", "sum", "avg", "min", "max", "coalesce", "nullif", "greatest",
	"least", "extract", "substring", "position", "overlay", "trim", "cast",
	"row_number", "rank", "dense_rank", "lead", "lag", "first_value",
	"last_value", "nth_value", "ntile",
}

// ansiClauseKeywords doubles as the parser's alias-boundary vocabulary:
// besides marking where a top-level clause begins, a word in this set is
// never consumed as an implicit column/table alias (see parser/select.go's
// alias-parsing callers of Profile.IsClauseKeyword).
var ansiClauseKeywords = []string{
	"select", "from", "where", "group", "having", "window", "order", "limit",
	"offset", "fetch", "for", "with", "values", "into", "set", "using", "on",
	"union", "intersect", "except", "returning", "when", "then", "else",
	"end", "merge", "join", "inner", "left", "right", "full", "cross",
	"natural", "and", "or", "as",
}

var ansiStatementStarters = []string{
	"select", "insert", "replace", "update", "delete", "with", "create",
	"alter", "drop", "merge", "grant", "revoke", "truncate", "values",
	"explain", "analyze",
}

// ANSI is the baseline profile: plain SQL-92/99 without vendor extensions.
var ANSI = build("ansi", ansiKeywords, ansiFunctionKeywords, ansiClauseKeywords, ansiStatementStarters)
