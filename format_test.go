package machparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/riverfmt/riverfmt/ast"
	"github.com/riverfmt/riverfmt/lexer"
	"github.com/riverfmt/riverfmt/parser"
)

func boolPtr(b bool) *bool { return &b }

func TestFormatBasicSelect(t *testing.T) {
	got, err := Format("select file_hash from file_system where file_name = '.vimrc';", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT file_hash\n" +
		"  FROM file_system\n" +
		" WHERE file_name = '.vimrc';\n"
	if got != want {
		t.Errorf("wrong layout:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatJoinRiver(t *testing.T) {
	in := "select r.last_name from riders as r inner join bikes as b " +
		"on r.bike_vin_num = b.vin_num and b.engine_tally > 2;"
	got, err := Format(in, FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT r.last_name\n" +
		"  FROM riders AS r\n" +
		"       INNER JOIN bikes AS b\n" +
		"       ON r.bike_vin_num = b.vin_num\n" +
		"          AND b.engine_tally > 2;\n"
	if got != want {
		t.Errorf("wrong layout:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatInSubqueryWrap(t *testing.T) {
	in := "select id from users where id in (select id from a union select id from b);"
	got, err := Format(in, FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT id\n" +
		"  FROM users\n" +
		" WHERE id IN\n" +
		"          (SELECT id\n" +
		"             FROM a\n" +
		"            UNION\n" +
		"           SELECT id\n" +
		"             FROM b);\n"
	if got != want {
		t.Errorf("wrong layout:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatCTE(t *testing.T) {
	in := "WITH regional AS (SELECT region, SUM(amount) AS total FROM orders GROUP BY region) " +
		"SELECT region FROM regional WHERE total > 1000000;"
	got, err := Format(in, FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "  WITH regional AS (\n" +
		"       SELECT region, SUM(amount) AS total\n" +
		"         FROM orders\n" +
		"        GROUP BY region\n" +
		"       )\n" +
		"SELECT region\n" +
		"  FROM regional\n" +
		" WHERE total > 1000000;\n"
	if got != want {
		t.Errorf("wrong layout:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatRecovery(t *testing.T) {
	var recoveries []parser.RecoverContext
	var rawTexts []string
	got, err := Format("SELECT 1; SELECT (; SELECT 2;", FormatOptions{
		OnRecover: func(err error, raw *ast.RawStmt, ctx parser.RecoverContext) {
			recoveries = append(recoveries, ctx)
			if raw != nil {
				rawTexts = append(rawTexts, raw.Text)
			}
		},
	})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT 1;\n\nSELECT (;\n\nSELECT 2;\n"
	if got != want {
		t.Errorf("wrong output:\ngot:\n%q\nwant:\n%q", got, want)
	}
	if len(recoveries) != 1 {
		t.Fatalf("OnRecover fired %d times, want 1", len(recoveries))
	}
	if recoveries[0].StatementIndex != 2 || recoveries[0].TotalStatements != 3 {
		t.Errorf("wrong recover context: %+v", recoveries[0])
	}
	if len(rawTexts) != 1 || rawTexts[0] != "SELECT (" {
		t.Errorf("wrong raw capture: %q", rawTexts)
	}
}

func TestFormatDialectKeyword(t *testing.T) {
	in := "CREATE TABLE t (id INT auto_increment);"

	got, err := Format(in, FormatOptions{Dialect: "mysql"})
	if err != nil {
		t.Fatalf("mysql Format failed: %v", err)
	}
	if !strings.Contains(got, "AUTO_INCREMENT") {
		t.Errorf("mysql output should uppercase AUTO_INCREMENT:\n%s", got)
	}

	got, err = Format(in, FormatOptions{Dialect: "postgres"})
	if err != nil {
		t.Fatalf("postgres Format failed: %v", err)
	}
	if !strings.Contains(got, "auto_increment") {
		t.Errorf("postgres output should keep auto_increment verbatim:\n%s", got)
	}
	if strings.Contains(got, "AUTO_INCREMENT") {
		t.Errorf("postgres must not treat auto_increment as a keyword:\n%s", got)
	}
}

func TestFormatBlankInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\n"} {
		got, err := Format(in, FormatOptions{})
		if err != nil {
			t.Fatalf("Format(%q) failed: %v", in, err)
		}
		if got != "" {
			t.Errorf("Format(%q) = %q, want empty", in, got)
		}
	}
}

func TestFormatInputTooLarge(t *testing.T) {
	_, err := Format("SELECT 1;", FormatOptions{MaxInputSize: 4})
	var tooLarge *InputTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("want InputTooLarge, got %v", err)
	}
	if tooLarge.Limit != 4 {
		t.Errorf("wrong limit in error: %+v", tooLarge)
	}
}

func TestFormatRecoverDisabled(t *testing.T) {
	_, err := Format("SELECT (;", FormatOptions{Recover: boolPtr(false)})
	var pe parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParseError with recovery off, got %v", err)
	}

	out, err := Format("SELECT (;", FormatOptions{})
	if err != nil {
		t.Fatalf("recovery on should not error: %v", err)
	}
	if !strings.Contains(out, "SELECT (") {
		t.Errorf("broken statement should pass through verbatim:\n%s", out)
	}
}

func TestFormatTokenBudget(t *testing.T) {
	_, err := Format("SELECT a, b, c FROM t WHERE x = 1;", FormatOptions{MaxTokenCount: 3})
	var te *lexer.TokenizeError
	if !errors.As(err, &te) {
		t.Fatalf("want TokenizeError for token budget, got %v", err)
	}
}

func TestFormatDepthGuard(t *testing.T) {
	in := "SELECT " + strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300) + ";"
	_, err := Format(in, FormatOptions{})
	var de *parser.MaxDepthError
	if !errors.As(err, &de) {
		t.Fatalf("want MaxDepthError, got %v", err)
	}

	// A raised ceiling lets the same input through.
	if _, err := Format(in, FormatOptions{MaxDepth: 1000}); err != nil {
		t.Fatalf("MaxDepth 1000 should parse 300 nested parens: %v", err)
	}
}

func TestFormatLeadingComment(t *testing.T) {
	got, err := Format("-- keep me\nselect 1;", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "-- keep me\nSELECT 1;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatSelectInto(t *testing.T) {
	got, err := Format("select id into backup from t;", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT id\n" +
		"  INTO backup\n" +
		"  FROM t;\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatPositionExpr(t *testing.T) {
	got, err := Format("select position('a' in name) from t;", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT POSITION('a' IN name)\n" +
		"  FROM t;\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatColumnTrailingComment(t *testing.T) {
	got, err := Format("select a, -- note\nb from t;", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT a, -- note\n" +
		"       b\n" +
		"  FROM t;\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatCommentOnly(t *testing.T) {
	got, err := Format("-- standalone note", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if got != "-- standalone note\n" {
		t.Errorf("got %q", got)
	}
}

func TestFormatUnsupportedPassthrough(t *testing.T) {
	var passthroughs, recoveries int
	got, err := Format("VACUUM FULL;", FormatOptions{
		OnPassthrough: func(raw *ast.RawStmt, ctx parser.RecoverContext) {
			passthroughs++
			if raw.Reason != ast.RawUnsupported {
				t.Errorf("wrong raw reason: %v", raw.Reason)
			}
		},
		OnRecover: func(err error, raw *ast.RawStmt, ctx parser.RecoverContext) {
			recoveries++
		},
	})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if got != "VACUUM FULL;\n" {
		t.Errorf("got %q", got)
	}
	if passthroughs != 1 || recoveries != 0 {
		t.Errorf("passthroughs=%d recoveries=%d, want 1/0", passthroughs, recoveries)
	}
}

func TestFormatStatementOrdering(t *testing.T) {
	got, err := Format("select 2; select 1; select 3;", FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "SELECT 2;\n\nSELECT 1;\n\nSELECT 3;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

var formatCorpus = []string{
	"select file_hash from file_system where file_name = '.vimrc';",
	"select r.last_name from riders as r inner join bikes as b on r.bike_vin_num = b.vin_num and b.engine_tally > 2;",
	"select id from users where id in (select id from a union select id from b);",
	"WITH regional AS (SELECT region, SUM(amount) AS total FROM orders GROUP BY region) SELECT region FROM regional WHERE total > 1000000;",
	"select distinct a, b from t order by a desc limit 10 offset 5;",
	"insert into t (a, b) values (1, 'x'), (2, 'y');",
	"update t set a = 1, b = b + 1 where id = 3 returning a;",
	"delete from t where created_at < now();",
	"create table t (id bigint primary key, name varchar(255) not null, qty numeric(10,2) default 0);",
	"select * from (select 1 as n) as sub;",
	"select count(*) from t group by x having count(*) > 1;",
	"select case when a = 1 then 'one' else 'many' end from t;",
	"select row_number() over (partition by dept order by salary desc) from emp;",
	"select a from t union all select a from u order by a;",
	"select a::int, b -> 'k', c ->> 'k' from t;",
	"select 1; -- trailing\nselect 2;",
	"select a, -- note\nb from t;",
	"grant select, insert on t to app_role;",
	"select position('a' in name) from t;",
	"select id into backup from t;",
	"truncate table t;",
	"explain select 1;",
}

func TestFormatIdempotence(t *testing.T) {
	for _, in := range formatCorpus {
		first, err := Format(in, FormatOptions{})
		if err != nil {
			t.Errorf("Format(%q) failed: %v", in, err)
			continue
		}
		second, err := Format(first, FormatOptions{})
		if err != nil {
			t.Errorf("reformat of %q failed: %v\nfirst:\n%s", in, err, first)
			continue
		}
		if first != second {
			t.Errorf("not idempotent for %q:\nfirst:\n%s\nsecond:\n%s", in, first, second)
		}
	}
}

func TestFormatNewlineDiscipline(t *testing.T) {
	for _, in := range formatCorpus {
		out, err := Format(in, FormatOptions{})
		if err != nil {
			t.Errorf("Format(%q) failed: %v", in, err)
			continue
		}
		if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
			t.Errorf("output of %q must end in exactly one newline: %q", in, out)
		}
		for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
			if strings.TrimRight(line, " \t") != line {
				t.Errorf("trailing whitespace in line %q of %q", line, in)
			}
		}
	}
}

func TestFormatCaseNormalisation(t *testing.T) {
	got, err := Format(`SELECT "MixedCase", plain FROM T;`, FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(got, `"MixedCase"`) {
		t.Errorf("quoted identifier must keep its spelling:\n%s", got)
	}
	if !strings.Contains(got, "plain") || strings.Contains(got, "PLAIN") {
		t.Errorf("unquoted identifier must be lowercased:\n%s", got)
	}
	if !strings.Contains(got, "FROM t") {
		t.Errorf("unquoted table name must be lowercased:\n%s", got)
	}
}

func TestFormatLineLengthClamp(t *testing.T) {
	// Widths under the minimum clamp to 40 rather than failing.
	out, err := Format("select aaaaaaaaaa, bbbbbbbbbb, cccccccccc, dddddddddd from t;",
		FormatOptions{MaxLineLength: 10})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, "SELECT aaaaaaaaaa,\n") {
		t.Errorf("narrow width should break the column list:\n%s", out)
	}
}
