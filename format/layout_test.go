package format

import (
	"strings"
	"testing"

	"github.com/riverfmt/riverfmt/ast"
	"github.com/riverfmt/riverfmt/parser"
)

func layoutOne(t *testing.T, sql string) string {
	t.Helper()
	p := parser.NewWithOptions(sql, parser.Options{Recover: true})
	stmts, err := p.ParseAll()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	if len(stmts) == 0 {
		t.Fatalf("no statements in %q", sql)
	}
	l := NewLayouter(LayoutOptions{})
	return l.Statements(stmts)
}

func TestRiverAlignment(t *testing.T) {
	got := layoutOne(t, "select a from t where b = 1 order by a limit 10")
	want := "SELECT a\n" +
		"  FROM t\n" +
		" WHERE b = 1\n" +
		" ORDER BY a\n" +
		" LIMIT 10;"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWhereChainSplitsAtRiver(t *testing.T) {
	got := layoutOne(t, "select a from t where b = 1 and c = 2 or d = 3")
	for _, line := range []string{"   AND c = 2", "    OR d = 3"} {
		if !strings.Contains(got, line) {
			t.Errorf("missing %q in:\n%s", line, got)
		}
	}
}

func TestDerivedTableLayout(t *testing.T) {
	got := layoutOne(t, "select * from (select a from t where b = 1 and c = 2) as d")
	want := "SELECT *\n" +
		"  FROM (SELECT a\n" +
		"          FROM t\n" +
		"         WHERE b = 1\n" +
		"           AND c = 2) AS d;"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestCreateTableAlignment(t *testing.T) {
	got := layoutOne(t, `create table orders (
		id bigint primary key,
		customer_id bigint not null,
		note text,
		foreign key (customer_id) references customers (id) on delete cascade on update restrict
	)`)
	for _, line := range []string{
		"  id          BIGINT PRIMARY KEY,",
		"  customer_id BIGINT NOT NULL,",
		"  note        TEXT,",
		"  FOREIGN KEY (customer_id)",
		"    REFERENCES customers (id)",
		"    ON DELETE CASCADE",
		"    ON UPDATE RESTRICT",
	} {
		if !strings.Contains(got, line+"\n") && !strings.HasSuffix(got, line) {
			t.Errorf("missing line %q in:\n%s", line, got)
		}
	}
}

func TestColumnListTrailingComment(t *testing.T) {
	sel := &ast.SelectStmt{
		Columns: []ast.SelectExpr{
			&ast.AliasedExpr{Expr: &ast.ColName{Parts: []string{"a"}}, TrailingComment: "-- primary"},
			&ast.AliasedExpr{Expr: &ast.ColName{Parts: []string{"b"}}},
		},
		From: &ast.TableName{Parts: []string{"t"}},
	}
	l := NewLayouter(LayoutOptions{})
	got := l.Statement(sel)
	want := "SELECT a, -- primary\n" +
		"       b\n" +
		"  FROM t;"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestAliasBreakRule(t *testing.T) {
	// Three columns, two aliases, joined width past the threshold: one per
	// line even though the inline form would fit an 80-column budget.
	got := layoutOne(t, "select first_name as fn, last_name as ln, middle_initial as mi from people")
	want := "SELECT first_name AS fn,\n" +
		"       last_name AS ln,\n" +
		"       middle_initial AS mi\n" +
		"  FROM people;"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSetOpOperatorOnRiver(t *testing.T) {
	got := layoutOne(t, "select a from t union all select a from u")
	want := "SELECT a\n" +
		"  FROM t\n" +
		"UNION ALL\n" +
		"SELECT a\n" +
		"  FROM u;"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestJoinBlankLineBetweenConditionedJoins(t *testing.T) {
	got := layoutOne(t, "select * from a join b on a.id = b.id join c on b.id = c.id")
	if !strings.Contains(got, "ON a.id = b.id\n\n") {
		t.Errorf("expected blank line between conditioned joins:\n%s", got)
	}
}

func TestDepthExceededComment(t *testing.T) {
	inner := &ast.SelectStmt{Columns: []ast.SelectExpr{
		&ast.AliasedExpr{Expr: &ast.Literal{Type: ast.LiteralInt, Value: "1"}},
	}}
	l := NewLayouter(LayoutOptions{})
	out := l.renderStatementBody(inner, ctx{river: 6, depth: maxFormatterDepth + 1})
	if out != "/* depth exceeded */" {
		t.Errorf("got %q", out)
	}
}

func TestDisplayWidthEastAsian(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"abc", 3},
		{"주문", 4},
		{"注文数", 6},
		{"id列", 4},
	}
	for _, tt := range tests {
		if got := displayWidth(tt.in); got != tt.want {
			t.Errorf("displayWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPolicyClamp(t *testing.T) {
	p := newPolicy(10)
	if p.maxLine != 40 {
		t.Errorf("maxLine = %d, want clamp to 40", p.maxLine)
	}
	p = newPolicy(100)
	if p.maxLine != 100 || p.aliasBreakMin != 62 {
		t.Errorf("unexpected policy: %+v", p)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("id", 4); got != "id  " {
		t.Errorf("got %q", got)
	}
	if got := padRight("longer", 3); got != "longer" {
		t.Errorf("got %q", got)
	}
}
