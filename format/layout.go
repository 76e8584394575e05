package format

import (
	"strings"

	"golang.org/x/text/width"

	"github.com/riverfmt/riverfmt/ast"
	"github.com/riverfmt/riverfmt/dialect"
)

// Layout turns a parsed statement list into river-aligned, wrapped,
// keyword-cased text. It is the component the driver calls
// after parsing; Formatter above still renders any leaf content that fits
// on one line, so the two halves compose rather than duplicate logic.

// LayoutOptions controls the multi-line layout engine.
type LayoutOptions struct {
	Profile       *dialect.Profile
	MaxLineLength int // default 80, clamped to >= 40
}

// policy holds the width thresholds derived from MaxLineLength.
type policy struct {
	maxLine       int
	aliasBreakMin int // top-level alias-break minimum: floor(max*0.625)
	nestedTailMin int // nested concat-tail break minimum
	exprWrapMax   int // expression wrap threshold
}

func newPolicy(maxLine int) policy {
	if maxLine <= 0 {
		maxLine = 80
	}
	if maxLine < 40 {
		maxLine = 40
	}
	return policy{
		maxLine:       maxLine,
		aliasBreakMin: maxLine * 5 / 8,
		nestedTailMin: maxLine * 5 / 8,
		exprWrapMax:   maxLine,
	}
}

// ctx threads indentation, river width, and subquery column-offset state
// through the recursive statement/expression walk. It is passed by value;
// each nested call constructs its own copy rather than mutating a shared one.
type ctx struct {
	indent      int
	river       int
	isSubquery  bool
	outerOffset int
	depth       int
}

const maxFormatterDepth = 200

func (c ctx) contentCol() int { return c.indent + c.river + 1 }

func (c ctx) deeper() ctx {
	c2 := c
	c2.depth++
	return c2
}

// printer accumulates output line by line so clause keywords can be
// right-justified against a column computed before any content is written.
type printer struct {
	lines []string
	cur   strings.Builder
}

func (p *printer) col() int { return displayWidth(p.cur.String()) }

func (p *printer) writeStr(s string) { p.cur.WriteString(s) }

func (p *printer) newline() {
	p.lines = append(p.lines, strings.TrimRight(p.cur.String(), " \t"))
	p.cur.Reset()
}

func (p *printer) padTo(col int) {
	for p.col() < col {
		p.cur.WriteByte(' ')
	}
}

func (p *printer) result() string {
	if p.cur.Len() > 0 {
		p.newline()
	}
	return strings.Join(p.lines, "\n")
}

// lastLineLen reports the display width of the last completed line, used to
// compute outerOffset when a subquery is about to be rendered inline.
func (p *printer) lastLineLen() int {
	if p.cur.Len() > 0 {
		return p.col()
	}
	if len(p.lines) == 0 {
		return 0
	}
	return displayWidth(p.lines[len(p.lines)-1])
}

// Layouter renders AST nodes into river-aligned text.
type Layouter struct {
	opts    LayoutOptions
	policy  policy
	profile *dialect.Profile
	inline  *Formatter // compact single-line renderer for leaves
}

// NewLayouter creates a layout engine for the given options.
func NewLayouter(opts LayoutOptions) *Layouter {
	if opts.Profile == nil {
		opts.Profile = dialect.Default
	}
	return &Layouter{
		opts:    opts,
		policy:  newPolicy(opts.MaxLineLength),
		profile: opts.Profile,
		inline:  New(Options{Uppercase: true, Profile: opts.Profile}),
	}
}

// Statements renders a full parsed program: every statement separated by a
// blank line, each terminated with ';'.
func (l *Layouter) Statements(stmts []ast.Statement) string {
	var out []string
	for _, s := range stmts {
		out = append(out, l.Statement(s))
	}
	return strings.Join(out, "\n\n")
}

// Statement renders one top-level statement, including its leading/trailing
// comments and terminating semicolon.
func (l *Layouter) Statement(s ast.Statement) string {
	p := &printer{}
	l.writeLeadingComments(p, commentsOf(s))
	body := l.renderStatementBody(s, ctx{river: l.riverWidth(s)})
	p.writeStr(body)
	out := p.result()
	if raw, ok := s.(*ast.RawStmt); ok {
		trimmed := strings.TrimRight(raw.Text, " \t\n;")
		if trimmed == "" {
			return strings.TrimRight(out, "\n")
		}
		return out + ";"
	}
	return out + ";"
}

func commentsOf(s ast.Statement) ast.Comments {
	if cr := ast.CommentsRef(s); cr != nil {
		return *cr
	}
	return ast.Comments{}
}

func (l *Layouter) writeLeadingComments(p *printer, c ast.Comments) {
	for _, line := range c.Leading {
		p.writeStr(line)
		p.newline()
	}
}

// riverWidth computes the widest single-word top-level clause keyword this
// statement will emit. Multi-word clauses like GROUP BY are
// represented by their leading word (GROUP, ORDER) for alignment purposes;
// the rest renders as ordinary content after it.
func (l *Layouter) riverWidth(s ast.Statement) int {
	longest := 0
	consider := func(kw string) {
		if n := len(kw); n > longest {
			longest = n
		}
	}
	switch n := s.(type) {
	case *ast.SelectStmt:
		if n.With != nil {
			consider("WITH")
		}
		consider("SELECT")
		if n.Into != nil {
			consider("INTO")
		}
		if n.From != nil {
			consider("FROM")
		}
		if hasJoins(n.From) {
			consider("JOIN")
			consider("ON")
		}
		if n.Where != nil {
			consider("WHERE")
		}
		if len(n.GroupBy) > 0 {
			consider("GROUP")
		}
		if n.Having != nil {
			consider("HAVING")
		}
		if len(n.WindowDefs) > 0 {
			consider("WINDOW")
		}
		if len(n.OrderBy) > 0 {
			consider("ORDER")
		}
		if n.Limit != nil {
			if n.Limit.Count != nil {
				consider("LIMIT")
			}
			if n.Limit.Offset != nil {
				consider("OFFSET")
			}
		}
		if n.Lock != "" {
			consider("FOR")
		}
	case *ast.InsertStmt:
		if n.With != nil {
			consider("WITH")
		}
		consider("INSERT")
		consider("INTO")
		if n.Select != nil {
			consider("SELECT")
		} else {
			consider("VALUES")
		}
		if n.OnConflict != nil {
			consider("ON")
		}
		if len(n.Returning) > 0 {
			consider("RETURNING")
		}
	case *ast.UpdateStmt:
		if n.With != nil {
			consider("WITH")
		}
		consider("UPDATE")
		consider("SET")
		if n.From != nil {
			consider("FROM")
		}
		if n.Where != nil {
			consider("WHERE")
		}
		if len(n.Returning) > 0 {
			consider("RETURNING")
		}
	case *ast.DeleteStmt:
		if n.With != nil {
			consider("WITH")
		}
		consider("DELETE")
		if n.Using != nil {
			consider("USING")
		}
		if n.Where != nil {
			consider("WHERE")
		}
		if len(n.Returning) > 0 {
			consider("RETURNING")
		}
	case *ast.SetOp:
		return l.riverWidth(firstMember(n))
	case *ast.CreateViewStmt:
		return l.riverWidth(n.Query)
	case *ast.ExplainStmt:
		return l.riverWidth(n.Stmt)
	default:
		consider("SELECT")
	}
	if longest == 0 {
		longest = len("SELECT")
	}
	return longest
}

func hasJoins(t ast.TableExpr) bool {
	switch n := t.(type) {
	case *ast.JoinExpr:
		return true
	case *ast.AliasedTableExpr:
		return hasJoins(n.Expr)
	case *ast.ParenTableExpr:
		return hasJoins(n.Expr)
	default:
		_ = n
		return false
	}
}

func firstMember(s *ast.SetOp) ast.Statement {
	if left, ok := s.Left.(*ast.SetOp); ok {
		return firstMember(left)
	}
	return s.Left
}

// renderStatementBody dispatches to the statement-specific layout. Nodes
// without a dedicated multi-line layout fall back to the compact inline
// renderer (still correctly keyword-cased and identifier-folded); these are
// the lower-weight DDL/admin statements that don't need river alignment.
func (l *Layouter) renderStatementBody(s ast.Statement, c ctx) string {
	if c.depth > maxFormatterDepth {
		return "/* depth exceeded */"
	}
	switch n := s.(type) {
	case *ast.SelectStmt:
		return l.renderSelect(n, c)
	case *ast.SetOp:
		return l.renderSetOp(n, c)
	case *ast.InsertStmt:
		return l.renderInsert(n, c)
	case *ast.UpdateStmt:
		return l.renderUpdate(n, c)
	case *ast.DeleteStmt:
		return l.renderDelete(n, c)
	case *ast.CreateTableStmt:
		return l.renderCreateTable(n, c)
	case *ast.CreateViewStmt:
		return l.renderCreateView(n, c)
	case *ast.ExplainStmt:
		return l.renderExplain(n, c)
	case *ast.RawStmt:
		return strings.TrimRight(n.Text, " \t\n;")
	default:
		return l.inlineNode(s)
	}
}

func (l *Layouter) inlineNode(n ast.Node) string {
	f := New(Options{Uppercase: true, Profile: l.profile})
	f.Format(n)
	return f.String()
}

// exprFits reports whether rendering e inline keeps the current column plus
// the rendered width under the policy's max line length.
func (l *Layouter) exprFits(startCol int, e ast.Expr) (string, bool) {
	s := l.inlineNode(e)
	return s, startCol+displayWidth(s) <= l.policy.maxLine
}

// ---- SELECT ----

func (l *Layouter) renderSelect(s *ast.SelectStmt, c ctx) string {
	if c.depth > maxFormatterDepth {
		return "/* depth exceeded */"
	}
	p := &printer{}

	if s.With != nil {
		l.writeWith(p, s.With, c)
	}

	l.writeClauseKeyword(p, c, "SELECT")
	if s.Distinct {
		p.writeStr("DISTINCT ")
		if len(s.DistinctOn) > 0 {
			p.writeStr("ON (")
			p.writeStr(l.joinExprs(s.DistinctOn))
			p.writeStr(") ")
		}
	}
	l.writeColumnList(p, c, s.Columns)

	if s.Into != nil {
		l.writeClauseKeyword(p, c, "INTO")
		p.writeStr(l.inlineSelectInto(s.Into))
	}

	if s.From != nil {
		l.writeClauseKeyword(p, c, "FROM")
		l.writeFromClause(p, c, s.From)
	}

	if s.Where != nil {
		l.writeClauseKeyword(p, c, "WHERE")
		l.writeBoolExpr(p, c, c.contentCol(), false, s.Where)
	}

	if len(s.GroupBy) > 0 {
		l.writeClauseKeyword(p, c, "GROUP")
		p.writeStr("BY ")
		p.writeStr(l.joinExprs(s.GroupBy))
	}

	if s.Having != nil {
		l.writeClauseKeyword(p, c, "HAVING")
		l.writeBoolExpr(p, c, c.contentCol(), false, s.Having)
	}

	if len(s.WindowDefs) > 0 {
		l.writeClauseKeyword(p, c, "WINDOW")
		for i, wd := range s.WindowDefs {
			if i > 0 {
				p.writeStr(", ")
			}
			p.writeStr(strings.ToLower(wd.Name))
			p.writeStr(" AS ")
			p.writeStr(l.inlineWindowSpecBody(wd.Spec))
		}
	}

	if len(s.OrderBy) > 0 {
		l.writeClauseKeyword(p, c, "ORDER")
		p.writeStr("BY ")
		p.writeStr(l.joinOrderBy(s.OrderBy))
	}

	if s.Limit != nil && s.Limit.Count != nil {
		l.writeClauseKeyword(p, c, "LIMIT")
		p.writeStr(l.inlineNode(s.Limit.Count))
	}
	if s.Limit != nil && s.Limit.Offset != nil {
		l.writeClauseKeyword(p, c, "OFFSET")
		p.writeStr(l.inlineNode(s.Limit.Offset))
	}

	if s.Lock != "" {
		l.writeClauseKeyword(p, c, "FOR")
		p.writeStr(strings.ToUpper(s.Lock))
	}

	return p.result()
}

// writeWith lays out the CTE list: the WITH keyword right-aligned like any
// clause, each CTE body on its own lines inside the parens, and the closing
// paren back at the content column so the main query reads at the outer
// river.
func (l *Layouter) writeWith(p *printer, w *ast.WithClause, c ctx) {
	l.writeClauseKeyword(p, c, "WITH")
	if w.Recursive {
		p.writeStr("RECURSIVE ")
	}
	col := c.contentCol()
	for i, cte := range w.CTEs {
		if i > 0 {
			p.writeStr(",")
			p.newline()
			p.padTo(col)
		}
		p.writeStr(strings.ToLower(cte.Name))
		if len(cte.Columns) > 0 {
			p.writeStr(" (")
			for j, col := range cte.Columns {
				if j > 0 {
					p.writeStr(", ")
				}
				p.writeStr(strings.ToLower(col))
			}
			p.writeStr(")")
		}
		p.writeStr(" AS ")
		if cte.Materialized != nil {
			if *cte.Materialized {
				p.writeStr("MATERIALIZED ")
			} else {
				p.writeStr("NOT MATERIALIZED ")
			}
		}
		p.writeStr("(")
		p.newline()
		inner := l.renderStatementBody(cte.Query, ctx{
			indent:     col,
			river:      l.riverWidth(cte.Query),
			isSubquery: true,
			depth:      c.depth + 1,
		})
		writeBlock(p, inner)
		p.newline()
		p.padTo(col)
		p.writeStr(")")
		if cte.Search != nil {
			p.writeStr(" SEARCH ")
			if cte.Search.Breadth {
				p.writeStr("BREADTH")
			} else {
				p.writeStr("DEPTH")
			}
			p.writeStr(" FIRST BY ")
			p.writeStr(strings.ToLower(strings.Join(cte.Search.By, ", ")))
			p.writeStr(" SET ")
			p.writeStr(strings.ToLower(cte.Search.SetColumn))
		}
		if cte.Cycle != nil {
			p.writeStr(" CYCLE ")
			p.writeStr(strings.ToLower(strings.Join(cte.Cycle.Columns, ", ")))
			p.writeStr(" SET ")
			p.writeStr(strings.ToLower(cte.Cycle.SetColumn))
			if cte.Cycle.SetValue != nil {
				p.writeStr(" TO ")
				p.writeStr(l.inlineNode(cte.Cycle.SetValue))
				p.writeStr(" DEFAULT ")
				p.writeStr(l.inlineNode(cte.Cycle.DefaultVal))
			}
			if cte.Cycle.UsingPath != "" {
				p.writeStr(" USING ")
				p.writeStr(strings.ToLower(cte.Cycle.UsingPath))
			}
		}
	}
}

// writeBlock appends a pre-rendered, self-indented block to the printer,
// one printer line per block line. The current line must be empty (or hold
// only padding the block's first line is meant to follow).
func writeBlock(p *printer, block string) {
	for i, ln := range strings.Split(block, "\n") {
		if i > 0 {
			p.newline()
		}
		p.writeStr(ln)
	}
}

// renderSubqueryBlock renders stmt as it will appear inside parens: at
// indent zero with its own river, flagged as a subquery so nested width
// budgets apply. outerOffset records the column the block will be shifted
// to when pasted, so inner wrapping decisions respect the real column.
func (l *Layouter) renderSubqueryBlock(stmt ast.Statement, depth, outerOffset int) string {
	return l.renderStatementBody(stmt, ctx{
		river:       l.riverWidth(stmt),
		isSubquery:  true,
		outerOffset: outerOffset,
		depth:       depth + 1,
	})
}

// pasteSubquery writes a rendered subquery block at the printer's current
// column: the opening paren occupies that column, the block's first line
// starts one column past it, subsequent lines shift right by the same
// amount, and the closing paren follows the last character of the last
// inner line.
func pasteSubquery(p *printer, block string) {
	col := p.col()
	p.writeStr("(")
	for i, ln := range strings.Split(block, "\n") {
		if i > 0 {
			p.newline()
			p.padTo(col + 1)
		}
		p.writeStr(ln)
	}
	p.writeStr(")")
}

// writeSubqueryAt renders and pastes a parenthesized subquery whose opening
// paren sits at the printer's current column.
func (l *Layouter) writeSubqueryAt(p *printer, stmt ast.Statement, c ctx) {
	pasteSubquery(p, l.renderSubqueryBlock(stmt, c.depth, p.col()+1))
}

// writeClauseKeyword starts a fresh line and right-justifies kw to the
// river column computed from c. Content begins immediately after, at
// c.contentCol().
func (l *Layouter) writeClauseKeyword(p *printer, c ctx, kw string) {
	if len(p.lines) > 0 || p.cur.Len() > 0 {
		p.newline()
	}
	startCol := c.indent + c.river - len(kw)
	if startCol < c.indent {
		startCol = c.indent
	}
	p.padTo(startCol)
	p.writeStr(kw)
	p.writeStr(" ")
}

func (l *Layouter) joinExprs(es []ast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = l.inlineNode(e)
	}
	return strings.Join(parts, ", ")
}

func (l *Layouter) joinOrderBy(obs []*ast.OrderByExpr) string {
	parts := make([]string, len(obs))
	for i, ob := range obs {
		s := l.inlineNode(ob.Expr)
		if ob.Desc {
			s += " DESC"
		}
		if ob.NullsFirst != nil {
			if *ob.NullsFirst {
				s += " NULLS FIRST"
			} else {
				s += " NULLS LAST"
			}
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

// writeColumnList renders the SELECT column list, inline when it fits the
// policy budget and one-per-line (aligned beneath the first column)
// otherwise.
func (l *Layouter) writeColumnList(p *printer, c ctx, cols []ast.SelectExpr) {
	inline := l.joinSelectExprs(cols)
	budget := l.policy.maxLine - c.river - 8
	if c.isSubquery {
		budget = l.lineBudget(c)
	}
	aliases := 0
	force := false
	for _, se := range cols {
		if ae, ok := se.(*ast.AliasedExpr); ok {
			if ae.TrailingComment != "" {
				force = true
			}
			if ae.Alias != "" {
				aliases++
			}
		}
	}
	// Several aliased columns whose joined form runs long read better one
	// per line even when they would technically fit.
	if aliases >= 2 && len(cols) >= 3 && displayWidth(inline) > l.policy.aliasBreakMin {
		force = true
	}
	if !force && p.col()+displayWidth(inline) <= budget && !strings.Contains(inline, "\n") {
		p.writeStr(inline)
		return
	}
	col := p.col()
	for i, item := range cols {
		if i > 0 {
			p.newline()
			p.padTo(col)
		}
		p.writeStr(l.inlineNode(item))
		if i < len(cols)-1 {
			p.writeStr(",")
		}
		if ae, ok := item.(*ast.AliasedExpr); ok && ae.TrailingComment != "" {
			p.writeStr(" ")
			p.writeStr(ae.TrailingComment)
		}
	}
}

func (l *Layouter) joinSelectExprs(cols []ast.SelectExpr) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = l.inlineNode(col)
	}
	return strings.Join(parts, ", ")
}

// writeFromClause renders the FROM item and any joins beneath it. Plain
// JOIN right-aligns like FROM; qualified joins (INNER/LEFT/...) indent to
// the content column, with ON/USING indented beneath and a blank line
// before any join carrying ON/USING or joining a subquery.
func (l *Layouter) writeFromClause(p *printer, c ctx, t ast.TableExpr) {
	root, joins := flattenJoins(t)
	l.writeTableItem(p, c, root)
	prevHadCond := false
	for idx, j := range joins {
		needsBlank := idx > 0 && (prevHadCond || j.On != nil || len(j.Using) > 0 || isSubqueryTable(j.Right))
		if needsBlank {
			p.newline()
		}
		p.newline()
		if j.Type == ast.JoinInner && !j.Natural && j.On == nil && len(j.Using) == 0 {
			// plain JOIN: right-align like FROM
			startCol := c.indent + c.river - len("JOIN")
			if startCol < c.indent {
				startCol = c.indent
			}
			p.padTo(startCol)
		} else {
			p.padTo(c.contentCol())
		}
		if j.Natural {
			p.writeStr("NATURAL ")
		}
		if j.Lateral {
			p.writeStr("LATERAL ")
		}
		switch j.Type {
		case ast.JoinInner:
			if j.Natural || j.On != nil || len(j.Using) > 0 {
				p.writeStr("INNER JOIN ")
			} else {
				p.writeStr("JOIN ")
			}
		case ast.JoinLeft:
			p.writeStr("LEFT JOIN ")
		case ast.JoinRight:
			p.writeStr("RIGHT JOIN ")
		case ast.JoinFull:
			p.writeStr("FULL JOIN ")
		case ast.JoinCross:
			p.writeStr("CROSS JOIN ")
		}
		l.writeTableItem(p, c, j.Right)
		if j.On != nil {
			p.newline()
			p.padTo(c.contentCol())
			p.writeStr("ON ")
			l.writeBoolExpr(p, c, c.contentCol()+3, true, j.On)
		}
		if len(j.Using) > 0 {
			p.newline()
			p.padTo(c.contentCol())
			p.writeStr("USING (")
			p.writeStr(strings.ToLower(strings.Join(j.Using, ", ")))
			p.writeStr(")")
		}
		prevHadCond = j.On != nil || len(j.Using) > 0
	}
}

// writeTableItem renders one FROM/JOIN table item. A derived table gets the
// full multi-line subquery treatment at the current column; everything else
// renders inline. A same-line comment recorded on the item is reproduced at
// the end of its line.
func (l *Layouter) writeTableItem(p *printer, c ctx, t ast.TableExpr) {
	switch n := t.(type) {
	case *ast.Subquery:
		l.writeSubqueryAt(p, n.Select, c)
	case *ast.AliasedTableExpr:
		sub, ok := n.Expr.(*ast.Subquery)
		if !ok {
			p.writeStr(l.inlineNode(t))
			if n.TrailingComment != "" {
				p.writeStr(" ")
				p.writeStr(n.TrailingComment)
			}
			return
		}
		if n.Lateral {
			p.writeStr("LATERAL ")
		}
		l.writeSubqueryAt(p, sub.Select, c)
		if n.Alias != "" {
			p.writeStr(" AS ")
			p.writeStr(strings.ToLower(n.Alias))
		}
		if len(n.AliasColumns) > 0 {
			p.writeStr(" (")
			cols := make([]string, len(n.AliasColumns))
			for i, ac := range n.AliasColumns {
				cols[i] = strings.ToLower(ac)
			}
			p.writeStr(strings.Join(cols, ", "))
			p.writeStr(")")
		}
		if n.TrailingComment != "" {
			p.writeStr(" ")
			p.writeStr(n.TrailingComment)
		}
	default:
		p.writeStr(l.inlineNode(t))
	}
}

func isSubqueryTable(t ast.TableExpr) bool {
	switch n := t.(type) {
	case *ast.Subquery:
		return true
	case *ast.AliasedTableExpr:
		return isSubqueryTable(n.Expr)
	default:
		return false
	}
}

// flattenJoins walks a left-deep JoinExpr chain into its root table and an
// ordered list of joins, so each can be laid out on its own line.
func flattenJoins(t ast.TableExpr) (ast.TableExpr, []*ast.JoinExpr) {
	j, ok := t.(*ast.JoinExpr)
	if !ok {
		return t, nil
	}
	root, joins := flattenJoins(j.Left)
	joins = append(joins, j)
	return root, joins
}

// writeBoolExpr renders a WHERE/HAVING/ON boolean expression. A top-level
// AND/OR chain splits one member per line. In river contexts (WHERE,
// HAVING) the operator is right-aligned so its content lines up at
// alignCol; in indent contexts (ON) the operator is left-aligned at
// alignCol.
func (l *Layouter) writeBoolExpr(p *printer, c ctx, alignCol int, leftAlignOps bool, e ast.Expr) {
	terms, ops := flattenBoolChain(e)
	l.writeCondTerm(p, c, terms[0])
	for i, op := range ops {
		p.newline()
		if leftAlignOps {
			p.padTo(alignCol)
		} else {
			p.padTo(alignCol - len(op) - 1)
		}
		p.writeStr(op)
		p.writeStr(" ")
		l.writeCondTerm(p, c, terms[i+1])
	}
}

// writeCondTerm renders one member of a boolean chain. IN with a subquery
// renders the subquery inline after IN when it fits in two lines, and
// otherwise breaks it onto the next line beneath the IN keyword. IN value
// lists and BETWEEN wrap beneath their first value when the one-line form
// overflows the line budget.
func (l *Layouter) writeCondTerm(p *printer, c ctx, term ast.Expr) {
	switch t := term.(type) {
	case *ast.InExpr:
		if t.Kind == ast.InKindSubquery {
			p.writeStr(l.inlineNode(t.Expr))
			inCol := p.col() + 1
			if t.Not {
				p.writeStr(" NOT")
			}
			p.writeStr(" IN")
			block := l.renderSubqueryBlock(t.Select, c.depth, inCol+1)
			if strings.Count(block, "\n") < 2 {
				p.writeStr(" ")
				pasteSubquery(p, block)
				return
			}
			p.newline()
			p.padTo(inCol)
			pasteSubquery(p, block)
			return
		}
		inline := l.inlineNode(term)
		if p.col()+displayWidth(inline) <= l.lineBudget(c) {
			p.writeStr(inline)
			return
		}
		p.writeStr(l.inlineNode(t.Expr))
		if t.Not {
			p.writeStr(" NOT")
		}
		p.writeStr(" IN (")
		valCol := p.col()
		for i, v := range t.Values {
			if i > 0 {
				p.writeStr(",")
				p.newline()
				p.padTo(valCol)
			}
			p.writeStr(l.inlineNode(v))
		}
		p.writeStr(")")
	case *ast.BetweenExpr:
		inline := l.inlineNode(term)
		if p.col()+displayWidth(inline) <= l.lineBudget(c) {
			p.writeStr(inline)
			return
		}
		p.writeStr(l.inlineNode(t.Expr))
		if t.Not {
			p.writeStr(" NOT")
		}
		p.writeStr(" BETWEEN ")
		valCol := p.col()
		p.writeStr(l.inlineNode(t.Low))
		p.newline()
		p.padTo(valCol)
		p.writeStr("AND ")
		p.writeStr(l.inlineNode(t.High))
	default:
		p.writeStr(l.inlineNode(term))
	}
}

// lineBudget is the usable width on the current line: the policy maximum
// less the columns a host line already occupies in front of this nested
// rendering.
func (l *Layouter) lineBudget(c ctx) int {
	b := l.policy.maxLine - c.outerOffset
	if b < 24 {
		b = 24
	}
	return b
}

// flattenBoolChain collects a left-associative AND/OR chain's leaves and the
// operator between each consecutive pair, preserving source order.
func flattenBoolChain(e ast.Expr) ([]ast.Expr, []string) {
	b, ok := e.(*ast.BinaryExpr)
	if !ok || !isBoolOp(b.Op) {
		return []ast.Expr{e}, nil
	}
	leftTerms, leftOps := flattenBoolChain(b.Left)
	op := "AND"
	if isOrOp(b.Op) {
		op = "OR"
	}
	terms := append(leftTerms, b.Right)
	ops := append(leftOps, op)
	return terms, ops
}

func isBoolOp(t interface{ String() string }) bool {
	s := t.String()
	return s == "AND" || s == "OR"
}

func isOrOp(t interface{ String() string }) bool {
	return t.String() == "OR"
}

// ---- CREATE VIEW / EXPLAIN (statements that own a query body) ----

// renderCreateView writes the CREATE [OR REPLACE] [MATERIALIZED] VIEW
// preamble on one line, then recurses into the view's query body through
// renderStatementBody so it gets the same river alignment and wrapping as
// any other query, instead of the flat Formatter's single-line rendering.
func (l *Layouter) renderCreateView(s *ast.CreateViewStmt, c ctx) string {
	if c.depth > maxFormatterDepth {
		return "/* depth exceeded */"
	}
	p := &printer{}
	p.writeStr("CREATE ")
	if s.OrReplace {
		p.writeStr("OR REPLACE ")
	}
	if s.Materialized {
		p.writeStr("MATERIALIZED ")
	}
	p.writeStr("VIEW ")
	if s.IfNotExists {
		p.writeStr("IF NOT EXISTS ")
	}
	p.writeStr(l.inlineNode(s.Name))
	if len(s.Columns) > 0 {
		p.writeStr(" (")
		names := make([]string, len(s.Columns))
		for i, col := range s.Columns {
			names[i] = strings.ToLower(col)
		}
		p.writeStr(strings.Join(names, ", "))
		p.writeStr(")")
	}
	p.writeStr(" AS")
	p.newline()
	writeBlock(p, l.renderStatementBody(s.Query, c.deeper()))
	if s.CheckOption != "" {
		p.newline()
		p.padTo(c.indent)
		p.writeStr("WITH CHECK OPTION")
	}
	return p.result()
}

// renderExplain writes the EXPLAIN preamble on one line, then recurses into
// the explained statement through renderStatementBody so EXPLAIN SELECT ...
// gets full river alignment instead of the flat Formatter's rendering.
func (l *Layouter) renderExplain(s *ast.ExplainStmt, c ctx) string {
	if c.depth > maxFormatterDepth {
		return "/* depth exceeded */"
	}
	p := &printer{}
	p.writeStr("EXPLAIN")
	if s.Analyze {
		p.writeStr(" ANALYZE")
	}
	if s.Verbose {
		p.writeStr(" VERBOSE")
	}
	if len(s.Options) > 0 {
		p.writeStr(" (")
		for i, opt := range s.Options {
			if i > 0 {
				p.writeStr(", ")
			}
			p.writeStr(strings.ToUpper(opt.Name))
			if opt.Value != "" {
				p.writeStr(" ")
				p.writeStr(opt.Value)
			}
		}
		p.writeStr(")")
	}
	if s.Format != "" {
		p.writeStr(" FORMAT ")
		p.writeStr(s.Format)
	}
	p.newline()
	writeBlock(p, l.renderStatementBody(s.Stmt, c.deeper()))
	return p.result()
}

// ---- UNION/INTERSECT/EXCEPT chains ----

func (l *Layouter) renderSetOp(s *ast.SetOp, c ctx) string {
	if c.depth > maxFormatterDepth {
		return "/* depth exceeded */"
	}
	p := &printer{}
	writeBlock(p, l.renderStatementBody(s.Left, c))
	l.writeClauseKeyword(p, c, setOpKeyword(s))
	p.newline()
	writeBlock(p, l.renderStatementBody(s.Right, c))
	if len(s.OrderBy) > 0 {
		l.writeClauseKeyword(p, c, "ORDER")
		p.writeStr("BY ")
		p.writeStr(l.joinOrderBy(s.OrderBy))
	}
	if s.Limit != nil && s.Limit.Count != nil {
		l.writeClauseKeyword(p, c, "LIMIT")
		p.writeStr(l.inlineNode(s.Limit.Count))
	}
	if s.Limit != nil && s.Limit.Offset != nil {
		l.writeClauseKeyword(p, c, "OFFSET")
		p.writeStr(l.inlineNode(s.Limit.Offset))
	}
	return p.result()
}

func setOpKeyword(s *ast.SetOp) string {
	kw := "UNION"
	switch s.Type {
	case ast.SetOpIntersect:
		kw = "INTERSECT"
	case ast.SetOpExcept:
		kw = "EXCEPT"
	}
	if s.All {
		kw += " ALL"
	}
	return kw
}

// ---- INSERT / UPDATE / DELETE ----

func (l *Layouter) renderInsert(s *ast.InsertStmt, c ctx) string {
	p := &printer{}
	if s.With != nil {
		l.writeWith(p, s.With, c)
	}
	kw := "INSERT"
	if s.Replace {
		kw = "REPLACE"
	}
	l.writeClauseKeyword(p, c, kw)
	if s.Ignore {
		p.writeStr("IGNORE ")
	}
	p.writeStr("INTO ")
	p.writeStr(l.inlineNode(s.Table))
	if len(s.Columns) > 0 {
		p.writeStr(" (")
		names := make([]string, len(s.Columns))
		for i, col := range s.Columns {
			names[i] = strings.ToLower(col.Name())
		}
		p.writeStr(strings.Join(names, ", "))
		p.writeStr(")")
	}

	if s.Select != nil {
		p.newline()
		writeBlock(p, l.renderStatementBody(s.Select, c))
	} else if len(s.Values) > 0 {
		l.writeClauseKeyword(p, c, "VALUES")
		for i, row := range s.Values {
			if i > 0 {
				p.writeStr(",")
				p.newline()
				p.padTo(c.contentCol())
			}
			p.writeStr("(")
			p.writeStr(l.joinExprs(row))
			p.writeStr(")")
		}
	}

	if s.OnConflict != nil {
		l.writeClauseKeyword(p, c, "ON")
		p.writeStr("CONFLICT ")
		if len(s.OnConflict.Columns) > 0 {
			p.writeStr("(")
			p.writeStr(strings.ToLower(strings.Join(s.OnConflict.Columns, ", ")))
			p.writeStr(") ")
		}
		p.writeStr("DO ")
		if s.OnConflict.DoNothing {
			p.writeStr("NOTHING")
		} else {
			p.writeStr("UPDATE SET ")
			for i, ue := range s.OnConflict.Updates {
				if i > 0 {
					p.writeStr(", ")
				}
				p.writeStr(strings.ToLower(ue.Column.Name()))
				p.writeStr(" = ")
				p.writeStr(l.inlineNode(ue.Expr))
			}
		}
	}

	if len(s.OnDuplicateUpdate) > 0 {
		l.writeClauseKeyword(p, c, "ON")
		p.writeStr("DUPLICATE KEY UPDATE ")
		for i, ue := range s.OnDuplicateUpdate {
			if i > 0 {
				p.writeStr(", ")
			}
			p.writeStr(strings.ToLower(ue.Column.Name()))
			p.writeStr(" = ")
			p.writeStr(l.inlineNode(ue.Expr))
		}
	}

	if len(s.Returning) > 0 {
		l.writeClauseKeyword(p, c, "RETURNING")
		p.writeStr(l.joinSelectExprs(s.Returning))
	}

	return p.result()
}

func (l *Layouter) renderUpdate(s *ast.UpdateStmt, c ctx) string {
	p := &printer{}
	if s.With != nil {
		l.writeWith(p, s.With, c)
	}
	l.writeClauseKeyword(p, c, "UPDATE")
	p.writeStr(l.inlineNode(s.Table))

	l.writeClauseKeyword(p, c, "SET")
	col := p.col()
	for i, ue := range s.Set {
		if i > 0 {
			p.writeStr(",")
			p.newline()
			p.padTo(col)
		}
		p.writeStr(strings.ToLower(ue.Column.Name()))
		p.writeStr(" = ")
		p.writeStr(l.inlineNode(ue.Expr))
	}

	if s.From != nil {
		l.writeClauseKeyword(p, c, "FROM")
		p.writeStr(l.inlineNode(s.From))
	}
	if s.Where != nil {
		l.writeClauseKeyword(p, c, "WHERE")
		l.writeBoolExpr(p, c, c.contentCol(), false, s.Where)
	}
	l.writeOrderLimit(p, c, s.OrderBy, s.Limit)
	if len(s.Returning) > 0 {
		l.writeClauseKeyword(p, c, "RETURNING")
		p.writeStr(l.joinSelectExprs(s.Returning))
	}
	return p.result()
}

// writeOrderLimit emits the trailing ORDER BY / LIMIT / OFFSET clauses that
// UPDATE and DELETE carry as MySQL extensions.
func (l *Layouter) writeOrderLimit(p *printer, c ctx, orderBy []*ast.OrderByExpr, limit *ast.Limit) {
	if len(orderBy) > 0 {
		l.writeClauseKeyword(p, c, "ORDER")
		p.writeStr("BY ")
		p.writeStr(l.joinOrderBy(orderBy))
	}
	if limit != nil && limit.Count != nil {
		l.writeClauseKeyword(p, c, "LIMIT")
		p.writeStr(l.inlineNode(limit.Count))
	}
	if limit != nil && limit.Offset != nil {
		l.writeClauseKeyword(p, c, "OFFSET")
		p.writeStr(l.inlineNode(limit.Offset))
	}
}

func (l *Layouter) renderDelete(s *ast.DeleteStmt, c ctx) string {
	p := &printer{}
	if s.With != nil {
		l.writeWith(p, s.With, c)
	}
	l.writeClauseKeyword(p, c, "DELETE")
	p.writeStr("FROM ")
	p.writeStr(l.inlineNode(s.Table))
	if s.Using != nil {
		l.writeClauseKeyword(p, c, "USING")
		p.writeStr(l.inlineNode(s.Using))
	}
	if s.Where != nil {
		l.writeClauseKeyword(p, c, "WHERE")
		l.writeBoolExpr(p, c, c.contentCol(), false, s.Where)
	}
	l.writeOrderLimit(p, c, s.OrderBy, s.Limit)
	if len(s.Returning) > 0 {
		l.writeClauseKeyword(p, c, "RETURNING")
		p.writeStr(l.joinSelectExprs(s.Returning))
	}
	return p.result()
}

// ---- CREATE TABLE ----

// renderCreateTable aligns column names and types in fixed-width columns,
// capped at the policy's type-alignment width.
func (l *Layouter) renderCreateTable(s *ast.CreateTableStmt, c ctx) string {
	if s.As != nil {
		return l.inlineNode(s)
	}
	const typeAlignCap = 13
	maxName, maxType := 0, 0
	typeStrs := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		if n := len(strings.ToLower(col.Name)); n > maxName {
			maxName = n
		}
		typeStrs[i] = l.inlineDataType(col.Type)
		tl := len(typeStrs[i])
		if tl > maxType {
			maxType = tl
		}
	}
	if maxType > typeAlignCap {
		maxType = typeAlignCap
	}

	p := &printer{}
	p.writeStr("CREATE ")
	if s.Temporary {
		p.writeStr("TEMPORARY ")
	}
	p.writeStr("TABLE ")
	if s.IfNotExists {
		p.writeStr("IF NOT EXISTS ")
	}
	p.writeStr(l.inlineNode(s.Table))
	p.writeStr(" (")
	indent := c.indent + 2
	for i, col := range s.Columns {
		p.newline()
		p.padTo(indent)
		name := strings.ToLower(col.Name)
		p.writeStr(padRight(name, maxName))
		p.writeStr(" ")
		if len(col.Constraints) > 0 {
			p.writeStr(padRight(typeStrs[i], maxType))
		} else {
			p.writeStr(typeStrs[i])
		}
		for _, cons := range col.Constraints {
			p.writeStr(" ")
			p.writeStr(l.inlineColumnConstraint(cons))
		}
		if i < len(s.Columns)-1 || len(s.Constraints) > 0 {
			p.writeStr(",")
		}
	}
	for i, cons := range s.Constraints {
		p.newline()
		p.padTo(indent)
		if cons.Type == ast.ConstraintForeignKey && cons.References != nil {
			l.writeForeignKeyConstraint(p, indent, cons)
		} else {
			p.writeStr(l.inlineTableConstraint(cons))
		}
		if i < len(s.Constraints)-1 {
			p.writeStr(",")
		}
	}
	p.newline()
	p.padTo(c.indent)
	p.writeStr(")")
	for _, opt := range s.Options {
		p.writeStr(" ")
		p.writeStr(opt.Name)
		p.writeStr("=")
		p.writeStr(opt.Value)
	}
	return p.result()
}

// writeForeignKeyConstraint splits a table-level foreign key over several
// lines: FOREIGN KEY, then REFERENCES and each referential action on its
// own indented line.
func (l *Layouter) writeForeignKeyConstraint(p *printer, indent int, cons *ast.TableConstraint) {
	if cons.Name != "" {
		p.writeStr("CONSTRAINT ")
		p.writeStr(strings.ToLower(cons.Name))
		p.writeStr(" ")
	}
	p.writeStr("FOREIGN KEY (")
	cols := make([]string, len(cons.Columns))
	for i, col := range cons.Columns {
		cols[i] = strings.ToLower(col)
	}
	p.writeStr(strings.Join(cols, ", "))
	p.writeStr(")")
	cont := indent + 2
	ref := cons.References
	p.newline()
	p.padTo(cont)
	p.writeStr("REFERENCES ")
	p.writeStr(l.inlineNode(ref.Table))
	if len(ref.Columns) > 0 {
		refCols := make([]string, len(ref.Columns))
		for i, col := range ref.Columns {
			refCols[i] = strings.ToLower(col)
		}
		p.writeStr(" (")
		p.writeStr(strings.Join(refCols, ", "))
		p.writeStr(")")
	}
	if ref.OnDelete != ast.RefNoAction {
		p.newline()
		p.padTo(cont)
		p.writeStr("ON DELETE ")
		p.writeStr(ref.OnDelete.String())
	}
	if ref.OnUpdate != ast.RefNoAction {
		p.newline()
		p.padTo(cont)
		p.writeStr("ON UPDATE ")
		p.writeStr(ref.OnUpdate.String())
	}
}

// inlineWindowSpecBody renders a named WINDOW definition's parenthesized
// body, reusing formatWindowSpec and stripping its leading "OVER " since a
// window definition has no OVER keyword of its own.
func (l *Layouter) inlineWindowSpecBody(spec *ast.WindowSpec) string {
	f := New(Options{Uppercase: true, Profile: l.profile})
	f.formatWindowSpec(spec)
	s := f.String()
	return strings.TrimPrefix(s, "OVER ")
}

func (l *Layouter) inlineSelectInto(si *ast.SelectInto) string {
	f := New(Options{Uppercase: true, Profile: l.profile})
	f.formatSelectInto(si)
	return f.String()
}

func (l *Layouter) inlineDataType(dt *ast.DataType) string {
	f := New(Options{Uppercase: true, Profile: l.profile})
	f.formatDataType(dt)
	return f.String()
}

func (l *Layouter) inlineColumnConstraint(cons *ast.ColumnConstraint) string {
	f := New(Options{Uppercase: true, Profile: l.profile})
	f.formatColumnConstraint(cons)
	return f.String()
}

func (l *Layouter) inlineTableConstraint(cons *ast.TableConstraint) string {
	f := New(Options{Uppercase: true, Profile: l.profile})
	f.formatTableConstraint(cons)
	return f.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// displayWidth measures the rendered width of s, counting East Asian wide
// and fullwidth code points as 2 columns and everything else as 1, so
// CJK-heavy input wraps at a predictable visual column.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		w += runeWidth(r)
	}
	return w
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
