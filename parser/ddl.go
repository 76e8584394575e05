package parser

import (
	"github.com/riverfmt/riverfmt/ast"
	"github.com/riverfmt/riverfmt/token"
)

// parseWithClause parses WITH [RECURSIVE] name (cols?) AS [[NOT] MATERIALIZED] (query), ...
func (p *Parser) parseWithClause() *ast.WithClause {
	p.advance() // consume WITH
	wc := &ast.WithClause{}
	if p.curIs(token.RECURSIVE) {
		wc.Recursive = true
		p.advance()
	}
	for {
		cte := p.parseCTE()
		if cte == nil {
			break
		}
		wc.CTEs = append(wc.CTEs, cte)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return wc
}

func (p *Parser) parseCTE() *ast.CTE {
	if !p.curIsIdent() {
		p.errorf("expected CTE name, got %v", p.cur.Type)
		return nil
	}
	cte := &ast.CTE{Name: p.cur.Value}
	p.advance()

	if p.curIs(token.LPAREN) {
		cte.Columns = p.parseColumnNameList()
	}

	if !p.expect(token.AS) {
		return nil
	}

	if p.curIs(token.MATERIALIZED) {
		t := true
		cte.Materialized = &t
		p.advance()
	} else if p.curIs(token.NOT) && p.peekIs(token.MATERIALIZED) {
		f := false
		cte.Materialized = &f
		p.advance()
		p.advance()
	}

	if !p.expect(token.LPAREN) {
		return nil
	}
	cte.Query = p.parseStatement()
	if !p.expect(token.RPAREN) {
		return nil
	}

	// SEARCH ... SET ...
	if p.curIs(token.SEARCH) {
		cte.Search = p.parseSearchClause()
	}
	// CYCLE ... SET ... TO ... DEFAULT ... USING ...
	if p.curIs(token.CYCLE) {
		cte.Cycle = p.parseCycleClause()
	}

	return cte
}

func (p *Parser) parseSearchClause() *ast.SearchClause {
	p.advance() // consume SEARCH
	sc := &ast.SearchClause{}
	switch p.cur.Type {
	case token.BREADTH:
		sc.Breadth = true
		p.advance()
	case token.DEPTH:
		p.advance()
	}
	if !p.expect(token.FIRST) {
		return sc
	}
	if !p.expect(token.BY) {
		return sc
	}
	sc.By = p.parseColumnNameList()
	if p.curIs(token.SET) {
		p.advance()
		if p.curIsIdent() {
			sc.SetColumn = p.cur.Value
			p.advance()
		}
	}
	return sc
}

func (p *Parser) parseCycleClause() *ast.CycleClause {
	p.advance() // consume CYCLE
	cc := &ast.CycleClause{}
	cc.Columns = p.parseColumnNameList()
	if p.curIs(token.SET) {
		p.advance()
		if p.curIsIdent() {
			cc.SetColumn = p.cur.Value
			p.advance()
		}
		if p.curIs(token.TO) {
			p.advance()
			cc.SetValue = p.parseExpr()
		}
		if p.curIs(token.DEFAULT) {
			p.advance()
			cc.DefaultVal = p.parseExpr()
		}
	}
	if p.curIs(token.USING) {
		p.advance()
		if p.curIsIdent() {
			cc.UsingPath = p.cur.Value
			p.advance()
		}
	}
	return cc
}

// parseColumnNameList parses a parenthesized, comma-separated list of bare
// column names: (a, b, c).
func (p *Parser) parseColumnNameList() []string {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var names []string
	for {
		if !p.curIsIdent() {
			break
		}
		names = append(names, p.cur.Value)
		p.advance()
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	return names
}

// parseTableName parses a possibly multi-part (catalog.schema.table) name.
func (p *Parser) parseTableName() *ast.TableName {
	if !p.curIsIdent() {
		p.errorf("expected table name, got %v", p.cur.Type)
		return nil
	}
	tn := &ast.TableName{StartPos: p.cur.Pos}
	tn.Parts = append(tn.Parts, p.cur.Value)
	tn.Quoted = append(tn.Quoted, p.cur.Quoted)
	p.advance()
	for p.curIs(token.DOT) {
		p.advance()
		if !p.curIsIdent() {
			p.errorf("expected identifier after '.', got %v", p.cur.Type)
			return nil
		}
		tn.Parts = append(tn.Parts, p.cur.Value)
		tn.Quoted = append(tn.Quoted, p.cur.Quoted)
		p.advance()
	}
	tn.EndPos = p.cur.Pos
	return tn
}

// parseCreate dispatches CREATE [OR REPLACE] [TEMP|UNLOGGED] {TABLE|INDEX|
// UNIQUE INDEX|VIEW|MATERIALIZED VIEW|POLICY}.
func (p *Parser) parseCreate() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume CREATE

	orReplace := false
	if p.curIs(token.OR) {
		p.advance()
		if !p.expect(token.REPLACE) {
			return nil
		}
		orReplace = true
	}

	switch p.cur.Type {
	case token.TEMPORARY, token.TEMP:
		p.advance()
		return p.parseCreateTable(pos, true)
	case token.UNLOGGED:
		p.advance()
		return p.parseCreateTable(pos, false)
	case token.TABLE:
		return p.parseCreateTable(pos, false)
	case token.UNIQUE:
		p.advance()
		return p.parseCreateIndex(pos, true)
	case token.INDEX:
		return p.parseCreateIndex(pos, false)
	case token.MATERIALIZED:
		p.advance()
		if !p.expect(token.VIEW) {
			return nil
		}
		return p.parseCreateView(pos, orReplace, true)
	case token.VIEW:
		return p.parseCreateView(pos, orReplace, false)
	case token.POLICY:
		return p.parseCreatePolicy(pos)
	case token.RECURSIVE:
		p.advance()
		if !p.expect(token.VIEW) {
			return nil
		}
		stmt := p.parseCreateView(pos, orReplace, false)
		if v, ok := stmt.(*ast.CreateViewStmt); ok {
			v.Recursive = true
		}
		return stmt
	default:
		p.errorf("unexpected token %v after CREATE", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseIfNotExists() bool {
	if p.curIs(token.IF) {
		p.advance()
		if p.curIs(token.NOT) {
			p.advance()
		}
		p.expect(token.EXISTS)
		return true
	}
	return false
}

func (p *Parser) parseIfExists() bool {
	if p.curIs(token.IF) {
		p.advance()
		p.expect(token.EXISTS)
		return true
	}
	return false
}

func (p *Parser) parseCreateTable(pos token.Pos, temporary bool) *ast.CreateTableStmt {
	if !p.expect(token.TABLE) {
		return nil
	}
	stmt := &ast.CreateTableStmt{StartPos: pos, Temporary: temporary}
	stmt.IfNotExists = p.parseIfNotExists()
	stmt.Table = p.parseTableName()

	if p.curIs(token.AS) {
		p.advance()
		sel := p.parseStatement()
		switch sel.(type) {
		case *ast.SelectStmt, *ast.SetOp:
			stmt.As = sel
		}
		stmt.EndPos = p.cur.Pos
		return stmt
	}

	if !p.expect(token.LPAREN) {
		return stmt
	}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.isTableConstraintStart() {
			c := p.parseTableConstraint()
			if c != nil {
				stmt.Constraints = append(stmt.Constraints, c)
			}
		} else {
			col := p.parseColumnDef()
			if col != nil {
				stmt.Columns = append(stmt.Columns, col)
			}
		}
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	stmt.Options = p.parseTableOptions()
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) isTableConstraintStart() bool {
	switch p.cur.Type {
	case token.PRIMARY, token.UNIQUE, token.FOREIGN, token.CHECK:
		return true
	case token.CONSTRAINT:
		return true
	}
	return false
}

func (p *Parser) parseColumnDef() *ast.ColumnDef {
	if !p.curIsIdent() {
		p.errorf("expected column name, got %v", p.cur.Type)
		return nil
	}
	col := &ast.ColumnDef{Name: p.cur.Value}
	p.advance()
	col.Type = p.parseDataType()
	col.Constraints = p.parseColumnConstraints()
	return col
}

func (p *Parser) parseDataType() *ast.DataType {
	if !p.curIsIdent() {
		p.errorf("expected type name, got %v", p.cur.Type)
		return nil
	}
	dt := &ast.DataType{Name: p.cur.Value}
	p.advance()

	// Multi-word types: DOUBLE PRECISION, CHARACTER VARYING, TIMESTAMP WITH TIME ZONE
	if p.curIs(token.PRECISION) {
		dt.Name += " PRECISION"
		p.advance()
	}
	if p.curIs(token.VARYING) {
		dt.Name += " VARYING"
		p.advance()
	}

	if p.curIs(token.LPAREN) {
		p.advance()
		if p.curIs(token.INT) {
			n := p.parseIntLit()
			dt.Length = &n
			dt.Precision = &n
		}
		if p.curIs(token.COMMA) {
			p.advance()
			if p.curIs(token.INT) {
				n := p.parseIntLit()
				dt.Scale = &n
			}
		}
		p.expect(token.RPAREN)
	}

	if p.curIs(token.WITH) || p.curIs(token.WITHOUT) {
		neg := p.curIs(token.WITHOUT)
		p.advance()
		if p.curIs(token.TIME) {
			p.advance()
			p.expect(token.ZONE)
			if neg {
				dt.Name += " WITHOUT TIME ZONE"
			} else {
				dt.Name += " WITH TIME ZONE"
			}
		}
	}

	if p.curIs(token.LBRACKET) {
		p.advance()
		p.expect(token.RBRACKET)
		dt.Array = true
	} else if p.curIs(token.ARRAY) {
		p.advance()
		dt.Array = true
		if p.curIs(token.LBRACKET) {
			p.advance()
			p.expect(token.RBRACKET)
		}
	}

	if p.curIs(token.UNSIGNED) {
		dt.Unsigned = true
		p.advance()
	}
	if p.curIs(token.CHARACTER) {
		p.advance()
		p.expect(token.SET)
		if p.curIsIdent() {
			dt.Charset = p.cur.Value
			p.advance()
		}
	}
	if p.curIs(token.COLLATE) {
		p.advance()
		if p.curIsIdent() {
			dt.Collation = p.cur.Value
			p.advance()
		}
	}
	return dt
}

func (p *Parser) parseIntLit() int {
	n := 0
	for _, c := range p.cur.Value {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	p.advance()
	return n
}

func (p *Parser) parseColumnConstraints() []*ast.ColumnConstraint {
	var cons []*ast.ColumnConstraint
	for {
		var name string
		if p.curIs(token.CONSTRAINT) {
			p.advance()
			if p.curIsIdent() {
				name = p.cur.Value
				p.advance()
			}
		}
		switch p.cur.Type {
		case token.NOT:
			p.advance()
			p.expect(token.NULL)
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintNotNull, NotNull: true})
		case token.NULL:
			p.advance()
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintNotNull, NotNull: false})
		case token.DEFAULT:
			p.advance()
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintDefault, Default: p.parseExpr()})
		case token.PRIMARY:
			p.advance()
			p.expect(token.KEY)
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintPrimaryKey})
		case token.UNIQUE:
			p.advance()
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintUnique})
		case token.CHECK:
			p.advance()
			p.expect(token.LPAREN)
			expr := p.parseExpr()
			p.expect(token.RPAREN)
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintCheck, Check: expr})
		case token.REFERENCES:
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintForeignKey, References: p.parseForeignKeyRef()})
		case token.GENERATED:
			cons = append(cons, p.parseGeneratedConstraint(name))
		case token.AUTO_INCREMENT, token.AUTOINCREMENT:
			p.advance()
			cons = append(cons, &ast.ColumnConstraint{Name: name, Type: ast.ConstraintGenerated, Generated: &ast.GeneratedColumn{AutoIncrement: true}})
		default:
			return cons
		}
	}
}

func (p *Parser) parseGeneratedConstraint(name string) *ast.ColumnConstraint {
	p.advance() // consume GENERATED
	gc := &ast.GeneratedColumn{}
	if p.curIs(token.ALWAYS) {
		p.advance()
	} else if p.curIs(token.BY) {
		p.advance()
		p.expect(token.DEFAULT)
		gc.ByDefault = true
	}
	p.expect(token.AS)
	if p.curIs(token.IDENTITY) {
		gc.Identity = true
		p.advance()
		if p.curIs(token.LPAREN) {
			p.advance()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				p.advance()
			}
			p.expect(token.RPAREN)
		}
	} else if p.curIs(token.LPAREN) {
		p.advance()
		gc.Expr = p.parseExpr()
		p.expect(token.RPAREN)
		if p.curIs(token.STORED) {
			gc.Stored = true
			p.advance()
		} else if p.curIs(token.VIRTUAL) {
			p.advance()
		}
	}
	return &ast.ColumnConstraint{Name: name, Type: ast.ConstraintGenerated, Generated: gc}
}

func (p *Parser) parseForeignKeyRef() *ast.ForeignKeyRef {
	p.expect(token.REFERENCES)
	ref := &ast.ForeignKeyRef{Table: p.parseTableName()}
	if p.curIs(token.LPAREN) {
		ref.Columns = p.parseColumnNameList()
	}
	for p.curIs(token.ON) {
		p.advance()
		isDelete := p.curIs(token.DELETE)
		if isDelete || p.curIs(token.UPDATE) {
			p.advance()
			action := p.parseRefAction()
			if isDelete {
				ref.OnDelete = action
			} else {
				ref.OnUpdate = action
			}
		} else {
			break
		}
	}
	return ref
}

func (p *Parser) parseRefAction() ast.RefAction {
	switch p.cur.Type {
	case token.CASCADE:
		p.advance()
		return ast.RefCascade
	case token.RESTRICT:
		p.advance()
		return ast.RefRestrict
	case token.SET:
		p.advance()
		if p.curIs(token.NULL) {
			p.advance()
			return ast.RefSetNull
		}
		p.expect(token.DEFAULT)
		return ast.RefSetDefault
	case token.NO:
		p.advance()
		p.expect(token.ACTION)
		return ast.RefNoAction
	}
	return ast.RefNoAction
}

func (p *Parser) parseTableConstraint() *ast.TableConstraint {
	var name string
	if p.curIs(token.CONSTRAINT) {
		p.advance()
		if p.curIsIdent() {
			name = p.cur.Value
			p.advance()
		}
	}
	switch p.cur.Type {
	case token.PRIMARY:
		p.advance()
		p.expect(token.KEY)
		return &ast.TableConstraint{Name: name, Type: ast.ConstraintPrimaryKey, Columns: p.parseColumnNameList()}
	case token.UNIQUE:
		p.advance()
		return &ast.TableConstraint{Name: name, Type: ast.ConstraintUnique, Columns: p.parseColumnNameList()}
	case token.CHECK:
		p.advance()
		p.expect(token.LPAREN)
		expr := p.parseExpr()
		p.expect(token.RPAREN)
		return &ast.TableConstraint{Name: name, Type: ast.ConstraintCheck, Check: expr}
	case token.FOREIGN:
		p.advance()
		p.expect(token.KEY)
		cols := p.parseColumnNameList()
		ref := p.parseForeignKeyRef()
		return &ast.TableConstraint{Name: name, Type: ast.ConstraintForeignKey, Columns: cols, References: ref}
	default:
		p.errorf("expected table constraint, got %v", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseTableOptions() []*ast.TableOption {
	var opts []*ast.TableOption
	for p.curIsIdent() || p.curIs(token.ENGINE) || p.curIs(token.CHARACTER) || p.curIs(token.COMMENT_KW) {
		name := p.cur.Value
		p.advance()
		if p.curIs(token.EQ) {
			p.advance()
		}
		if p.curIs(token.CHARACTER) {
			p.advance()
			p.expect(token.SET)
			if p.curIs(token.EQ) {
				p.advance()
			}
		}
		var val string
		if p.curIsIdent() || p.curIs(token.STRING) || p.curIs(token.INT) {
			val = p.cur.Value
			p.advance()
		}
		opts = append(opts, &ast.TableOption{Name: name, Value: val})
	}
	return opts
}

func (p *Parser) parseCreateIndex(pos token.Pos, unique bool) *ast.CreateIndexStmt {
	if !p.expect(token.INDEX) {
		return nil
	}
	stmt := &ast.CreateIndexStmt{StartPos: pos, Unique: unique}
	if p.curIs(token.CONCURRENTLY) {
		stmt.Concurrent = true
		p.advance()
	}
	stmt.IfNotExists = p.parseIfNotExists()
	if p.curIsIdent() {
		stmt.Name = p.cur.Value
		p.advance()
	}
	if !p.expect(token.ON) {
		return stmt
	}
	stmt.Table = p.parseTableName()

	if p.curIs(token.USING) {
		p.advance()
		if p.curIsIdent() {
			stmt.Using = p.cur.Value
			p.advance()
		}
	}

	if p.expect(token.LPAREN) {
		for {
			ic := &ast.IndexColumn{}
			if p.curIs(token.LPAREN) {
				p.advance()
				ic.Expr = p.parseExpr()
				p.expect(token.RPAREN)
			} else if p.curIsIdent() {
				ic.Column = p.cur.Value
				p.advance()
			} else {
				ic.Expr = p.parseExpr()
			}
			if p.curIs(token.ASC) {
				p.advance()
			} else if p.curIs(token.DESC) {
				ic.Desc = true
				p.advance()
			}
			if p.curIs(token.NULLS) {
				p.advance()
				if p.curIs(token.FIRST) {
					ic.Nulls = "FIRST"
					p.advance()
				} else if p.curIs(token.LAST) {
					ic.Nulls = "LAST"
					p.advance()
				}
			}
			stmt.Columns = append(stmt.Columns, ic)
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RPAREN)
	}

	if p.curIs(token.TABLESPACE) {
		p.advance()
		if p.curIsIdent() {
			stmt.Tablespace = p.cur.Value
			p.advance()
		}
	}

	if p.curIs(token.WHERE) {
		p.advance()
		stmt.Where = p.parseExpr()
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseCreateView(pos token.Pos, orReplace, materialized bool) ast.Statement {
	if !p.expect(token.VIEW) {
		return nil
	}
	stmt := &ast.CreateViewStmt{StartPos: pos, OrReplace: orReplace, Materialized: materialized}
	stmt.IfNotExists = p.parseIfNotExists()
	stmt.Name = p.parseTableName()
	if p.curIs(token.LPAREN) {
		stmt.Columns = p.parseColumnNameList()
	}
	if !p.expect(token.AS) {
		return stmt
	}
	stmt.Query = p.parseStatement()
	if p.curIs(token.WITH) {
		p.advance()
		if p.curIs(token.IDENT) {
			stmt.CheckOption = p.cur.Value
			p.advance()
		}
		p.expect(token.CHECK)
		p.expect(token.OPTION)
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseCreatePolicy(pos token.Pos) ast.Statement {
	p.advance() // consume POLICY
	stmt := &ast.CreatePolicyStmt{StartPos: pos, Permissive: true}
	if p.curIsIdent() {
		stmt.Name = p.cur.Value
		p.advance()
	}
	p.expect(token.ON)
	stmt.Table = p.parseTableName()

	if p.curIs(token.AS) {
		p.advance()
		if p.curIs(token.RESTRICTIVE) {
			stmt.Permissive = false
			p.advance()
		} else if p.curIs(token.PERMISSIVE) {
			p.advance()
		}
	}
	if p.curIs(token.FOR) {
		p.advance()
		stmt.Command = p.cur.Value
		p.advance()
	}
	if p.curIs(token.TO) {
		p.advance()
		for {
			if p.curIsIdent() {
				stmt.Roles = append(stmt.Roles, p.cur.Value)
				p.advance()
			}
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	if p.curIs(token.USING) {
		p.advance()
		p.expect(token.LPAREN)
		stmt.Using = p.parseExpr()
		p.expect(token.RPAREN)
	}
	if p.curIs(token.WITH) {
		p.advance()
		p.expect(token.CHECK)
		p.expect(token.LPAREN)
		stmt.WithCheck = p.parseExpr()
		p.expect(token.RPAREN)
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseAlter() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume ALTER
	if !p.expect(token.TABLE) {
		return nil
	}
	stmt := &ast.AlterTableStmt{StartPos: pos}
	p.parseIfExists()
	stmt.Table = p.parseTableName()
	for {
		action := p.parseAlterTableAction()
		if action == nil {
			break
		}
		stmt.Actions = append(stmt.Actions, action)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseAlterTableAction() ast.AlterTableAction {
	switch p.cur.Type {
	case token.ADD:
		p.advance()
		if p.curIs(token.COLUMN) {
			p.advance()
		}
		if p.isTableConstraintStart() {
			return &ast.AddConstraint{Constraint: p.parseTableConstraint()}
		}
		return &ast.AddColumn{Column: p.parseColumnDef()}
	case token.DROP:
		p.advance()
		if p.curIs(token.COLUMN) {
			p.advance()
			ifExists := p.parseIfExists()
			name := p.cur.Value
			p.advance()
			cascade := false
			if p.curIs(token.CASCADE) {
				cascade = true
				p.advance()
			}
			return &ast.DropColumn{Name: name, IfExists: ifExists, Cascade: cascade}
		}
		if p.curIs(token.CONSTRAINT) {
			p.advance()
			ifExists := p.parseIfExists()
			name := p.cur.Value
			p.advance()
			cascade := false
			if p.curIs(token.CASCADE) {
				cascade = true
				p.advance()
			}
			return &ast.DropConstraint{Name: name, IfExists: ifExists, Cascade: cascade}
		}
		return nil
	case token.MODIFY, token.CHANGE:
		p.advance()
		if p.curIs(token.COLUMN) {
			p.advance()
		}
		name := p.cur.Value
		p.advance()
		mc := &ast.ModifyColumn{Name: name}
		if p.curIs(token.SET) {
			p.advance()
			if p.curIs(token.DEFAULT) {
				p.advance()
				mc.SetDefault = p.parseExpr()
			} else if p.curIs(token.NOT) {
				p.advance()
				p.expect(token.NULL)
				mc.SetNotNull = true
			}
		} else if p.curIs(token.DROP) {
			p.advance()
			if p.curIs(token.DEFAULT) {
				p.advance()
				mc.DropDefault = true
			} else if p.curIs(token.NOT) {
				p.advance()
				p.expect(token.NULL)
				mc.DropNotNull = true
			}
		} else {
			mc.NewDef = &ast.ColumnDef{Name: name, Type: p.parseDataType(), Constraints: p.parseColumnConstraints()}
		}
		return mc
	case token.RENAME:
		p.advance()
		if p.curIs(token.COLUMN) {
			p.advance()
			old := p.cur.Value
			p.advance()
			p.expect(token.TO)
			newName := p.cur.Value
			p.advance()
			return &ast.RenameColumn{OldName: old, NewName: newName}
		}
		if p.curIs(token.TO) {
			p.advance()
			return &ast.RenameTable{NewName: p.parseTableName()}
		}
		return nil
	default:
		return nil
	}
}

func (p *Parser) parseDrop() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume DROP
	switch p.cur.Type {
	case token.TABLE:
		return p.parseDropTable(pos)
	case token.INDEX:
		return p.parseDropIndex(pos)
	default:
		p.errorf("unsupported DROP target %v", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseDropTable(pos token.Pos) *ast.DropTableStmt {
	p.advance() // consume TABLE
	stmt := &ast.DropTableStmt{StartPos: pos}
	stmt.IfExists = p.parseIfExists()
	for {
		stmt.Tables = append(stmt.Tables, p.parseTableName())
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if p.curIs(token.CASCADE) {
		stmt.Cascade = true
		p.advance()
	} else if p.curIs(token.RESTRICT) {
		p.advance()
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseDropIndex(pos token.Pos) *ast.DropIndexStmt {
	p.advance() // consume INDEX
	stmt := &ast.DropIndexStmt{StartPos: pos}
	if p.curIs(token.CONCURRENTLY) {
		stmt.Concurrent = true
		p.advance()
	}
	stmt.IfExists = p.parseIfExists()
	if p.curIsIdent() {
		stmt.Name = p.cur.Value
		p.advance()
	}
	if p.curIs(token.ON) {
		p.advance()
		stmt.Table = p.parseTableName()
	}
	if p.curIs(token.CASCADE) {
		stmt.Cascade = true
		p.advance()
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseTruncate() *ast.TruncateStmt {
	pos := p.cur.Pos
	p.advance() // consume TRUNCATE
	if p.curIs(token.TABLE) {
		p.advance()
	}
	stmt := &ast.TruncateStmt{StartPos: pos}
	for {
		stmt.Tables = append(stmt.Tables, p.parseTableName())
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if p.curIs(token.RESTART) {
		p.advance()
		p.expect(token.IDENTITY)
		t := true
		stmt.Restart = &t
	} else if p.curIs(token.CONTINUE) {
		p.advance()
		p.expect(token.IDENTITY)
		f := false
		stmt.Restart = &f
	}
	if p.curIs(token.CASCADE) {
		stmt.Cascade = true
		p.advance()
	} else if p.curIs(token.RESTRICT) {
		p.advance()
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseExplain() *ast.ExplainStmt {
	pos := p.cur.Pos
	stmt := &ast.ExplainStmt{StartPos: pos}
	if p.curIs(token.ANALYZE) {
		stmt.Analyze = true
		p.advance()
	} else {
		p.advance() // consume EXPLAIN
		if p.curIs(token.ANALYZE) {
			stmt.Analyze = true
			p.advance()
		}
	}
	if p.curIs(token.VERBOSE) {
		stmt.Verbose = true
		p.advance()
	}
	if p.curIs(token.LPAREN) {
		p.advance()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			name := p.cur.Value
			p.advance()
			value := "true"
			if p.curIsIdent() || p.curIs(token.INT) || p.curIs(token.TRUE) || p.curIs(token.FALSE) {
				value = p.cur.Value
				p.advance()
			}
			stmt.Options = append(stmt.Options, &ast.ExplainOption{Name: name, Value: value})
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RPAREN)
	}
	if p.curIs(token.FORMAT) {
		p.advance()
		if p.curIsIdent() {
			stmt.Format = p.cur.Value
			p.advance()
		}
	}
	stmt.Stmt = p.parseStatement()
	stmt.EndPos = p.cur.Pos
	return stmt
}

// parseParenthesizedStatement handles a top-level statement wrapped in
// parens, e.g. (SELECT 1) UNION (SELECT 2).
func (p *Parser) parseParenthesizedStatement() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume (
	inner := p.parseStatement()
	if !p.expect(token.RPAREN) {
		return nil
	}
	if p.curIs(token.UNION) || p.curIs(token.INTERSECT) || p.curIs(token.EXCEPT) {
		return p.parseSetOpTail(inner, pos)
	}
	return inner
}

func (p *Parser) parseMerge() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume MERGE
	if p.curIs(token.INTO) {
		p.advance()
	}
	stmt := &ast.MergeStmt{StartPos: pos}
	stmt.Target = p.parseTablePrimary()
	p.expect(token.USING)
	stmt.Source = p.parseTablePrimary()
	p.expect(token.ON)
	stmt.On = p.parseExpr()

	for p.curIs(token.WHEN) {
		stmt.Clauses = append(stmt.Clauses, p.parseMergeClause())
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseMergeClause() *ast.MergeClause {
	p.advance() // consume WHEN
	mc := &ast.MergeClause{}
	if p.curIs(token.NOT) {
		p.advance()
		mc.Matched = false
	} else {
		mc.Matched = true
	}
	p.expect(token.MATCHED)
	if !mc.Matched && p.curIs(token.BY) {
		p.advance()
		if p.curIs(token.IDENT) && p.cur.Value == "SOURCE" {
			mc.BySource = true
		}
		p.advance() // SOURCE or TARGET
	}
	if p.curIs(token.AND) {
		p.advance()
		mc.Condition = p.parseExpr()
	}
	p.expect(token.THEN)
	switch p.cur.Type {
	case token.UPDATE:
		p.advance()
		p.expect(token.SET)
		mc.Action = &ast.MergeUpdate{Set: p.parseUpdateExprs()}
	case token.DELETE:
		p.advance()
		mc.Action = &ast.MergeDelete{}
	case token.INSERT:
		p.advance()
		mi := &ast.MergeInsert{}
		if p.curIs(token.LPAREN) {
			names := p.parseColumnNameList()
			for _, n := range names {
				mi.Columns = append(mi.Columns, &ast.ColName{Parts: []string{n}})
			}
		}
		if p.curIs(token.DEFAULT) {
			p.advance()
			p.expect(token.VALUES)
			mi.DefaultVals = true
		} else {
			p.expect(token.VALUES)
			p.expect(token.LPAREN)
			mi.Values = p.parseExprList()
			p.expect(token.RPAREN)
		}
		mc.Action = mi
	}
	return mc
}

func (p *Parser) parseGrant() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume GRANT
	stmt := &ast.GrantStmt{StartPos: pos}
	stmt.Privileges = p.parsePrivilegeList()
	p.expect(token.ON)
	if p.curIs(token.TABLE) || p.curIs(token.SCHEMA) || p.curIs(token.DATABASE) {
		stmt.ObjectType = p.cur.Value
		p.advance()
	}
	for {
		stmt.Objects = append(stmt.Objects, p.parseTableName())
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.TO)
	stmt.Grantees = p.parseGranteeList()
	if p.curIs(token.WITH) {
		p.advance()
		p.expect(token.GRANT)
		p.expect(token.OPTION)
		stmt.WithGrant = true
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseRevoke() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume REVOKE
	stmt := &ast.RevokeStmt{StartPos: pos}
	stmt.Privileges = p.parsePrivilegeList()
	p.expect(token.ON)
	if p.curIs(token.TABLE) || p.curIs(token.SCHEMA) || p.curIs(token.DATABASE) {
		stmt.ObjectType = p.cur.Value
		p.advance()
	}
	for {
		stmt.Objects = append(stmt.Objects, p.parseTableName())
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.FROM)
	stmt.Grantees = p.parseGranteeList()
	if p.curIs(token.CASCADE) {
		stmt.Cascade = true
		p.advance()
	} else if p.curIs(token.RESTRICT) {
		p.advance()
	}
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parsePrivilegeList() []string {
	var privs []string
	for {
		if p.curIs(token.ALL) {
			p.advance()
			if p.curIs(token.PRIVILEGES) {
				p.advance()
			}
			privs = append(privs, "ALL")
		} else if p.curIsIdent() {
			privs = append(privs, p.cur.Value)
			p.advance()
			if p.curIs(token.LPAREN) {
				p.parseColumnNameList()
			}
		} else {
			break
		}
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return privs
}

func (p *Parser) parseGranteeList() []string {
	var grantees []string
	for {
		if p.curIs(token.PUBLIC) {
			grantees = append(grantees, "PUBLIC")
			p.advance()
		} else if p.curIsIdent() {
			grantees = append(grantees, p.cur.Value)
			p.advance()
		} else {
			break
		}
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return grantees
}
