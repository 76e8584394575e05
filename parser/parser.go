// Package parser provides a recursive descent SQL parser.
package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/riverfmt/riverfmt/ast"
	"github.com/riverfmt/riverfmt/dialect"
	"github.com/riverfmt/riverfmt/lexer"
	"github.com/riverfmt/riverfmt/token"
)

// ParseError represents a parse error with position.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// MaxDepthError is raised when a recursive production exceeds the parser's
// depth limit. Unlike ParseError it is never converted into a raw node: the
// parser has no safe way to truncate a grammar production mid-flight, so it
// always aborts the whole parse.
type MaxDepthError struct {
	Pos   token.Pos
	Limit int
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("line %d, column %d: exceeded max parse depth %d", e.Pos.Line, e.Pos.Column, e.Limit)
}

// RecoverContext accompanies every recovery-related callback with its
// position in the overall statement sequence. StatementIndex is 1-based:
// the first statement in the input is index 1.
type RecoverContext struct {
	StatementIndex  int
	TotalStatements int
}

// Options configures a Parser's dialect, depth guard, and recovery behavior.
type Options struct {
	Profile         *dialect.Profile
	MaxDepth        int // 0 means use the default (200)
	MaxTokenCount   int // 0 means unlimited
	Recover         bool
	OnRecover       func(err error, raw *ast.RawStmt, ctx RecoverContext)
	OnDropStatement func(err error, ctx RecoverContext)
	OnPassthrough   func(raw *ast.RawStmt, ctx RecoverContext)
}

const defaultDepthLimit = 200

// Parser is a recursive descent SQL parser.
type Parser struct {
	lexer      *lexer.Lexer
	src        string // full original source, for raw-text recovery slicing
	posBase    int    // added to every lexer-reported offset after a recovery rewind
	errors     []ParseError
	cur        token.Item // current token
	profile    *dialect.Profile
	depth      int
	depthLimit int
	fatal      error // set on MaxDepthError; aborts the parse immediately

	// pending accumulates comment text the lexer attached to consumed
	// tokens, until a statement or list item claims it. Comments before a
	// statement become its leading comments; a comment between select-list
	// items becomes the previous item's trailing comment; anything left when
	// a statement completes folds into that statement's leading list so no
	// comment is ever dropped.
	pending []string

	recoverMode     bool
	onRecover       func(err error, raw *ast.RawStmt, ctx RecoverContext)
	onDropStatement func(err error, ctx RecoverContext)
	onPassthrough   func(raw *ast.RawStmt, ctx RecoverContext)
}

// New creates a new parser for the given input using the default (ANSI)
// dialect profile, depth limit, and recovery enabled. Use NewWithOptions for
// full control.
func New(input string) *Parser {
	return NewWithOptions(input, Options{})
}

// NewWithOptions creates a parser with an explicit dialect profile, depth
// limit, token cap, and recovery configuration.
func NewWithOptions(input string, opts Options) *Parser {
	profile := opts.Profile
	if profile == nil {
		profile = dialect.Default
	}
	depthLimit := opts.MaxDepth
	if depthLimit <= 0 {
		depthLimit = defaultDepthLimit
	}
	lx := lexer.New(input, profile)
	if opts.MaxTokenCount > 0 {
		lx.SetMaxTokens(opts.MaxTokenCount)
	}
	p := &Parser{
		lexer:           lx,
		src:             input,
		profile:         profile,
		depthLimit:      depthLimit,
		recoverMode:     opts.Recover,
		onRecover:       opts.OnRecover,
		onDropStatement: opts.OnDropStatement,
		onPassthrough:   opts.OnPassthrough,
	}
	p.advance() // Prime the first token
	return p
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// Get returns a parser from the pool for the given input, using the default
// dialect profile. Call Put(p) when done to return it to the pool.
func Get(input string) *Parser {
	return GetWithOptions(input, Options{})
}

// GetWithOptions returns a pooled parser configured like NewWithOptions.
func GetWithOptions(input string, opts Options) *Parser {
	profile := opts.Profile
	if profile == nil {
		profile = dialect.Default
	}
	depthLimit := opts.MaxDepth
	if depthLimit <= 0 {
		depthLimit = defaultDepthLimit
	}
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input, profile)
	if opts.MaxTokenCount > 0 {
		p.lexer.SetMaxTokens(opts.MaxTokenCount)
	}
	p.src = input
	p.posBase = 0
	p.profile = profile
	p.depth = 0
	p.depthLimit = depthLimit
	p.fatal = nil
	p.errors = p.errors[:0]
	p.pending = nil
	p.cur = token.Item{}
	p.recoverMode = opts.Recover
	p.onRecover = opts.OnRecover
	p.onDropStatement = opts.OnDropStatement
	p.onPassthrough = opts.OnPassthrough
	p.advance()
	return p
}

// Put returns the parser and its lexer to the pool.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// Parse parses a single statement, ignoring recovery configuration (a
// direct grammar failure always propagates). Use ParseAll to get
// spec-compliant multi-statement recovery behavior.
func (p *Parser) Parse() (ast.Statement, error) {
	p.skipComments()
	if p.curIs(token.EOF) {
		return nil, nil
	}
	stmt := p.parseStatement()
	if p.fatal != nil {
		return nil, p.fatal
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	p.skipComments()
	for p.curIs(token.SEMICOLON) {
		p.advance()
		p.skipComments()
	}
	if !p.curIs(token.EOF) {
		p.errorf("unexpected token %v after statement", p.cur.Type)
		return nil, p.errors[0]
	}
	return stmt, nil
}

type pendingEvent struct {
	kind string // "recover", "passthrough", "drop"
	err  error
	raw  *ast.RawStmt
	idx  int
}

// ParseAll parses every top-level statement in the input. Grammar failures
// are converted to *ast.RawStmt nodes when recovery is enabled (the
// default). A lexer/tokenizer failure or depth overflow always aborts and
// is returned as the error.
func (p *Parser) ParseAll() ([]ast.Statement, error) {
	var stmts []ast.Statement
	var events []pendingEvent

	for {
		for p.curIs(token.SEMICOLON) {
			if len(p.pending) > 0 {
				stmts = append(stmts, p.commentOnlyRaw())
			}
			p.advance()
			if err := p.lexErr(); err != nil {
				return stmts, err
			}
		}
		if p.curIs(token.EOF) {
			if len(p.pending) > 0 {
				stmts = append(stmts, p.commentOnlyRaw())
			}
			break
		}

		startOffset := p.cur.Pos.Offset
		leading := p.takePending()
		errCountBefore := len(p.errors)
		depthBefore := p.depth

		stmt := p.parseStatement()

		if p.fatal != nil {
			return stmts, p.fatal
		}
		if err := p.lexErr(); err != nil {
			return stmts, err
		}

		if len(p.errors) > errCountBefore {
			err := p.errors[errCountBefore]
			p.errors = p.errors[:errCountBefore]
			p.depth = depthBefore
			if !p.recoverMode {
				return stmts, err
			}
			p.rewindTo(startOffset)
			text, ok := p.scanPassthroughText(startOffset)
			if !ok {
				events = append(events, pendingEvent{kind: "drop", err: err, idx: len(stmts)})
				continue
			}
			raw := &ast.RawStmt{
				StartPos: token.Pos{Offset: startOffset},
				Text:     text,
				Reason:   ast.RawParseError,
				Comments: ast.Comments{Leading: leading},
			}
			stmts = append(stmts, raw)
			events = append(events, pendingEvent{kind: "recover", err: err, raw: raw, idx: len(stmts) - 1})
			continue
		}

		if stmt == nil {
			// Current token didn't match a recognized statement starter but
			// might be plausible passthrough DDL/session control.
			text, ok := p.scanPassthroughText(startOffset)
			if !ok {
				continue
			}
			raw := &ast.RawStmt{
				StartPos: token.Pos{Offset: startOffset},
				Text:     text,
				Reason:   ast.RawUnsupported,
				Comments: ast.Comments{Leading: leading},
			}
			stmts = append(stmts, raw)
			events = append(events, pendingEvent{kind: "passthrough", raw: raw, idx: len(stmts) - 1})
			continue
		}

		mid := p.takePending()
		if len(leading) > 0 || len(mid) > 0 {
			if cr := ast.CommentsRef(stmt); cr != nil {
				all := append(append([]string{}, leading...), cr.Leading...)
				cr.Leading = append(all, mid...)
			}
		}
		stmts = append(stmts, stmt)
	}

	total := len(stmts)
	for _, ev := range events {
		ctx := RecoverContext{StatementIndex: ev.idx + 1, TotalStatements: total}
		switch ev.kind {
		case "recover":
			if p.onRecover != nil {
				p.onRecover(ev.err, ev.raw, ctx)
			}
		case "passthrough":
			if p.onPassthrough != nil {
				p.onPassthrough(ev.raw, ctx)
			}
		case "drop":
			if p.onDropStatement != nil {
				p.onDropStatement(ev.err, ctx)
			}
		}
	}
	return stmts, nil
}

func (p *Parser) lexErr() error {
	if e := p.lexer.Err(); e != nil {
		return e
	}
	return nil
}

// commentOnlyRaw builds a RawStmt for a run of standalone comments with no
// following statement in the same slot.
func (p *Parser) commentOnlyRaw() *ast.RawStmt {
	leading := p.takePending()
	return &ast.RawStmt{
		StartPos: p.cur.Pos,
		EndPos:   p.cur.Pos,
		Reason:   ast.RawCommentOnly,
		Comments: ast.Comments{Leading: leading},
	}
}

// rewindTo restarts lexing at the given absolute byte offset in the original
// source, so recovery scanning and raw-text capture can proceed from a
// clean position after a broken production leaves the token stream in an
// unpredictable place.
func (p *Parser) rewindTo(offset int) {
	if offset < 0 || offset > len(p.src) {
		offset = len(p.src)
	}
	p.lexer.Reset(p.src[offset:], p.profile)
	p.posBase = offset
	p.pending = nil // re-lexed text carries its comments verbatim
	p.advance()
}

// scanPassthroughText consumes tokens from the current position (assumed to
// be startOffset) up to but not including the next ';' or statement-starter
// token, tracking parenthesis nesting so a statement keyword inside a
// subquery or option list doesn't look like a boundary. A bare ';' ends the
// capture even inside unbalanced parens: a statement that broke mid-paren
// must not swallow its healthy successors. Returns the trimmed verbatim
// source text and whether anything was captured.
func (p *Parser) scanPassthroughText(startOffset int) (string, bool) {
	depth := 0
	for i := 0; !p.curIs(token.EOF); i++ {
		if p.curIs(token.LPAREN) {
			depth++
			p.advance()
			continue
		}
		if p.curIs(token.RPAREN) {
			if depth > 0 {
				depth--
			}
			p.advance()
			continue
		}
		if p.curIs(token.SEMICOLON) {
			text := strings.TrimSpace(p.src[startOffset:p.cur.Pos.Offset])
			p.pending = nil // comments up to here sit inside the raw text
			p.advance()
			return text, len(text) > 0
		}
		// The statement's own leading token is frequently a starter; only a
		// later starter at paren depth zero marks the next statement.
		if i > 0 && depth == 0 && p.isStatementStarterToken() {
			text := strings.TrimSpace(p.src[startOffset:p.cur.Pos.Offset])
			p.pending = nil
			return text, len(text) > 0
		}
		p.advance()
	}
	text := strings.TrimSpace(p.src[startOffset:])
	p.pending = nil
	return text, len(text) > 0
}

// isStatementStarterToken reports whether the current token can begin a
// top-level statement under the active dialect profile. This queries
// Profile.IsStatementStarter against the token's text rather than a fixed
// token.Token switch, so a custom profile's additions (or a dialect's own
// extensions, e.g. TSQL's "go"/"backup"/"dbcc"/"exec") actually take effect:
// those words often lex as plain IDENT (they have no dedicated token.Token
// constant), so matching on token kind alone would never see them.
func (p *Parser) isStatementStarterToken() bool {
	if p.cur.Type == token.EOF {
		return false
	}
	return p.profile.IsStatementStarter(p.cur.Value)
}

// Token navigation methods

func (p *Parser) advance() {
	it := p.lexer.NextSignificant()
	it.Pos.Offset += p.posBase
	if len(it.Leading) > 0 {
		p.pending = append(p.pending, it.Leading...)
		it.Leading = nil
	}
	p.cur = it
}

// takePending claims every comment seen since the last claim.
func (p *Parser) takePending() []string {
	if len(p.pending) == 0 {
		return nil
	}
	out := p.pending
	p.pending = nil
	return out
}

// takeOnePending claims the oldest unclaimed comment, used for the
// "item, -- note" trailing-comment case.
func (p *Parser) takeOnePending() (string, bool) {
	if len(p.pending) == 0 {
		return "", false
	}
	c := p.pending[0]
	p.pending = p.pending[1:]
	return c, true
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur.Type == t
}

// curIsIdent returns true if the current token can be used as an identifier.
// This includes both IDENT tokens and keywords (which can be used as identifiers
// in certain contexts like table/column names).
func (p *Parser) curIsIdent() bool {
	return p.cur.Type == token.IDENT || p.cur.Type.IsKeyword()
}

// curIdentValue returns the identifier value of the current token.
// Works for both IDENT tokens and keywords used as identifiers.
func (p *Parser) curIdentValue() string {
	return p.cur.Value
}

func (p *Parser) curIsKeyword(keywords ...token.Token) bool {
	for _, kw := range keywords {
		if p.cur.Type == kw {
			return true
		}
	}
	return false
}

func (p *Parser) peek() token.Item {
	it := p.lexer.Peek()
	it.Pos.Offset += p.posBase
	return it
}

func (p *Parser) peekIs(t token.Token) bool {
	return p.peek().Type == t
}

func (p *Parser) expect(t token.Token) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.errorf("expected %v, got %v", t, p.cur.Type)
	return false
}

// skipComments is now a no-op in the common path since advance() already
// collapses comments onto the next significant token's Leading field; it is
// kept so existing call sites compile unchanged and so a defensive call
// after a manual token splice is harmless.
func (p *Parser) skipComments() {
	for p.curIs(token.COMMENT) {
		p.advance()
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{
		Pos:     p.cur.Pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// enterDepth increments the shared expression/statement recursion counter
// and reports whether the caller may proceed. On overflow it records a
// MaxDepthError and the caller must unwind without further recursion.
func (p *Parser) enterDepth() bool {
	p.depth++
	if p.depth > p.depthLimit {
		p.fatal = &MaxDepthError{Pos: p.cur.Pos, Limit: p.depthLimit}
		return false
	}
	return true
}

func (p *Parser) exitDepth() {
	p.depth--
}

// parseStatement dispatches to the appropriate statement parser. Returns
// nil without recording an error when the current token doesn't match any
// recognized statement starter — the caller (ParseAll) treats that as a
// candidate for unsupported-statement passthrough rather than a parse
// failure.
func (p *Parser) parseStatement() ast.Statement {
	if !p.enterDepth() {
		return nil
	}
	defer p.exitDepth()

	switch p.cur.Type {
	case token.SELECT:
		return p.parseSelectStatement()
	case token.INSERT, token.REPLACE:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.CREATE:
		return p.parseCreate()
	case token.ALTER:
		return p.parseAlter()
	case token.DROP:
		return p.parseDrop()
	case token.WITH:
		return p.parseWith()
	case token.TRUNCATE:
		return p.parseTruncate()
	case token.EXPLAIN, token.ANALYZE:
		return p.parseExplain()
	case token.VALUES:
		return p.parseValuesStatement()
	case token.MERGE:
		return p.parseMerge()
	case token.GRANT:
		return p.parseGrant()
	case token.REVOKE:
		return p.parseRevoke()
	case token.LPAREN:
		return p.parseParenthesizedStatement()
	default:
		return nil
	}
}

func (p *Parser) parseValuesStatement() ast.Statement {
	return p.parseValuesClause()
}

// parseWith handles WITH clause (CTEs).
func (p *Parser) parseWith() ast.Statement {
	withClause := p.parseWithClause()

	p.skipComments()
	switch p.cur.Type {
	case token.SELECT:
		stmt := p.parseSelectStatement()
		if stmt != nil {
			switch s := stmt.(type) {
			case *ast.SelectStmt:
				s.With = withClause
			case *ast.SetOp:
				attachWithToSetOp(s, withClause)
			}
		}
		return stmt
	case token.INSERT, token.REPLACE:
		stmt := p.parseInsert()
		if stmt != nil {
			stmt.With = withClause
		}
		return stmt
	case token.UPDATE:
		stmt := p.parseUpdate()
		if stmt != nil {
			stmt.With = withClause
		}
		return stmt
	case token.DELETE:
		stmt := p.parseDelete()
		if stmt != nil {
			stmt.With = withClause
		}
		return stmt
	default:
		p.errorf("expected SELECT, INSERT, UPDATE, or DELETE after WITH clause, got %v", p.cur.Type)
		return nil
	}
}

// attachWithToSetOp threads a WITH clause onto the left-most member of a
// set-operation chain, which is where it renders.
func attachWithToSetOp(s *ast.SetOp, with *ast.WithClause) {
	for {
		if left, ok := s.Left.(*ast.SelectStmt); ok {
			left.With = with
			return
		}
		if left, ok := s.Left.(*ast.SetOp); ok {
			s = left
			continue
		}
		return
	}
}
