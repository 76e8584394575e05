// Package lexer provides a lexical scanner for SQL.
package lexer

import (
	"fmt"
	"sync"

	"github.com/riverfmt/riverfmt/dialect"
	"github.com/riverfmt/riverfmt/token"
)

// TokenizeError reports a lexical failure: an input byte sequence that could
// not be classified into any token, or a token budget that was exceeded.
type TokenizeError struct {
	Pos     token.Pos
	Message string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Lexer tokenizes SQL input against a dialect profile.
type Lexer struct {
	input     string
	start     int        // start position of current token
	pos       int        // current position in input
	line      int        // current line number (1-indexed)
	linePos   int        // position of current line start
	item      token.Item // most recently scanned item
	peeked    bool       // whether item contains a peeked token
	profile   *dialect.Profile
	maxTokens int // 0 means unlimited
	count     int
	err       *TokenizeError
}

var lexerPool = sync.Pool{
	New: func() any { return &Lexer{} },
}

// New creates a new Lexer for the input string under the given dialect
// profile. A nil profile falls back to dialect.Default.
func New(input string, profile *dialect.Profile) *Lexer {
	if profile == nil {
		profile = dialect.Default
	}
	return &Lexer{
		input:   input,
		line:    1,
		linePos: 0,
		profile: profile,
	}
}

// Get returns a Lexer from the pool, initialized with the input.
func Get(input string, profile *dialect.Profile) *Lexer {
	l := lexerPool.Get().(*Lexer)
	l.Reset(input, profile)
	return l
}

// Put returns the Lexer to the pool.
func Put(l *Lexer) {
	lexerPool.Put(l)
}

// Reset resets the lexer to scan new input under the given profile.
func (l *Lexer) Reset(input string, profile *dialect.Profile) {
	if profile == nil {
		profile = dialect.Default
	}
	l.input = input
	l.start = 0
	l.pos = 0
	l.line = 1
	l.linePos = 0
	l.item = token.Item{}
	l.peeked = false
	l.profile = profile
	l.count = 0
	l.err = nil
}

// SetMaxTokens bounds how many tokens Next will produce before reporting a
// TokenizeError instead of continuing to scan. Zero means unlimited.
func (l *Lexer) SetMaxTokens(n int) {
	l.maxTokens = n
}

// Err returns the tokenize error recorded by the most recent Next call, if
// the input was illegal or the token budget was exceeded.
func (l *Lexer) Err() *TokenizeError {
	return l.err
}

// Input returns the full source text being scanned, for callers (like the
// parser's recovery mode) that need to slice out a raw byte range.
func (l *Lexer) Input() string {
	return l.input
}

// Next returns the next token.
func (l *Lexer) Next() token.Item {
	if l.peeked {
		l.peeked = false
		return l.item
	}
	l.item = l.scanChecked()
	return l.item
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scanChecked()
		l.peeked = true
	}
	return l.item
}

// NextSignificant returns the next non-comment token, with any comments
// that preceded it collected (in source order) onto the token's Leading
// field so the parser can attach them to an AST node.
func (l *Lexer) NextSignificant() token.Item {
	var leading []string
	for {
		it := l.Next()
		if it.Type == token.COMMENT {
			leading = append(leading, it.Value)
			continue
		}
		if len(leading) > 0 {
			it.Leading = leading
		}
		return it
	}
}

func (l *Lexer) scanChecked() token.Item {
	if l.err != nil {
		return token.Item{Type: token.EOF}
	}
	if l.maxTokens > 0 && l.count >= l.maxTokens {
		l.err = &TokenizeError{Pos: l.curPos(), Message: "token count exceeds configured maximum"}
		return token.Item{Type: token.EOF}
	}
	it := l.scan()
	l.count++
	if it.Type == token.ILLEGAL {
		l.err = &TokenizeError{Pos: it.Pos, Message: fmt.Sprintf("unrecognized input %q", it.Value)}
	}
	return it
}

func (l *Lexer) curPos() token.Pos {
	return token.Pos{Offset: l.pos, Line: l.line, Column: l.pos - l.linePos + 1}
}

// scan performs the actual lexical analysis.
func (l *Lexer) scan() token.Item {
	l.skipWhitespace()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.makeItem(token.EOF, "")
	}

	ch := l.input[l.pos]

	// Fast path for common single-character tokens
	switch ch {
	case '(':
		l.pos++
		return l.makeItem(token.LPAREN, "(")
	case ')':
		l.pos++
		return l.makeItem(token.RPAREN, ")")
	case '[':
		// Check if this is a SQL Server bracket-quoted identifier
		return l.scanBracketOrLBracket()
	case ']':
		l.pos++
		return l.makeItem(token.RBRACKET, "]")
	case ',':
		l.pos++
		return l.makeItem(token.COMMA, ",")
	case ';':
		l.pos++
		return l.makeItem(token.SEMICOLON, ";")
	case '+':
		l.pos++
		return l.makeItem(token.PLUS, "+")
	case '*':
		l.pos++
		return l.makeItem(token.ASTERISK, "*")
	case '%':
		l.pos++
		return l.makeItem(token.PERCENT, "%")
	case '~':
		l.pos++
		return l.makeItem(token.BITNOT, "~")
	case '^':
		l.pos++
		return l.makeItem(token.BITXOR, "^")
	case '@':
		return l.scanAt()
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber()
		}
		l.pos++
		return l.makeItem(token.DOT, ".")
	case '-':
		return l.scanMinus()
	case '/':
		return l.scanSlash()
	case '\'':
		return l.scanString('\'')
	case '"':
		return l.scanQuotedIdentifier()
	case '`':
		return l.scanBacktickIdentifier()
	case '=':
		l.pos++
		return l.makeItem(token.EQ, "=")
	case '<':
		return l.scanLessThan()
	case '>':
		return l.scanGreaterThan()
	case '!':
		return l.scanBang()
	case '|':
		return l.scanPipe()
	case '&':
		l.pos++
		return l.makeItem(token.BITAND, "&")
	case '?':
		return l.scanQuestion()
	case '$':
		return l.scanDollar()
	case ':':
		return l.scanColon()
	case '#':
		return l.scanHash()
	}

	// Identifiers and keywords
	if isIdentStart(ch) {
		return l.scanIdentifier()
	}

	// Numbers
	if isDigit(ch) {
		return l.scanNumber()
	}

	// Unknown character
	l.pos++
	return l.makeItem(token.ILLEGAL, string(ch))
}

func (l *Lexer) makeItem(typ token.Token, val string) token.Item {
	return token.Item{
		Type:  typ,
		Value: val,
		Pos: token.Pos{
			Offset: l.start,
			Line:   l.line,
			Column: l.start - l.linePos + 1,
		},
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
		} else if ch == '\n' {
			l.pos++
			l.line++
			l.linePos = l.pos
		} else {
			break
		}
	}
}

// scanIdentifier scans a bare identifier and classifies it as a keyword
// only if the active dialect profile recognizes it as one. A recognized
// word is then mapped to its token through the static table in
// token/keywords.go, so a profile keyword with no entry there still lexes
// as IDENT; any word the profile does not recognize is IDENT.
func (l *Lexer) scanIdentifier() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	val := l.input[l.start:l.pos]
	if l.profile.IsKeyword(val) {
		return l.makeItem(token.LookupIdent(val), val)
	}
	return l.makeItem(token.IDENT, val)
}

func (l *Lexer) scanNumber() token.Item {
	tok := token.INT

	// Handle hex numbers: 0x...
	if l.pos+1 < len(l.input) && l.input[l.pos] == '0' &&
		(l.input[l.pos+1] == 'x' || l.input[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < len(l.input) && isHexDigit(l.input[l.pos]) {
			l.pos++
		}
		return l.makeItem(token.INT, l.input[l.start:l.pos])
	}

	// Integer part
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}

	// Decimal part
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		// Check it's not a range operator (..)
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '.' {
			return l.makeItem(tok, l.input[l.start:l.pos])
		}
		tok = token.FLOAT
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	// Exponent
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		tok = token.FLOAT
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	return l.makeItem(tok, l.input[l.start:l.pos])
}

func (l *Lexer) scanString(quote byte) token.Item {
	l.pos++ // skip opening quote
	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			// Check for escaped quote ('')
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == quote {
				buf = append(buf, quote)
				l.pos += 2
				continue
			}
			// End of string
			l.pos++
			return l.makeItem(token.STRING, string(buf))
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			// Handle escape sequences - interpret them
			next := l.input[l.pos+1]
			switch next {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '\\':
				buf = append(buf, '\\')
			case '\'':
				buf = append(buf, '\'')
			case '"':
				buf = append(buf, '"')
			default:
				// Unknown escape - keep the backslash and char
				buf = append(buf, '\\', next)
			}
			l.pos += 2
			continue
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		buf = append(buf, ch)
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanQuotedIdentifier() token.Item {
	l.pos++ // skip opening "
	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			// Check for escaped quote
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				buf = append(buf, '"')
				l.pos += 2
				continue
			}
			l.pos++
			// Extract the identifier without quotes, handling escapes
			var it token.Item
			if buf == nil {
				it = l.makeItem(token.IDENT, l.input[l.start+1:l.pos-1])
			} else {
				it = l.makeItem(token.IDENT, string(buf))
			}
			it.Quoted = true
			return it
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		buf = append(buf, ch)
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanBacktickIdentifier() token.Item {
	l.pos++ // skip opening `
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '`' {
			// Check for escaped backtick
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '`' {
				l.pos += 2
				continue
			}
			l.pos++
			// Extract the identifier without backticks
			val := l.input[l.start+1 : l.pos-1]
			it := l.makeItem(token.IDENT, val)
			it.Quoted = true
			return it
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanBracketOrLBracket() token.Item {
	// Peek at next character to see if this is a bracket-quoted identifier
	if l.pos+1 < len(l.input) {
		next := l.input[l.pos+1]
		// If followed by identifier-start char (letter, underscore) or # @ for temp tables/variables,
		// treat as SQL Server bracket-quoted identifier.
		// Do NOT include space here - that allows array subscripts to use [ expr ] format.
		if isIdentStart(next) || next == '#' || next == '@' {
			return l.scanBracketIdentifier()
		}
	}
	// Otherwise just return LBRACKET for array subscript
	l.pos++
	return l.makeItem(token.LBRACKET, "[")
}

func (l *Lexer) scanBracketIdentifier() token.Item {
	l.pos++ // skip opening [
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ']' {
			// Check for escaped bracket ]]
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == ']' {
				l.pos += 2
				continue
			}
			l.pos++
			// Extract the identifier without brackets
			val := l.input[l.start+1 : l.pos-1]
			it := l.makeItem(token.IDENT, val)
			it.Quoted = true
			return it
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanMinus() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '-':
			// Line comment
			return l.scanLineComment()
		case '>':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '>' {
				l.pos++
				return l.makeItem(token.DARROW, "->>")
			}
			return l.makeItem(token.ARROW, "->")
		}
	}
	return l.makeItem(token.MINUS, "-")
}

func (l *Lexer) scanSlash() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '*' {
		return l.scanBlockComment()
	}
	return l.makeItem(token.SLASH, "/")
}

func (l *Lexer) scanLineComment() token.Item {
	l.pos++ // skip second -
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
	return l.makeItem(token.COMMENT, l.input[l.start:l.pos])
}

func (l *Lexer) scanBlockComment() token.Item {
	l.pos++ // skip *
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
			l.pos += 2
			return l.makeItem(token.COMMENT, l.input[l.start:l.pos])
		}
		if l.input[l.pos] == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanLessThan() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '=':
			l.pos++
			return l.makeItem(token.LTE, "<=")
		case '>':
			l.pos++
			return l.makeItem(token.NEQ, "<>")
		case '<':
			l.pos++
			return l.makeItem(token.LSHIFT, "<<")
		}
	}
	return l.makeItem(token.LT, "<")
}

func (l *Lexer) scanGreaterThan() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '=':
			l.pos++
			return l.makeItem(token.GTE, ">=")
		case '>':
			l.pos++
			return l.makeItem(token.RSHIFT, ">>")
		}
	}
	return l.makeItem(token.GT, ">")
}

func (l *Lexer) scanBang() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '=' {
		l.pos++
		return l.makeItem(token.NEQ, "!=")
	}
	return l.makeItem(token.ILLEGAL, "!")
}

func (l *Lexer) scanPipe() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '|' {
		l.pos++
		return l.makeItem(token.CONCAT, "||")
	}
	return l.makeItem(token.BITOR, "|")
}

func (l *Lexer) scanQuestion() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '|':
			l.pos++
			return l.makeItem(token.QUESTIONOR, "?|")
		case '&':
			l.pos++
			return l.makeItem(token.QUESTIONAND, "?&")
		}
	}
	return l.makeItem(token.PARAM, "?")
}

func (l *Lexer) scanDollar() token.Item {
	l.pos++
	// Check for positional parameter $1, $2, etc.
	if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return l.makeItem(token.PARAM, l.input[l.start:l.pos])
	}
	// Check for dollar-quoted string $$...$$ or $tag$...$tag$
	if l.pos < len(l.input) {
		tag := ""
		if l.input[l.pos] == '$' {
			// $$...$$ form
			l.pos++ // skip second $
		} else if isIdentStart(l.input[l.pos]) {
			// $tag$...$tag$ form - tag cannot contain $
			tagStart := l.pos
			for l.pos < len(l.input) && isTagChar(l.input[l.pos]) {
				l.pos++
			}
			if l.pos < len(l.input) && l.input[l.pos] == '$' {
				tag = l.input[tagStart:l.pos]
				l.pos++ // skip closing $ of opening delimiter
			} else {
				// Not a dollar-quoted string
				l.pos = l.start + 1
				return l.makeItem(token.ILLEGAL, "$")
			}
		} else {
			return l.makeItem(token.ILLEGAL, "$")
		}
		return l.scanDollarQuotedStringContent(tag)
	}
	return l.makeItem(token.ILLEGAL, "$")
}

func (l *Lexer) scanDollarQuotedStringContent(tag string) token.Item {
	contentStart := l.pos
	endDelim := "$" + tag + "$"

	for l.pos < len(l.input) {
		if l.input[l.pos] == '$' {
			// Check for closing delimiter
			if l.pos+len(endDelim) <= len(l.input) &&
				l.input[l.pos:l.pos+len(endDelim)] == endDelim {
				content := l.input[contentStart:l.pos]
				l.pos += len(endDelim)
				it := l.makeItem(token.STRING, content)
				it.DollarTag = tag
				return it
			}
		}
		if l.input[l.pos] == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

func (l *Lexer) scanColon() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ':':
			l.pos++
			return l.makeItem(token.DCOLON, "::")
		default:
			// Named parameter :name
			if isIdentStart(l.input[l.pos]) {
				for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
					l.pos++
				}
				return l.makeItem(token.PARAM, l.input[l.start:l.pos])
			}
		}
	}
	return l.makeItem(token.COLON, ":")
}

func (l *Lexer) scanHash() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '>':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '>' {
				l.pos++
				return l.makeItem(token.HASHDGT, "#>>")
			}
			return l.makeItem(token.HASHGT, "#>")
		case '#':
			// ##global_temp_table (SQL Server global temp table)
			l.pos++
			if l.pos < len(l.input) && isIdentStart(l.input[l.pos]) {
				for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
					l.pos++
				}
				return l.makeItem(token.IDENT, l.input[l.start:l.pos])
			}
			// Just ## without identifier - treat as comment
			l.pos -= 2
		default:
			// SQL Server temp table: #identifier
			if isIdentStart(l.input[l.pos]) {
				for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
					l.pos++
				}
				return l.makeItem(token.IDENT, l.input[l.start:l.pos])
			}
		}
	}
	// MySQL-style comment or just hash
	// For now, treat single # as line comment start (MySQL style)
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
	return l.makeItem(token.COMMENT, l.input[l.start:l.pos])
}

func (l *Lexer) scanAt() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '@':
			l.pos++
			return l.makeItem(token.ATAT, "@@")
		default:
			// MySQL user variable @name
			if isIdentStart(l.input[l.pos]) {
				for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
					l.pos++
				}
				return l.makeItem(token.PARAM, l.input[l.start:l.pos])
			}
		}
	}
	return l.makeItem(token.AT, "@")
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}

func isTagChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
