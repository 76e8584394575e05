package machparse

import (
	"fmt"
	"strings"

	"github.com/riverfmt/riverfmt/ast"
	"github.com/riverfmt/riverfmt/dialect"
	"github.com/riverfmt/riverfmt/format"
	"github.com/riverfmt/riverfmt/parser"
)

const (
	defaultMaxInputSize  = 10 * 1024 * 1024 // 10 MiB
	defaultMaxLineLength = 80
	minMaxLineLength     = 40
)

// FormatOptions controls the Format driver: size and depth guards, the
// target dialect, and recovery hooks.
type FormatOptions struct {
	// MaxDepth caps recursive-descent nesting in the parser. Zero uses the
	// parser package's own default (200).
	MaxDepth int
	// MaxInputSize caps the input in bytes. Zero uses defaultMaxInputSize.
	MaxInputSize int
	// MaxLineLength is the layout engine's target column width. Zero uses
	// defaultMaxLineLength; values below minMaxLineLength are clamped up.
	MaxLineLength int
	// MaxTokenCount optionally caps the number of tokens the lexer will
	// produce before raising a TokenizeError. Zero means unlimited.
	MaxTokenCount int
	// Recover enables statement-boundary error recovery. Nil means true
	// (the default); set to a non-nil false to make ParseError
	// propagate instead of becoming a raw passthrough node.
	Recover *bool
	// Dialect selects a built-in profile by name ("ansi", "postgres",
	// "mysql", "tsql"), case-insensitively. Empty uses dialect.Default.
	// A caller with a custom profile can set Profile directly instead.
	Dialect string
	// Profile overrides Dialect with an already-resolved profile.
	Profile *dialect.Profile

	OnRecover       func(err error, raw *ast.RawStmt, ctx parser.RecoverContext)
	OnDropStatement func(err error, ctx parser.RecoverContext)
	OnPassthrough   func(raw *ast.RawStmt, ctx parser.RecoverContext)
}

// InputTooLarge is returned when the input exceeds the configured size
// guard, before any tokenizing or parsing is attempted.
type InputTooLarge struct {
	Size  int
	Limit int
}

func (e *InputTooLarge) Error() string {
	return fmt.Sprintf("input size %d bytes exceeds limit %d bytes", e.Size, e.Limit)
}

func (o FormatOptions) recoverEnabled() bool {
	if o.Recover == nil {
		return true
	}
	return *o.Recover
}

func (o FormatOptions) resolveProfile() (*dialect.Profile, error) {
	if o.Profile != nil {
		return o.Profile, nil
	}
	if o.Dialect == "" {
		return dialect.Default, nil
	}
	return dialect.Get(o.Dialect)
}

// Format is the system's primary entry point: it tokenizes and
// parses input under the requested dialect, then lays the resulting
// statements out with the river-aligned formatter, and returns the result
// with a single trailing newline. Blank input formats to the empty string.
// A size guard runs before any tokenizing; everything past that point runs
// under the parser's own depth and token-count guards, with statement-level
// recovery controlled by FormatOptions.Recover.
func Format(input string, opts FormatOptions) (string, error) {
	maxInputSize := opts.MaxInputSize
	if maxInputSize <= 0 {
		maxInputSize = defaultMaxInputSize
	}
	if len(input) > maxInputSize {
		return "", &InputTooLarge{Size: len(input), Limit: maxInputSize}
	}

	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	profile, err := opts.resolveProfile()
	if err != nil {
		return "", err
	}

	maxLineLength := opts.MaxLineLength
	if maxLineLength <= 0 {
		maxLineLength = defaultMaxLineLength
	}
	if maxLineLength < minMaxLineLength {
		maxLineLength = minMaxLineLength
	}

	p := parser.NewWithOptions(input, parser.Options{
		Profile:         profile,
		MaxDepth:        opts.MaxDepth,
		MaxTokenCount:   opts.MaxTokenCount,
		Recover:         opts.recoverEnabled(),
		OnRecover:       opts.OnRecover,
		OnDropStatement: opts.OnDropStatement,
		OnPassthrough:   opts.OnPassthrough,
	})

	stmts, err := p.ParseAll()
	if err != nil {
		return "", err
	}
	if len(stmts) == 0 {
		return "", nil
	}

	l := format.NewLayouter(format.LayoutOptions{
		Profile:       profile,
		MaxLineLength: maxLineLength,
	})
	out := l.Statements(stmts)
	return normalizeOutput(out), nil
}

// normalizeOutput trims trailing whitespace from every line and ensures the
// result ends in exactly one newline.
func normalizeOutput(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	return strings.Join(lines, "\n") + "\n"
}
