package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/repr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	machparse "github.com/riverfmt/riverfmt"
	"github.com/riverfmt/riverfmt/config"
	"github.com/riverfmt/riverfmt/dialect"
	"github.com/riverfmt/riverfmt/parser"
)

var (
	writeInPlace  bool
	dumpAST       bool
	maxLineLength int
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Reformat SQL source into river-aligned layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			src, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return formatOne("<stdin>", string(src), opts, os.Stdout, false)
		}

		for _, path := range args {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if err := formatOne(path, string(src), opts, os.Stdout, writeInPlace); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&writeInPlace, "write", "w", false, "write result back to the source file instead of stdout")
	fmtCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (via alecthomas/repr) to stderr instead of formatting")
	fmtCmd.Flags().IntVarP(&maxLineLength, "max-line-length", "l", 0, "target line width; 0 uses the configured or default width")
	rootCmd.AddCommand(fmtCmd)
}

// resolveOptions merges a config file (if --config was given) with the
// --dialect and --max-line-length flags, which always win.
func resolveOptions() (machparse.FormatOptions, error) {
	var opts machparse.FormatOptions
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return opts, err
		}
		opts, err = cfg.FormatOptions()
		if err != nil {
			return opts, err
		}
	}
	if dialectFlag != "" {
		p, err := dialect.Get(dialectFlag)
		if err != nil {
			return opts, err
		}
		opts.Profile = p
	}
	if maxLineLength > 0 {
		opts.MaxLineLength = maxLineLength
	}

	opts.OnRecover = func(err error, raw *machparse.RawStmt, ctx parser.RecoverContext) {
		logger.WithFields(logrus.Fields{
			"statement_index":  ctx.StatementIndex,
			"total_statements": ctx.TotalStatements,
			"reason":           "parse_error",
		}).Warn(err)
	}
	opts.OnDropStatement = func(err error, ctx parser.RecoverContext) {
		logger.WithFields(logrus.Fields{
			"statement_index":  ctx.StatementIndex,
			"total_statements": ctx.TotalStatements,
		}).Error("dropped unrecoverable statement: ", err)
	}
	opts.OnPassthrough = func(raw *machparse.RawStmt, ctx parser.RecoverContext) {
		logger.WithFields(logrus.Fields{
			"statement_index":  ctx.StatementIndex,
			"total_statements": ctx.TotalStatements,
			"reason":           "unsupported",
		}).Info("statement passed through verbatim")
	}
	return opts, nil
}

func formatOne(name, src string, opts machparse.FormatOptions, out io.Writer, write bool) error {
	if dumpAST {
		return dumpStatementAST(name, src, opts)
	}

	result, err := machparse.Format(src, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if write && name != "<stdin>" {
		return os.WriteFile(name, []byte(result), 0o644)
	}
	_, err = io.WriteString(out, result)
	return err
}

func dumpStatementAST(name, src string, opts machparse.FormatOptions) error {
	profile := opts.Profile
	if profile == nil {
		profile = dialect.Default
	}
	p := parser.NewWithOptions(src, parser.Options{
		Profile:  profile,
		Recover:  true,
		MaxDepth: opts.MaxDepth,
	})
	stmts, err := p.ParseAll()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for i, s := range stmts {
		fmt.Fprintf(os.Stderr, "-- %s statement %d --\n", name, i)
		fmt.Fprintln(os.Stderr, repr.String(s, repr.Indent("  ")))
	}
	return nil
}
