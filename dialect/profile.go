// Package dialect defines the immutable lexical and syntactic profiles that
// parameterize the tokenizer and parser for a given SQL flavor.
package dialect

import "sort"

// Profile is a frozen description of one SQL dialect's recognition sets.
// A Profile is built once (via a builtin constructor or Custom) and never
// mutated afterward; all fields are unexported so the only way to query a
// Profile is through its accessor methods.
type Profile struct {
	name              string
	keywords          map[string]struct{}
	functionKeywords  map[string]struct{}
	clauseKeywords    map[string]struct{}
	statementStarters map[string]struct{}
}

// Name returns the dialect's name, e.g. "postgres".
func (p *Profile) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// IsKeyword reports whether word (case-insensitively) is recognized as a
// keyword under this profile. Words not in this set are lexed as plain
// identifiers even if some other dialect would reserve them.
func (p *Profile) IsKeyword(word string) bool {
	_, ok := p.keywords[lower(word)]
	return ok
}

// IsFunctionKeyword reports whether word names a built-in function that
// should be uppercased at call sites (e.g. COUNT, SUM, JSONB_AGG).
func (p *Profile) IsFunctionKeyword(word string) bool {
	_, ok := p.functionKeywords[lower(word)]
	return ok
}

// IsClauseKeyword reports whether word introduces or terminates a top-level
// clause, used by the parser for statement-boundary and alias heuristics.
func (p *Profile) IsClauseKeyword(word string) bool {
	_, ok := p.clauseKeywords[lower(word)]
	return ok
}

// IsStatementStarter reports whether word can begin a top-level statement.
func (p *Profile) IsStatementStarter(word string) bool {
	_, ok := p.statementStarters[lower(word)]
	return ok
}

// Keywords returns a sorted snapshot of the recognized keyword set.
func (p *Profile) Keywords() []string { return sortedKeys(p.keywords) }

// FunctionKeywords returns a sorted snapshot of the function-keyword set.
func (p *Profile) FunctionKeywords() []string { return sortedKeys(p.functionKeywords) }

// ClauseKeywords returns a sorted snapshot of the clause-keyword set.
func (p *Profile) ClauseKeywords() []string { return sortedKeys(p.clauseKeywords) }

// StatementStarters returns a sorted snapshot of the statement-starter set.
func (p *Profile) StatementStarters() []string { return sortedKeys(p.statementStarters) }

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lower(s string) string {
	// ASCII-only lowering: SQL identifiers/keywords are ASCII.
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[lower(w)] = struct{}{}
	}
	return set
}

// build assembles a frozen Profile from plain string slices. It is the only
// constructor that can create a Profile from scratch; builtin dialects and
// Custom both funnel through it so every Profile in the process is built the
// same way.
func build(name string, keywords, functionKeywords, clauseKeywords, statementStarters []string) *Profile {
	return &Profile{
		name:              name,
		keywords:          toSet(keywords),
		functionKeywords:  toSet(functionKeywords),
		clauseKeywords:    toSet(clauseKeywords),
		statementStarters: toSet(statementStarters),
	}
}

// Snapshot is a plain-data, serializable view of a Profile. It exists so a
// custom profile can round-trip through YAML configuration (see
// gopkg.in/yaml.v3 tags) without exposing the frozen Profile's internals for
// mutation.
type Snapshot struct {
	Name              string   `yaml:"name"`
	Keywords          []string `yaml:"keywords"`
	FunctionKeywords  []string `yaml:"function_keywords"`
	ClauseKeywords    []string `yaml:"clause_keywords"`
	StatementStarters []string `yaml:"statement_starters"`
}

// Freeze turns a Snapshot into an immutable Profile.
func (s Snapshot) Freeze() *Profile {
	return build(s.Name, s.Keywords, s.FunctionKeywords, s.ClauseKeywords, s.StatementStarters)
}

// Snapshot captures the current Profile as plain data, e.g. for editing and
// re-freezing via Custom, or for dumping as YAML with a CLI subcommand.
func (p *Profile) Snapshot() Snapshot {
	return Snapshot{
		Name:              p.name,
		Keywords:          p.Keywords(),
		FunctionKeywords:  p.FunctionKeywords(),
		ClauseKeywords:    p.ClauseKeywords(),
		StatementStarters: p.StatementStarters(),
	}
}

// Custom builds a new frozen Profile by snapshotting base and applying adds.
// Entries in adds are unioned into the corresponding base set; base itself
// is never touched. This is the only sanctioned way to extend a dialect: the
// caller cannot reach into Profile's maps because they are unexported.
func Custom(name string, base *Profile, adds Snapshot) *Profile {
	snap := base.Snapshot()
	snap.Name = name
	snap.Keywords = union(snap.Keywords, adds.Keywords)
	snap.FunctionKeywords = union(snap.FunctionKeywords, adds.FunctionKeywords)
	snap.ClauseKeywords = union(snap.ClauseKeywords, adds.ClauseKeywords)
	snap.StatementStarters = union(snap.StatementStarters, adds.StatementStarters)
	return snap.Freeze()
}

func union(a, b []string) []string {
	set := toSet(a)
	for _, w := range b {
		set[lower(w)] = struct{}{}
	}
	return sortedKeys(set)
}
