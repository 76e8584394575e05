package dialect

import "fmt"

// registry is the process-wide, read-only table of builtin profiles. It is
// populated once at init and never written to again; Get only reads it.
var registry = map[string]*Profile{
	ANSI.name:     ANSI,
	Postgres.name: Postgres,
	MySQL.name:    MySQL,
	TSQL.name:     TSQL,
}

// Get looks up a builtin profile by name ("ansi", "postgres", "mysql",
// "tsql"), case-insensitively. It returns an error rather than a zero value
// for unknown names so callers can surface a clear configuration mistake.
func Get(name string) (*Profile, error) {
	p, ok := registry[lower(name)]
	if !ok {
		return nil, fmt.Errorf("dialect: unknown profile %q", name)
	}
	return p, nil
}

// MustGet is Get without the error return, for package-init-time lookups of
// names known to be valid.
func MustGet(name string) *Profile {
	p, err := Get(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Default is the profile used when no dialect is specified.
var Default = ANSI
