package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	machparse "github.com/riverfmt/riverfmt"
)

func TestFormatOneWritesFormattedOutput(t *testing.T) {
	dialectFlag = ""
	configPath = ""
	dumpAST = false
	opts := machparse.FormatOptions{}

	var buf bytes.Buffer
	err := formatOne("<stdin>", "select 1 from t", opts, &buf, false)
	require.NoError(t, err)
	require.Equal(t, "SELECT 1\n  FROM t;\n", buf.String())
}

func TestResolveOptionsDialectFlagOverridesConfig(t *testing.T) {
	dialectFlag = "mysql"
	configPath = ""
	defer func() { dialectFlag = "" }()

	opts, err := resolveOptions()
	require.NoError(t, err)
	require.Equal(t, "mysql", opts.Profile.Name())
	require.NotNil(t, opts.OnRecover)
}
