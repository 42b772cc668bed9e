package labeljs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.js")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadFromFile_RegistersLabeler(t *testing.T) {
	m, err := LoadFromFile(writeScript(t, `
register({
  name: "connector-labels",
  label: function(toolName) {
    if (toolName === "jira_lookup") return "Checking Jira";
    return null;
  },
});
`))
	require.NoError(t, err)
	require.Equal(t, "connector-labels", m.Name())

	label, ok := m.Label("jira_lookup")
	require.True(t, ok)
	require.Equal(t, "Checking Jira", label)

	_, ok = m.Label("unmapped_tool")
	require.False(t, ok)
}

func TestLabel_WhitespaceResultFallsThrough(t *testing.T) {
	m, err := LoadFromFile(writeScript(t, `
register({ name: "blank", label: function() { return "   "; } });
`))
	require.NoError(t, err)

	_, ok := m.Label("anything")
	require.False(t, ok)
}

func TestLabel_ExceptionFallsThrough(t *testing.T) {
	m, err := LoadFromFile(writeScript(t, `
register({ name: "thrower", label: function() { throw new Error("boom"); } });
`))
	require.NoError(t, err)

	_, ok := m.Label("anything")
	require.False(t, ok)
}

func TestLoadFromFile_MissingRegister(t *testing.T) {
	_, err := LoadFromFile(writeScript(t, `var x = 1;`))
	require.ErrorIs(t, err, ErrNoRegister)
}

func TestLoadFromFile_NameRequired(t *testing.T) {
	_, err := LoadFromFile(writeScript(t, `
register({ label: function(n) { return n; } });
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "name is required")
}

func TestLoadFromFile_LabelMustBeFunction(t *testing.T) {
	_, err := LoadFromFile(writeScript(t, `
register({ name: "bad", label: "not a function" });
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "label must be a function")
}

func TestLoadFromFile_DoubleRegisterFails(t *testing.T) {
	_, err := LoadFromFile(writeScript(t, `
register({ name: "a", label: function() { return null; } });
register({ name: "b", label: function() { return null; } });
`))
	require.Error(t, err)
}

func TestLoadFromFile_SyntaxError(t *testing.T) {
	_, err := LoadFromFile(writeScript(t, `function {`))
	require.Error(t, err)
}
