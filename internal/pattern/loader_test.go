package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `patterns:
  - id: frac_basic
    name: Basic fraction
    matcher: '\\frac\{(\d+)\}\{(\d+)\}'
    template: '$1 over $2'
    priority: 750
    domain: general
  - id: alpha
    matcher: '\alpha'
    literal: true
    template: 'alpha'
    priority: 400
    domain: general
    contexts: [inline, display]
    hints:
      pause_after_ms: 50
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFixture(t, "general.yaml", fixtureYAML)

	patterns, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	frac := patterns[0]
	assert.Equal(t, "frac_basic", frac.ID())
	assert.Equal(t, 750, frac.Priority())

	out, applied := frac.Apply(`\frac{1}{2}`, nil)
	assert.True(t, applied)
	assert.Equal(t, "1 over 2", out)

	alpha := patterns[1]
	assert.True(t, alpha.Literal())
	assert.Equal(t, 50, alpha.Hints().PauseAfterMs)
}

func TestLoadFileRejectsBadDefinition(t *testing.T) {
	path := writeFixture(t, "bad.yaml", `patterns:
  - id: broken
    matcher: '[unclosed'
    template: 'x'
`)

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileRejectsMissingRequiredField(t *testing.T) {
	path := writeFixture(t, "missing.yaml", `patterns:
  - id: no_template
    matcher: 'x'
`)

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(fixtureYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`patterns:
  - id: beta
    matcher: '\beta'
    literal: true
    template: 'beta'
    priority: 400
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	patterns, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, patterns, 3)
	// Files load in name order, so a.yaml's pattern comes first.
	assert.Equal(t, "beta", patterns[0].ID())
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
}

func TestLint(t *testing.T) {
	path := writeFixture(t, "mixed.yaml", `patterns:
  - id: good
    matcher: 'x'
    literal: true
    template: 'ex'
  - id: broken
    matcher: '[unclosed'
    template: 'x'
  - id: good
    matcher: 'y'
    literal: true
    template: 'why'
`)

	patterns, issues, err := Lint(path)
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
	require.Len(t, issues, 2)
	assert.Equal(t, "broken", issues[0].PatternID)
	assert.Equal(t, "good", issues[1].PatternID)
}
