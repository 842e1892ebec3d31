package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/profile"
)

func init() {
	color.NoColor = true
}

const aliceOriginal = `{
  "id": 1,
  "full_name": "Alice",
  "phone": "111",
  "projects": [{"id": 1, "title": "X"}]
}`

const aliceDraft = `{
  "full_name": "Alice",
  "phone": "222",
  "projects": [{"id": 1, "title": "Y"}, {"id": 2, "title": "Z"}]
}`

func writeJSON(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func compareFiles(t *testing.T, original, draft string) profile.Comparison {
	t.Helper()
	before, err := loadProfile(writeJSON(t, "original.json", original))
	require.NoError(t, err)
	after, err := loadProfile(writeJSON(t, "draft.json", draft))
	require.NoError(t, err)
	return profile.Compare(before, after)
}

func TestRenderDiffFull(t *testing.T) {
	var out bytes.Buffer
	renderDiff(&out, compareFiles(t, aliceOriginal, aliceDraft), false)

	text := out.String()
	assert.Contains(t, text, "~~~ phone")
	assert.Contains(t, text, `- "111"`)
	assert.Contains(t, text, `+ "222"`)
	assert.Contains(t, text, "~~~ projects")
	assert.Contains(t, text, "+++ ")
	assert.Contains(t, text, "2 sections changed")
}

func TestRenderDiffStat(t *testing.T) {
	var out bytes.Buffer
	renderDiff(&out, compareFiles(t, aliceOriginal, aliceDraft), true)

	text := out.String()
	assert.Contains(t, text, " ~ phone")
	assert.Contains(t, text, " ~ projects")
	assert.Contains(t, text, "1 items added(+)")
	assert.Contains(t, text, "1 items modified(~)")
	assert.NotContains(t, text, "deleted")
}

func TestRenderDiffNoChanges(t *testing.T) {
	var out bytes.Buffer
	renderDiff(&out, compareFiles(t, aliceOriginal, aliceOriginal), false)
	assert.Equal(t, "No changes\n", out.String())
}

func TestRenderDiffDeletedItem(t *testing.T) {
	var out bytes.Buffer
	renderDiff(&out, compareFiles(t, aliceOriginal, `{"full_name":"Alice","phone":"111"}`), false)
	assert.Contains(t, out.String(), "--- ")
	assert.Contains(t, out.String(), "1 sections changed")
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = loadProfile(writeJSON(t, "bad.json", "{"))
	assert.Error(t, err)
}
