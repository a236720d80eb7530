package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/settings"
)

func TestLoad_CreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()

	s, err := settings.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "rawdata", s.TopLevelFolder)
	assert.False(t, s.NameTemplates.On)
	assert.True(t, s.TUI.SuggestNextSubSesCentral)
	assert.NotEmpty(t, s.ShownDatatypes)

	_, err = settings.Load(dir)
	require.NoError(t, err)
}

func TestLoad_BackfillsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persistent_settings.yaml")
	require.NoError(t, writeFile(path, "tui:\n  dry_run: true\n"))

	s, err := settings.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "rawdata", s.TopLevelFolder)
	assert.NotEmpty(t, s.ShownDatatypes)
	assert.True(t, s.TUI.DryRun)
}

func TestSetNameTemplates_PersistsAcrossLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := settings.SetNameTemplates(dir, project.NameTemplate{On: true, Sub: `sub-\d\d`})
	require.NoError(t, err)

	s, err := settings.Load(dir)
	require.NoError(t, err)
	assert.True(t, s.NameTemplates.On)
	assert.Equal(t, `sub-\d\d`, s.NameTemplates.Sub)
}

func TestSetTopLevelFolder_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := settings.SetTopLevelFolder(dir, project.TopLevelFolder("nonsense"))
	assert.Error(t, err)
}

func TestSetTopLevelFolder_PersistsAcrossLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := settings.SetTopLevelFolder(dir, project.Derivatives)
	require.NoError(t, err)

	s, err := settings.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "derivatives", s.TopLevelFolder)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
