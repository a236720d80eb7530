package datashuttle_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/datashuttle"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

func mustMakeConfig(t *testing.T, p *datashuttle.Project) {
	t.Helper()
	_, err := p.MakeConfigFile(config.Configs{})
	require.NoError(t, err)
}

func TestCreateFolders_SubSesDatatype(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	created, err := p.CreateFolders(project.Rawdata, []string{"001"}, []string{"001"}, []string{"ephys", "behav"})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	for _, dt := range []string{"ephys", "behav"} {
		info, statErr := os.Stat(filepath.Join(p.LocalPath, "rawdata", "sub-001", "ses-001", dt))
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	}
}

func TestCreateFolders_RejectsInvalidTopLevel(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	_, err := p.CreateFolders(project.TopLevelFolder("not_a_real_top"), []string{"001"}, nil, nil)
	assert.Error(t, err)
}

func TestCreateFolders_RejectsInconsistentWidth(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	_, err := p.CreateFolders(project.Rawdata, []string{"001"}, nil, []string{"ephys"})
	require.NoError(t, err)

	_, err = p.CreateFolders(project.Rawdata, []string{"02"}, nil, []string{"ephys"})
	assert.Error(t, err)
}

func TestGetNextSub_NoExistingSubjects(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	ctx := context.Background()
	next, err := p.GetNextSub(ctx, project.Rawdata, false, true)
	require.NoError(t, err)
	assert.Equal(t, "sub-001", next)
}

func TestGetNextSub_IncrementsFromExisting(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	_, err := p.CreateFolders(project.Rawdata, []string{"001", "002"}, nil, []string{"ephys"})
	require.NoError(t, err)

	ctx := context.Background()
	next, err := p.GetNextSub(ctx, project.Rawdata, false, false)
	require.NoError(t, err)
	assert.Equal(t, "003", next)
}

func TestGetNextSes_ScopedToSub(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	_, err := p.CreateFolders(project.Rawdata, []string{"001"}, []string{"001", "002"}, []string{"ephys"})
	require.NoError(t, err)

	ctx := context.Background()
	next, err := p.GetNextSes(ctx, project.Rawdata, "sub-001", false, true)
	require.NoError(t, err)
	assert.Equal(t, "ses-003", next)
}
