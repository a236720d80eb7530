package datashuttle_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/datashuttle"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/transfer"
)

// TestUploadCustom_LocalFilesystemRoundTrip exercises the full
// selector-resolve-then-rclone-copy path against two local directories
// standing in for local_path/central_path, skipped unless an actual
// rclone binary is on PATH (rclone itself is never faked, per spec.md
// §4.5's "failure semantics are the binary's own exit codes").
func TestUploadCustom_LocalFilesystemRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("rclone"); err != nil {
		t.Skip("rclone not installed, skipping upload round trip")
	}

	p := newTestProject(t)
	centralPath := t.TempDir()
	_, err := p.MakeConfigFile(config.Configs{
		CentralPath:      centralPath,
		ConnectionMethod: config.LocalFilesystem,
	})
	require.NoError(t, err)

	_, err = p.CreateFolders(project.Rawdata, []string{"001"}, []string{"001"}, []string{"ephys"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(p.LocalPath, "rawdata", "sub-001", "ses-001", "ephys", "data.bin"),
		[]byte("hello"), 0o644))

	result, err := p.UploadRawdata(context.Background(), transfer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)

	_, statErr := os.Stat(filepath.Join(centralPath, "rawdata", "sub-001", "ses-001", "ephys", "data.bin"))
	assert.NoError(t, statErr)
}

func TestUploadSpecificFolderOrFile_BuildsPlanWithoutSelector(t *testing.T) {
	if _, err := exec.LookPath("rclone"); err != nil {
		t.Skip("rclone not installed, skipping upload round trip")
	}

	p := newTestProject(t)
	centralPath := t.TempDir()
	_, err := p.MakeConfigFile(config.Configs{
		CentralPath:      centralPath,
		ConnectionMethod: config.LocalFilesystem,
	})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(p.LocalPath, "rawdata", "sub-001"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(p.LocalPath, "rawdata", "sub-001", "notes.txt"), []byte("x"), 0o644))

	result, err := p.UploadSpecificFolderOrFile(context.Background(), project.Rawdata, "sub-001/notes.txt", transfer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)

	_, statErr := os.Stat(filepath.Join(centralPath, "rawdata", "sub-001", "notes.txt"))
	assert.NoError(t, statErr)
}
