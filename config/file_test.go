package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c := config.Configs{
		LocalPath:           "/data/my_project",
		CentralPath:         "/remote/my_project",
		ConnectionMethod:    config.SSH,
		CentralHostID:       "myhost.example.com",
		CentralHostUsername: "researcher",
	}
	require.NoError(t, config.Save(path, c))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Equal(t, string(dserr.CodeConfigMissing), dserr.CodeOf(err))
}

func TestMakeConfigFile_CreatesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := config.Configs{LocalPath: "/data/my_project"}

	_, err := config.MakeConfigFile(path, c)
	require.NoError(t, err)

	_, err = config.MakeConfigFile(path, c)
	require.Error(t, err)
	assert.Equal(t, string(dserr.CodeConfigDuplicate), dserr.CodeOf(err))
}

func TestMakeConfigFile_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := config.MakeConfigFile(path, config.Configs{})
	require.Error(t, err)
	assert.False(t, config.Exists(path))
}

func TestUpdateConfigFile_AppliesValidChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := config.MakeConfigFile(path, config.Configs{LocalPath: "/data/my_project"})
	require.NoError(t, err)

	updated, err := config.UpdateConfigFile(path, func(c config.Configs) config.Configs {
		c.CentralPath = "/remote/my_project"
		c.ConnectionMethod = config.LocalFilesystem
		return c
	})
	require.NoError(t, err)
	assert.Equal(t, "/remote/my_project", updated.CentralPath)

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.LocalFilesystem, reloaded.ConnectionMethod)
}

func TestUpdateConfigFile_DiscardsInvalidChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := config.MakeConfigFile(path, config.Configs{LocalPath: "/data/my_project"})
	require.NoError(t, err)

	_, err = config.UpdateConfigFile(path, func(c config.Configs) config.Configs {
		c.CentralPath = "/remote/my_project"
		return c // ConnectionMethod left unset: violates both-set-or-both-absent rule
	})
	require.Error(t, err)

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.CentralPath)
}
