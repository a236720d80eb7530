package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/credentials"
)

func TestRcloneConfigName(t *testing.T) {
	assert.Equal(t, "central_my_project_ssh", credentials.RcloneConfigName("my_project", config.SSH))
	assert.Equal(t, "central_my_project_aws", credentials.RcloneConfigName("my_project", config.AWS))
}

func TestRequiresEncryption(t *testing.T) {
	assert.True(t, credentials.RequiresEncryption(config.SSH))
	assert.True(t, credentials.RequiresEncryption(config.AWS))
	assert.True(t, credentials.RequiresEncryption(config.GDrive))
	assert.False(t, credentials.RequiresEncryption(config.LocalFilesystem))
}

func TestWriteRemoteSection_CreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "central_my_project_ssh.conf")

	err := credentials.WriteRemoteSection(path, "central_my_project_ssh", map[string]string{
		"type": "sftp",
		"host": "myhost.example.com",
		"user": "researcher",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[central_my_project_ssh]")
	assert.Contains(t, string(data), "host")
	assert.Contains(t, string(data), "myhost.example.com")

	err = credentials.WriteRemoteSection(path, "central_my_project_ssh", map[string]string{
		"type": "sftp",
		"host": "otherhost.example.com",
		"user": "researcher",
	})
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "otherhost.example.com")
}

func TestDeleteConfigFile_MissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.conf")
	assert.NoError(t, credentials.DeleteConfigFile(path))
}
