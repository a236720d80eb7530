package credentials_test

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/credentials"
)

func TestManager_IsEncrypted_DefaultsFalse(t *testing.T) {
	m := credentials.NewManager(t.TempDir(), "my_project")

	encrypted, err := m.IsEncrypted(config.SSH)
	require.NoError(t, err)
	assert.False(t, encrypted)
}

func TestManager_IsEncrypted_RejectsLocalFilesystem(t *testing.T) {
	m := credentials.NewManager(t.TempDir(), "my_project")
	_, err := m.IsEncrypted(config.LocalFilesystem)
	assert.Error(t, err)
}

func TestManager_DeleteConfig_RemovesFileAndResetsState(t *testing.T) {
	dir := t.TempDir()
	m := credentials.NewManager(dir, "my_project")
	path := m.ConfigPath(config.SSH)

	require.NoError(t, credentials.WriteRemoteSection(path, m.ConfigName(config.SSH), map[string]string{
		"type": "sftp",
	}))

	require.NoError(t, m.DeleteConfig(config.SSH))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	encrypted, err := m.IsEncrypted(config.SSH)
	require.NoError(t, err)
	assert.False(t, encrypted)
}

func TestManager_EncryptDecrypt_RoundTrip(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("exercises the `pass`-backed Linux keychain only")
	}
	if _, err := exec.LookPath("pass"); err != nil {
		t.Skip("`pass` not installed, skipping rclone encryption round trip")
	}
	if _, err := exec.LookPath("rclone"); err != nil {
		t.Skip("rclone not installed, skipping rclone encryption round trip")
	}

	dir := t.TempDir()
	m := credentials.NewManager(dir, "my_project")
	path := m.ConfigPath(config.SSH)
	require.NoError(t, credentials.WriteRemoteSection(path, m.ConfigName(config.SSH), map[string]string{
		"type": "sftp",
		"host": "localhost",
	}))

	ctx := context.Background()
	require.NoError(t, m.Encrypt(ctx, "rclone", config.SSH))

	encrypted, err := m.IsEncrypted(config.SSH)
	require.NoError(t, err)
	assert.True(t, encrypted)

	require.NoError(t, m.Decrypt(ctx, "rclone", config.SSH))

	encrypted, err = m.IsEncrypted(config.SSH)
	require.NoError(t, err)
	assert.False(t, encrypted)
}
