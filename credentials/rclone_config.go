package credentials

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mvo5/goconfigparser"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// RcloneConfigName returns the per-project, per-method rclone config
// section/file name, e.g. "central_my_project_ssh".
func RcloneConfigName(projectName string, method config.ConnectionMethod) string {
	return "central_" + projectName + "_" + string(method)
}

// RequiresEncryption reports whether method's rclone config stores a
// secret worth encrypting at rest (local_filesystem never does).
func RequiresEncryption(method config.ConnectionMethod) bool {
	switch method {
	case config.SSH, config.AWS, config.GDrive:
		return true
	default:
		return false
	}
}

// ConfigFilePath returns the full path to the rclone `.conf` file for
// projectName/method under baseDir (the datashuttle rclone-config folder).
func ConfigFilePath(baseDir, projectName string, method config.ConnectionMethod) string {
	return filepath.Join(baseDir, RcloneConfigName(projectName, method)+".conf")
}

// WriteRemoteSection writes (or overwrites) the INI section for a
// single rclone remote, keyed by its config name, using the same
// configparser format rclone itself reads and writes.
func WriteRemoteSection(path, remoteName string, fields map[string]string) error {
	cfg := goconfigparser.New()
	if existing, err := os.ReadFile(path); err == nil {
		_ = cfg.ReadString(string(existing))
	}

	// AddSection errors if the section already exists; that's fine, we're
	// about to overwrite its keys.
	_ = cfg.AddSection(remoteName)
	for k, v := range fields {
		if err := cfg.Set(remoteName, k, v); err != nil {
			return dserr.Wrap(err, dserr.CodeBadConfigField, "writing rclone config field "+k)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "creating rclone config directory")
	}

	var buf strings.Builder
	if err := cfg.Write(&buf); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "serializing rclone config")
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o600); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "writing rclone config file")
	}
	return nil
}

// DeleteConfigFile removes the rclone `.conf` file if present.
func DeleteConfigFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return dserr.Wrap(err, dserr.CodeFatal, "deleting rclone config file")
	}
	return nil
}
