package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// onDisk is the YAML projection of Configs: path fields round-trip as
// plain strings, matching original_source/configs.py's
// keys_str_on_file_but_path_in_class conversion, minus the Python
// str<->Path dance this language doesn't need.
type onDisk struct {
	LocalPath           string `yaml:"local_path"`
	CentralPath         string `yaml:"central_path,omitempty"`
	ConnectionMethod    string `yaml:"connection_method,omitempty"`
	CentralHostID       string `yaml:"central_host_id,omitempty"`
	CentralHostUsername string `yaml:"central_host_username,omitempty"`
	AWSAccessKeyID      string `yaml:"aws_access_key_id,omitempty"`
	AWSRegion           string `yaml:"aws_region,omitempty"`
	GDriveClientID      string `yaml:"gdrive_client_id,omitempty"`
	GDriveRootFolderID  string `yaml:"gdrive_root_folder_id,omitempty"`
}

func toOnDisk(c Configs) onDisk {
	return onDisk{
		LocalPath:           c.LocalPath,
		CentralPath:         c.CentralPath,
		ConnectionMethod:    string(c.ConnectionMethod),
		CentralHostID:       c.CentralHostID,
		CentralHostUsername: c.CentralHostUsername,
		AWSAccessKeyID:      c.AWSAccessKeyID,
		AWSRegion:           c.AWSRegion,
		GDriveClientID:      c.GDriveClientID,
		GDriveRootFolderID:  c.GDriveRootFolderID,
	}
}

func fromOnDisk(d onDisk) Configs {
	return Configs{
		LocalPath:           d.LocalPath,
		CentralPath:         d.CentralPath,
		ConnectionMethod:    ConnectionMethod(d.ConnectionMethod),
		CentralHostID:       d.CentralHostID,
		CentralHostUsername: d.CentralHostUsername,
		AWSAccessKeyID:      d.AWSAccessKeyID,
		AWSRegion:           d.AWSRegion,
		GDriveClientID:      d.GDriveClientID,
		GDriveRootFolderID:  d.GDriveRootFolderID,
	}
}

// canonicalDefaults fills missing fields on load, per spec.md §4.6's
// forward-compatibility requirement (original_source's
// canonical_configs.py get_canonical_config_defaults).
var canonicalDefaults = Configs{}

// Save atomically writes c to path as YAML, using renameio so a crash
// mid-write never leaves a torn config file — the Go-library equivalent
// of the teacher's cmn/jsp.Save tmp-then-rename pattern.
func Save(path string, c Configs) error {
	data, err := yaml.Marshal(toOnDisk(c))
	if err != nil {
		return dserr.Wrap(err, dserr.CodeBadConfigField, "encoding config as yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dserr.Wrap(err, dserr.CodeBadConfigField, "creating config directory")
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return dserr.Wrap(err, dserr.CodeBadConfigField, "writing config file atomically")
	}
	return nil
}

// Load reads path, fills missing keys from canonicalDefaults for
// forward compatibility, then validates, per spec.md §4.6's `load`.
func Load(path string) (Configs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Configs{}, dserr.NewWithPath(dserr.CodeConfigMissing, "no config file at path", path)
		}
		return Configs{}, dserr.Wrap(err, dserr.CodeBadConfigField, "reading config file")
	}

	var d onDisk
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Configs{}, dserr.Wrap(err, dserr.CodeBadConfigField, "parsing config yaml")
	}

	c := fromOnDisk(d)
	c = fillDefaults(c)

	c.LocalPath = toAbsolute(c.LocalPath)
	if c.CentralPath != "" && c.ConnectionMethod == LocalFilesystem {
		c.CentralPath = toAbsolute(c.CentralPath)
	}

	if err := c.Validate(); err != nil {
		return Configs{}, err
	}
	return c, nil
}

func fillDefaults(c Configs) Configs {
	if c.ConnectionMethod == "" {
		c.ConnectionMethod = canonicalDefaults.ConnectionMethod
	}
	return c
}

func toAbsolute(p string) string {
	if p == "" || strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// Exists reports whether a config file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
