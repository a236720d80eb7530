package config

import (
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// MakeConfigFile creates a brand new config file at path. It refuses if a
// file already exists there, per spec.md §4.6 ("make_config_file... errors
// if a config already exists; callers must go through update_config_file to
// change an existing project").
func MakeConfigFile(path string, c Configs) (Configs, error) {
	if Exists(path) {
		return Configs{}, dserr.NewWithPath(dserr.CodeConfigDuplicate,
			"a config file already exists; use UpdateConfigFile to change it", path)
	}
	if err := c.Validate(); err != nil {
		return Configs{}, err
	}
	if err := Save(path, c); err != nil {
		return Configs{}, err
	}
	return c, nil
}

// Mutator applies changed fields to a copy of the current config.
type Mutator func(Configs) Configs

// UpdateConfigFile implements the copy-validate-swap lifecycle of spec.md
// §4.6: read the current record, apply mutate to a COPY, validate the
// copy, and only then atomically replace the on-disk file. If validation
// fails the on-disk file and the in-memory caller state are both left
// untouched — grounded on original_source/configs.py's update_an_entry,
// which never commits a partially-valid dict.
func UpdateConfigFile(path string, mutate Mutator) (Configs, error) {
	current, err := Load(path)
	if err != nil {
		return Configs{}, err
	}

	candidate := mutate(current)
	if err := candidate.Validate(); err != nil {
		return Configs{}, err
	}

	if err := Save(path, candidate); err != nil {
		return Configs{}, err
	}
	return candidate, nil
}
