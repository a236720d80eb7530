package credentials

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// encryptionState tracks, per connection method, whether its rclone
// config file has been encrypted. Re-deriving this from the rclone
// binary itself would require a subprocess call on every check, which
// original_source/rclone_configs.py calls out as slow on Windows; we
// track it explicitly in a sidecar file instead.
type encryptionState struct {
	SSH    bool `yaml:"ssh"`
	GDrive bool `yaml:"gdrive"`
	AWS    bool `yaml:"aws"`
}

func stateFilePath(baseDir string) string {
	return filepath.Join(baseDir, "rclone_ps_state.yaml")
}

func loadEncryptionState(baseDir string) (encryptionState, error) {
	path := stateFilePath(baseDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			state := encryptionState{}
			if err := saveEncryptionState(baseDir, state); err != nil {
				return encryptionState{}, err
			}
			return state, nil
		}
		return encryptionState{}, dserr.Wrap(err, dserr.CodeFatal, "reading rclone encryption state file")
	}
	var state encryptionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return encryptionState{}, dserr.Wrap(err, dserr.CodeFatal, "parsing rclone encryption state file")
	}
	return state, nil
}

func saveEncryptionState(baseDir string, state encryptionState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "encoding rclone encryption state")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "creating credentials directory")
	}
	if err := renameio.WriteFile(stateFilePath(baseDir), data, 0o600); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "writing rclone encryption state atomically")
	}
	return nil
}
