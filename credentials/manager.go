package credentials

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// Manager ties together rclone config naming, the encryption-state
// sidecar, and the OS keychain for one project's central connection.
// Grounded on original_source/datashuttle/configs/rclone_configs.py's
// RCloneConfigs class, which plays the same role around a single
// Configs instance.
type Manager struct {
	BaseDir     string // datashuttle's rclone-config folder for this project
	ProjectName string
	Keychain    Keychain
}

func NewManager(baseDir, projectName string) *Manager {
	return &Manager{BaseDir: baseDir, ProjectName: projectName, Keychain: NewKeychain(baseDir)}
}

func (m *Manager) ConfigName(method config.ConnectionMethod) string {
	return RcloneConfigName(m.ProjectName, method)
}

func (m *Manager) ConfigPath(method config.ConnectionMethod) string {
	return ConfigFilePath(m.BaseDir, m.ProjectName, method)
}

func (m *Manager) IsEncrypted(method config.ConnectionMethod) (bool, error) {
	if !RequiresEncryption(method) {
		return false, dserr.New(dserr.CodeBadConfigField, "connection_method never requires encryption: "+string(method))
	}
	state, err := loadEncryptionState(m.BaseDir)
	if err != nil {
		return false, err
	}
	return fieldFor(state, method), nil
}

func (m *Manager) setEncryptedState(method config.ConnectionMethod, value bool) error {
	state, err := loadEncryptionState(m.BaseDir)
	if err != nil {
		return err
	}
	state = setFieldFor(state, method, value)
	return saveEncryptionState(m.BaseDir, state)
}

func fieldFor(state encryptionState, method config.ConnectionMethod) bool {
	switch method {
	case config.SSH:
		return state.SSH
	case config.GDrive:
		return state.GDrive
	case config.AWS:
		return state.AWS
	default:
		return false
	}
}

func setFieldFor(state encryptionState, method config.ConnectionMethod, value bool) encryptionState {
	switch method {
	case config.SSH:
		state.SSH = value
	case config.GDrive:
		state.GDrive = value
	case config.AWS:
		state.AWS = value
	}
	return state
}

// Encrypt turns on rclone config-file encryption for method: it stores a
// fresh random password via the OS keychain, points rclone at it through
// RCLONE_PASSWORD_COMMAND, and shells out to `rclone config encryption
// set`. Mirrors run_rclone_config_encrypt in
// original_source/utils/rclone_encryption.py.
func (m *Manager) Encrypt(ctx context.Context, rcloneBinary string, method config.ConnectionMethod) error {
	if !RequiresEncryption(method) {
		return dserr.New(dserr.CodeBadConfigField, "connection_method never requires encryption: "+string(method))
	}
	path := m.ConfigPath(method)

	if err := m.Keychain.Set(m.ConfigName(method)); err != nil {
		return err
	}
	passwordCmd, err := m.Keychain.PasswordCommand(m.ConfigName(method))
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, rcloneBinary, "config", "encryption", "set", "--config", path)
	cmd.Env = append(os.Environ(), "RCLONE_PASSWORD_COMMAND="+passwordCmd)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return dserr.New(dserr.CodeFatal, fmt.Sprintf("could not encrypt rclone config: %s", out))
	}

	return m.setEncryptedState(method, true)
}

// Decrypt removes encryption from method's rclone config and cleans up
// the stored secret, mirroring remove_rclone_encryption.
func (m *Manager) Decrypt(ctx context.Context, rcloneBinary string, method config.ConnectionMethod) error {
	if !RequiresEncryption(method) {
		return dserr.New(dserr.CodeBadConfigField, "connection_method never requires encryption: "+string(method))
	}
	path := m.ConfigPath(method)

	passwordCmd, err := m.Keychain.PasswordCommand(m.ConfigName(method))
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, rcloneBinary, "config", "encryption", "remove", "--config", path)
	cmd.Env = append(os.Environ(), "RCLONE_PASSWORD_COMMAND="+passwordCmd)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return dserr.New(dserr.CodeFatal, fmt.Sprintf("could not remove rclone config encryption: %s", out))
	}

	if err := m.Keychain.Remove(m.ConfigName(method)); err != nil {
		return err
	}
	return m.setEncryptedState(method, false)
}

// DeleteConfig removes method's rclone config file and resets its
// encryption-state flag, mirroring delete_existing_rclone_config_file.
func (m *Manager) DeleteConfig(method config.ConnectionMethod) error {
	if err := DeleteConfigFile(m.ConfigPath(method)); err != nil {
		return err
	}
	if RequiresEncryption(method) {
		return m.setEncryptedState(method, false)
	}
	return nil
}
