// Package credentials implements spec.md §4.7: per-method rclone config
// file naming, the on-disk encryption-state sidecar, and the OS-native
// secret backends used to encrypt an rclone remote's config file.
//
// Grounded on original_source/datashuttle/utils/rclone_encryption.py
// (Windows PSCredential export, Linux `pass`, macOS `security`) and
// original_source/datashuttle/configs/rclone_configs.py (config naming
// and the encryption-state sidecar).
package credentials

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// Keychain abstracts the OS-native secret store used to hold the
// password that encrypts an rclone config file. service is the rclone
// config name (e.g. "central_my_project_ssh").
type Keychain interface {
	// Set generates and stores a fresh random password for service,
	// returning nothing: callers retrieve it only through PasswordCommand.
	Set(service string) error
	// PasswordCommand returns the shell command rclone should run (via
	// RCLONE_PASSWORD_COMMAND) to retrieve the stored password.
	PasswordCommand(service string) (string, error)
	// Remove deletes the stored password for service.
	Remove(service string) error
}

// NewKeychain selects the platform-native backend. baseDir is only used
// by the Windows backend, which has no OS-wide secret store keyed by
// service name and instead keeps one PSCredential XML file per service
// next to the project's config directory.
func NewKeychain(baseDir string) Keychain {
	switch runtime.GOOS {
	case "windows":
		return &windowsKeychain{baseDir: filepath.Join(baseDir, "credentials")}
	case "linux":
		return &linuxKeychain{}
	default:
		return &macKeychain{}
	}
}

func runShell(command string) (stdout, stderr string, err error) {
	cmd := exec.Command("sh", "-c", command)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return out.String(), errBuf.String(), err
}

// linuxKeychain stores the password in the user's GPG-encrypted `pass` store.
type linuxKeychain struct{}

func (k *linuxKeychain) Set(service string) error {
	if _, _, err := runShell("pass --help"); err != nil {
		return dserr.New(dserr.CodeFatal, "`pass` is required to set password; install e.g. `apt install pass`")
	}
	if _, stderr, err := runShell("pass ls"); err != nil {
		return dserr.New(dserr.CodeFatal, "password store is not initialized, run `pass init <gpg-id>`: "+stderr)
	}
	cmd := fmt.Sprintf("echo $(openssl rand -base64 40) | pass insert -m %s", service)
	if _, stderr, err := runShell(cmd); err != nil {
		return dserr.New(dserr.CodeFatal, "could not store password with `pass`: "+stderr)
	}
	return nil
}

func (k *linuxKeychain) PasswordCommand(service string) (string, error) {
	return "/usr/bin/pass " + service, nil
}

func (k *linuxKeychain) Remove(service string) error {
	cmd := exec.Command("pass", "rm", "-f", service)
	_ = cmd.Run()
	return nil
}

// macKeychain stores the password in the macOS login Keychain via `security`.
type macKeychain struct{}

func (k *macKeychain) Set(service string) error {
	cmd := fmt.Sprintf(
		"security add-generic-password -a datashuttle -s %s -w $(openssl rand -base64 40) -U", service)
	if _, stderr, err := runShell(cmd); err != nil {
		return dserr.New(dserr.CodeFatal, "could not store password in Keychain: "+stderr)
	}
	return nil
}

func (k *macKeychain) PasswordCommand(service string) (string, error) {
	return fmt.Sprintf("/usr/bin/security find-generic-password -a datashuttle -s %s -w", service), nil
}

func (k *macKeychain) Remove(service string) error {
	cmd := exec.Command("security", "delete-generic-password", "-a", "datashuttle", "-s", service)
	_ = cmd.Run()
	return nil
}

// windowsKeychain stores a PowerShell PSCredential, exported as XML, one
// file per rclone config name. Only the user account that created it can
// decrypt it.
type windowsKeychain struct {
	baseDir string
}

// psCredentialXML mirrors the shape Export-Clixml produces closely enough
// for our own roundtrip: we never need to interoperate with a real
// PSCredential consumer other than the PowerShell snippet we generate
// ourselves in PasswordCommand.
type psCredentialXML struct {
	XMLName  xml.Name `xml:"PSCredential"`
	UserName string   `xml:"UserName"`
	Password string   `xml:"Password"`
}

func (k *windowsKeychain) path(service string) string {
	return filepath.Join(k.baseDir, service+".xml")
}

func (k *windowsKeychain) Set(service string) error {
	if err := os.MkdirAll(k.baseDir, 0o700); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "creating credentials directory")
	}
	path := k.path(service)
	_ = os.Remove(path)

	shell, err := exec.LookPath("powershell")
	if err != nil {
		return dserr.New(dserr.CodeFatal, "powershell.exe not found in PATH (need Windows PowerShell 5.1)")
	}

	psCmd := "Add-Type -AssemblyName System.Web; " +
		"New-Object PSCredential 'rclone', " +
		"(ConvertTo-SecureString ([System.Web.Security.Membership]::GeneratePassword(40,10)) -AsPlainText -Force) " +
		fmt.Sprintf("| Export-Clixml -LiteralPath '%s'", path)

	cmd := exec.Command(shell, "-NoProfile", "-Command", psCmd)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return dserr.New(dserr.CodeFatal, "could not export PSCredential: "+stderr.String())
	}
	return nil
}

func (k *windowsKeychain) PasswordCommand(service string) (string, error) {
	path := k.path(service)
	if _, err := os.Stat(path); err != nil {
		return "", dserr.NewWithPath(dserr.CodeNotFound, "password file not found", path)
	}
	shell, err := exec.LookPath("powershell")
	if err != nil {
		return "", dserr.New(dserr.CodeFatal, "powershell.exe not found in PATH")
	}
	return fmt.Sprintf(
		`%s -NoProfile -Command "Write-Output ([System.Runtime.InteropServices.Marshal]::PtrToStringAuto([System.Runtime.InteropServices.Marshal]::SecureStringToBSTR((Import-Clixml -LiteralPath '%s').Password)))"`,
		shell, path), nil
}

func (k *windowsKeychain) Remove(service string) error {
	return os.Remove(k.path(service))
}
