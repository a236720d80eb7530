// Package datashuttle is the public facade: the Project type exposing
// every library entry point named in spec.md §6, wired onto the config,
// credentials, settings, listing, selector, validator, and transfer
// packages.
//
// Grounded on ais/backend/ais.go's receiver-based provider style
// (AISBackendProvider holds state, its methods are the public surface)
// and original_source/datashuttle/datashuttle_class.py (one class, one
// method per entry point).
package datashuttle

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/credentials"
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dslog"
	"github.com/neuroinformatics-unit/datashuttle-go/listing"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/settings"
)

// Project is one datashuttle project: its name, its on-disk config, and
// the listing backends derived from that config. All mutating methods
// reload Configs from disk first (another process may have run
// update_config_file), per spec.md §4.6's "mutated only by
// update_config_file" invariant.
type Project struct {
	Name            string
	LocalPath       string // cfg.LocalPath, cached for convenience
	DatashuttlePath string // LocalPath/.datashuttle
	ConfigPath      string // DatashuttlePath/config.yaml
	RcloneBinary    string // defaults to "rclone"
	Clock           names.Clock

	// GDriveTokenSource supplies the OAuth2 token for Google Drive
	// operations. Acquiring it is an interactive, caller-specific flow
	// (browser consent, service account, etc.) outside this package's
	// scope; SetupGDriveConnection and any central-backend use against a
	// gdrive project requires it to be set first.
	GDriveTokenSource oauth2.TokenSource
}

// NewProject opens a handle on an existing project directory. It does not
// read the config file; call Configs() or any operation method to do so
// lazily, matching the teacher's NewAIS(t) constructor which only wires
// dependencies, not remote state.
func NewProject(projectName, localPath string) *Project {
	datashuttlePath := filepath.Join(localPath, ".datashuttle")
	return &Project{
		Name:            projectName,
		LocalPath:       localPath,
		DatashuttlePath: datashuttlePath,
		ConfigPath:      filepath.Join(datashuttlePath, "config.yaml"),
		RcloneBinary:    "rclone",
		Clock:           names.SystemClock{},
	}
}

// Configs reloads and returns the current on-disk config record.
func (p *Project) Configs() (config.Configs, error) {
	return config.Load(p.ConfigPath)
}

// MakeConfigFile creates this project's config file exactly once,
// spec.md §6's make_config_file.
func (p *Project) MakeConfigFile(c config.Configs) (config.Configs, error) {
	c.LocalPath = p.LocalPath
	saved, err := config.MakeConfigFile(p.ConfigPath, c)
	if err != nil {
		return config.Configs{}, err
	}
	if _, err := settings.Load(p.DatashuttlePath); err != nil {
		return config.Configs{}, err
	}
	return saved, nil
}

// UpdateConfigFile performs spec.md §6's update_config_file: copy the
// current record, apply mutate, validate, and only then commit.
func (p *Project) UpdateConfigFile(mutate config.Mutator) (config.Configs, error) {
	return config.UpdateConfigFile(p.ConfigPath, mutate)
}

// openLog starts a per-call log sink, per spec.md §9's context-carried
// logger (internal/dslog), for command.
func (p *Project) openLog(command string) (*dslog.Sink, error) {
	return dslog.Open(p.LocalPath, command)
}

// CredentialsManager returns the credentials.Manager for this project's
// rclone config sidecars, rooted at DatashuttlePath/rclone.
func (p *Project) CredentialsManager() *credentials.Manager {
	return credentials.NewManager(filepath.Join(p.DatashuttlePath, "rclone"), p.Name)
}

// SSHKeyPath is the canonical location of this project's generated SSH
// private key, mirroring original_source/datashuttle/utils/ssh.py's
// `ssh_key_path` convention of one key file per project.
func (p *Project) SSHKeyPath() string {
	return filepath.Join(p.DatashuttlePath, "ssh", p.Name+"_ssh_key")
}

// localBackend is always a plain filesystem listing rooted at local_path,
// regardless of connection_method: local_path is never remote.
func (p *Project) localBackend() listing.Backend {
	return &listing.Local{Root: p.LocalPath}
}

// centralBackend builds the listing.Backend matching the project's
// configured connection_method. SSH's host-key prompt defaults to
// rejecting silently; callers that need interactive accept should use
// centralBackendWithAccept instead.
func (p *Project) centralBackend(ctx context.Context, cfg config.Configs) (listing.Backend, error) {
	return p.centralBackendWithAccept(ctx, cfg, nil)
}

func (p *Project) centralBackendWithAccept(ctx context.Context, cfg config.Configs, accept listing.AcceptHostKey) (listing.Backend, error) {
	switch cfg.ConnectionMethod {
	case config.LocalFilesystem:
		return &listing.Local{Root: cfg.CentralPath}, nil
	case config.SSH:
		if accept == nil {
			accept = func(string, string) bool { return false }
		}
		privateKey, err := os.ReadFile(p.SSHKeyPath())
		if err != nil {
			return nil, dserr.NewWithPath(dserr.CodeAuthFailed, "no SSH key found, run SetupSSHConnection first", p.SSHKeyPath())
		}
		return listing.NewSSH(listing.SSHConfig{
			Host:         cfg.CentralHostID,
			Username:     cfg.CentralHostUsername,
			PrivateKey:   privateKey,
			HostKeysPath: p.DatashuttlePath + "/ssh/known_hosts",
		}, accept), nil
	case config.AWS:
		return listing.NewS3(listing.S3Config{
			Bucket: cfg.CentralPath,
			Region: cfg.AWSRegion,
		})
	case config.GDrive:
		if p.GDriveTokenSource == nil {
			return nil, dserr.New(dserr.CodeAuthFailed, "GDriveTokenSource is not set on this Project")
		}
		return listing.NewGDrive(ctx, listing.GDriveConfig{
			RootFolderID: cfg.GDriveRootFolderID,
			TokenSource:  p.GDriveTokenSource,
		})
	default:
		return nil, dserr.New(dserr.CodeBadConfigField, "connection_method is not configured")
	}
}
