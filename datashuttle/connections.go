package datashuttle

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/credentials"
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/listing"
)

// SetupSSHConnection generates a fresh SSH key pair for this project (if
// one doesn't already exist), offers the host's key fingerprint to accept
// for first-time trust, persists it to the project's known_hosts file,
// and commits connection_method=ssh plus the host/username fields to the
// config file, spec.md §6's setup_ssh_connection.
func (p *Project) SetupSSHConnection(ctx context.Context, hostID, hostUsername string, accept listing.AcceptHostKey) error {
	log, err := p.openLog("setup_ssh_connection")
	if err != nil {
		return err
	}
	defer log.Close()

	keyPath := p.SSHKeyPath()
	if _, statErr := os.Stat(keyPath); os.IsNotExist(statErr) {
		if err := os.MkdirAll(p.DatashuttlePath+"/ssh", 0o700); err != nil {
			return dserr.Wrap(err, dserr.CodeFatal, "creating ssh key directory")
		}
		if err := listing.GenerateKeyPair(keyPath, generateRSAKeyPair); err != nil {
			return dserr.Wrap(err, dserr.CodeFatal, "generating SSH key pair")
		}
	}

	privateKey, err := os.ReadFile(keyPath)
	if err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "reading generated SSH key")
	}

	backend := listing.NewSSH(listing.SSHConfig{
		Host:         hostID,
		Username:     hostUsername,
		PrivateKey:   privateKey,
		HostKeysPath: p.DatashuttlePath + "/ssh/known_hosts",
	}, accept)

	// A directory listing on "." exercises the host-key accept-and-persist
	// flow and confirms the credentials work before they are committed.
	if _, _, err := backend.List(ctx, "."); err != nil {
		return err
	}

	_, err = p.UpdateConfigFile(func(c config.Configs) config.Configs {
		c.ConnectionMethod = config.SSH
		c.CentralHostID = hostID
		c.CentralHostUsername = hostUsername
		return c
	})
	return err
}

// generateRSAKeyPair produces a 4096-bit RSA key pair PEM-encoded in
// PKCS#1 (private) and authorized_keys (public) form, the Go-native
// equivalent of original_source/datashuttle/utils/ssh.py's paramiko
// RSAKey.generate(4096).
func generateRSAKeyPair() (private []byte, public []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		return nil, nil, err
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	return privPEM, ssh.MarshalAuthorizedKey(pub), nil
}

// SetupAWSConnection writes the S3 credentials into an rclone remote
// config, encrypts it at rest, and commits connection_method=aws plus
// the access key ID and region, spec.md §6's setup_aws_connection.
func (p *Project) SetupAWSConnection(ctx context.Context, accessKeyID, secretAccessKey, region string) error {
	log, err := p.openLog("setup_aws_connection")
	if err != nil {
		return err
	}
	defer log.Close()

	mgr := p.CredentialsManager()
	remoteName := mgr.ConfigName(config.AWS)
	if err := credentials.WriteRemoteSection(mgr.ConfigPath(config.AWS), remoteName, map[string]string{
		"type":              "s3",
		"provider":          "AWS",
		"access_key_id":     accessKeyID,
		"secret_access_key": secretAccessKey,
		"region":            region,
	}); err != nil {
		return err
	}

	if err := mgr.Encrypt(ctx, p.RcloneBinary, config.AWS); err != nil {
		return err
	}

	_, err = p.UpdateConfigFile(func(c config.Configs) config.Configs {
		c.ConnectionMethod = config.AWS
		c.AWSAccessKeyID = accessKeyID
		c.AWSRegion = region
		return c
	})
	return err
}

// SetupGDriveConnection writes the Drive client ID into an rclone remote
// config and commits connection_method=gdrive plus the client ID and root
// folder ID, spec.md §6's setup_gdrive_connection. Acquiring the OAuth2
// token itself is the caller's responsibility (Project.GDriveTokenSource);
// this step only persists what rclone and the config file need to know
// which remote and folder to use afterwards.
func (p *Project) SetupGDriveConnection(ctx context.Context, clientID, clientSecret, rootFolderID string) error {
	log, err := p.openLog("setup_gdrive_connection")
	if err != nil {
		return err
	}
	defer log.Close()

	mgr := p.CredentialsManager()
	remoteName := mgr.ConfigName(config.GDrive)
	if err := credentials.WriteRemoteSection(mgr.ConfigPath(config.GDrive), remoteName, map[string]string{
		"type":           "drive",
		"client_id":      clientID,
		"client_secret":  clientSecret,
		"root_folder_id": rootFolderID,
	}); err != nil {
		return err
	}

	if err := mgr.Encrypt(ctx, p.RcloneBinary, config.GDrive); err != nil {
		return err
	}

	_, err = p.UpdateConfigFile(func(c config.Configs) config.Configs {
		c.ConnectionMethod = config.GDrive
		c.GDriveClientID = clientID
		c.GDriveRootFolderID = rootFolderID
		return c
	})
	return err
}
