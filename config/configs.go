// Package config implements spec.md §4.6: the typed Configs record, its
// on-disk YAML form, and the copy-validate-swap update lifecycle.
//
// Grounded on original_source/datashuttle/configs/configs.py's Configs
// UserDict (dump_to_file/load_from_file, update_an_entry's
// copy-then-validate-then-commit-or-revert shape), re-expressed as a typed
// Go struct (spec.md §9: "dynamic dict of configs → typed record") saved
// atomically the way the teacher's cmn/jsp.Save does (tmp-then-rename),
// using github.com/google/renameio instead of a hand-rolled tmp file.
package config

import (
	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// ConnectionMethod is the enum of central-storage transport kinds, spec.md §3.
type ConnectionMethod string

const (
	LocalFilesystem ConnectionMethod = "local_filesystem"
	SSH             ConnectionMethod = "ssh"
	AWS             ConnectionMethod = "aws"
	GDrive          ConnectionMethod = "gdrive"
)

func (c ConnectionMethod) valid() bool {
	switch c {
	case LocalFilesystem, SSH, AWS, GDrive, "":
		return true
	default:
		return false
	}
}

// Configs is the full typed configuration record, spec.md §3's table.
type Configs struct {
	LocalPath        string
	CentralPath      string
	ConnectionMethod ConnectionMethod

	CentralHostID       string
	CentralHostUsername string

	AWSAccessKeyID string
	AWSRegion      string

	GDriveClientID      string
	GDriveRootFolderID  string
}

// knownAWSRegions is a representative subset of the enum named in spec.md
// §3 ("enum of known regions"); real deployments would load the full AWS
// region list, but the cross-field rule only needs membership checking.
var knownAWSRegions = map[string]bool{
	"us-east-1": true, "us-east-2": true, "us-west-1": true, "us-west-2": true,
	"eu-west-1": true, "eu-west-2": true, "eu-central-1": true,
	"ap-southeast-1": true, "ap-southeast-2": true, "ap-northeast-1": true,
}

// Validate runs the cross-field rules of spec.md §4.6.
func (c Configs) Validate() error {
	if c.LocalPath == "" {
		return dserr.New(dserr.CodeBadConfigField, "local_path is required")
	}
	if !isAbsolute(c.LocalPath) {
		return dserr.NewWithPath(dserr.CodeBadConfigField, "local_path must be absolute", c.LocalPath)
	}

	localOnly := c.CentralPath == "" && c.ConnectionMethod == ""
	bothSet := c.CentralPath != "" && c.ConnectionMethod != ""
	if !localOnly && !bothSet {
		return dserr.New(dserr.CodeBadConfigField,
			"central_path and connection_method must both be set, or both be absent")
	}
	if localOnly {
		return nil
	}

	if !c.ConnectionMethod.valid() {
		return dserr.New(dserr.CodeBadConfigField, "connection_method is not a recognised value")
	}
	if !isAbsolute(c.CentralPath) && c.ConnectionMethod == LocalFilesystem {
		return dserr.NewWithPath(dserr.CodeBadConfigField,
			"central_path must be absolute for connection_method=local_filesystem", c.CentralPath)
	}

	switch c.ConnectionMethod {
	case SSH:
		if c.CentralHostID == "" || c.CentralHostUsername == "" {
			return dserr.New(dserr.CodeBadConfigField,
				"central_host_id and central_host_username are required for connection_method=ssh")
		}
	case AWS:
		if c.AWSAccessKeyID == "" {
			return dserr.New(dserr.CodeBadConfigField, "aws_access_key_id is required for connection_method=aws")
		}
		if c.AWSRegion == "" || !knownAWSRegions[c.AWSRegion] {
			return dserr.New(dserr.CodeBadConfigField, "aws_region must be a known AWS region for connection_method=aws")
		}
	case GDrive:
		if c.GDriveRootFolderID == "" {
			return dserr.New(dserr.CodeBadConfigField, "gdrive_root_folder_id is required for connection_method=gdrive")
		}
	}

	return nil
}

func isAbsolute(p string) bool {
	if p == "" {
		return false
	}
	if p[0] == '~' {
		return false
	}
	if p[0] == '/' {
		return true
	}
	// Windows drive-letter absolute path, e.g. "C:\Users\...".
	if len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') {
		return true
	}
	return false
}
