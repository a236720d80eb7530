// Package transfer wraps the external rclone binary (spec.md §4.5),
// building copy/check argument vectors and invoking them as a cancellable
// subprocess task. Grounded on
// original_source/datashuttle/utils/rclone.py (call_rclone, transfer_data,
// perform_rclone_check, handle_rclone_arguments).
package transfer

import (
	"fmt"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// Direction is the transfer direction, spec.md §4.5.
type Direction string

const (
	Upload   Direction = "upload"
	Download Direction = "download"
)

// Overwrite is the overwrite policy applied to a copy, spec.md §4.5.
type Overwrite string

const (
	OverwriteNever       Overwrite = "never"
	OverwriteAlways      Overwrite = "always"
	OverwriteIfNewer     Overwrite = "if_source_newer"
)

// Options bundles the per-call rclone copy flags, spec.md §4.5.
type Options struct {
	Overwrite     Overwrite
	DryRun        bool
	ShowProgress  bool
	Verbosity     int // 0 = none, 1 = "-v", 2 = "-vv"
}

// Endpoint names one side of a transfer: a local filesystem path, or an
// rclone remote ("<config-name>:<path>") for everything else.
type Endpoint struct {
	RcloneConfigName string // empty for the local side
	Path             string
}

func (e Endpoint) arg() string {
	if e.RcloneConfigName == "" {
		return e.Path
	}
	return fmt.Sprintf("%s:%s", e.RcloneConfigName, e.Path)
}

// CopyPlan is a fully-built rclone `copy` argument vector, ready for
// exec.Command("rclone", plan.Args...).
type CopyPlan struct {
	Args []string
}

// BuildCopyPlan composes the argument vector for one copy invocation, per
// spec.md §4.5's "Plan" subsection.
func BuildCopyPlan(direction Direction, local, central Endpoint, includes []string, opts Options) (CopyPlan, error) {
	if direction != Upload && direction != Download {
		return CopyPlan{}, dserr.New(dserr.CodeFatal, "direction must be upload or download")
	}

	args := []string{"copy", "--create-empty-src-dirs"}

	switch opts.Verbosity {
	case 1:
		args = append(args, "-v")
	case 2:
		args = append(args, "-vv")
	}

	switch opts.Overwrite {
	case OverwriteNever:
		args = append(args, "--ignore-existing")
	case OverwriteIfNewer:
		args = append(args, "--update")
	case OverwriteAlways, "":
		// neither flag
	default:
		return CopyPlan{}, dserr.New(dserr.CodeFatal, "unknown overwrite policy: "+string(opts.Overwrite))
	}

	if opts.ShowProgress {
		args = append(args, "--progress")
	}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}

	for _, inc := range includes {
		args = append(args, "--include", inc)
	}
	args = append(args, "--include-empty")

	src, dst := local, central
	if direction == Download {
		src, dst = central, local
	}
	args = append(args, src.arg(), dst.arg())

	return CopyPlan{Args: args}, nil
}

// CheckPlan is a fully-built rclone `check --combined -` argument vector,
// used to diff the two roots per spec.md §4.5's "Diff" subsection.
type CheckPlan struct {
	Args []string
}

// BuildCheckPlan composes the argument vector for a combined diff check.
func BuildCheckPlan(local, central Endpoint) CheckPlan {
	return CheckPlan{Args: []string{"check", local.arg(), central.arg(), "--combined", "-"}}
}
