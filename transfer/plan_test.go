package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/transfer"
)

func TestBuildCopyPlan_Upload_NeverOverwrite(t *testing.T) {
	local := transfer.Endpoint{Path: "/data/my_project/rawdata"}
	central := transfer.Endpoint{RcloneConfigName: "central_my_project_ssh", Path: "/remote/my_project/rawdata"}

	plan, err := transfer.BuildCopyPlan(transfer.Upload, local, central,
		[]string{"sub-001/**"},
		transfer.Options{Overwrite: transfer.OverwriteNever, Verbosity: 1})
	require.NoError(t, err)

	assert.Contains(t, plan.Args, "copy")
	assert.Contains(t, plan.Args, "--create-empty-src-dirs")
	assert.Contains(t, plan.Args, "--ignore-existing")
	assert.Contains(t, plan.Args, "-v")
	assert.Contains(t, plan.Args, "--include-empty")

	// Source is local, destination is the rclone remote, for upload.
	last := plan.Args[len(plan.Args)-1]
	secondLast := plan.Args[len(plan.Args)-2]
	assert.Equal(t, "/data/my_project/rawdata", secondLast)
	assert.Equal(t, "central_my_project_ssh:/remote/my_project/rawdata", last)
}

func TestBuildCopyPlan_Download_SwapsEndpoints(t *testing.T) {
	local := transfer.Endpoint{Path: "/data/my_project/rawdata"}
	central := transfer.Endpoint{RcloneConfigName: "central_my_project_aws", Path: "bucket/my_project/rawdata"}

	plan, err := transfer.BuildCopyPlan(transfer.Download, local, central, nil, transfer.Options{})
	require.NoError(t, err)

	last := plan.Args[len(plan.Args)-1]
	secondLast := plan.Args[len(plan.Args)-2]
	assert.Equal(t, "central_my_project_aws:bucket/my_project/rawdata", secondLast)
	assert.Equal(t, "/data/my_project/rawdata", last)
}

func TestBuildCopyPlan_DryRunAndProgress(t *testing.T) {
	plan, err := transfer.BuildCopyPlan(transfer.Upload,
		transfer.Endpoint{Path: "/l"}, transfer.Endpoint{Path: "/c"}, nil,
		transfer.Options{DryRun: true, ShowProgress: true, Overwrite: transfer.OverwriteIfNewer})
	require.NoError(t, err)
	assert.Contains(t, plan.Args, "--dry-run")
	assert.Contains(t, plan.Args, "--progress")
	assert.Contains(t, plan.Args, "--update")
}

func TestBuildCheckPlan(t *testing.T) {
	plan := transfer.BuildCheckPlan(transfer.Endpoint{Path: "/l"}, transfer.Endpoint{RcloneConfigName: "c", Path: "/c"})
	assert.Equal(t, []string{"check", "/l", "c:/c", "--combined", "-"}, plan.Args)
}
