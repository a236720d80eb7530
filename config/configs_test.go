package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
)

func TestValidate_LocalOnly(t *testing.T) {
	c := config.Configs{LocalPath: "/data/my_project"}
	assert.NoError(t, c.Validate())
}

func TestValidate_LocalPathRequired(t *testing.T) {
	c := config.Configs{}
	assert.Error(t, c.Validate())
}

func TestValidate_LocalPathMustBeAbsolute(t *testing.T) {
	c := config.Configs{LocalPath: "relative/path"}
	assert.Error(t, c.Validate())

	c = config.Configs{LocalPath: "~/data"}
	assert.Error(t, c.Validate())
}

func TestValidate_CentralPathAndMethodMustBothBeSet(t *testing.T) {
	c := config.Configs{LocalPath: "/data", CentralPath: "/remote"}
	assert.Error(t, c.Validate())

	c = config.Configs{LocalPath: "/data", ConnectionMethod: config.SSH}
	assert.Error(t, c.Validate())
}

func TestValidate_LocalFilesystemRequiresAbsoluteCentralPath(t *testing.T) {
	c := config.Configs{
		LocalPath:        "/data",
		CentralPath:      "relative",
		ConnectionMethod: config.LocalFilesystem,
	}
	assert.Error(t, c.Validate())

	c.CentralPath = "/remote/data"
	assert.NoError(t, c.Validate())
}

func TestValidate_SSHRequiresHostFields(t *testing.T) {
	c := config.Configs{LocalPath: "/data", CentralPath: "/remote", ConnectionMethod: config.SSH}
	assert.Error(t, c.Validate())

	c.CentralHostID = "myhost.example.com"
	c.CentralHostUsername = "researcher"
	assert.NoError(t, c.Validate())
}

func TestValidate_AWSRequiresAccessKeyAndKnownRegion(t *testing.T) {
	c := config.Configs{LocalPath: "/data", CentralPath: "bucket/data", ConnectionMethod: config.AWS}
	assert.Error(t, c.Validate())

	c.AWSAccessKeyID = "AKIA..."
	c.AWSRegion = "mars-central-1"
	assert.Error(t, c.Validate())

	c.AWSRegion = "us-east-1"
	assert.NoError(t, c.Validate())
}

func TestValidate_GDriveRequiresRootFolderID(t *testing.T) {
	c := config.Configs{LocalPath: "/data", CentralPath: "drive/data", ConnectionMethod: config.GDrive}
	assert.Error(t, c.Validate())

	c.GDriveRootFolderID = "1a2b3c"
	assert.NoError(t, c.Validate())
}
