package datashuttle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/validator"
)

func TestValidateProject_PassesOnWellFormedTree(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	_, err := p.CreateFolders(project.Rawdata, []string{"001", "002"}, []string{"001"}, []string{"ephys"})
	require.NoError(t, err)

	err = p.ValidateProject(context.Background(), project.Rawdata, validator.DisplayError, false, false)
	assert.NoError(t, err)
}

func TestValidateProject_PrintModeNeverErrors(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	err := p.ValidateProject(context.Background(), project.Rawdata, validator.DisplayPrint, false, false)
	assert.NoError(t, err)
}

func TestQuickValidateProject_FlagsBadName(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	issues := p.QuickValidateProject("sub", []string{"not-a-valid-name"}, false)
	assert.NotEmpty(t, issues)
}

func TestQuickValidateProject_AcceptsWellFormedName(t *testing.T) {
	p := newTestProject(t)
	mustMakeConfig(t, p)

	issues := p.QuickValidateProject("sub", []string{"sub-001"}, false)
	assert.Empty(t, issues)
}
