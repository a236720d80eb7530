package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/transfer"
)

func TestParseCheckOutput(t *testing.T) {
	output := "= sub-001/ses-001/ephys/data.bin\n" +
		"* sub-001/ses-002/ephys/data.bin\n" +
		"+ sub-002/ses-001/ephys/new.bin\n" +
		"- sub-003/ses-001/ephys/gone.bin\n" +
		"! sub-004/ses-001/ephys/broken.bin\n"

	diff, err := transfer.ParseCheckOutput(output)
	require.NoError(t, err)

	assert.Equal(t, []string{"sub-001/ses-001/ephys/data.bin"}, diff.Paths[transfer.Same])
	assert.Equal(t, []string{"sub-001/ses-002/ephys/data.bin"}, diff.Paths[transfer.Different])
	assert.Equal(t, []string{"sub-002/ses-001/ephys/new.bin"}, diff.Paths[transfer.LocalOnly])
	assert.Equal(t, []string{"sub-003/ses-001/ephys/gone.bin"}, diff.Paths[transfer.CentralOnly])
	assert.Equal(t, []string{"sub-004/ses-001/ephys/broken.bin"}, diff.Paths[transfer.DiffError])
}

func TestParseCheckOutput_UnknownSymbolIsFatal(t *testing.T) {
	_, err := transfer.ParseCheckOutput("? sub-001/weird.bin\n")
	assert.Error(t, err)
}

func TestParseCheckOutput_EmptyIsFine(t *testing.T) {
	diff, err := transfer.ParseCheckOutput("")
	require.NoError(t, err)
	assert.Empty(t, diff.Paths[transfer.Same])
}
