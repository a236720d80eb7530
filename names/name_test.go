package names_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
)

func TestParse_Valid(t *testing.T) {
	n, err := names.Parse("sub-001_date-20240101_id-abc")
	require.NoError(t, err)
	assert.Equal(t, "sub", n.Prefix())
	assert.Equal(t, "001", n.PrefixValue())
	v, ok := n.Get("date")
	require.True(t, ok)
	assert.Equal(t, "20240101", v)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]dserr.Code{
		"":                       dserr.CodeMissingPrefix,
		"foo-001":                dserr.CodeMissingPrefix,
		"sub-a!b":                dserr.CodeSpecialChar,
		"sub-001_date-1_date-2":  dserr.CodeDuplicateKey,
		"sub-001__id-a":          dserr.CodeSpecialChar,
	}
	for input, wantCode := range cases {
		_, err := names.Parse(input)
		require.Error(t, err, input)
		dsErr, ok := dserr.As(err)
		require.True(t, ok, input)
		assert.Equal(t, string(wantCode), dsErr.Code(), input)
	}
}

func TestParse_BadValueNoLeadingDigit(t *testing.T) {
	_, err := names.Parse("sub-abc")
	require.Error(t, err)
	code, _ := dserr.As(err)
	assert.Equal(t, string(dserr.CodeBadValue), code.Code())
}

// Round-trip property (spec.md §8 #1): parse(format(n)) succeeds and
// format(parse(n)) == n for every name produced by FormatNames.
func TestFormatNames_RoundTrip(t *testing.T) {
	clock := names.FixedClock{At: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)}
	out, err := names.FormatNames([]string{"001", "sub-002"}, "sub", clock)
	require.NoError(t, err)
	require.Equal(t, []string{"sub-001", "sub-002"}, out)

	for _, n := range out {
		parsed, err := names.Parse(n)
		require.NoError(t, err)
		assert.Equal(t, n, parsed.String())
	}
}

func TestFormatNames_Dedup_PreservesOrder(t *testing.T) {
	clock := names.SystemClock{}
	out, err := names.FormatNames([]string{"sub-003", "sub-001", "sub-003"}, "sub", clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-003", "sub-001"}, out)
}

func TestFormatNames_DateTag(t *testing.T) {
	clock := names.FixedClock{At: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	out, err := names.FormatNames([]string{"sub-001_" + names.TagDate}, "sub", clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-001_date-20240301"}, out)
}

func TestFormatNames_DatetimeTag(t *testing.T) {
	clock := names.FixedClock{At: time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)}
	out, err := names.FormatNames([]string{"sub-001" + names.TagDatetime}, "sub", clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-001_date-20240301_time-140509"}, out)
}

// Tag idempotence (spec.md §8 #2): expanding an already-expanded name is a
// no-op.
func TestExpandConcreteTags_Idempotent(t *testing.T) {
	clock := names.FixedClock{At: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	once, err := names.ExpandConcreteTags("sub-001_"+names.TagDate, clock)
	require.NoError(t, err)
	require.Len(t, once, 1)

	twice, err := names.ExpandConcreteTags(once[0], clock)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

// Range expansion width (spec.md §8 #3).
func TestExpandConcreteTags_ToRangeWidth(t *testing.T) {
	clock := names.SystemClock{}

	out, err := names.ExpandConcreteTags("sub-001"+names.TagTo+"003", clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-001", "sub-002", "sub-003"}, out)

	out, err = names.ExpandConcreteTags("sub-1"+names.TagTo+"3", clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-1", "sub-2", "sub-3"}, out)
}

func TestExpandConcreteTags_ToRangeBadValue(t *testing.T) {
	clock := names.SystemClock{}
	_, err := names.ExpandConcreteTags("sub-005"+names.TagTo+"003", clock)
	require.Error(t, err)
	dsErr, ok := dserr.As(err)
	require.True(t, ok)
	assert.Equal(t, string(dserr.CodeBadValue), dsErr.Code())
}

func TestFindRangePredicate(t *testing.T) {
	pred, head, tail, found, err := names.FindRangePredicate("ses-@*@_20240315@DATETO@20240401")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "date", pred.Key)
	assert.Equal(t, "20240315", pred.Start)
	assert.Equal(t, "20240401", pred.End)
	assert.Equal(t, "ses-@*@_", head)
	assert.Equal(t, "", tail)

	assert.True(t, pred.InRange("20240320"))
	assert.False(t, pred.InRange("20240101"))
}

func TestFindRangePredicate_MalformedBounds(t *testing.T) {
	_, _, _, found, err := names.FindRangePredicate("ses-001_2024030@DATETO@20240401")
	require.True(t, found)
	require.Error(t, err)
	dsErr, ok := dserr.As(err)
	require.True(t, ok)
	assert.Equal(t, string(dserr.CodeBadValue), dsErr.Code())
}
