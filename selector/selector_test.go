package selector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/selector"
)

// fakeBackend is an in-memory listing.Backend over a flat map of
// directory -> (folders, files), enough to exercise the resolver without
// touching a real filesystem or network backend.
type fakeBackend struct {
	dirs map[string]struct {
		folders []string
		files   []string
	}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{dirs: map[string]struct {
		folders []string
		files   []string
	}{}}
}

func (f *fakeBackend) add(dir string, folders, files []string) {
	f.dirs[dir] = struct {
		folders []string
		files   []string
	}{folders, files}
}

func (f *fakeBackend) List(_ context.Context, dir string) ([]string, []string, error) {
	e, ok := f.dirs[dir]
	if !ok {
		return nil, nil, nil
	}
	return e.folders, e.files, nil
}

func (f *fakeBackend) Exists(_ context.Context, path string) (bool, error) { return false, nil }
func (f *fakeBackend) Delete(_ context.Context, path string) error        { return nil }

func TestResolve_AllSentinel(t *testing.T) {
	backend := newFakeBackend()
	backend.add("rawdata", []string{"sub-001", "sub-002", "extra_folder"}, nil)
	backend.add("rawdata/sub-001", []string{"ses-001"}, nil)
	backend.add("rawdata/sub-001/ses-001", []string{"ephys"}, nil)
	backend.add("rawdata/sub-002", []string{"ses-001"}, nil)
	backend.add("rawdata/sub-002/ses-001", []string{"behav"}, nil)

	includes, err := selector.Resolve(context.Background(), backend, "rawdata", selector.Query{
		SubSelector:      []string{selector.All},
		SesSelector:      []string{selector.All},
		DatatypeSelector: []string{selector.All},
		TopLevel:         project.Rawdata,
	}, names.SystemClock{})
	require.NoError(t, err)

	var paths []string
	for _, inc := range includes {
		paths = append(paths, inc.Path)
	}
	assert.Contains(t, paths, "rawdata/sub-001/ses-001/ephys")
	assert.Contains(t, paths, "rawdata/sub-002/ses-001/behav")
	assert.Contains(t, paths, "rawdata/extra_folder") // all_non_sub via "all"
}

func TestResolve_SpecificSubjects(t *testing.T) {
	backend := newFakeBackend()
	backend.add("rawdata", []string{"sub-001", "sub-002"}, nil)
	backend.add("rawdata/sub-001", []string{"ses-001"}, nil)
	backend.add("rawdata/sub-001/ses-001", []string{"ephys"}, nil)

	includes, err := selector.Resolve(context.Background(), backend, "rawdata", selector.Query{
		SubSelector:      []string{"sub-001"},
		SesSelector:      []string{selector.All},
		DatatypeSelector: []string{selector.All},
		TopLevel:         project.Rawdata,
	}, names.SystemClock{})
	require.NoError(t, err)

	var paths []string
	for _, inc := range includes {
		paths = append(paths, inc.Path)
	}
	assert.Equal(t, []string{"rawdata/sub-001/ses-001/ephys"}, paths)
}

func TestResolve_Wildcard(t *testing.T) {
	backend := newFakeBackend()
	backend.add("rawdata", []string{"sub-001", "sub-002", "sub-003"}, nil)
	for _, s := range []string{"sub-001", "sub-002", "sub-003"} {
		backend.add("rawdata/"+s, []string{"ses-001"}, nil)
		backend.add("rawdata/"+s+"/ses-001", []string{"ephys"}, nil)
	}

	includes, err := selector.Resolve(context.Background(), backend, "rawdata", selector.Query{
		SubSelector:      []string{"sub-@*@"},
		SesSelector:      []string{selector.All},
		DatatypeSelector: []string{selector.All},
		TopLevel:         project.Rawdata,
	}, names.SystemClock{})
	require.NoError(t, err)
	assert.Len(t, includes, 3)
}

func TestResolve_RangePredicate(t *testing.T) {
	backend := newFakeBackend()
	backend.add("rawdata", []string{"sub-001"}, nil)
	backend.add("rawdata/sub-001", []string{
		"ses-001_date-20240310",
		"ses-002_date-20240315",
		"ses-003_date-20240401",
		"ses-004_date-20240501",
	}, nil)
	for _, s := range []string{
		"ses-001_date-20240310", "ses-002_date-20240315", "ses-003_date-20240401", "ses-004_date-20240501",
	} {
		backend.add("rawdata/sub-001/"+s, []string{"ephys"}, nil)
	}

	includes, err := selector.Resolve(context.Background(), backend, "rawdata", selector.Query{
		SubSelector:      []string{"sub-001"},
		SesSelector:      []string{"ses-@*@_20240315@DATETO@20240401"},
		DatatypeSelector: []string{selector.All},
		TopLevel:         project.Rawdata,
	}, names.SystemClock{})
	require.NoError(t, err)

	var paths []string
	for _, inc := range includes {
		paths = append(paths, inc.Path)
	}
	assert.Contains(t, paths, "rawdata/sub-001/ses-002_date-20240315/ephys")
	assert.Contains(t, paths, "rawdata/sub-001/ses-003_date-20240401/ephys")
	assert.NotContains(t, paths, "rawdata/sub-001/ses-001_date-20240310/ephys")
	assert.NotContains(t, paths, "rawdata/sub-001/ses-004_date-20240501/ephys")
}

func TestValidateMix_Conflict(t *testing.T) {
	backend := newFakeBackend()
	_, err := selector.Resolve(context.Background(), backend, "rawdata", selector.Query{
		SubSelector: []string{selector.All, "sub-001"},
		TopLevel:    project.Rawdata,
	}, names.SystemClock{})
	assert.Error(t, err)
}
