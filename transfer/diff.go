package transfer

import (
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// DiffBucket is one of the five categories rclone's combined check output
// classifies a path into, spec.md §4.5's "Diff" subsection.
type DiffBucket string

const (
	Same        DiffBucket = "same"
	Different   DiffBucket = "different"
	LocalOnly   DiffBucket = "local_only"
	CentralOnly DiffBucket = "central_only"
	DiffError   DiffBucket = "error"
)

var symbolToBucket = map[byte]DiffBucket{
	'=': Same,
	'*': Different,
	'+': LocalOnly,
	'-': CentralOnly,
	'!': DiffError,
}

// Diff is the parsed result of a `check --combined -` run, grouping paths
// by bucket.
type Diff struct {
	Paths map[DiffBucket][]string
}

// ParseCheckOutput parses rclone's `check --combined -` stdout, per
// original_source/datashuttle/utils/rclone.py's
// get_local_and_central_file_differences. Each line is "<symbol> <path>";
// an unrecognised leading symbol is a fatal parse error, per spec.md §4.5.
func ParseCheckOutput(output string) (Diff, error) {
	diff := Diff{Paths: map[DiffBucket][]string{
		Same: nil, Different: nil, LocalOnly: nil, CentralOnly: nil, DiffError: nil,
	}}

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		if len(line) < 2 || line[1] != ' ' {
			return Diff{}, dserr.NewWithPath(dserr.CodeFatal,
				"rclone check output line is malformed", line)
		}
		bucket, ok := symbolToBucket[line[0]]
		if !ok {
			return Diff{}, dserr.NewWithPath(dserr.CodeFatal,
				"rclone check output has an unrecognised symbol", line)
		}
		diff.Paths[bucket] = append(diff.Paths[bucket], line[2:])
	}

	return diff, nil
}
