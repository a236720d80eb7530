package names

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// RangePredicate constrains a key's value to a closed interval, used by
// the selector package to resolve @DATETO@/@TIMETO@/@DATETIMETO@ tokens
// against a directory listing (spec.md §4.3). Comparison is lexicographic,
// which is valid because date/time/datetime values are fixed-width.
type RangePredicate struct {
	Key   string // "date", "time", or "datetime"
	Start string
	End   string
}

// InRange reports whether value falls within [Start, End] inclusive.
func (r RangePredicate) InRange(value string) bool {
	return value >= r.Start && value <= r.End
}

var rangeTagFor = map[string]string{
	KeyDate:     "DATETO",
	KeyTime:     "TIMETO",
	KeyDatetime: "DATETIMETO",
}

var rangeKeyLen = map[string]int{
	KeyDate:     8,
	KeyTime:     6,
	KeyDatetime: 15,
}

// FindRangePredicate scans raw for a "<start>@<KEY>TO@<end>" token for key
// in {date, time, datetime}: the target key is never written literally,
// it's implied by the tag itself (@DATETO@ -> date, @TIMETO@ -> time,
// @DATETIMETO@ -> datetime), matching spec.md §8's
// `ses-@*@_20240315@DATETO@20240401` form. It returns the predicate, the
// text before and after the token (so the caller can rebuild a wildcard
// candidate pattern), and whether a token was found at all.
func FindRangePredicate(raw string) (pred *RangePredicate, head, tail string, found bool, err error) {
	for _, key := range []string{KeyDatetime, KeyDate, KeyTime} {
		tag := rangeTagFor[key]
		pattern := regexp.MustCompile(`([0-9A-Za-z]+)@` + tag + `@([0-9A-Za-z]+)`)
		loc := pattern.FindStringSubmatchIndex(raw)
		if loc == nil {
			continue
		}
		start := raw[loc[2]:loc[3]]
		end := raw[loc[4]:loc[5]]
		tagLiteral := "@" + tag + "@"

		if verr := validateRangeValue(key, start, tagLiteral); verr != nil {
			return nil, "", "", true, verr
		}
		if verr := validateRangeValue(key, end, tagLiteral); verr != nil {
			return nil, "", "", true, verr
		}
		if start > end {
			return nil, "", "", true, dserr.NewWithPath(dserr.CodeBadValue,
				fmt.Sprintf("%s range start %q is greater than end %q", tagLiteral, start, end), raw)
		}

		return &RangePredicate{Key: key, Start: start, End: end}, raw[:loc[0]], raw[loc[1]:], true, nil
	}
	return nil, "", "", false, nil
}

func validateRangeValue(key, value, tagLiteral string) error {
	wantLen := rangeKeyLen[key]
	if len(value) != wantLen {
		return dserr.NewWithPath(dserr.CodeBadValue,
			fmt.Sprintf("%s bound %q must be %d characters", tagLiteral, value, wantLen), tagLiteral)
	}
	switch key {
	case KeyDatetime:
		if !allDigits(value[:8]) || value[8] != 'T' || !allDigits(value[9:]) {
			return dserr.NewWithPath(dserr.CodeBadValue,
				fmt.Sprintf("%s bound %q is not in YYYYMMDDTHHMMSS form", tagLiteral, value), tagLiteral)
		}
	default:
		if !allDigits(value) {
			return dserr.NewWithPath(dserr.CodeBadValue,
				fmt.Sprintf("%s bound %q is not all digits", tagLiteral, value), tagLiteral)
		}
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// HasWildcard reports whether raw contains the @*@ wildcard tag.
func HasWildcard(raw string) bool {
	return strings.Contains(raw, TagWildcard)
}
