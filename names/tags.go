package names

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

const (
	TagDate     = "@DATE@"
	TagTime     = "@TIME@"
	TagDatetime = "@DATETIME@"
	TagTo       = "@TO@"
	TagWildcard = "@*@"

	TagDateTo     = "@DATETO@"
	TagTimeTo     = "@TIMETO@"
	TagDatetimeTo = "@DATETIMETO@"
)

const (
	dateLayout     = "20060102"
	timeLayout     = "150405"
	datetimeLayout = "20060102T150405"
)

var toPattern = regexp.MustCompile(`([A-Za-z][A-Za-z0-9]*)-([0-9]+)` + regexp.QuoteMeta(TagTo) + `([0-9]+)`)

// ExpandConcreteTags expands @DATE@, @TIME@, @DATETIME@ and @TO@ ranges in
// raw, using clock for the date/time tags. Range-predicate tags
// (@DATETO@/@TIMETO@/@DATETIMETO@) and the wildcard tag (@*@) are left
// untouched: they name a predicate over a directory listing, resolved by
// the selector package (spec.md §4.3), not a single concrete value.
//
// A raw string containing @TO@ expands to more than one result, one per
// integer in the inclusive range; every other input expands to exactly
// one result.
func ExpandConcreteTags(raw string, clock Clock) ([]string, error) {
	expanded, err := expandRange(raw)
	if err != nil {
		return nil, err
	}

	results := make([]string, 0, len(expanded))
	for _, s := range expanded {
		s = expandPointTags(s, clock)
		results = append(results, s)
	}
	return results, nil
}

func expandRange(raw string) ([]string, error) {
	loc := toPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return []string{raw}, nil
	}
	key := raw[loc[2]:loc[3]]
	aStr := raw[loc[4]:loc[5]]
	bStr := raw[loc[6]:loc[7]]
	head := raw[:loc[0]]
	suffix := raw[loc[1]:]

	a, errA := strconv.Atoi(aStr)
	b, errB := strconv.Atoi(bStr)
	if errA != nil || errB != nil {
		return nil, dserr.NewWithPath(dserr.CodeBadValue, "malformed @TO@ range bounds", raw)
	}
	if a > b {
		return nil, dserr.NewWithPath(dserr.CodeBadValue,
			fmt.Sprintf("@TO@ range start %d is greater than end %d", a, b), raw)
	}

	width := len(aStr)
	out := make([]string, 0, b-a+1)
	for v := a; v <= b; v++ {
		out = append(out, fmt.Sprintf("%s%s-%0*d%s", head, key, width, v, suffix))
	}
	return out, nil
}

func expandPointTags(s string, clock Clock) string {
	now := clock.Now()

	if strings.Contains(s, TagDatetime) {
		fragment := KeyDate + "-" + now.Format(dateLayout) + "_" + KeyTime + "-" + now.Format(timeLayout)
		s = spliceTag(s, "", TagDatetime, fragment)
	}
	if strings.Contains(s, TagDate) {
		fragment := KeyDate + "-" + now.Format(dateLayout)
		s = spliceTag(s, KeyDate, TagDate, fragment)
	}
	if strings.Contains(s, TagTime) {
		fragment := KeyTime + "-" + now.Format(timeLayout)
		s = spliceTag(s, KeyTime, TagTime, fragment)
	}
	return s
}

// spliceTag replaces the first occurrence of tag in s with fragment,
// inserting surrounding underscores where missing, per spec.md §4.1.
// If key is non-empty, a preceding "<key>-" immediately before tag is
// consumed along with it (the "key-tag fragment" authoring form).
func spliceTag(s, key, tag, fragment string) string {
	keyForm := ""
	if key != "" {
		keyForm = key + "-" + tag
	}

	start, end := -1, -1
	if keyForm != "" {
		if idx := strings.Index(s, keyForm); idx >= 0 {
			start, end = idx, idx+len(keyForm)
		}
	}
	if start < 0 {
		if idx := strings.Index(s, tag); idx >= 0 {
			start, end = idx, idx+len(tag)
		}
	}
	if start < 0 {
		return s
	}

	before, after := s[:start], s[end:]
	if before != "" && !strings.HasSuffix(before, "_") {
		before += "_"
	}
	if after != "" && !strings.HasPrefix(after, "_") {
		after = "_" + after
	}
	return before + fragment + after
}

// EnsurePrefix prepends "<prefix>-" to raw if it does not already start
// with a recognised prefix. If raw starts with the other prefix, that is
// a MissingPrefix error (the caller asked for one level, the input names
// the other).
func EnsurePrefix(raw, prefix string) (string, error) {
	if prefix != "sub" && prefix != "ses" {
		return "", dserr.New(dserr.CodeMissingPrefix, "prefix must be 'sub' or 'ses'")
	}
	want := prefix + "-"
	if strings.HasPrefix(raw, want) {
		return raw, nil
	}
	other := "sub-"
	if prefix == "sub" {
		other = "ses-"
	}
	if strings.HasPrefix(raw, other) {
		return "", dserr.NewWithPath(dserr.CodeMissingPrefix,
			fmt.Sprintf("expected %q-prefixed name", prefix), raw)
	}
	return want + raw, nil
}

// FormatNames takes raw user strings (with or without the prefix),
// ensures the prefix, expands all tags, deduplicates while preserving
// first-seen order, and returns canonical basenames. Never silently drops
// input: every raw entry either contributes at least one canonical name
// or the call fails.
func FormatNames(inputs []string, prefix string, clock Clock) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0, len(inputs))

	for _, raw := range inputs {
		withPrefix, err := EnsurePrefix(raw, prefix)
		if err != nil {
			return nil, err
		}
		expanded, err := ExpandConcreteTags(withPrefix, clock)
		if err != nil {
			return nil, err
		}
		for _, candidate := range expanded {
			parsed, err := Parse(candidate)
			if err != nil {
				return nil, err
			}
			canonical := parsed.String()
			if !seen[canonical] {
				seen[canonical] = true
				out = append(out, canonical)
			}
		}
	}
	return out, nil
}
