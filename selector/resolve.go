package selector

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/listing"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

// resolveNameLevel expands a sub or ses selector list into a sorted,
// deduplicated list of concrete folder names found under dir, plus
// whether the "non-prefixed" sentinel group was requested.
func resolveNameLevel(ctx context.Context, backend listing.Backend, dir string, selector []string, prefix string, clock names.Clock) ([]string, bool, error) {
	var allTok, allPrefixTok, allNonTok string
	switch prefix {
	case "sub":
		allTok, allPrefixTok, allNonTok = All, AllSub, AllNonSub
	case "ses":
		allTok, allPrefixTok, allNonTok = All, AllSes, AllNonSes
	}

	if hasSentinel(selector, allTok) || hasSentinel(selector, allPrefixTok) {
		folders, _, err := backend.List(ctx, dir)
		if err != nil {
			return nil, false, err
		}
		var concrete []string
		want := prefix + "-"
		for _, f := range folders {
			if strings.HasPrefix(f, want) {
				concrete = append(concrete, f)
			}
		}
		sort.Strings(concrete)
		includeNon := hasSentinel(selector, allTok) || hasSentinel(selector, allNonTok)
		return concrete, includeNon, nil
	}

	var literal []string
	for _, s := range selector {
		if s != allNonTok {
			literal = append(literal, s)
		}
	}
	concrete, err := resolveLiteralNames(ctx, backend, dir, literal, prefix, clock)
	if err != nil {
		return nil, false, err
	}
	return concrete, hasSentinel(selector, allNonTok), nil
}

// resolveLiteralNames handles a selector list of specific names, which may
// contain @TO@ ranges (expanded without touching the backend), @*@
// wildcards, or @DATETO@/@TIMETO@/@DATETIMETO@ range predicates (both
// requiring a directory listing to resolve against, per spec.md §4.3).
func resolveLiteralNames(ctx context.Context, backend listing.Backend, dir string, selector []string, prefix string, clock names.Clock) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	for _, raw := range selector {
		withPrefix, err := names.EnsurePrefix(raw, prefix)
		if err != nil {
			return nil, err
		}

		pred, head, tail, found, err := names.FindRangePredicate(withPrefix)
		if err != nil {
			return nil, err
		}

		switch {
		case found:
			matches, err := resolveRangePredicate(ctx, backend, dir, pred, head, tail)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		case names.HasWildcard(withPrefix):
			matches, err := resolveWildcard(ctx, backend, dir, withPrefix)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		default:
			expanded, err := names.ExpandConcreteTags(withPrefix, clock)
			if err != nil {
				return nil, err
			}
			for _, e := range expanded {
				parsed, err := names.Parse(e)
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
	}

	sort.Strings(out)
	return out, nil
}

// resolveWildcard lists dir and matches each entry against pattern (with
// @*@ tokens rewritten to "*"), per spec.md §4.3's shallow, one-directory-
// component wildcard semantics.
func resolveWildcard(ctx context.Context, backend listing.Backend, dir, pattern string) ([]string, error) {
	glob := strings.ReplaceAll(pattern, names.TagWildcard, "*")
	folders, _, err := backend.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range folders {
		ok, err := doublestar.Match(glob, f)
		if err != nil {
			return nil, dserr.NewWithPath(dserr.CodeBadValue, "malformed wildcard pattern", pattern)
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// resolveRangePredicate lists dir and keeps entries whose head/tail
// (everything but the range-predicate token) matches literally or via
// @*@ wildcards, and whose predicate-key value falls in [pred.Start,
// pred.End], per spec.md §4.3.
func resolveRangePredicate(ctx context.Context, backend listing.Backend, dir string, pred *names.RangePredicate, head, tail string) ([]string, error) {
	folders, _, err := backend.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	keyLen := map[string]int{"date": 8, "time": 6, "datetime": 15}[pred.Key]

	headPattern := regexp.QuoteMeta(head)
	headPattern = strings.ReplaceAll(headPattern, regexp.QuoteMeta(names.TagWildcard), "[A-Za-z0-9]+")
	tailPattern := regexp.QuoteMeta(tail)
	tailPattern = strings.ReplaceAll(tailPattern, regexp.QuoteMeta(names.TagWildcard), "[A-Za-z0-9]+")

	// The selector never writes the key literal (e.g. "date-"), it's
	// implied by the @DATETO@-style tag, but actual candidate basenames
	// do carry it, so it must be reinstated here to match them.
	fullPattern, err := regexp.Compile("^" + headPattern + pred.Key + "-([0-9A-Za-z]{" + strconv.Itoa(keyLen) + "})" + tailPattern + "$")
	if err != nil {
		return nil, dserr.New(dserr.CodeBadValue, "malformed range-predicate pattern")
	}

	var out []string
	for _, f := range folders {
		m := fullPattern.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		value := m[1]
		if pred.InRange(value) {
			out = append(out, f)
		}
	}
	return out, nil
}

// resolveDatatypes expands a datatype selector against dir's entries,
// returning concrete canonical datatypes present and, separately, the
// entries present that are not in the canonical set (the "non-datatype"
// group, spec.md §4.3 step 4).
func resolveDatatypes(ctx context.Context, backend listing.Backend, dir string, selector []string) (concrete, nonDatatype []string, err error) {
	folders, _, err := backend.List(ctx, dir)
	if err != nil {
		if dserr.CodeOf(err) == string(dserr.CodeNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	for _, f := range folders {
		if !project.IsKnownDatatype(f) {
			nonDatatype = append(nonDatatype, f)
		}
	}
	sort.Strings(nonDatatype)

	switch {
	case len(selector) == 0:
		return nil, nonDatatype, nil
	case hasSentinel(selector, All), hasSentinel(selector, AllDatatype):
		for _, f := range folders {
			if project.IsKnownDatatype(f) {
				concrete = append(concrete, f)
			}
		}
	default:
		wanted := map[string]bool{}
		for _, s := range selector {
			if s == AllNonDatatype {
				continue
			}
			wanted[s] = true
		}
		for _, f := range folders {
			if wanted[f] {
				concrete = append(concrete, f)
			}
		}
	}
	sort.Strings(concrete)
	return concrete, nonDatatype, nil
}
