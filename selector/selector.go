// Package selector implements the Selector→Include resolver of spec.md
// §4.3: turning (sub_selector, ses_selector, datatype_selector) into a
// deterministic list of include-patterns for the transfer planner.
package selector

import (
	"context"
	"sort"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/listing"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

// Sentinel values recognised in a selector list, spec.md §3.
const (
	All              = "all"
	AllSub           = "all_sub"
	AllNonSub        = "all_non_sub"
	AllSes           = "all_ses"
	AllNonSes        = "all_non_ses"
	AllDatatype      = "all_datatype"
	AllNonDatatype   = "all_non_datatype"
)

// Query is the resolver's input: the three selector lists and the
// top-level folder they are scoped to.
type Query struct {
	SubSelector      []string
	SesSelector      []string
	DatatypeSelector []string
	TopLevel         project.TopLevelFolder
}

// Include is one resolved include target. Its Path starts with the
// top-level folder.
type Include struct {
	Path  string // e.g. "rawdata/sub-001/ses-001/ephys"
	IsDir bool
}

// Resolve expands Query into a deterministic, order-stable list of
// Includes by listing q.TopLevel and the folders beneath it through
// backend, which must be rooted at the transfer source (e.g. local_path
// for upload or central_path for download). sourceRoot is not consulted.
func Resolve(ctx context.Context, backend listing.Backend, sourceRoot string, q Query, clock names.Clock) ([]Include, error) {
	if err := validateMix(q.SubSelector, AllNonSub); err != nil {
		return nil, err
	}
	if err := validateMix(q.SesSelector, AllNonSes); err != nil {
		return nil, err
	}
	if err := validateMix(q.DatatypeSelector, AllNonDatatype); err != nil {
		return nil, err
	}

	topDir := string(q.TopLevel)

	subs, includeNonSub, err := resolveNameLevel(ctx, backend, topDir, q.SubSelector, "sub", clock)
	if err != nil {
		return nil, err
	}

	var includes []Include

	for _, sub := range subs {
		subDir := topDir + "/" + sub
		sess, includeNonSes, err := resolveNameLevel(ctx, backend, subDir, q.SesSelector, "ses", clock)
		if err != nil {
			return nil, err
		}

		// A datatype can legitimately live directly beneath sub-* (a
		// subject-wide scan, LevelBoth) or beneath one of its ses-*
		// folders. When both exist for the same datatype, spec.md §9
		// prefers the session-level folder and excludes the subject-level
		// one entirely, rather than transferring both. So the session
		// level must be resolved first here to know what to exclude from
		// the subject level below.
		sessionDatatypes := map[string]bool{}
		for _, ses := range sess {
			sesDir := subDir + "/" + ses
			datatypes, _, err := resolveDatatypes(ctx, backend, sesDir, q.DatatypeSelector)
			if err != nil {
				return nil, err
			}
			for _, dt := range datatypes {
				sessionDatatypes[dt] = true
			}
		}

		// Subject-level datatypes (e.g. "anat" directly beneath sub-*). Only
		// LevelBoth datatypes live here, and spec.md §4.3 step 4 defines
		// all_non_datatype in terms of a session's contents specifically, so
		// it is not applied at subject level: a bare non-datatype entry here
		// is almost always a ses-* folder, handled separately below.
		subDatatypes, _, err := resolveDatatypes(ctx, backend, subDir, q.DatatypeSelector)
		if err != nil {
			return nil, err
		}
		for _, dt := range subDatatypes {
			if sessionDatatypes[dt] {
				continue
			}
			includes = append(includes, Include{Path: subDir + "/" + dt, IsDir: true})
		}

		for _, ses := range sess {
			sesDir := subDir + "/" + ses
			datatypes, nonDatatype, err := resolveDatatypes(ctx, backend, sesDir, q.DatatypeSelector)
			if err != nil {
				return nil, err
			}
			for _, dt := range datatypes {
				includes = append(includes, Include{Path: sesDir + "/" + dt, IsDir: true})
			}
			if hasSentinel(q.DatatypeSelector, AllNonDatatype) || hasSentinel(q.DatatypeSelector, All) {
				for _, extra := range nonDatatype {
					includes = append(includes, Include{Path: sesDir + "/" + extra, IsDir: true})
				}
			}
		}

		if includeNonSes {
			extras, err := nonPrefixedEntries(ctx, backend, subDir, "ses-")
			if err != nil {
				return nil, err
			}
			for _, extra := range extras {
				includes = append(includes, Include{Path: subDir + "/" + extra, IsDir: true})
			}
		}
	}

	if includeNonSub {
		extras, err := nonPrefixedEntries(ctx, backend, topDir, "sub-")
		if err != nil {
			return nil, err
		}
		for _, extra := range extras {
			includes = append(includes, Include{Path: topDir + "/" + extra, IsDir: true})
		}
	}

	sort.Slice(includes, func(i, j int) bool { return includes[i].Path < includes[j].Path })
	includes = dedupeIncludes(includes)
	return includes, nil
}

func dedupeIncludes(in []Include) []Include {
	out := make([]Include, 0, len(in))
	seen := map[string]bool{}
	for _, inc := range in {
		if seen[inc.Path] {
			continue
		}
		seen[inc.Path] = true
		out = append(out, inc)
	}
	return out
}

func hasSentinel(selector []string, s string) bool {
	for _, v := range selector {
		if v == s {
			return true
		}
	}
	return false
}

// validateMix enforces spec.md §3: "all" in a selector list must be the
// sole element together with at most the matching all_non_* sentinel.
func validateMix(selector []string, allNonTok string) error {
	hasAll := hasSentinel(selector, All)
	if !hasAll {
		return nil
	}
	for _, v := range selector {
		if v == All || v == allNonTok {
			continue
		}
		return dserr.New(dserr.CodeSelectorConflict,
			`"all" must be the sole element together with at most the matching all_non_* sentinel`)
	}
	return nil
}

// nonPrefixedEntries lists dir and returns folder entries not starting
// with prefix (the "non-sub"/"non-ses" groups of spec.md §4.3 step 3).
func nonPrefixedEntries(ctx context.Context, backend listing.Backend, dir, prefix string) ([]string, error) {
	folders, _, err := backend.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range folders {
		if !strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out, nil
}
