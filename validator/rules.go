package validator

import (
	"fmt"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

// entry is one sub/ses/datatype basename discovered while walking a Tree,
// tagged with the level it was found at and its path for diagnostics.
type entry struct {
	level string // "sub", "ses", "datatype"
	name  string
	path  string
}

func collectEntries(tree project.Tree) []entry {
	var out []entry
	for _, sub := range tree.Subjects {
		out = append(out, entry{level: "sub", name: sub.Name, path: sub.Name})
		for _, dt := range sub.Datatypes {
			out = append(out, entry{level: "datatype", name: dt, path: sub.Name + "/" + dt})
		}
		for _, ses := range sub.Sessions {
			sesPath := sub.Name + "/" + ses.Name
			out = append(out, entry{level: "ses", name: ses.Name, path: sesPath})
			for _, dt := range ses.Datatypes {
				out = append(out, entry{level: "datatype", name: dt, path: sesPath + "/" + dt})
			}
		}
	}
	return out
}

// Options bundles the inputs to a full validation pass, spec.md §4.2.
type Options struct {
	ProjectName string
	TopLevel    project.TopLevelFolder
	TopLevelSet bool // false if the caller never resolved a top-level folder at all
	Tree        project.Tree
	Templates   project.NameTemplate
	StrictMode  bool
}

// ValidateProject runs the full rule set 1-7 in order, per spec.md §4.2.
func ValidateProject(opts Options) []Issue {
	var issues []Issue

	// Rule 1: project-name folder.
	if !project.ValidProjectName(opts.ProjectName) {
		issues = append(issues, issue(KindProjectName,
			"project folder name must match ^[A-Za-z0-9_-]+$", opts.ProjectName))
	}

	// Rule 2: top-level folder.
	if !opts.TopLevelSet || !opts.TopLevel.Valid() {
		issues = append(issues, issue(KindTopLevelFolder,
			"top-level folder must be rawdata or derivatives", string(opts.TopLevel)))
		return issues // nothing underneath is addressable without a valid root
	}

	entries := collectEntries(opts.Tree)

	// Rule 3: each sub-/ses- basename parses.
	parsedByPath := map[string]*names.Name{}
	for _, e := range entries {
		if e.level != "sub" && e.level != "ses" {
			continue
		}
		n, err := names.Parse(e.name)
		if err != nil {
			issues = append(issues, parseErrorToIssue(err, e.path))
			continue
		}
		parsedByPath[e.path] = n
	}

	// Rule 4: strict mode — non-conforming basenames at any level.
	if opts.StrictMode {
		for _, e := range entries {
			switch e.level {
			case "sub", "ses":
				if _, err := names.Parse(e.name); err != nil {
					issues = append(issues, issue(KindBadName,
						"name does not conform to the key-value grammar in strict mode", e.path))
				}
			case "datatype":
				if !project.IsKnownDatatype(e.name) {
					issues = append(issues, issue(KindDatatype,
						"unrecognised datatype folder in strict mode", e.path))
				}
			}
		}
	}

	// Rule 5: consistent zero-padding per prefix across the checked scope.
	issues = append(issues, checkZeroPadding(parsedByPath)...)

	// Rule 6: duplicate integer-part with differing tails.
	issues = append(issues, checkDuplicateNames(parsedByPath)...)

	// Rule 7: template conformance.
	if opts.Templates.On {
		for _, e := range entries {
			if e.level != "sub" && e.level != "ses" {
				continue
			}
			ok, err := opts.Templates.Match(e.level, e.name)
			if err != nil {
				issues = append(issues, issue(KindTemplate, err.Error(), e.path))
				continue
			}
			if !ok {
				issues = append(issues, issue(KindTemplate,
					fmt.Sprintf("name does not match the configured %s name_template", e.level), e.path))
			}
		}
	}

	return issues
}

// parseErrorToIssue maps a names.Parse error (constructed via internal/dserr)
// onto the matching validator Kind.
func parseErrorToIssue(err error, path string) Issue {
	dsErr, ok := dserr.As(err)
	if !ok {
		return issue(KindBadName, err.Error(), path)
	}
	switch dsErr.Code() {
	case string(dserr.CodeMissingPrefix):
		return issue(KindMissingPrefix, dsErr.Error(), path)
	case string(dserr.CodeSpecialChar):
		return issue(KindSpecialChar, dsErr.Error(), path)
	case string(dserr.CodeBadValue):
		return issue(KindBadValue, dsErr.Error(), path)
	default:
		return issue(KindBadName, dsErr.Error(), path)
	}
}

// checkZeroPadding groups parsed names by prefix key and flags any whose
// integer-part digit width disagrees with the project-wide mode width.
func checkZeroPadding(parsed map[string]*names.Name) []Issue {
	widthsByPrefix := map[string]map[int][]string{} // prefix -> width -> paths
	for path, n := range parsed {
		prefix := n.Prefix()
		width := len(leadingDigits(n.PrefixValue()))
		if widthsByPrefix[prefix] == nil {
			widthsByPrefix[prefix] = map[int][]string{}
		}
		widthsByPrefix[prefix][width] = append(widthsByPrefix[prefix][width], path)
	}

	var issues []Issue
	for prefix, widths := range widthsByPrefix {
		if len(widths) <= 1 {
			continue
		}
		majorityWidth, majorityCount := 0, -1
		for w, paths := range widths {
			if len(paths) > majorityCount {
				majorityWidth, majorityCount = w, len(paths)
			}
		}
		for w, paths := range widths {
			if w == majorityWidth {
				continue
			}
			for _, p := range paths {
				issues = append(issues, issue(KindValueLength,
					fmt.Sprintf("%s integer part has inconsistent zero-padding width across the project", prefix), p))
			}
		}
	}
	return issues
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// checkDuplicateNames flags names sharing a prefix+integer-part but
// differing in their remaining key-value pairs, per spec.md §3. Subject
// integer parts are unique project-wide; session integer parts are only
// required to be unique within their own subject, so two different
// subjects may each hold a "ses-001" with differing tails.
func checkDuplicateNames(parsed map[string]*names.Name) []Issue {
	type key struct {
		scope  string // containing sub-* path, empty for sub-level entries
		prefix string
		intVal int
	}
	groups := map[key][]string{} // key -> paths
	for path, n := range parsed {
		intVal, _, err := n.IntegerPart()
		if err != nil {
			continue
		}
		k := key{prefix: n.Prefix(), intVal: intVal}
		if n.Prefix() == "ses" {
			if i := strings.LastIndex(path, "/"); i >= 0 {
				k.scope = path[:i]
			}
		}
		groups[k] = append(groups[k], path)
	}

	var issues []Issue
	for _, paths := range groups {
		if len(paths) <= 1 {
			continue
		}
		tails := map[string]bool{}
		for _, p := range paths {
			n := parsed[p]
			tails[n.String()] = true
		}
		if len(tails) > 1 {
			for _, p := range paths {
				issues = append(issues, issue(KindDuplicateName,
					"names share an integer part but differ in their remaining key-value pairs", p))
			}
		}
	}
	return issues
}
