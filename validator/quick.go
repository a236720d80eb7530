package validator

import (
	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

// QuickValidateProject runs rule 1 (project name) and rule 3 (each name
// parses) only against a single prospective name or small name set, per
// SPEC_FULL.md §4.2's expansion of spec.md §6's `quick_validate_project`.
// No top-level folder, cross-project consistency or template check is
// made, and strictMode adds nothing for sub/ses candidates.
func QuickValidateProject(projectName string, level string, candidateNames []string, strictMode bool) []Issue {
	var issues []Issue

	if !project.ValidProjectName(projectName) {
		issues = append(issues, issue(KindProjectName,
			"project folder name must match ^[A-Za-z0-9_-]+$", projectName))
	}

	for _, name := range candidateNames {
		_, err := names.Parse(name)
		if err != nil {
			issues = append(issues, parseErrorToIssue(err, name))
			continue
		}
		if strictMode {
			// Rule 4 subsumed by a successful parse for sub/ses; nothing
			// further to check without a datatype-level candidate.
			_ = level
		}
	}

	return issues
}

// NameAgainstProject runs the restricted rule subset (3, 5, 6, 7) against a
// prospective set of new names layered onto an existing, already-scanned
// project tree, per spec.md §4.2's "Name-against-project check".
//
// Existing malformed names must not shadow a new-name issue; if the
// existing tree's zero-padding is already inconsistent, width comparisons
// are meaningless, so that case is reported as its own diagnostic instead
// of silently attributing it to the new names.
func NameAgainstProject(existing project.Tree, newNames []string, templates project.NameTemplate) []Issue {
	var issues []Issue

	existingEntries := collectEntries(existing)
	existingParsed := map[string]*names.Name{}
	existingWidthByPrefix := map[string]map[int]bool{}
	for _, e := range existingEntries {
		if e.level != "sub" && e.level != "ses" {
			continue
		}
		n, err := names.Parse(e.name)
		if err != nil {
			continue // malformed existing names must not shadow new-name issues
		}
		existingParsed[e.path] = n
		w := len(leadingDigits(n.PrefixValue()))
		if existingWidthByPrefix[n.Prefix()] == nil {
			existingWidthByPrefix[n.Prefix()] = map[int]bool{}
		}
		existingWidthByPrefix[n.Prefix()][w] = true
	}

	newParsed := map[string]*names.Name{}
	for _, raw := range newNames {
		// Rule 3.
		n, err := names.Parse(raw)
		if err != nil {
			issues = append(issues, parseErrorToIssue(err, raw))
			continue
		}
		newParsed[raw] = n

		// Rule 5: new name's width against the existing project's width.
		widths := existingWidthByPrefix[n.Prefix()]
		if len(widths) > 1 {
			issues = append(issues, issue(KindValueLength,
				"existing project has inconsistent "+n.Prefix()+" zero-padding; fix the existing project before adding names", raw))
		} else if len(widths) == 1 {
			newWidth := len(leadingDigits(n.PrefixValue()))
			for existingWidth := range widths {
				if existingWidth != newWidth {
					issues = append(issues, issue(KindValueLength,
						"new name's zero-padding width does not match the existing project", raw))
				}
			}
		}

		// Rule 6: duplicate integer-part against both existing and new names.
		newIntVal, _, newIntErr := n.IntegerPart()
		for path, existingName := range existingParsed {
			existingIntVal, _, existingIntErr := existingName.IntegerPart()
			if newIntErr != nil || existingIntErr != nil {
				continue
			}
			if existingName.Prefix() == n.Prefix() && existingIntVal == newIntVal && existingName.String() != n.String() {
				issues = append(issues, issue(KindDuplicateName,
					"new name shares an integer part with existing name "+path+" but differs in its remaining key-value pairs", raw))
			}
		}

		// Rule 7: template conformance.
		if templates.On {
			ok, err := templates.Match(levelForPrefix(n.Prefix()), n.String())
			if err != nil {
				issues = append(issues, issue(KindTemplate, err.Error(), raw))
			} else if !ok {
				issues = append(issues, issue(KindTemplate,
					"name does not match the configured name_template", raw))
			}
		}
	}

	// Rule 6, new-vs-new: duplicate integer parts within the new set itself.
	issues = append(issues, checkDuplicateNames(newParsed)...)

	return issues
}

func levelForPrefix(prefix string) string {
	if prefix == "sub" {
		return "sub"
	}
	return "ses"
}
