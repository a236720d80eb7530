package datashuttle

import (
	"context"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/listing"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

// buildTree walks backend under topDir ("rawdata" or "derivatives") and
// classifies each child as a subject, session, or datatype folder,
// matching the shape validator.Options.Tree and selector.Resolve expect.
// Grounded on original_source's scan_and_validate helpers, which walk the
// same three-level sub/ses/datatype structure to build up what it checks.
func buildTree(ctx context.Context, backend listing.Backend, top project.TopLevelFolder) (project.Tree, error) {
	topDir := string(top)
	subFolders, _, err := backend.List(ctx, topDir)
	if err != nil {
		return project.Tree{}, err
	}

	tree := project.Tree{Top: top}
	for _, subName := range subFolders {
		if !strings.HasPrefix(subName, "sub-") {
			continue
		}
		subPath := topDir + "/" + subName
		subChildren, _, err := backend.List(ctx, subPath)
		if err != nil {
			return project.Tree{}, err
		}

		subNode := project.SubjectNode{Name: subName}
		for _, childName := range subChildren {
			childPath := subPath + "/" + childName
			switch {
			case strings.HasPrefix(childName, "ses-"):
				sesChildren, _, err := backend.List(ctx, childPath)
				if err != nil {
					return project.Tree{}, err
				}
				sesNode := project.SessionNode{Name: childName}
				for _, dtName := range sesChildren {
					if project.IsKnownDatatype(dtName) {
						sesNode.Datatypes = append(sesNode.Datatypes, dtName)
					}
				}
				subNode.Sessions = append(subNode.Sessions, sesNode)
			case project.IsKnownDatatype(childName):
				subNode.Datatypes = append(subNode.Datatypes, childName)
			}
		}
		tree.Subjects = append(tree.Subjects, subNode)
	}
	return tree, nil
}

// mergeTrees combines a local and a central scan into one Tree for
// validate_project's include_central=true mode: subjects/sessions present
// in either are both represented, duplicated rather than unioned, since
// the validator's duplicate-name rule is exactly what should catch
// same-looking-but-differently-padded names across the two sides.
func mergeTrees(a, b project.Tree) project.Tree {
	out := project.Tree{Top: a.Top}
	out.Subjects = append(out.Subjects, a.Subjects...)
	out.Subjects = append(out.Subjects, b.Subjects...)
	return out
}
