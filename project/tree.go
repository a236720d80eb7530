package project

import "regexp"

// SessionNode is a scanned ses-* folder beneath a subject.
type SessionNode struct {
	Name      string
	Datatypes []string // datatype folder names found directly beneath this session
}

// SubjectNode is a scanned sub-* folder beneath a top-level folder.
type SubjectNode struct {
	Name      string
	Datatypes []string // subject-level datatype folders (e.g. "anat")
	Sessions  []SessionNode
}

// Tree is a snapshot of one top-level folder's sub/ses/datatype structure,
// built by walking a listing backend. It is a pure data holder: nothing in
// this package performs I/O, so validator and selector can each build one
// from whichever listing.Backend they were given (local, SSH, S3, Drive)
// without this package depending on listing.
type Tree struct {
	Top      TopLevelFolder
	Subjects []SubjectNode
}

var projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidProjectName reports whether name matches spec.md §4.2 rule 1.
func ValidProjectName(name string) bool {
	return name != "" && projectNamePattern.MatchString(name)
}
