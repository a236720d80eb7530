// Package validator implements the rule-ordered project tree checks of
// spec.md §4.2: full-project validation, a restricted name-against-project
// check, and a lightweight quick_validate_project entry point.
package validator

import "github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"

// Kind is one of the closed set of issue kinds from spec.md §4.2.
type Kind string

const (
	KindBadName         Kind = "BAD_NAME"
	KindMissingPrefix   Kind = "MISSING_PREFIX"
	KindBadValue        Kind = "BAD_VALUE"
	KindSpecialChar     Kind = "SPECIAL_CHAR"
	KindDuplicateName   Kind = "DUPLICATE_NAME"
	KindValueLength     Kind = "VALUE_LENGTH"
	KindDatatype        Kind = "DATATYPE"
	KindTemplate        Kind = "TEMPLATE"
	KindTopLevelFolder  Kind = "TOP_LEVEL_FOLDER"
	KindProjectName     Kind = "PROJECT_NAME"
)

// Issue is one finding surfaced by a validation pass.
type Issue struct {
	Kind    Kind
	Message string
	Path    string
}

func issue(kind Kind, message, path string) Issue {
	return Issue{Kind: kind, Message: message, Path: path}
}

// codeForKind maps an issue kind onto the shared dserr taxonomy, so a
// single Issue can be round-tripped into a typed error by callers that
// want to raise on the first one (display mode "error", spec.md §4.2).
var codeForKind = map[Kind]dserr.Code{
	KindBadName:        dserr.CodeBadName,
	KindMissingPrefix:  dserr.CodeMissingPrefix,
	KindBadValue:       dserr.CodeBadValue,
	KindSpecialChar:    dserr.CodeSpecialChar,
	KindDuplicateName:  dserr.CodeDuplicateName,
	KindValueLength:    dserr.CodeValueLength,
	KindDatatype:       dserr.CodeDatatype,
	KindTemplate:       dserr.CodeTemplate,
	KindTopLevelFolder: dserr.CodeTopLevelFolder,
	KindProjectName:    dserr.CodeProjectName,
}

// AsError converts an Issue into the shared error taxonomy type.
func (i Issue) AsError() error {
	return dserr.NewWithPath(codeForKind[i.Kind], i.Message, i.Path)
}

// DisplayMode controls how a caller wants issues surfaced, spec.md §4.2.
type DisplayMode string

const (
	DisplayError DisplayMode = "error" // raise at first issue
	DisplayWarn  DisplayMode = "warn"  // collect, caller warns
	DisplayPrint DisplayMode = "print" // collect, caller prints
)

// Apply runs mode against issues: DisplayError returns the first issue's
// error (nil if none); the other modes always return nil, leaving issues
// for the caller to warn/print.
func Apply(mode DisplayMode, issues []Issue) error {
	if mode == DisplayError && len(issues) > 0 {
		return issues[0].AsError()
	}
	return nil
}
