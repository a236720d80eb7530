package project

import (
	"regexp"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
)

// NameTemplate is the optional per-project regexp pair from spec.md §3.
// Tag tokens (e.g. @DATE@) appearing in Sub/Ses are expanded to their
// equivalent regex fragments before matching, so templates can be
// authored using the same tags as names.
type NameTemplate struct {
	On  bool
	Sub string
	Ses string
}

// tagToRegexFragment mirrors the value shape each tag expands to, so a
// template author can write e.g. "sub-\\d\\d_@DATE@" and have @DATE@
// match any valid 8-digit date rather than a literal token.
var tagToRegexFragment = map[string]string{
	names.TagDate:     `date-[0-9]{8}`,
	names.TagTime:     `time-[0-9]{6}`,
	names.TagDatetime: `date-[0-9]{8}_time-[0-9]{6}`,
	names.TagWildcard: `[A-Za-z0-9]+`,
}

func expandTemplateTags(pattern string) string {
	for tag, frag := range tagToRegexFragment {
		pattern = strings.ReplaceAll(pattern, tag, frag)
	}
	return pattern
}

// Compile returns compiled matchers for the sub and ses templates. Either
// may be nil if the corresponding field is empty.
func (t NameTemplate) Compile() (sub, ses *regexp.Regexp, err error) {
	if t.Sub != "" {
		sub, err = regexp.Compile("^" + expandTemplateTags(t.Sub) + "$")
		if err != nil {
			return nil, nil, dserr.NewWithPath(dserr.CodeTemplate, "invalid sub name_template", t.Sub)
		}
	}
	if t.Ses != "" {
		ses, err = regexp.Compile("^" + expandTemplateTags(t.Ses) + "$")
		if err != nil {
			return nil, nil, dserr.NewWithPath(dserr.CodeTemplate, "invalid ses name_template", t.Ses)
		}
	}
	return sub, ses, nil
}

// Match checks basename (a "sub"- or "ses"-prefixed folder name) against
// the template for that level. If the template is off, or the level has
// no pattern configured, Match reports true (no constraint).
func (t NameTemplate) Match(level, basename string) (bool, error) {
	if !t.On {
		return true, nil
	}
	sub, ses, err := t.Compile()
	if err != nil {
		return false, err
	}
	switch level {
	case "sub":
		if sub == nil {
			return true, nil
		}
		return sub.MatchString(basename), nil
	case "ses":
		if ses == nil {
			return true, nil
		}
		return ses.MatchString(basename), nil
	default:
		return true, nil
	}
}
