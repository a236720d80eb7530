package selector

// IncludePatterns renders a resolved Include list into the rclone
// `--include` argument values of spec.md §4.3 step 5: a directory
// pattern is suffixed with "/**", a file is passed as-is. The
// "--include-empty" flag is not added here; transfer.BuildCopyPlan
// appends it once to every copy plan.
func IncludePatterns(includes []Include) []string {
	patterns := make([]string, 0, len(includes)+1)
	for _, inc := range includes {
		if inc.IsDir {
			patterns = append(patterns, inc.Path+"/**")
		} else {
			patterns = append(patterns, inc.Path)
		}
	}
	return patterns
}
