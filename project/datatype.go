// Package project models the NeuroBlueprint project tree: the two
// top-level folders, the canonical datatype table, and name templates.
//
// Grounded on original_source/datashuttle/configs/canonical_directories.py
// (the `Directory` record) and spec.md §3's broad/narrow split. Per the
// §9 design note, the source's "used" flag is deliberately not part of
// this model — whether a datatype is shown in the UI is persistent-settings
// state (settings.PersistentSettings.ShownDatatypes), not a datatype
// property.
package project

// Level is where a datatype folder may appear.
type Level string

const (
	LevelSub  Level = "sub"
	LevelSes  Level = "ses"
	LevelBoth Level = "both"
)

// TopLevelFolder is one of the two recognised top-level project folders.
type TopLevelFolder string

const (
	Rawdata     TopLevelFolder = "rawdata"
	Derivatives TopLevelFolder = "derivatives"
)

func (t TopLevelFolder) Valid() bool {
	return t == Rawdata || t == Derivatives
}

// Datatype is a canonical datatype folder name, tagged with its broad
// category and the level(s) at which it may appear.
type Datatype struct {
	Name  string
	Broad string // the broad category this narrow name belongs to ("" if Name itself is broad)
	Level Level
}

// BroadDatatypes is the closed set of broad-category folder names.
var BroadDatatypes = []string{"ephys", "behav", "funcimg", "anat"}

// canonicalDatatypes is the full closed set (broad ∪ narrow), per
// SPEC_FULL.md §3's expanded table.
var canonicalDatatypes = []Datatype{
	{Name: "ephys", Level: LevelSes},
	{Name: "ecephys", Broad: "ephys", Level: LevelSes},
	{Name: "icephys", Broad: "ephys", Level: LevelSes},

	{Name: "behav", Level: LevelSes},
	{Name: "motion", Broad: "behav", Level: LevelSes},
	{Name: "eyetrack", Broad: "behav", Level: LevelSes},

	{Name: "funcimg", Level: LevelSes},
	{Name: "fusi", Broad: "funcimg", Level: LevelSes},
	{Name: "f2pe", Broad: "funcimg", Level: LevelSes},
	{Name: "cscope", Broad: "funcimg", Level: LevelSes},

	{Name: "anat", Level: LevelBoth},
	{Name: "mri", Broad: "anat", Level: LevelBoth},
	{Name: "histology", Broad: "anat", Level: LevelBoth},
}

var byName = func() map[string]Datatype {
	m := make(map[string]Datatype, len(canonicalDatatypes))
	for _, d := range canonicalDatatypes {
		m[d.Name] = d
	}
	return m
}()

// Lookup returns the canonical Datatype for name, if it is one.
func Lookup(name string) (Datatype, bool) {
	d, ok := byName[name]
	return d, ok
}

// IsKnownDatatype reports whether name is in the canonical closed set.
func IsKnownDatatype(name string) bool {
	_, ok := byName[name]
	return ok
}

// AllDatatypeNames returns every canonical datatype name, broad and narrow.
func AllDatatypeNames() []string {
	names := make([]string, 0, len(canonicalDatatypes))
	for _, d := range canonicalDatatypes {
		names = append(names, d.Name)
	}
	return names
}

// DatatypesAtLevel returns canonical datatype names valid at the given
// level ("sub" or "ses"); LevelBoth datatypes are included for both.
func DatatypesAtLevel(level Level) []string {
	var out []string
	for _, d := range canonicalDatatypes {
		if d.Level == level || d.Level == LevelBoth {
			out = append(out, d.Name)
		}
	}
	return out
}
