// Package settings implements PersistentSettings (spec.md §3):
// `top_level_folder`, the `tui` UI-state subrecord, `name_templates`, and
// `shown_datatypes`, stored in `persistent_settings.yaml` under a
// project's `.datashuttle` metadata directory. Missing keys are filled
// from canonical defaults on load, the same forward-compatibility
// contract the `config` package gives `config.yaml`.
//
// Grounded on original_source/datashuttle/datashuttle_class.py's
// _load_persistent_settings/_update_settings_with_new_canonical_keys
// (defaults-fill-on-load for settings added in later versions).
package settings

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
)

// TUIState holds UI toggles that only the interactive front end reads,
// but which persist across sessions the same way the rest of the record
// does.
type TUIState struct {
	OverwriteExistingFiles    bool `yaml:"overwrite_existing_files"`
	DryRun                    bool `yaml:"dry_run"`
	SuggestNextSubSesCentral  bool `yaml:"suggest_next_sub_ses_central"`
}

// NameTemplates is the on-disk form of project.NameTemplate: the zero
// value ("") round-trips to a nil compiled pattern.
type NameTemplates struct {
	On  bool   `yaml:"on"`
	Sub string `yaml:"sub"`
	Ses string `yaml:"ses"`
}

func (t NameTemplates) ToProject() project.NameTemplate {
	return project.NameTemplate{On: t.On, Sub: t.Sub, Ses: t.Ses}
}

func fromProject(t project.NameTemplate) NameTemplates {
	return NameTemplates{On: t.On, Sub: t.Sub, Ses: t.Ses}
}

// PersistentSettings is the full on-disk record, spec.md §3.
type PersistentSettings struct {
	TopLevelFolder  string        `yaml:"top_level_folder"`
	TUI             TUIState      `yaml:"tui"`
	NameTemplates   NameTemplates `yaml:"name_templates"`
	ShownDatatypes  []string      `yaml:"shown_datatypes"`
}

// Defaults is the canonical record used both to seed a brand new
// project's settings file and to backfill any key missing from an older
// one on load.
func Defaults() PersistentSettings {
	return PersistentSettings{
		TopLevelFolder: string(project.Rawdata),
		TUI: TUIState{
			OverwriteExistingFiles:   false,
			DryRun:                   false,
			SuggestNextSubSesCentral: true,
		},
		NameTemplates:  NameTemplates{On: false},
		ShownDatatypes: project.AllDatatypeNames(),
	}
}

func path(datashuttlePath string) string {
	return filepath.Join(datashuttlePath, "persistent_settings.yaml")
}

// Load reads persistent_settings.yaml under datashuttlePath, creating it
// with canonical defaults if absent, and backfilling any key an older
// version of the file is missing.
func Load(datashuttlePath string) (PersistentSettings, error) {
	p := path(datashuttlePath)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := Defaults()
			if err := Save(datashuttlePath, defaults); err != nil {
				return PersistentSettings{}, err
			}
			return defaults, nil
		}
		return PersistentSettings{}, dserr.Wrap(err, dserr.CodeFatal, "reading persistent settings file")
	}

	var s PersistentSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return PersistentSettings{}, dserr.Wrap(err, dserr.CodeFatal, "parsing persistent settings yaml")
	}

	s = backfillDefaults(s)
	return s, nil
}

// backfillDefaults fills zero-value fields an older persistent_settings.yaml
// predates, per the "Added keys" backward-compatibility note in
// original_source/datashuttle_class.py.
func backfillDefaults(s PersistentSettings) PersistentSettings {
	defaults := Defaults()
	if s.TopLevelFolder == "" {
		s.TopLevelFolder = defaults.TopLevelFolder
	}
	if len(s.ShownDatatypes) == 0 {
		s.ShownDatatypes = defaults.ShownDatatypes
	}
	return s
}

// Save atomically writes s to persistent_settings.yaml under datashuttlePath.
func Save(datashuttlePath string, s PersistentSettings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "encoding persistent settings as yaml")
	}
	if err := os.MkdirAll(datashuttlePath, 0o755); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "creating datashuttle metadata directory")
	}
	if err := renameio.WriteFile(path(datashuttlePath), data, 0o644); err != nil {
		return dserr.Wrap(err, dserr.CodeFatal, "writing persistent settings atomically")
	}
	return nil
}

// SetNameTemplates updates only the name_templates key, per spec.md §6's
// set_name_templates entry point.
func SetNameTemplates(datashuttlePath string, templates project.NameTemplate) (PersistentSettings, error) {
	s, err := Load(datashuttlePath)
	if err != nil {
		return PersistentSettings{}, err
	}
	s.NameTemplates = fromProject(templates)
	if err := Save(datashuttlePath, s); err != nil {
		return PersistentSettings{}, err
	}
	return s, nil
}

// SetTopLevelFolder updates only the top_level_folder key.
func SetTopLevelFolder(datashuttlePath string, folder project.TopLevelFolder) (PersistentSettings, error) {
	if !folder.Valid() {
		return PersistentSettings{}, dserr.New(dserr.CodeTopLevelFolder, "top_level_folder must be rawdata or derivatives")
	}
	s, err := Load(datashuttlePath)
	if err != nil {
		return PersistentSettings{}, err
	}
	s.TopLevelFolder = string(folder)
	if err := Save(datashuttlePath, s); err != nil {
		return PersistentSettings{}, err
	}
	return s, nil
}
