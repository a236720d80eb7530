package datashuttle

import (
	"context"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/settings"
	"github.com/neuroinformatics-unit/datashuttle-go/validator"
)

// ValidateProject runs the full rule set (spec.md §4.2) over top's local
// tree, optionally merged with the central tree, and applies mode to the
// resulting issues, spec.md §6's validate_project.
func (p *Project) ValidateProject(ctx context.Context, top project.TopLevelFolder, mode validator.DisplayMode, includeCentral, strictMode bool) error {
	log, err := p.openLog("validate_project")
	if err != nil {
		return err
	}
	defer log.Close()

	st, err := settings.Load(p.DatashuttlePath)
	if err != nil {
		return err
	}

	tree, err := buildTree(ctx, p.localBackend(), top)
	if err != nil && dserr.CodeOf(err) != string(dserr.CodeNotFound) {
		return err
	}

	if includeCentral {
		cfg, err := p.Configs()
		if err != nil {
			return err
		}
		if cfg.ConnectionMethod != "" {
			backend, err := p.centralBackend(ctx, cfg)
			if err != nil {
				return err
			}
			centralTree, err := buildTree(ctx, backend, top)
			if err != nil && dserr.CodeOf(err) != string(dserr.CodeNotFound) {
				return err
			}
			tree = mergeTrees(tree, centralTree)
		}
	}

	issues := validator.ValidateProject(validator.Options{
		ProjectName: p.Name,
		TopLevel:    top,
		TopLevelSet: true,
		Tree:        tree,
		Templates:   st.NameTemplates.ToProject(),
		StrictMode:  strictMode,
	})

	return validator.Apply(mode, issues)
}

// QuickValidateProject runs the restricted, single-level check of
// spec.md §6's quick_validate_project: only the candidate names supplied,
// not a full project walk.
func (p *Project) QuickValidateProject(level string, candidateNames []string, strictMode bool) []validator.Issue {
	return validator.QuickValidateProject(p.Name, level, candidateNames, strictMode)
}
