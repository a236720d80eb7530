package datashuttle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
	"github.com/neuroinformatics-unit/datashuttle-go/names"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/settings"
	"github.com/neuroinformatics-unit/datashuttle-go/validator"
)

// CreateFolders makes the sub/ses/datatype directory tree under
// local_path/topLevel for every combination of the (expanded) subject and
// session names and the given datatypes, spec.md §6's create_folders.
// Names are validated against the existing local tree before anything is
// written: a DUPLICATE_NAME or TEMPLATE issue aborts the whole call with
// nothing created, matching spec.md's all-or-nothing create semantics.
func (p *Project) CreateFolders(top project.TopLevelFolder, subInputs, sesInputs, datatypes []string) ([]string, error) {
	if !top.Valid() {
		return nil, dserr.New(dserr.CodeTopLevelFolder, "top_level_folder must be rawdata or derivatives")
	}

	log, err := p.openLog("create_folders")
	if err != nil {
		return nil, err
	}
	defer log.Close()

	st, err := settings.Load(p.DatashuttlePath)
	if err != nil {
		return nil, err
	}
	templates := st.NameTemplates.ToProject()

	subs, err := names.FormatNames(subInputs, "sub", p.Clock)
	if err != nil {
		return nil, err
	}
	var sess []string
	if len(sesInputs) > 0 {
		sess, err = names.FormatNames(sesInputs, "ses", p.Clock)
		if err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	existing, err := buildTree(ctx, p.localBackend(), top)
	if err != nil && dserr.CodeOf(err) != string(dserr.CodeNotFound) {
		return nil, err
	}

	allNew := append(append([]string{}, subs...), sess...)
	if issues := validator.NameAgainstProject(existing, allNew, templates); len(issues) > 0 {
		return nil, issues[0].AsError()
	}

	topPath := filepath.Join(p.LocalPath, string(top))

	var created []string
	for _, sub := range subs {
		subPath := filepath.Join(topPath, sub)
		if len(sess) == 0 {
			for _, dt := range datatypes {
				dtPath := filepath.Join(subPath, dt)
				if err := os.MkdirAll(dtPath, 0o755); err != nil {
					return created, dserr.Wrap(err, dserr.CodeFatal, "creating datatype folder")
				}
				created = append(created, dtPath)
			}
			if len(datatypes) == 0 {
				if err := os.MkdirAll(subPath, 0o755); err != nil {
					return created, dserr.Wrap(err, dserr.CodeFatal, "creating subject folder")
				}
				created = append(created, subPath)
			}
			continue
		}
		for _, ses := range sess {
			sesPath := filepath.Join(subPath, ses)
			for _, dt := range datatypes {
				dtPath := filepath.Join(sesPath, dt)
				if err := os.MkdirAll(dtPath, 0o755); err != nil {
					return created, dserr.Wrap(err, dserr.CodeFatal, "creating datatype folder")
				}
				created = append(created, dtPath)
			}
			if len(datatypes) == 0 {
				if err := os.MkdirAll(sesPath, 0o755); err != nil {
					return created, dserr.Wrap(err, dserr.CodeFatal, "creating session folder")
				}
				created = append(created, sesPath)
			}
		}
	}

	log.Info("created folders", zap.Int("count", len(created)))
	return created, nil
}

// GetNextSub scans local_path (and, if includeCentral, central_path too)
// for existing sub-* names and returns the next unused integer (one above
// the largest existing value), zero-padded to the width of the name that
// holds that largest value, or to 3 digits when there is no existing name,
// per spec.md §6's get_next_sub.
func (p *Project) GetNextSub(ctx context.Context, top project.TopLevelFolder, includeCentral bool, returnWithPrefix bool) (string, error) {
	return p.getNextNameAtLevel(ctx, top, "sub", "", includeCentral, returnWithPrefix)
}

// GetNextSes returns the next unused ses-* name beneath sub, mirroring
// GetNextSub one level down.
func (p *Project) GetNextSes(ctx context.Context, top project.TopLevelFolder, sub string, includeCentral bool, returnWithPrefix bool) (string, error) {
	return p.getNextNameAtLevel(ctx, top, "ses", sub, includeCentral, returnWithPrefix)
}

func (p *Project) getNextNameAtLevel(ctx context.Context, top project.TopLevelFolder, level, sub string, includeCentral, returnWithPrefix bool) (string, error) {
	localTree, err := buildTree(ctx, p.localBackend(), top)
	if err != nil && dserr.CodeOf(err) != string(dserr.CodeNotFound) {
		return "", err
	}

	tree := localTree
	if includeCentral {
		cfg, err := p.Configs()
		if err != nil {
			return "", err
		}
		if cfg.ConnectionMethod != "" {
			backend, err := p.centralBackend(ctx, cfg)
			if err != nil {
				return "", err
			}
			centralTree, err := buildTree(ctx, backend, top)
			if err != nil && dserr.CodeOf(err) != string(dserr.CodeNotFound) {
				return "", err
			}
			tree = mergeTrees(localTree, centralTree)
		}
	}

	maxVal, width, found := maxIntegerAtLevel(tree, level, sub)
	next := maxVal + 1
	if !found {
		width = 3
	}

	digits := formatPadded(next, width)
	if !returnWithPrefix {
		return digits, nil
	}
	return level + "-" + digits, nil
}

// maxIntegerAtLevel returns the largest integer value and its zero-padded
// width among names at level ("sub" or "ses"); for level "ses" only
// sessions under the given sub are considered.
func maxIntegerAtLevel(tree project.Tree, level, sub string) (maxVal, width int, found bool) {
	for _, s := range tree.Subjects {
		if level == "sub" {
			considerName(s.Name, &maxVal, &width, &found)
			continue
		}
		if s.Name != sub {
			continue
		}
		for _, ses := range s.Sessions {
			considerName(ses.Name, &maxVal, &width, &found)
		}
	}
	return
}

func considerName(basename string, maxVal, width *int, found *bool) {
	parsed, err := names.Parse(basename)
	if err != nil {
		return
	}
	val, w, err := parsed.IntegerPart()
	if err != nil {
		return
	}
	if !*found || val > *maxVal {
		*maxVal = val
		*width = w
		*found = true
	}
}

func formatPadded(value, width int) string {
	return fmt.Sprintf("%0*d", width, value)
}
