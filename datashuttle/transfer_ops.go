package datashuttle

import (
	"context"
	"path"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/config"
	"github.com/neuroinformatics-unit/datashuttle-go/credentials"
	"github.com/neuroinformatics-unit/datashuttle-go/listing"
	"github.com/neuroinformatics-unit/datashuttle-go/project"
	"github.com/neuroinformatics-unit/datashuttle-go/selector"
	"github.com/neuroinformatics-unit/datashuttle-go/transfer"
)

// TransferSelection bundles spec.md §4.3's three selector lists for one
// upload/download call.
type TransferSelection struct {
	SubSelector      []string
	SesSelector      []string
	DatatypeSelector []string
}

func (p *Project) endpoints(cfg config.Configs, top project.TopLevelFolder) (local, central transfer.Endpoint) {
	topDir := string(top)
	local = transfer.Endpoint{Path: path.Join(p.LocalPath, topDir)}
	if cfg.ConnectionMethod == config.LocalFilesystem || cfg.ConnectionMethod == "" {
		central = transfer.Endpoint{Path: path.Join(cfg.CentralPath, topDir)}
		return
	}
	central = transfer.Endpoint{
		RcloneConfigName: credentials.RcloneConfigName(p.Name, cfg.ConnectionMethod),
		Path:             path.Join(cfg.CentralPath, topDir),
	}
	return
}

// transferSourceBackend returns the listing.Backend to resolve a
// selection against: local_path for upload, central_path for download.
func (p *Project) transferSourceBackend(ctx context.Context, cfg config.Configs, direction transfer.Direction) (listing.Backend, error) {
	if direction == transfer.Upload {
		return p.localBackend(), nil
	}
	return p.centralBackend(ctx, cfg)
}

// runTransfer resolves sel into include patterns against the transfer's
// source side, builds the rclone copy plan, and runs it to completion.
func (p *Project) runTransfer(ctx context.Context, direction transfer.Direction, top project.TopLevelFolder, sel TransferSelection, opts transfer.Options) (transfer.Result, error) {
	cfg, err := p.Configs()
	if err != nil {
		return transfer.Result{}, err
	}

	var includes []string
	if sel.SubSelector != nil || sel.SesSelector != nil || sel.DatatypeSelector != nil {
		sourceBackend, err := p.transferSourceBackend(ctx, cfg, direction)
		if err != nil {
			return transfer.Result{}, err
		}
		resolved, err := selector.Resolve(ctx, sourceBackend, string(top), selector.Query{
			SubSelector:      sel.SubSelector,
			SesSelector:      sel.SesSelector,
			DatatypeSelector: sel.DatatypeSelector,
			TopLevel:         top,
		}, p.Clock)
		if err != nil {
			return transfer.Result{}, err
		}
		// Resolved paths start with the top-level folder, but the copy
		// plan's endpoints are already local_path/<top> and
		// central_path/<top>, so the patterns are made relative to them.
		for i := range resolved {
			resolved[i].Path = strings.TrimPrefix(resolved[i].Path, string(top)+"/")
		}
		includes = selector.IncludePatterns(resolved)
	}

	local, central := p.endpoints(cfg, top)
	plan, err := transfer.BuildCopyPlan(direction, local, central, includes, opts)
	if err != nil {
		return transfer.Result{}, err
	}

	task := transfer.Start(ctx, p.RcloneBinary, plan.Args)
	return task.Wait()
}

// UploadCustom transfers the selection from local_path to central_path,
// spec.md §6's upload_custom.
func (p *Project) UploadCustom(ctx context.Context, top project.TopLevelFolder, sel TransferSelection, opts transfer.Options) (transfer.Result, error) {
	log, err := p.openLog("upload_custom")
	if err != nil {
		return transfer.Result{}, err
	}
	defer log.Close()
	return p.runTransfer(ctx, transfer.Upload, top, sel, opts)
}

// DownloadCustom transfers the selection from central_path to local_path,
// spec.md §6's download_custom.
func (p *Project) DownloadCustom(ctx context.Context, top project.TopLevelFolder, sel TransferSelection, opts transfer.Options) (transfer.Result, error) {
	log, err := p.openLog("download_custom")
	if err != nil {
		return transfer.Result{}, err
	}
	defer log.Close()
	return p.runTransfer(ctx, transfer.Download, top, sel, opts)
}

func allSelection() TransferSelection {
	return TransferSelection{
		SubSelector:      []string{selector.All},
		SesSelector:      []string{selector.All},
		DatatypeSelector: []string{selector.All},
	}
}

// UploadRawdata transfers the whole rawdata tree to central storage.
func (p *Project) UploadRawdata(ctx context.Context, opts transfer.Options) (transfer.Result, error) {
	return p.UploadCustom(ctx, project.Rawdata, allSelection(), opts)
}

// DownloadRawdata transfers the whole rawdata tree from central storage.
func (p *Project) DownloadRawdata(ctx context.Context, opts transfer.Options) (transfer.Result, error) {
	return p.DownloadCustom(ctx, project.Rawdata, allSelection(), opts)
}

// UploadDerivatives transfers the whole derivatives tree to central storage.
func (p *Project) UploadDerivatives(ctx context.Context, opts transfer.Options) (transfer.Result, error) {
	return p.UploadCustom(ctx, project.Derivatives, allSelection(), opts)
}

// DownloadDerivatives transfers the whole derivatives tree from central storage.
func (p *Project) DownloadDerivatives(ctx context.Context, opts transfer.Options) (transfer.Result, error) {
	return p.DownloadCustom(ctx, project.Derivatives, allSelection(), opts)
}

// UploadEntireProject transfers rawdata and derivatives in one call,
// spec.md §6's upload_entire_project.
func (p *Project) UploadEntireProject(ctx context.Context, opts transfer.Options) (map[string]transfer.Result, error) {
	return p.transferBothTopLevels(ctx, transfer.Upload, opts)
}

// DownloadEntireProject transfers rawdata and derivatives in one call,
// spec.md §6's download_entire_project.
func (p *Project) DownloadEntireProject(ctx context.Context, opts transfer.Options) (map[string]transfer.Result, error) {
	return p.transferBothTopLevels(ctx, transfer.Download, opts)
}

func (p *Project) transferBothTopLevels(ctx context.Context, direction transfer.Direction, opts transfer.Options) (map[string]transfer.Result, error) {
	results := make(map[string]transfer.Result, 2)
	for _, top := range []project.TopLevelFolder{project.Rawdata, project.Derivatives} {
		var result transfer.Result
		var err error
		if direction == transfer.Upload {
			result, err = p.UploadCustom(ctx, top, allSelection(), opts)
		} else {
			result, err = p.DownloadCustom(ctx, top, allSelection(), opts)
		}
		if err != nil {
			return results, err
		}
		results[string(top)] = result
	}
	return results, nil
}

// UploadSpecificFolderOrFile transfers exactly one path (relative to
// top), spec.md §6's upload_specific_folder_or_file.
func (p *Project) UploadSpecificFolderOrFile(ctx context.Context, top project.TopLevelFolder, relPath string, opts transfer.Options) (transfer.Result, error) {
	log, err := p.openLog("upload_specific_folder_or_file")
	if err != nil {
		return transfer.Result{}, err
	}
	defer log.Close()

	cfg, err := p.Configs()
	if err != nil {
		return transfer.Result{}, err
	}
	local, central := p.endpoints(cfg, top)
	plan, err := transfer.BuildCopyPlan(transfer.Upload, local, central, []string{relPath}, opts)
	if err != nil {
		return transfer.Result{}, err
	}
	return transfer.Start(ctx, p.RcloneBinary, plan.Args).Wait()
}

// DownloadSpecificFolderOrFile transfers exactly one path (relative to
// top) from central storage, spec.md §6's download_specific_folder_or_file.
func (p *Project) DownloadSpecificFolderOrFile(ctx context.Context, top project.TopLevelFolder, relPath string, opts transfer.Options) (transfer.Result, error) {
	log, err := p.openLog("download_specific_folder_or_file")
	if err != nil {
		return transfer.Result{}, err
	}
	defer log.Close()

	cfg, err := p.Configs()
	if err != nil {
		return transfer.Result{}, err
	}
	local, central := p.endpoints(cfg, top)
	plan, err := transfer.BuildCopyPlan(transfer.Download, local, central, []string{relPath}, opts)
	if err != nil {
		return transfer.Result{}, err
	}
	return transfer.Start(ctx, p.RcloneBinary, plan.Args).Wait()
}
