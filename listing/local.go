package listing

import (
	"context"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
)

// Local lists a plain filesystem mount. Grounded on the teacher's direct
// dependency on github.com/karrick/godirwalk (cmn package tree walking
// idiom) for the recursive Walk helper; single-level List uses os.ReadDir
// directly since godirwalk's value is in the bulk-walk case.
//
// Paths given to List, Exists and Delete are resolved against Root; an
// empty Root leaves them relative to the working directory.
type Local struct {
	Root string
}

func NewLocal() *Local { return &Local{} }

func (l *Local) List(_ context.Context, dir string) (folders, files []string, err error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, NotFound(dir)
		}
		return nil, nil, BackendErr(err.Error())
	}
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	return sortedUnique(folders), sortedUnique(files), nil
}

func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.Root, path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, BackendErr(err.Error())
}

func (l *Local) Delete(_ context.Context, path string) error {
	if err := os.Remove(filepath.Join(l.Root, path)); err != nil {
		if os.IsNotExist(err) {
			return NotFound(path)
		}
		return BackendErr(err.Error())
	}
	return nil
}

// WalkTree recursively visits every folder and file under root in
// ascending code-point order, calling fn with the path relative to root.
// Nothing in this module calls it: the validator's trees are built from
// single-level List calls (datashuttle's buildTree).
func WalkTree(root string, fn func(relPath string, isDir bool) error) error {
	return godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if osPathname == root {
				return nil
			}
			rel, err := filepath.Rel(root, osPathname)
			if err != nil {
				return err
			}
			isDir, err := de.IsDirOrSymlinkToDir()
			if err != nil {
				return err
			}
			return fn(filepath.ToSlash(rel), isDir)
		},
		Unsorted:            false,
		FollowSymbolicLinks: false,
	})
}
