package node

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gridnode/supervisor/internal/supervisor"
)

// LocalPatcher mirrors a distribution's directories from a source tree
// already present on the node's filesystem (e.g. a path a separate
// IcePatch2-equivalent sync process maintains out of band). It exists so
// the Patch/WaitForPatch surface has a real collaborator to exercise in
// single-node deployments; a node talking to a network patch server
// substitutes a different Patcher.
type LocalPatcher struct{}

var _ supervisor.Patcher = LocalPatcher{}

// Patch copies every directory in dirs from src into the corresponding
// path under each directory's own root, invoking cb with the first
// error encountered (or nil on success).
func (LocalPatcher) Patch(ctx context.Context, src string, dirs []string, cb func(err error)) {
	go func() {
		for _, dir := range dirs {
			if err := copyTree(filepath.Join(src, dir), dir); err != nil {
				cb(err)
				return
			}
			select {
			case <-ctx.Done():
				cb(ctx.Err())
				return
			default:
			}
		}
		cb(nil)
	}()
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
