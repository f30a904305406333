// Package embed expands `![[note]]` document embeds: it loads the referenced
// note, runs the transform pipeline over it one level deeper and splices the
// result into the host tree.
package embed

import (
	"context"
	stderrors "errors"
	"io/fs"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
)

// ErrOutsideRoot is returned for a logical path that would leave the vault.
var ErrOutsideRoot = stderrors.New("path escapes the vault root")

// Loader returns the raw content of a note by its index path.
type Loader interface {
	Load(ctx context.Context, logicalPath string) ([]byte, error)
}

// FSLoader loads notes from a filesystem rooted at the vault directory.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader returns a Loader reading from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

func (l *FSLoader) Load(ctx context.Context, logicalPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(logicalPath, "/")
	if !fs.ValidPath(name) || name == "." {
		return nil, errors.WrapError(ErrOutsideRoot, errors.CategoryValidation, "invalid note path").
			WithContext("path", logicalPath).Build()
	}
	data, err := fs.ReadFile(l.fsys, name)
	switch {
	case err == nil:
		return data, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.WrapError(err, errors.CategoryNotFound, "note not found").
			WithContext("path", logicalPath).Build()
	default:
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read note").
			WithContext("path", logicalPath).Build()
	}
}
