package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotFound is returned when an artifact does not exist or the origin
// refused to serve it. Callers treat it as "feature absent".
var ErrNotFound = errors.New("artifact not found")

// Source serves raw artifact bytes.
type Source interface {
	Get(ctx context.Context, ref CallRef, name string) ([]byte, error)
}

// DirSource reads artifacts from a local mirror laid out as
// {root}/{type}/{date}_{number}/{name}.
type DirSource struct {
	Root string
}

// Path returns the on-disk location of an artifact.
func (d DirSource) Path(ref CallRef, name string) string {
	return filepath.Join(d.Root, ref.Type, ref.Date+"_"+ref.Number, name)
}

func (d DirSource) Get(ctx context.Context, ref CallRef, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(ref, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", ref.Key(), name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", ref.Key(), name, err)
	}
	return data, nil
}

// Refs lists the calls present under Root, sorted by key. Directories that
// are not named like calls are skipped.
func (d DirSource) Refs() ([]CallRef, error) {
	types, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("read artifact root: %w", err)
	}

	var refs []CallRef
	for _, t := range types {
		if !t.IsDir() {
			continue
		}
		calls, err := os.ReadDir(filepath.Join(d.Root, t.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.Name(), err)
		}
		for _, c := range calls {
			if !c.IsDir() {
				continue
			}
			ref, err := ParseCallRef(t.Name() + "/" + c.Name())
			if err != nil {
				continue
			}
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Key() < refs[j].Key() })
	return refs, nil
}
