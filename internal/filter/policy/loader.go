package policy

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ReadBundle collects the Rego modules under fsys, descending into
// subdirectories. Modules are keyed by slash-separated path. Rego unit tests
// (*_test.rego) and hidden directories are skipped.
func ReadBundle(fsys fs.FS) (map[string]string, error) {
	modules := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != ".rego" || strings.HasSuffix(p, "_test.rego") {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read policy %s: %w", p, err)
		}
		modules[p] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read policy bundle: %w", err)
	}
	return modules, nil
}
