// Package discovery finds candidate plugin libraries on disk. It only
// looks at file names; whether a file is actually a loadable plugin is
// decided by the loader when the host opens it.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PluginFile describes one discovered candidate library.
type PluginFile struct {
	Name string
	Path string
	Size int64
}

// suffixes a plugin library may carry. CLAP bundles use .clap; bare
// shared objects show up during development.
var suffixes = []string{".clap", ".so", ".dylib"}

// Scan walks the given directories (non-recursively) and returns every
// regular file with a plugin suffix, deduplicated by path and sorted
// by name. Missing or unreadable directories are skipped, not errors.
func Scan(dirs []string) []PluginFile {
	seen := make(map[string]bool)
	var found []PluginFile

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !hasPluginSuffix(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if seen[path] {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[path] = true
			found = append(found, PluginFile{
				Name: entry.Name(),
				Path: path,
				Size: info.Size(),
			})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Name != found[j].Name {
			return found[i].Name < found[j].Name
		}
		return found[i].Path < found[j].Path
	})
	return found
}

func hasPluginSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
