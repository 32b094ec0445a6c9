// Package loader discovers Jack source files and reads them for the
// compiler, mirroring the file-handling half of what a command-line
// entry point needs before it can call the core.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt is the default Jack source file extension.
const SourceExt = ".jack"

// Discover resolves path to the list of source files to compile. If
// path names a regular file it is returned as the sole entry
// (regardless of its extension — an explicit file argument is always
// honored). If path names a directory, every top-level regular file
// ending in ext is returned, sorted for deterministic compile order;
// subdirectories are not descended into, per the non-recursive
// directory-mode contract.
func Discover(path, ext string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// OutputPath replaces srcPath's extension with ext, in the same directory.
func OutputPath(srcPath, ext string) string {
	trimmed := strings.TrimSuffix(srcPath, filepath.Ext(srcPath))
	return trimmed + ext
}

// ReadLines reads path fully into memory as a line list, the shape the
// tokenizer's preprocessing pass consumes.
func ReadLines(path string) ([]string, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- caller-resolved source file path
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}
