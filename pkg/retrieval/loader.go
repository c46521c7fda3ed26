package retrieval

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LoadFile loads a single file as one Document.
//
// The document gets a fresh UUID, the raw file content, and metadata
// recording the source path, file extension and size. File timestamps
// populate Created and Updated.
func LoadFile(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory, not a file", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Document{
		ID:      uuid.NewString(),
		Content: string(content),
		Metadata: map[string]any{
			"source":    path,
			"file_type": strings.ToLower(filepath.Ext(path)),
			"size":      info.Size(),
		},
		Created: info.ModTime(),
		Updated: info.ModTime(),
	}, nil
}

// LoadDirectory loads every file under dir whose name matches pattern
// (a filepath.Match glob, e.g. "*.txt"; "*" when empty) as one Document
// each. When recursive is true subdirectories are walked too.
//
// Unreadable files are skipped rather than failing the whole load; a
// missing directory is an error. Results are ordered by path so repeated
// loads of the same tree produce the same document order.
func LoadDirectory(dir, pattern string, recursive bool) ([]Document, error) {
	if pattern == "" {
		pattern = "*"
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if ok, _ := filepath.Match(pattern, d.Name()); ok {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	} else {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = matches
	}

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadFile(path)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadSources loads documents from a mix of file paths, directories and
// glob patterns. Directories are loaded non-recursively with pattern "*".
func LoadSources(sources ...string) ([]Document, error) {
	var all []Document
	for _, source := range sources {
		info, statErr := os.Stat(source)
		switch {
		case statErr == nil && info.IsDir():
			docs, err := LoadDirectory(source, "", false)
			if err != nil {
				return nil, err
			}
			all = append(all, docs...)
		case statErr == nil:
			doc, err := LoadFile(source)
			if err != nil {
				return nil, err
			}
			all = append(all, doc)
		case strings.ContainsAny(source, "*?["):
			docs, err := LoadDirectory(filepath.Dir(source), filepath.Base(source), false)
			if err != nil {
				return nil, err
			}
			all = append(all, docs...)
		default:
			return nil, fmt.Errorf("source %s: %w", source, statErr)
		}
	}
	return all, nil
}
