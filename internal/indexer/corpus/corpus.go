// Package corpus turns files on disk (or in-memory text) into the ordered
// document list consumed by the index builder. A file's document id is its
// numeric file stem, so "12.txt" is document 12.
package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/errors"
)

// Document is one corpus entry. Open is called once per build and the
// returned reader is closed by the builder.
type Document struct {
	ID   int
	Name string
	Open func() (io.ReadCloser, error)
}

// ParseID derives a document id from a file name by parsing the base name
// without its final extension.
func ParseID(name string) (int, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	id, err := strconv.Atoi(stem)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInvalidIdentifier, err, "file %q", name)
	}
	if id < 0 {
		return 0, apperrors.Errorf(apperrors.ErrInvalidIdentifier, "file %q: negative id %d", name, id)
	}
	return id, nil
}

// FromFiles builds one Document per path, keeping the caller's order. Files
// are not opened until the build reads them.
func FromFiles(paths []string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		id, err := ParseID(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, FromFile(id, path))
	}
	return docs, nil
}

// FromFile wraps a single path with an explicit id.
func FromFile(id int, path string) Document {
	return Document{
		ID:   id,
		Name: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FromDir lists the regular files in dir whose extension is ext and returns
// them ordered by file name.
func FromDir(dir string, ext string) ([]Document, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDocumentUnreadable, err, "reading corpus directory %s", dir)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	docs, err := FromFiles(paths)
	if err != nil {
		return nil, fmt.Errorf("loading corpus from %s: %w", dir, err)
	}
	return docs, nil
}

// FromText returns an in-memory document.
func FromText(id int, text string) Document {
	return Document{
		ID:   id,
		Name: fmt.Sprintf("text:%d", id),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(text)), nil
		},
	}
}
