// Package jsonfile persists segmented sections as JSON files, one file per
// document, in the serialized form {"main title", "section title", "content"}.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
)

// fileExt is appended to every section file.
const fileExt = ".json"

// Ensure Store implements the interface.
var _ driven.SectionStore = (*Store)(nil)

// Store writes section files into a directory. Names are path-escaped, so
// a document path can be used as a name.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
// If dir is empty, defaults to ~/.sercha-sections/sections.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".sercha-sections", "sections")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating sections directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding section files.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes sections to the file for name, replacing any previous content.
func (s *Store) Save(ctx context.Context, name string, sections []domain.Section) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: section set name is required", domain.ErrInvalidInput)
	}
	if sections == nil {
		sections = []domain.Section{}
	}

	data, err := Marshal(sections)
	if err != nil {
		return err
	}

	path := s.path(name)
	tmp, err := os.CreateTemp(s.dir, ".sections-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing sections: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing sections: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Load reads the sections saved under name.
func (s *Store) Load(ctx context.Context, name string) ([]domain.Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: sections %q", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading sections: %w", err)
	}
	return Unmarshal(data)
}

// List returns the saved names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		file := entry.Name()
		if entry.IsDir() || strings.HasPrefix(file, ".") || !strings.HasSuffix(file, fileExt) {
			continue
		}
		name, err := url.PathUnescape(strings.TrimSuffix(file, fileExt))
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+fileExt)
}

// Marshal encodes sections as an indented JSON array without HTML escaping.
func Marshal(sections []domain.Section) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(sections); err != nil {
		return nil, fmt.Errorf("encoding sections: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a JSON array of sections.
func Unmarshal(data []byte) ([]domain.Section, error) {
	var sections []domain.Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("%w: decoding sections: %w", domain.ErrInvalidInput, err)
	}
	if sections == nil {
		sections = []domain.Section{}
	}
	return sections, nil
}
