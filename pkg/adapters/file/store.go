package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
)

// Store implements ports.AutomatonStore using the local filesystem.
// Each automaton is one <id>.json or <id>.yaml document in BasePath.
type Store struct {
	BasePath string
	Format   automaton.Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects the document format used by Save. Load reads both.
func WithFormat(f automaton.Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".automata/store".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".automata", "store")
	}
	s := &Store{BasePath: basePath, Format: automaton.FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func extension(f automaton.Format) string {
	if f == automaton.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func checkID(id string) error {
	if id == "" {
		return fmt.Errorf("automaton id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid automaton id %q", id)
	}
	return nil
}

// Save persists the document atomically: it writes a temporary file, syncs it
// and renames it over the destination. A copy in the other format is removed.
func (s *Store) Save(ctx context.Context, id string, doc domain.Document) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	data, err := automaton.EncodeDocument(doc, s.Format)
	if err != nil {
		return fmt.Errorf("failed to encode automaton: %w", err)
	}

	ext := extension(s.Format)
	destPath := filepath.Join(s.BasePath, id+ext)

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing automaton file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	for _, other := range []automaton.Format{automaton.FormatJSON, automaton.FormatYAML} {
		if other != s.Format {
			_ = os.Remove(filepath.Join(s.BasePath, id+extension(other)))
		}
	}
	return nil
}

// Load reads <id>.json or <id>.yaml, preferring the configured format.
func (s *Store) Load(ctx context.Context, id string) (domain.Document, error) {
	if err := checkID(id); err != nil {
		return domain.Document{}, err
	}

	for _, f := range s.formats() {
		data, err := os.ReadFile(filepath.Join(s.BasePath, id+extension(f)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return domain.Document{}, fmt.Errorf("failed to read automaton file: %w", err)
		}
		doc, err := automaton.ParseDocument(data, f)
		if err != nil {
			return domain.Document{}, fmt.Errorf("failed to decode automaton %s: %w", id, err)
		}
		return doc, nil
	}
	return domain.Document{}, domain.ErrAutomatonNotFound
}

func (s *Store) formats() []automaton.Format {
	if s.Format == automaton.FormatYAML {
		return []automaton.Format{automaton.FormatYAML, automaton.FormatJSON}
	}
	return []automaton.Format{automaton.FormatJSON, automaton.FormatYAML}
}

// Delete removes the automaton file in every format.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	for _, f := range s.formats() {
		err := os.Remove(filepath.Join(s.BasePath, id+extension(f)))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete automaton file: %w", err)
		}
	}
	return nil
}

// List returns the IDs of every stored document.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list automata: %w", err)
	}

	seen := make(map[string]bool)
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".json" && ext != ".yaml" {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
