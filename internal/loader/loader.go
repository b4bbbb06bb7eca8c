// Package loader reads SQL migration files for analysis.
//
// A migrations path is either a single .sql file or a directory whose
// top-level .sql files are loaded. Files named like goose migrations
// (00001_create_users.sql) are ordered by version and come first; other
// files follow in lexical order. Only the Up section of a file with goose
// annotations is analyzed.
package loader

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pressly/goose/v3"
)

// Migration is one loaded file.
type Migration struct {
	Path string
	Name string
	// Version is the goose version prefix; Versioned is false when the
	// file name has none.
	Version   int64
	Versioned bool
	// SQL is the text to analyze. Lines outside the Up section are blanked
	// so positions still match the file.
	SQL string
}

// DuplicateVersionError is returned when two files share a goose version.
type DuplicateVersionError struct {
	Version int64
	Files   []string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("duplicate migration version %d: %s", e.Version, strings.Join(e.Files, ", "))
}

// Load reads path, which may be a file or a directory.
func Load(path string) ([]*Migration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	if !info.IsDir() {
		m, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []*Migration{m}, nil
	}
	return LoadDir(path)
}

// LoadDir reads every .sql file directly inside dir, in migration order.
func LoadDir(dir string) ([]*Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var out []*Migration
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		m, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	Sort(out)
	if err := checkVersions(out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile reads one migration file.
func LoadFile(path string) (*Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m := &Migration{Path: path, Name: filepath.Base(path)}
	if v, err := goose.NumericComponent(m.Name); err == nil {
		m.Version, m.Versioned = v, true
	}
	m.SQL, err = UpSection(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Sort orders migrations: versioned files by version, then the rest by
// name.
func Sort(ms []*Migration) {
	slices.SortStableFunc(ms, func(a, b *Migration) int {
		if a.Versioned != b.Versioned {
			if a.Versioned {
				return -1
			}
			return 1
		}
		if a.Versioned {
			if c := cmp.Compare(a.Version, b.Version); c != 0 {
				return c
			}
		}
		return strings.Compare(a.Name, b.Name)
	})
}

func checkVersions(ms []*Migration) error {
	var errs []error
	for i := 1; i < len(ms); i++ {
		a, b := ms[i-1], ms[i]
		if a.Versioned && b.Versioned && a.Version == b.Version {
			errs = append(errs, &DuplicateVersionError{Version: a.Version, Files: []string{a.Name, b.Name}})
		}
	}
	return errors.Join(errs...)
}
