// Package roms lists emulated systems and manages the ROM files inside
// each system directory.
package roms

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/retromgr/internal/fsutil"
	"gopkg.in/yaml.v3"
)

//go:embed systems.yaml
var systemsYAML []byte

var (
	// ErrUnknownSystem is returned when no directory exists for a system.
	ErrUnknownSystem = errors.New("unknown system")
	// ErrExtension is returned when a file type is not played by a system.
	ErrExtension = errors.New("file extension not accepted")
	// ErrInvalidName is returned for names that are not plain file names.
	ErrInvalidName = fsutil.ErrInvalidName
)

// SystemNamePattern matches valid system directory names.
var SystemNamePattern = regexp.MustCompile(`^[-\w]+$`)

var archiveExts = []string{".zip", ".7z"}

// ignoredFiles are metadata files living next to the ROMs.
var ignoredFiles = map[string]bool{
	"gamelist.xml": true,
	"_info.txt":    true,
}

// SystemSpec is a catalog entry for a known system.
type SystemSpec struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
}

// System is a ROM directory.
type System struct {
	Short    string
	FullName string
	RomCount int
	Known    bool
}

// Rom is a file in a system directory.
type Rom struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Result describes a stored upload.
type Result struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	MD5  string `json:"md5"`
}

// LoadCatalog parses the embedded systems catalog.
func LoadCatalog() (map[string]SystemSpec, error) {
	out := make(map[string]SystemSpec)
	if err := yaml.Unmarshal(systemsYAML, &out); err != nil {
		return nil, fmt.Errorf("roms: parse systems catalog: %w", err)
	}
	return out, nil
}

// Library is the ROM root directory paired with the systems catalog.
type Library struct {
	root    string
	catalog map[string]SystemSpec
}

// NewLibrary returns a library over root using the embedded catalog.
func NewLibrary(root string) (*Library, error) {
	cat, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return &Library{root: root, catalog: cat}, nil
}

// NewLibraryWithCatalog returns a library over root using catalog.
func NewLibraryWithCatalog(root string, catalog map[string]SystemSpec) *Library {
	return &Library{root: root, catalog: catalog}
}

// Root returns the ROM root directory.
func (l *Library) Root() string { return l.root }

// Systems lists the system directories, sorted by display name. A missing
// root yields an empty list.
func (l *Library) Systems() ([]System, error) {
	dirEntries, err := os.ReadDir(l.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("roms: read %s: %w", l.root, err)
	}
	var systems []System
	for _, de := range dirEntries {
		name := de.Name()
		if !de.IsDir() || strings.HasPrefix(name, ".") || !SystemNamePattern.MatchString(name) {
			continue
		}
		roms, err := l.Roms(name)
		if err != nil {
			return nil, err
		}
		sys := System{Short: name, FullName: name, RomCount: len(roms)}
		if spec, ok := l.catalog[name]; ok {
			sys.FullName = spec.Name
			sys.Known = true
		}
		systems = append(systems, sys)
	}
	sort.Slice(systems, func(i, j int) bool {
		return strings.ToLower(systems[i].FullName) < strings.ToLower(systems[j].FullName)
	})
	return systems, nil
}

// System returns the named system.
func (l *Library) System(short string) (System, error) {
	roms, err := l.Roms(short)
	if err != nil {
		return System{}, err
	}
	sys := System{Short: short, FullName: short, RomCount: len(roms)}
	if spec, ok := l.catalog[short]; ok {
		sys.FullName = spec.Name
		sys.Known = true
	}
	return sys, nil
}

func (l *Library) systemDir(short string) (string, error) {
	if !SystemNamePattern.MatchString(short) {
		return "", fmt.Errorf("roms: %w: %q", ErrUnknownSystem, short)
	}
	dir := filepath.Join(l.root, short)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("roms: %w: %q", ErrUnknownSystem, short)
	}
	return dir, nil
}

// Roms lists the ROM files of a system, sorted by name.
func (l *Library) Roms(short string) ([]Rom, error) {
	dir, err := l.systemDir(short)
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("roms: read %s: %w", dir, err)
	}
	var roms []Rom
	for _, de := range dirEntries {
		name := de.Name()
		if !de.Type().IsRegular() || strings.HasPrefix(name, ".") || ignoredFiles[strings.ToLower(name)] {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		roms = append(roms, Rom{Name: name, Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(roms, func(i, j int) bool {
		return strings.ToLower(roms[i].Name) < strings.ToLower(roms[j].Name)
	})
	return roms, nil
}

// Accepts reports whether a file name may be stored in the system.
// Systems missing from the catalog, or declaring no extensions, accept
// everything.
func (l *Library) Accepts(short, name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if slices.Contains(archiveExts, ext) {
		return true
	}
	spec, ok := l.catalog[short]
	if !ok || len(spec.Extensions) == 0 {
		return true
	}
	return slices.Contains(spec.Extensions, ext)
}

// Save stores an uploaded ROM in the system directory.
func (l *Library) Save(short, name string, r io.Reader) (Result, error) {
	dir, err := l.systemDir(short)
	if err != nil {
		return Result{}, err
	}
	name = fsutil.BaseName(name)
	if _, err := fsutil.SafeName(name); err != nil {
		return Result{}, fmt.Errorf("roms: %w", err)
	}
	if !l.Accepts(short, name) {
		return Result{}, fmt.Errorf("roms: %w: %s for %s", ErrExtension, filepath.Ext(name), short)
	}
	w, err := fsutil.WriteAtomic(dir, name, r)
	if err != nil {
		return Result{}, fmt.Errorf("roms: %w", err)
	}
	return Result{Name: name, Size: w.Size, MD5: w.MD5}, nil
}

// Delete removes the named ROMs from a system. Every name is checked
// before anything is removed: when one is invalid, missing or not a regular
// file, no file is deleted.
func (l *Library) Delete(short string, names ...string) error {
	dir, err := l.systemDir(short)
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range names {
		if _, err := fsutil.SafeName(n); err != nil {
			return fmt.Errorf("roms: %w", err)
		}
		info, err := os.Lstat(filepath.Join(dir, n))
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("roms: delete %s: %w", n, err))
		case !info.Mode().IsRegular():
			errs = append(errs, fmt.Errorf("roms: delete %s: not a regular file", n))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, n := range names {
		if err := os.Remove(filepath.Join(dir, n)); err != nil {
			errs = append(errs, fmt.Errorf("roms: delete %s: %w", n, err))
		}
	}
	return errors.Join(errs...)
}
