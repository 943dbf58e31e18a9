// Package bios checks the appliance BIOS directory against a catalog of
// known firmware images.
package bios

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/zulandar/retromgr/internal/fsutil"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrKeepValid is returned when an upload with a wrong checksum would
// replace a catalog file whose checksum is correct.
var ErrKeepValid = errors.New("checksum mismatch, keeping the valid file on disk")

// Spec describes a known BIOS file. An empty MD5 list accepts any content.
type Spec struct {
	File        string   `yaml:"file"`
	System      string   `yaml:"system"`
	Description string   `yaml:"description"`
	MD5         []string `yaml:"md5"`
}

func (s Spec) accepts(sum string) bool {
	if len(s.MD5) == 0 {
		return true
	}
	return slices.Contains(s.MD5, strings.ToLower(sum))
}

// Status is the state of a BIOS file on disk.
type Status string

const (
	StatusOK          Status = "ok"
	StatusMissing     Status = "missing"
	StatusBadChecksum Status = "bad-checksum"
	StatusUnknown     Status = "unknown"
)

// Entry is one row of the BIOS listing.
type Entry struct {
	File        string
	System      string
	Description string
	Status      Status
	MD5         string
	Size        int64
}

// Result describes a stored upload.
type Result struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	MD5   string `json:"md5"`
	Known bool   `json:"known"`
	Valid bool   `json:"valid"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() ([]Spec, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a YAML list of BIOS specs.
func ParseCatalog(data []byte) ([]Spec, error) {
	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("bios: parse catalog: %w", err)
	}
	for i, s := range specs {
		if s.File == "" {
			return nil, fmt.Errorf("bios: catalog entry %d has no file name", i)
		}
		for j := range s.MD5 {
			specs[i].MD5[j] = strings.ToLower(s.MD5[j])
		}
	}
	return specs, nil
}

// Store is a BIOS directory paired with its catalog.
type Store struct {
	dir     string
	catalog []Spec
}

// NewStore returns a store over dir using the embedded catalog.
func NewStore(dir string) (*Store, error) {
	specs, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, catalog: specs}, nil
}

// NewStoreWithCatalog returns a store over dir using the given catalog.
func NewStoreWithCatalog(dir string, specs []Spec) *Store {
	return &Store{dir: dir, catalog: specs}
}

// Dir returns the BIOS directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) lookup(name string) (Spec, bool) {
	for _, sp := range s.catalog {
		if sp.File == name {
			return sp, true
		}
	}
	return Spec{}, false
}

// Scan reports the status of every catalog entry plus any extra files in
// the BIOS directory. A missing directory reports everything as missing.
func (s *Store) Scan() ([]Entry, error) {
	entries := make([]Entry, 0, len(s.catalog))
	for _, sp := range s.catalog {
		e := Entry{File: sp.File, System: sp.System, Description: sp.Description, Status: StatusMissing}
		info, err := os.Stat(filepath.Join(s.dir, sp.File))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("bios: stat %s: %w", sp.File, err)
		case info.Mode().IsRegular():
			sum, err := fsutil.FileMD5(filepath.Join(s.dir, sp.File))
			if err != nil {
				return nil, fmt.Errorf("bios: hash %s: %w", sp.File, err)
			}
			e.MD5, e.Size = sum, info.Size()
			e.Status = StatusBadChecksum
			if sp.accepts(sum) {
				e.Status = StatusOK
			}
		}
		entries = append(entries, e)
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("bios: read %s: %w", s.dir, err)
	}
	for _, de := range dirEntries {
		name := de.Name()
		if !de.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, known := s.lookup(name); known {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		sum, err := fsutil.FileMD5(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("bios: hash %s: %w", name, err)
		}
		entries = append(entries, Entry{File: name, Status: StatusUnknown, MD5: sum, Size: info.Size()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].System != entries[j].System {
			return entries[i].System < entries[j].System
		}
		return entries[i].File < entries[j].File
	})
	return entries, nil
}

// Counts tallies entries per status.
func Counts(entries []Entry) map[Status]int {
	out := make(map[Status]int)
	for _, e := range entries {
		out[e.Status]++
	}
	return out
}

// Save stores an uploaded file and checks it against the catalog. A catalog
// file that already passes its checksum is only replaced by content that
// passes it too; otherwise the Result describes the rejected upload and the
// error wraps ErrKeepValid.
func (s *Store) Save(name string, r io.Reader) (Result, error) {
	name = fsutil.BaseName(name)
	if _, err := fsutil.SafeName(name); err != nil {
		return Result{}, fmt.Errorf("bios: %w", err)
	}
	sp, known := s.lookup(name)
	var check func(fsutil.Written) error
	if known && s.holdsValid(sp, name) {
		check = func(w fsutil.Written) error {
			if !sp.accepts(w.MD5) {
				return ErrKeepValid
			}
			return nil
		}
	}
	w, err := fsutil.WriteAtomicIf(s.dir, name, r, check)
	if errors.Is(err, ErrKeepValid) {
		return Result{Name: name, Size: w.Size, MD5: w.MD5, Known: true}, fmt.Errorf("bios: %s: %w", name, err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("bios: %w", err)
	}
	res := Result{Name: name, Size: w.Size, MD5: w.MD5, Known: known}
	if known {
		res.Valid = sp.accepts(w.MD5)
	}
	return res, nil
}

func (s *Store) holdsValid(sp Spec, name string) bool {
	sum, err := fsutil.FileMD5(filepath.Join(s.dir, name))
	return err == nil && sp.accepts(sum)
}
