// Package fsutil holds the file helpers shared by the BIOS and ROM stores.
package fsutil

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// ErrInvalidName is returned for names that are not a plain file name.
var ErrInvalidName = errors.New("invalid file name")

// SafeName checks that name is a single, visible path element and returns
// it unchanged. Browsers may send a full client path; only a bare name is
// accepted here, callers strip directories first when they want to.
func SafeName(name string) (string, error) {
	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("%w: %q is hidden", ErrInvalidName, name)
	}
	return name, nil
}

// BaseName strips any client-side directory from an uploaded file name,
// accepting both slash styles.
func BaseName(name string) string {
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

// Written describes a file stored by WriteAtomic.
type Written struct {
	Path string
	Size int64
	MD5  string
}

// WriteAtomic copies r into dir/name through a temporary file that is
// fsynced and renamed into place, hashing the content on the way.
func WriteAtomic(dir, name string, r io.Reader) (Written, error) {
	return WriteAtomicIf(dir, name, r, nil)
}

// WriteAtomicIf is WriteAtomic with a check on the hashed content before
// the rename. When check fails the existing file is left in place and the
// description of the discarded content is returned with the error.
func WriteAtomicIf(dir, name string, r io.Reader, check func(Written) error) (Written, error) {
	if _, err := SafeName(name); err != nil {
		return Written{}, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Written{}, fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return Written{}, fmt.Errorf("create pending file for %s: %w", name, err)
	}
	defer pending.Cleanup()

	h := md5.New()
	n, err := io.Copy(io.MultiWriter(pending, h), r)
	if err != nil {
		return Written{}, fmt.Errorf("write %s: %w", name, err)
	}
	w := Written{Path: path, Size: n, MD5: hex.EncodeToString(h.Sum(nil))}
	if check != nil {
		if err := check(w); err != nil {
			return w, err
		}
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return Written{}, fmt.Errorf("replace %s: %w", name, err)
	}
	return w, nil
}

// FileMD5 returns the hex MD5 of the file at path.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
