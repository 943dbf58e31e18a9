// Package confile reads and writes flat key/value configuration files such
// as recalbox.conf (key=value) and retroarch.cfg (key = "value").
//
// Comments, blank lines, ordering and the formatting of untouched lines are
// preserved across a load/save cycle.
package confile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-\[\]]+$`)

type line struct {
	raw      string
	key      string
	value    string
	disabled bool
	marker   string
	sep      string
	quoted   bool
	dirty    bool
}

func (l *line) isSetting() bool { return l.key != "" }

func (l *line) String() string {
	if !l.dirty {
		return l.raw
	}
	var b strings.Builder
	if l.disabled {
		b.WriteString(l.marker)
	}
	b.WriteString(l.key)
	b.WriteString(l.sep)
	if l.quoted {
		b.WriteString(`"` + l.value + `"`)
	} else {
		b.WriteString(l.value)
	}
	return b.String()
}

// File is a parsed configuration document.
type File struct {
	lines  []*line
	sep    string
	quoted bool
	marker string
}

// New returns an empty document that writes new settings in key=value form.
func New() *File {
	return &File{sep: "=", marker: "#"}
}

// Parse reads a document from r.
func Parse(r io.Reader) (*File, error) {
	f := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	styled := false
	for sc.Scan() {
		l := parseLine(strings.TrimRight(sc.Text(), "\r"))
		f.lines = append(f.lines, l)
		if l.isSetting() && !l.disabled && !styled {
			f.sep, f.quoted = l.sep, l.quoted
			styled = true
		}
		if l.disabled {
			f.marker = l.marker
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("confile: parse: %w", err)
	}
	return f, nil
}

// Load reads the document at path. A missing file yields an empty document.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("confile: read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data))
}

func parseLine(raw string) *line {
	l := &line{raw: raw}
	text := strings.TrimSpace(raw)
	if text == "" {
		return l
	}
	if text[0] == '#' || text[0] == ';' {
		marker := text[:1]
		if key, value, sep, quoted, ok := splitSetting(strings.TrimLeft(text[1:], " \t#;")); ok {
			l.key, l.value, l.sep, l.quoted = key, value, sep, quoted
			l.disabled = true
			l.marker = marker
		}
		return l
	}
	if key, value, sep, quoted, ok := splitSetting(text); ok {
		l.key, l.value, l.sep, l.quoted = key, value, sep, quoted
	}
	return l
}

func splitSetting(text string) (key, value, sep string, quoted, ok bool) {
	left, right, found := strings.Cut(text, "=")
	if !found {
		return "", "", "", false, false
	}
	key = strings.TrimSpace(left)
	if !keyPattern.MatchString(key) {
		return "", "", "", false, false
	}
	sep = "="
	if strings.HasSuffix(left, " ") || strings.HasPrefix(right, " ") {
		sep = " = "
	}
	value = strings.TrimSpace(right)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
		quoted = true
	}
	return key, value, sep, quoted, true
}

// Get returns the value of the last enabled occurrence of key.
func (f *File) Get(key string) (string, bool) {
	if l := f.find(key, false); l != nil {
		return l.value, true
	}
	return "", false
}

// Set assigns value to key. An enabled line is updated in place; otherwise
// a disabled line for the key is re-enabled; otherwise a new line is
// appended.
func (f *File) Set(key, value string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("confile: invalid key %q", key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("confile: value for %q contains a line break", key)
	}
	if l := f.find(key, false); l != nil {
		if l.value != value {
			l.value = value
			l.dirty = true
		}
		return nil
	}
	if l := f.find(key, true); l != nil {
		l.value = value
		l.disabled = false
		l.dirty = true
		return nil
	}
	f.lines = append(f.lines, &line{key: key, value: value, sep: f.sep, quoted: f.quoted, dirty: true})
	return nil
}

// Unset disables every enabled occurrence of key by commenting it out.
func (f *File) Unset(key string) {
	for _, l := range f.lines {
		if l.key == key && !l.disabled {
			l.disabled = true
			l.marker = f.marker
			l.dirty = true
		}
	}
}

// Keys returns the enabled keys in file order, without duplicates.
func (f *File) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, l := range f.lines {
		if l.isSetting() && !l.disabled && !seen[l.key] {
			seen[l.key] = true
			keys = append(keys, l.key)
		}
	}
	return keys
}

// Values returns every enabled setting, later occurrences winning.
func (f *File) Values() map[string]string {
	out := make(map[string]string)
	for _, l := range f.lines {
		if l.isSetting() && !l.disabled {
			out[l.key] = l.value
		}
	}
	return out
}

func (f *File) find(key string, disabled bool) *line {
	for i := len(f.lines) - 1; i >= 0; i-- {
		l := f.lines[i]
		if l.key == key && l.disabled == disabled {
			return l
		}
	}
	return nil
}

// WriteTo writes the document to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, l := range f.lines {
		c, err := io.WriteString(w, l.String()+"\n")
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Bytes renders the document.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	f.WriteTo(&buf)
	return buf.Bytes()
}

// Save atomically replaces the file at path with the document.
func (f *File) Save(path string) error {
	if err := renameio.WriteFile(path, f.Bytes(), 0644); err != nil {
		return fmt.Errorf("confile: write %s: %w", path, err)
	}
	return nil
}
