// Package esconfig reads and writes EmulationStation's es_settings.cfg.
package esconfig

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/renameio/v2"
)

// Kind is the element name a setting is stored under.
type Kind string

const (
	Bool   Kind = "bool"
	Int    Kind = "int"
	Float  Kind = "float"
	String Kind = "string"
)

func (k Kind) valid() bool {
	switch k {
	case Bool, Int, Float, String:
		return true
	}
	return false
}

// Setting is a single named value.
type Setting struct {
	Kind  Kind
	Name  string
	Value string
}

// Settings is an ordered es_settings document.
type Settings struct {
	items []Setting
	// wrapped is set when the document uses a <config> root element, as
	// newer EmulationStation releases write.
	wrapped bool
}

// Parse decodes a settings document.
func Parse(r io.Reader) (*Settings, error) {
	s := &Settings{}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("esconfig: parse: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		kind := Kind(start.Name.Local)
		if start.Name.Local == "config" {
			s.wrapped = true
			continue
		}
		if !kind.valid() {
			continue
		}
		var name, value string
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "name":
				name = a.Value
			case "value":
				value = a.Value
			}
		}
		if name == "" {
			continue
		}
		s.put(Setting{Kind: kind, Name: name, Value: value})
	}
	return s, nil
}

// Load reads the document at path. A missing file yields an empty document.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("esconfig: read %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data))
}

// Get returns the setting stored under name.
func (s *Settings) Get(name string) (Setting, bool) {
	for _, it := range s.items {
		if it.Name == name {
			return it, true
		}
	}
	return Setting{}, false
}

// All returns the settings in document order.
func (s *Settings) All() []Setting {
	out := make([]Setting, len(s.items))
	copy(out, s.items)
	return out
}

// Set stores value under name, checking it against kind.
func (s *Settings) Set(name string, kind Kind, value string) error {
	if name == "" {
		return fmt.Errorf("esconfig: empty setting name")
	}
	if !kind.valid() {
		return fmt.Errorf("esconfig: unknown kind %q for %s", kind, name)
	}
	switch kind {
	case Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("esconfig: %s: %q is not a boolean", name, value)
		}
		value = strconv.FormatBool(b)
	case Int:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("esconfig: %s: %q is not an integer", name, value)
		}
	case Float:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("esconfig: %s: %q is not a number", name, value)
		}
	}
	s.put(Setting{Kind: kind, Name: name, Value: value})
	return nil
}

func (s *Settings) put(st Setting) {
	for i := range s.items {
		if s.items[i].Name == st.Name {
			s.items[i] = st
			return
		}
	}
	s.items = append(s.items, st)
}

// WriteTo encodes the document to w.
func (s *Settings) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\"?>\n")
	indent := ""
	if s.wrapped {
		buf.WriteString("<config>\n")
		indent = "\t"
	}
	for _, it := range s.items {
		buf.WriteString(indent + "<" + string(it.Kind) + ` name="`)
		xml.EscapeText(&buf, []byte(it.Name))
		buf.WriteString(`" value="`)
		xml.EscapeText(&buf, []byte(it.Value))
		buf.WriteString("\" />\n")
	}
	if s.wrapped {
		buf.WriteString("</config>\n")
	}
	return buf.WriteTo(w)
}

// Save atomically replaces the file at path with the document.
func (s *Settings) Save(path string) error {
	var buf bytes.Buffer
	s.WriteTo(&buf)
	if err := renameio.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("esconfig: write %s: %w", path, err)
	}
	return nil
}
