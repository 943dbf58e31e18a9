// Package forms describes the editable settings pages and validates their
// submissions.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind selects the input widget and value parsing of a field.
type Kind string

const (
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindChoice Kind = "choice"
)

// Field is one editable setting.
type Field struct {
	Key      string
	Label    string
	Kind     Kind
	Choices  []string
	Rules    string // validator tags applied to the parsed value
	Optional bool   // empty input unsets the setting
	Default  string
}

// Form is an ordered set of fields stored in one configuration file.
type Form struct {
	Name     string
	Title    string
	Fields   []Field
	TrueVal  string
	FalseVal string
}

// Result is the outcome of binding a submission.
type Result struct {
	Values map[string]string
	Errors map[string]string
}

// OK reports whether the submission had no errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

var validate = validator.New()

// Bind reads every field of f from in, normalising booleans to the form's
// true/false spelling and validating the rest.
func (f Form) Bind(in url.Values) Result {
	res := Result{Values: make(map[string]string), Errors: make(map[string]string)}
	for _, fd := range f.Fields {
		raw := strings.TrimSpace(in.Get(fd.Key))
		if fd.Kind == KindBool {
			if IsOn(raw) {
				res.Values[fd.Key] = f.TrueVal
			} else {
				res.Values[fd.Key] = f.FalseVal
			}
			continue
		}
		res.Values[fd.Key] = raw
		if raw == "" && fd.Optional {
			continue
		}
		if msg := fd.check(raw); msg != "" {
			res.Errors[fd.Key] = msg
		}
	}
	return res
}

// Current merges stored values over field defaults, for rendering.
func (f Form) Current(stored map[string]string) map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, fd := range f.Fields {
		if v, ok := stored[fd.Key]; ok {
			out[fd.Key] = v
		} else {
			out[fd.Key] = fd.Default
		}
	}
	return out
}

// Field returns the field stored under key.
func (f Form) Field(key string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Key == key {
			return fd, true
		}
	}
	return Field{}, false
}

// IsOn reports whether a submitted or stored value means "enabled".
func IsOn(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func (fd Field) check(raw string) string {
	if raw == "" {
		return "is required"
	}
	var value any = raw
	switch fd.Kind {
	case KindChoice:
		if !slices.Contains(fd.Choices, raw) {
			return "must be one of " + strings.Join(fd.Choices, ", ")
		}
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "must be a whole number"
		}
		value = n
	case KindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "must be a number"
		}
		value = n
	}
	if fd.Rules == "" {
		return ""
	}
	if err := validate.Var(value, fd.Rules); err != nil {
		return describe(err)
	}
	return ""
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min", "gte":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max", "lte":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "printascii":
		return "must contain printable ASCII characters only"
	case "alphanum":
		return "must contain letters and digits only"
	}
	return "is invalid (" + fe.Tag() + ")"
}
