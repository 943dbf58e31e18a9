package config

import (
	"fmt"
	"sort"
	"strings"
)

// Overlay is a set of settings that replace the base values. Nil fields
// are left untouched.
type Overlay struct {
	Site           *SiteConfig
	LogFilePath    *string
	AssetsPackaged *bool
}

// Profiles lists the named overlays selectable with the profile setting.
var Profiles = map[string]Overlay{
	"production": {
		// IP stays empty so the address is detected on the appliance.
		Site: &SiteConfig{
			Name: "Retropie Manager",
			Port: "8000",
		},
		LogFilePath:    ptr("/opt/retropie/configs/all/emulationstation/es_log.txt"),
		AssetsPackaged: ptr(true),
	},
}

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyProfile applies the named overlay and records it in c.Profile.
func (c *Config) ApplyProfile(name string) error {
	o, ok := Profiles[name]
	if !ok {
		return fmt.Errorf("config: unknown profile %q (known: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	c.Apply(o)
	c.Profile = name
	return nil
}

// Apply copies every non-nil overlay field onto c.
func (c *Config) Apply(o Overlay) {
	if o.Site != nil {
		c.Site = *o.Site
	}
	if o.LogFilePath != nil {
		c.LogFilePath = *o.LogFilePath
	}
	if o.AssetsPackaged != nil {
		c.AssetsPackaged = *o.AssetsPackaged
	}
}

func ptr[T any](v T) *T { return &v }
