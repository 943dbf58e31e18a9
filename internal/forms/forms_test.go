package forms

import (
	"net/url"
	"strings"
	"testing"
)

func TestBind_Valid(t *testing.T) {
	in := url.Values{
		"system.language": {"fr_FR"},
		"system.kblayout": {"fr"},
		"audio.device":    {"hdmi"},
		"audio.volume":    {" 75 "},
		"audio.bgmusic":   {"on"},
		"global.ratio":    {"16/9"},
		"global.shaders":  {"scanlines"},
	}
	res := Recalbox.Bind(in)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Values["audio.volume"] != "75" {
		t.Errorf("audio.volume = %q, want trimmed 75", res.Values["audio.volume"])
	}
	if res.Values["audio.bgmusic"] != "1" {
		t.Errorf("audio.bgmusic = %q, want 1", res.Values["audio.bgmusic"])
	}
	if res.Values["wifi.enabled"] != "0" {
		t.Errorf("unchecked wifi.enabled = %q, want 0", res.Values["wifi.enabled"])
	}
	if res.Values["wifi.ssid"] != "" {
		t.Errorf("optional wifi.ssid = %q, want empty", res.Values["wifi.ssid"])
	}
}

func TestBind_Errors(t *testing.T) {
	base := url.Values{
		"system.language": {"en_US"},
		"system.kblayout": {"us"},
		"audio.device":    {"auto"},
		"audio.volume":    {"50"},
		"global.ratio":    {"auto"},
		"global.shaders":  {"none"},
	}
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"choice", "audio.device", "spdif", "must be one of"},
		{"not a number", "audio.volume", "loud", "whole number"},
		{"above max", "audio.volume", "101", "at most 100"},
		{"below min", "audio.volume", "-1", "at least 0"},
		{"required", "system.language", "", "is required"},
		{"short key", "wifi.key", "abc", "at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := url.Values{}
			for k, v := range base {
				in[k] = v
			}
			in.Set(tt.key, tt.value)
			res := Recalbox.Bind(in)
			msg, ok := res.Errors[tt.key]
			if !ok {
				t.Fatalf("no error for %s, errors = %v", tt.key, res.Errors)
			}
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want to contain %q", msg, tt.want)
			}
			if len(res.Errors) != 1 {
				t.Errorf("errors = %v, want only %s", res.Errors, tt.key)
			}
		})
	}
}

func TestBind_FloatField(t *testing.T) {
	in := url.Values{
		"audio_driver":  {"alsa"},
		"audio_volume":  {"-6.5"},
		"audio_latency": {"64"},
	}
	res := Audio.Bind(in)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	in.Set("audio_volume", "20")
	res = Audio.Bind(in)
	if _, ok := res.Errors["audio_volume"]; !ok {
		t.Errorf("expected range error for audio_volume, got %v", res.Errors)
	}
}

func TestBind_ChoiceWithSpace(t *testing.T) {
	in := url.Values{
		"ThemeSet":            {"carbon"},
		"TransitionStyle":     {"slide"},
		"ScreenSaverTime":     {"60000"},
		"ScreenSaverBehavior": {"random video"},
		"PowerSaverMode":      {"default"},
		"SaveGamelistsMode":   {"on exit"},
		"EnableSounds":        {"true"},
	}
	res := EmulationStation.Bind(in)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Values["EnableSounds"] != "true" || res.Values["ShowHelpPrompts"] != "false" {
		t.Errorf("booleans = %q/%q", res.Values["EnableSounds"], res.Values["ShowHelpPrompts"])
	}
}

func TestCurrent(t *testing.T) {
	got := Recalbox.Current(map[string]string{"audio.volume": "20", "unrelated": "x"})
	if got["audio.volume"] != "20" {
		t.Errorf("audio.volume = %q, want stored 20", got["audio.volume"])
	}
	if got["system.language"] != "en_US" {
		t.Errorf("system.language = %q, want default en_US", got["system.language"])
	}
	if _, ok := got["unrelated"]; ok {
		t.Error("unrelated key leaked into current values")
	}
}

func TestIsOn(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "on", "yes"} {
		if !IsOn(v) {
			t.Errorf("IsOn(%q) = false", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off", "no"} {
		if IsOn(v) {
			t.Errorf("IsOn(%q) = true", v)
		}
	}
}

func TestSchemas_UniqueKeys(t *testing.T) {
	for _, f := range []Form{Recalbox, EmulationStation, Audio} {
		seen := map[string]bool{}
		for _, fd := range f.Fields {
			if seen[fd.Key] {
				t.Errorf("%s: duplicate key %s", f.Name, fd.Key)
			}
			seen[fd.Key] = true
			if fd.Kind == KindChoice && fd.Default != "" {
				found := false
				for _, c := range fd.Choices {
					found = found || c == fd.Default
				}
				if !found {
					t.Errorf("%s: %s default %q not in choices", f.Name, fd.Key, fd.Default)
				}
			}
		}
	}
}
