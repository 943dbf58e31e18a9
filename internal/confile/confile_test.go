package confile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const recalboxConf = `# ------------ A - System Options ----------- #
system.language=fr_FR
;system.kblayout=us

## Audio
audio.volume=90
audio.bgmusic=1
# this is a plain comment
wifi.enabled=0
`

const retroarchCfg = `# RetroArch configuration
audio_enable = "true"
audio_volume = "0.0"
# audio_latency = "64"
video_fullscreen = "true"
`

func mustParse(t *testing.T, s string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func TestParse_RoundTripUnchanged(t *testing.T) {
	for name, doc := range map[string]string{"recalbox": recalboxConf, "retroarch": retroarchCfg} {
		t.Run(name, func(t *testing.T) {
			f := mustParse(t, doc)
			if got := string(f.Bytes()); got != doc {
				t.Errorf("round trip changed document:\n%s\nwant:\n%s", got, doc)
			}
		})
	}
}

func TestGet(t *testing.T) {
	f := mustParse(t, recalboxConf)
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"system.language", "fr_FR", true},
		{"audio.volume", "90", true},
		{"system.kblayout", "", false},
		{"missing.key", "", false},
	}
	for _, tt := range tests {
		got, ok := f.Get(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Get(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGet_QuotedValue(t *testing.T) {
	f := mustParse(t, retroarchCfg)
	if v, _ := f.Get("audio_enable"); v != "true" {
		t.Errorf("audio_enable = %q, want true", v)
	}
	if _, ok := f.Get("audio_latency"); ok {
		t.Error("disabled audio_latency reported as set")
	}
}

func TestGet_LastOccurrenceWins(t *testing.T) {
	f := mustParse(t, "a=1\na=2\n")
	if v, _ := f.Get("a"); v != "2" {
		t.Errorf("a = %q, want 2", v)
	}
}

func TestSet_UpdatesInPlace(t *testing.T) {
	f := mustParse(t, recalboxConf)
	if err := f.Set("audio.volume", "50"); err != nil {
		t.Fatal(err)
	}
	want := strings.Replace(recalboxConf, "audio.volume=90", "audio.volume=50", 1)
	if got := string(f.Bytes()); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSet_ReenablesDisabledLine(t *testing.T) {
	f := mustParse(t, recalboxConf)
	if err := f.Set("system.kblayout", "de"); err != nil {
		t.Fatal(err)
	}
	got := string(f.Bytes())
	if !strings.Contains(got, "\nsystem.kblayout=de\n") {
		t.Errorf("kblayout not re-enabled in place:\n%s", got)
	}
	if strings.Contains(got, ";system.kblayout") {
		t.Errorf("disabled line still present:\n%s", got)
	}
}

func TestSet_AppendsUsingDocumentStyle(t *testing.T) {
	f := mustParse(t, retroarchCfg)
	if err := f.Set("video_vsync", "false"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(f.Bytes()), "video_vsync = \"false\"\n") {
		t.Errorf("appended line has wrong style:\n%s", f.Bytes())
	}

	r := mustParse(t, recalboxConf)
	if err := r.Set("kodi.enabled", "1"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(r.Bytes()), "kodi.enabled=1\n") {
		t.Errorf("appended line has wrong style:\n%s", r.Bytes())
	}
}

func TestSet_Rejects(t *testing.T) {
	f := New()
	if err := f.Set("bad key", "x"); err == nil {
		t.Error("expected error for key with space")
	}
	if err := f.Set("ok", "a\nb=c"); err == nil {
		t.Error("expected error for value with newline")
	}
}

func TestUnset(t *testing.T) {
	f := mustParse(t, recalboxConf)
	f.Unset("audio.bgmusic")
	if _, ok := f.Get("audio.bgmusic"); ok {
		t.Error("audio.bgmusic still enabled")
	}
	if !strings.Contains(string(f.Bytes()), ";audio.bgmusic=1\n") {
		t.Errorf("expected ';' disabled line:\n%s", f.Bytes())
	}
}

func TestKeysAndValues(t *testing.T) {
	f := mustParse(t, recalboxConf)
	wantKeys := []string{"system.language", "audio.volume", "audio.bgmusic", "wifi.enabled"}
	if got := f.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
	if got := f.Values()["wifi.enabled"]; got != "0" {
		t.Errorf("Values()[wifi.enabled] = %q", got)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recalbox.conf")
	if err := os.WriteFile(path, []byte(recalboxConf), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f.Set("wifi.enabled", "1")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := again.Get("wifi.enabled"); v != "1" {
		t.Errorf("wifi.enabled = %q after save, want 1", v)
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none", f.Keys())
	}
	f.Set("a", "b")
	if got := string(f.Bytes()); got != "a=b\n" {
		t.Errorf("Bytes() = %q", got)
	}
}
