package emu

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[emulation]
max_steps = 1000
on_decode_error = "skip"

[debug]
breakpoints = ["$0100", "0x0150", "C000"]
trace_format = "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Emulation: EmulationConfig{MaxSteps: 1000, OnDecodeError: DecodeSkip},
		Debug: DebugConfig{
			Breakpoints: []Addr{0x0100, 0x0150, 0xC000},
			TraceFormat: "json",
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config differs (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[emulation]\nmax_steps = 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Emulation.MaxSteps = 5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config differs (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"policy", "[emulation]\non_decode_error = \"ignore\"\n"},
		{"negative steps", "[emulation]\nmax_steps = -1\n"},
		{"trace format", "[debug]\ntrace_format = \"xml\"\n"},
		{"breakpoint", "[debug]\nbreakpoints = [\"$10000\"]\n"},
		{"syntax", "[emulation\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Fatal("LoadConfig should fail")
			}
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Emulation.MaxSteps = 42
	cfg.Debug.Breakpoints = []Addr{0x0000, 0xFFFE}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveConfigFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config differs (-want +got):\n%s", diff)
	}
}

func TestAddr(t *testing.T) {
	tests := []struct {
		in   string
		want Addr
	}{
		{"$0100", 0x0100},
		{"0xff80", 0xFF80},
		{"0X0038", 0x0038},
		{"9fff", 0x9FFF},
	}
	for _, tt := range tests {
		var a Addr
		if err := a.UnmarshalText([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", tt.in, err)
		}
		if a != tt.want {
			t.Errorf("UnmarshalText(%q) = %s, want %s", tt.in, a, tt.want)
		}
	}

	var a Addr
	for _, in := range []string{"", "$", "zzzz", "12345"} {
		if err := a.UnmarshalText([]byte(in)); err == nil {
			t.Errorf("UnmarshalText(%q) should fail", in)
		}
	}
}
