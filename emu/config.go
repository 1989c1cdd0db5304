package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"gbcore/emu/log"
	"gbcore/hw"
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	Debug     DebugConfig     `toml:"debug"`

	TraceOut io.Writer `toml:"-"`
}

type EmulationConfig struct {
	// MaxSteps stops the emulation loop after that many instructions, 0 means
	// no limit.
	MaxSteps      int64        `toml:"max_steps"`
	OnDecodeError DecodePolicy `toml:"on_decode_error"`
}

type DebugConfig struct {
	Breakpoints []Addr `toml:"breakpoints"`
	TraceFormat string `toml:"trace_format"`
}

// DecodePolicy controls what the emulation loop does when the CPU fetches an
// unknown opcode.
type DecodePolicy string

const (
	DecodeHalt DecodePolicy = "halt" // stop and report the error
	DecodeSkip DecodePolicy = "skip" // log and keep going
)

func (p DecodePolicy) Check() error {
	switch p {
	case DecodeHalt, DecodeSkip:
		return nil
	}
	return fmt.Errorf("invalid decode error policy %q (want halt or skip)", string(p))
}

// Addr is a 16-bit address, written in hexadecimal in config files.
type Addr uint16

func (a Addr) String() string { return fmt.Sprintf("$%04X", uint16(a)) }

func (a Addr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText accepts $XXXX, 0xXXXX or XXXX.
func (a *Addr) UnmarshalText(text []byte) error {
	s := string(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q", string(text))
	}
	*a = Addr(v)
	return nil
}

func (cfg *Config) traceFormat() (hw.TraceFormat, error) {
	switch cfg.Debug.TraceFormat {
	case "", "text":
		return hw.TraceText, nil
	case "json":
		return hw.TraceJSON, nil
	}
	return 0, fmt.Errorf("invalid trace format %q (want text or json)", cfg.Debug.TraceFormat)
}

// Check fills unset fields with their defaults and validates the rest.
func (cfg *Config) Check() error {
	if cfg.Emulation.OnDecodeError == "" {
		cfg.Emulation.OnDecodeError = DecodeHalt
	}
	if cfg.Emulation.MaxSteps < 0 {
		return fmt.Errorf("invalid max steps %d", cfg.Emulation.MaxSteps)
	}
	if err := cfg.Emulation.OnDecodeError.Check(); err != nil {
		return err
	}
	_, err := cfg.traceFormat()
	return err
}

// DefaultConfig returns the configuration used when none is found.
func DefaultConfig() Config {
	return Config{
		Emulation: EmulationConfig{OnDecodeError: DecodeHalt},
		Debug:     DebugConfig{TraceFormat: "text"},
	}
}

// ConfigDir returns the gbcore config directory, creating it if needed.
var ConfigDir = sync.OnceValues(func() (string, error) {
	dir := configdir.LocalConfig("gbcore")
	if err := configdir.MakePath(dir); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
})

const cfgFilename = "config.toml"

// LoadConfig loads the configuration file at path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").
			String("path", path).
			String("key", key.String()).
			End()
	}
	if err := cfg.Check(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the gbcore config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	dir, err := ConfigDir()
	if err != nil {
		log.ModEmu.WarnZ("no config directory").Error("err", err).End()
		return DefaultConfig()
	}

	path := filepath.Join(dir, cfgFilename)
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("using default config").Error("err", err).End()
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig into gbcore config directory.
func SaveConfig(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigFile(filepath.Join(dir, cfgFilename), cfg)
}

// SaveConfigFile writes cfg at path.
func SaveConfigFile(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
