package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/hw"
)

type Config struct {
	CPU   CPUConfig   `toml:"cpu"`
	Log   LogConfig   `toml:"log"`
	Trace TraceConfig `toml:"trace"`
	Snake SnakeConfig `toml:"snake"`
}

type CPUConfig struct {
	// Address at which raw programs are loaded.
	LoadAddr addr `toml:"load_addr"`
}

type LogConfig struct {
	// Modules with debug logs enabled, when --log is not given.
	Modules []string `toml:"modules"`
}

type TraceConfig struct {
	Format string `toml:"format"` // text or json
}

type SnakeConfig struct {
	Scale       int `toml:"scale"`
	StepDelayUS int `toml:"step_delay_us"` // pause after each instruction
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.FatalZ("failed to get user config directory").Error("err", err).End()
	}
	return filepath.Join(cfgdir, "nescore")
})

var defaultConfig = Config{
	CPU: CPUConfig{
		LoadAddr: hw.DefaultLoadAddr,
	},
	Trace: TraceConfig{
		Format: "text",
	},
	Snake: SnakeConfig{
		Scale:       10,
		StepDelayUS: 70,
	},
}

const cfgFilename = "config.toml"

func defaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfigOrDefault loads the configuration at path, or from the config
// directory if path is empty. Settings missing from the file, or a missing
// file, take their default value.
func LoadConfigOrDefault(path string) (Config, error) {
	if path == "" {
		path = defaultConfigPath()
	}

	cfg := defaultConfig
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
		return defaultConfig, nil
	}
	if err != nil {
		return Config{}, err
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").String("key", key.String()).End()
	}
	return cfg, nil
}

// SaveConfig writes cfg at path, or into the config directory if path is
// empty.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigPath()
	}

	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultFileMode); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
