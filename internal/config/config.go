package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/slicewidgets/internal/surface"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	Scene    SceneConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	JournalMode string        `mapstructure:"journal_mode"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
	// File is where logs go. Empty means stderr, which the TUI owns, so the
	// view command discards logs unless a file is set.
	File string
}

// SceneConfig holds the initial visualization state.
type SceneConfig struct {
	Spacing []float64
	Slices  []float64
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Views are "name:axis" entries; axis is x, y, z or 3d.
	Views []string
}

// ViewSpec is one parsed UI view entry.
type ViewSpec struct {
	Name    string
	Axis    surface.Axis
	HasAxis bool
	Type    surface.ViewType
}

const envPrefix = "SLICEWIDGETS"

// Path returns the config file location, honouring SLICEWIDGETS_CONFIG.
func Path() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "slicewidgets", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix SLICEWIDGETS_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "slicewidgets", "slicewidgets.db"))
	v.SetDefault("database.busy_timeout", "5s")
	v.SetDefault("database.journal_mode", "WAL")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("scene.spacing", []float64{1, 1, 1})
	v.SetDefault("scene.slices", []float64{0, 0, 0})
	v.SetDefault("ui.views", []string{"axial:z", "coronal:y", "sagittal:x", "volume:3d"})

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(Path()); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.busy_timeout", cfg.Database.BusyTimeout.String())
	v.Set("database.journal_mode", cfg.Database.JournalMode)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("scene.spacing", cfg.Scene.Spacing)
	v.Set("scene.slices", cfg.Scene.Slices)
	v.Set("ui.views", cfg.UI.Views)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Spacing returns scene.spacing as a vector. Missing components are 1.
func (c Config) Spacing() surface.Vec3 {
	return vec(c.Scene.Spacing, 1)
}

// Slices returns scene.slices as a vector. Missing components are 0.
func (c Config) Slices() surface.Vec3 {
	return vec(c.Scene.Slices, 0)
}

func vec(vals []float64, fill float64) surface.Vec3 {
	out := surface.Vec3{fill, fill, fill}
	copy(out[:], vals)
	return out
}

// Views parses ui.views.
func (c Config) Views() ([]ViewSpec, error) {
	out := make([]ViewSpec, 0, len(c.UI.Views))
	seen := map[string]bool{}
	for _, raw := range c.UI.Views {
		name, axis, ok := strings.Cut(strings.TrimSpace(raw), ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("ui.views: bad entry %q, want name:axis", raw)
		}
		if seen[name] {
			return nil, fmt.Errorf("ui.views: duplicate view %q", name)
		}
		seen[name] = true

		axis = strings.ToLower(strings.TrimSpace(axis))
		if axis == "3d" {
			out = append(out, ViewSpec{Name: name, Axis: surface.AxisInvalid, Type: surface.ViewTypeVolume})
			continue
		}
		a, err := surface.ParseAxis(axis)
		if err != nil {
			return nil, fmt.Errorf("ui.views: %s: %w", name, err)
		}
		out = append(out, ViewSpec{Name: name, Axis: a, HasAxis: true, Type: surface.ViewTypeSlice})
	}
	return out, nil
}
