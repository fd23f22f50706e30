// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package config loads the application configuration.
//
// Values are layered: defaults, then an optional file
// (YAML, TOML or JSON), then environment variables with
// the HYBRID_ prefix (e.g., HYBRID_WINDOW_WIDTH). Command
// line flags are applied on top by the caller.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/engine"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "HYBRID"

// DefaultFile is the name of the configuration file
// searched in the working directory when none is given.
const DefaultFile = "hybrid"

// Config is the application configuration.
type Config struct {
	Window   WindowConfig   `mapstructure:"window"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Driver   DriverConfig   `mapstructure:"driver"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Camera   CameraConfig   `mapstructure:"camera"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
	VSync  bool   `mapstructure:"vsync"`
}

type RendererConfig struct {
	Pathtracer bool    `mapstructure:"pathtracer"`
	ShaderDir  string  `mapstructure:"shader_dir"`
	Exposure   float32 `mapstructure:"exposure"`
	MaxBounces int     `mapstructure:"max_bounces"`
	ImageCount int     `mapstructure:"image_count"`
}

type DriverConfig struct {
	Name            string `mapstructure:"name"`
	SeparateCompute bool   `mapstructure:"separate_compute"`
	Validation      bool   `mapstructure:"validation"`
}

// StatsConfig configures the frame statistics server.
// An empty Addr disables it.
type StatsConfig struct {
	Addr string `mapstructure:"addr"`
}

// CameraConfig overrides the scene camera.
// Empty positions keep the scene's.
type CameraConfig struct {
	Position []float32 `mapstructure:"position"`
	Target   []float32 `mapstructure:"target"`
	FovY     float32   `mapstructure:"fov_y"`
}

// Default returns the default configuration.
func Default() *Config {
	ecfg := engine.DefaultConfig()
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "hybrid",
			VSync:  true,
		},
		Renderer: RendererConfig{
			Pathtracer: ecfg.Pathtracer,
			ShaderDir:  "shaders",
			Exposure:   ecfg.Exposure,
			MaxBounces: ecfg.MaxBounces,
			ImageCount: ecfg.ImageCount,
		},
		Driver: DriverConfig{
			Name: "vulkan",
		},
	}
}

// Load loads the configuration.
// If file is empty, a file named DefaultFile (with any
// supported extension) is read from the working directory
// when present.
func Load(file string) (*Config, error) {
	v := viper.New()
	cfg := Default()
	setDefaults(v, cfg)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultFile)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config")
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Renderer.ShaderDir = os.ExpandEnv(cfg.Renderer.ShaderDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that c holds usable values.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return errors.Errorf("config: invalid window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Renderer.ShaderDir == "":
		return errors.New("config: renderer.shader_dir must be set")
	case len(c.Camera.Position) != 0 && len(c.Camera.Position) != 3:
		return errors.New("config: camera.position must have 3 components")
	case len(c.Camera.Target) != 0 && len(c.Camera.Target) != 3:
		return errors.New("config: camera.target must have 3 components")
	case c.Camera.FovY < 0 || c.Camera.FovY >= 180:
		return errors.Errorf("config: invalid camera.fov_y %v", c.Camera.FovY)
	}
	ecfg := c.Engine()
	return ecfg.Validate()
}

// Engine returns the renderer configuration.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Pathtracer: c.Renderer.Pathtracer,
		Exposure:   c.Renderer.Exposure,
		MaxBounces: c.Renderer.MaxBounces,
		ImageCount: c.Renderer.ImageCount,
	}
}

// DriverOptions returns the options passed to the driver.
func (c *Config) DriverOptions() *driver.Config {
	return &driver.Config{
		SeparateCompute: c.Driver.SeparateCompute,
		Validation:      c.Driver.Validation,
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.title", cfg.Window.Title)
	v.SetDefault("window.vsync", cfg.Window.VSync)

	v.SetDefault("renderer.pathtracer", cfg.Renderer.Pathtracer)
	v.SetDefault("renderer.shader_dir", cfg.Renderer.ShaderDir)
	v.SetDefault("renderer.exposure", cfg.Renderer.Exposure)
	v.SetDefault("renderer.max_bounces", cfg.Renderer.MaxBounces)
	v.SetDefault("renderer.image_count", cfg.Renderer.ImageCount)

	v.SetDefault("driver.name", cfg.Driver.Name)
	v.SetDefault("driver.separate_compute", cfg.Driver.SeparateCompute)
	v.SetDefault("driver.validation", cfg.Driver.Validation)

	v.SetDefault("stats.addr", cfg.Stats.Addr)

	v.SetDefault("camera.position", []float32{})
	v.SetDefault("camera.target", []float32{})
	v.SetDefault("camera.fov_y", cfg.Camera.FovY)
}
