// Package config loads the portrait settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ayusman/fluidportrait/internal/app"
	"github.com/ayusman/fluidportrait/internal/capture"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth             = 1280
	DefaultHeight            = 720
	DefaultParticles         = 15000
	DefaultIdleFPS           = 5
	DefaultActiveFPS         = 15
	DefaultMotionThreshold   = capture.DefaultMotionThreshold
	DefaultTextRevealSeconds = 3.5
	DefaultAddr              = "127.0.0.1:8420"
	DefaultWindowTitle       = "Particle Fluid Portrait"
)

// Validation errors.
var (
	ErrInvalidCanvas    = errors.New("canvas width and height must be positive")
	ErrInvalidParticles = errors.New("particle count must be positive")
	ErrInvalidFPS       = errors.New("camera fps must be positive and idle fps must not exceed active fps")
	ErrInvalidReveal    = errors.New("text reveal duration must be positive")
	ErrMissingAddr      = errors.New("server address is required when the server is enabled")
)

type Config struct {
	Canvas            CanvasConfig `yaml:"canvas"`
	Particles         int          `yaml:"particles"`
	Camera            CameraConfig `yaml:"camera"`
	Server            ServerConfig `yaml:"server"`
	Tray              TrayConfig   `yaml:"tray"`
	Window            WindowConfig `yaml:"window"`
	Seed              uint64       `yaml:"seed"`
	IntroText         string       `yaml:"intro_text"`
	TextRevealSeconds float64      `yaml:"text_reveal_seconds"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CameraConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Device          int     `yaml:"device"`
	IdleFPS         int     `yaml:"idle_fps"`
	ActiveFPS       int     `yaml:"active_fps"`
	MotionThreshold float64 `yaml:"motion_threshold"`
}

type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

type WindowConfig struct {
	Enabled bool   `yaml:"enabled"`
	Title   string `yaml:"title"`
}

func DefaultConfig() *Config {
	return &Config{
		Canvas:    CanvasConfig{Width: DefaultWidth, Height: DefaultHeight},
		Particles: DefaultParticles,
		Camera: CameraConfig{
			Enabled:         true,
			IdleFPS:         DefaultIdleFPS,
			ActiveFPS:       DefaultActiveFPS,
			MotionThreshold: DefaultMotionThreshold,
		},
		Server:            ServerConfig{Enabled: true, Addr: DefaultAddr},
		Tray:              TrayConfig{Enabled: false},
		Window:            WindowConfig{Enabled: true, Title: DefaultWindowTitle},
		IntroText:         "Welcome to Particle Fluid Portrait",
		TextRevealSeconds: DefaultTextRevealSeconds,
	}
}

// Load reads path and unmarshals it over the defaults, so omitted keys
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that cannot be run.
func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return ErrInvalidCanvas
	case c.Particles <= 0:
		return ErrInvalidParticles
	case c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 || c.Camera.IdleFPS > c.Camera.ActiveFPS:
		return ErrInvalidFPS
	case c.TextRevealSeconds <= 0:
		return ErrInvalidReveal
	case c.Server.Enabled && c.Server.Addr == "":
		return ErrMissingAddr
	}
	return nil
}

// AppConfig converts the file settings into the application config.
func (c *Config) AppConfig() app.Config {
	cam := capture.DefaultConfig()
	cam.DeviceID = c.Camera.Device
	cam.FPS = c.Camera.ActiveFPS

	return app.Config{
		Width:           c.Canvas.Width,
		Height:          c.Canvas.Height,
		Particles:       c.Particles,
		Seed:            c.Seed,
		IntroText:       c.IntroText,
		RevealDuration:  time.Duration(c.TextRevealSeconds * float64(time.Second)),
		CameraEnabled:   c.Camera.Enabled,
		Camera:          cam,
		MotionThreshold: c.Camera.MotionThreshold,
		IdleFPS:         c.Camera.IdleFPS,
		ActiveFPS:       c.Camera.ActiveFPS,
		Render:          true,
	}
}
