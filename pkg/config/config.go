// Package config provides configuration management for camsight.
// It loads configuration from YAML files with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all camsight configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	FaceMesh FaceMeshConfig `yaml:"face_mesh"`
	Emotion  EmotionConfig  `yaml:"emotion"`
	HandDist HandDistConfig `yaml:"hand_distance"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CameraConfig holds camera settings.
type CameraConfig struct {
	Device string `yaml:"device"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
}

// FaceMeshConfig holds face landmark overlay settings.
type FaceMeshConfig struct {
	ModelPath     string  `yaml:"model_path"`
	MinConfidence float64 `yaml:"min_detection_confidence"`
	MaxFaces      int     `yaml:"max_faces"`
	DisplayWidth  int     `yaml:"display_width"`
}

// EmotionConfig holds emotion classifier settings.
type EmotionConfig struct {
	ModelFile    string   `yaml:"model_file"`
	Labels       []string `yaml:"labels"`
	DisplayWidth int      `yaml:"display_width"`
}

// HandDistConfig holds hand distance estimation settings.
type HandDistConfig struct {
	ModelFile       string  `yaml:"model_file"`
	MinConfidence   float64 `yaml:"min_detection_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`
	KnownWidthCM    float64 `yaml:"known_width_cm"`
	FocalLengthPX   float64 `yaml:"focal_length_pixels"`
	ThresholdCM     float64 `yaml:"proximity_threshold_cm"`
	AlertCooldownMS int     `yaml:"alert_cooldown_ms"`
	Profile         string  `yaml:"calibration_profile"`
	DisplayWidth    int     `yaml:"display_width"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir           string `yaml:"data_dir"`
	EncryptionEnabled bool   `yaml:"encryption_enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultEmotionLabels matches the output order of the FER+ emotion model.
var DefaultEmotionLabels = []string{
	"neutral", "happy", "surprise", "sad", "angry", "disgust", "fear", "contempt",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local/share/camsight")
	modelDir := filepath.Join(dataDir, "models")
	return &Config{
		Camera: CameraConfig{
			Device: "/dev/video0",
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		FaceMesh: FaceMeshConfig{
			ModelPath:     modelDir,
			MinConfidence: 0.5,
			MaxFaces:      1,
			DisplayWidth:  640,
		},
		Emotion: EmotionConfig{
			ModelFile:    filepath.Join(modelDir, "emotion-ferplus-8.onnx"),
			Labels:       DefaultEmotionLabels,
			DisplayWidth: 800,
		},
		HandDist: HandDistConfig{
			ModelFile:       filepath.Join(modelDir, "hand_landmark.onnx"),
			MinConfidence:   0.7,
			MinTrackingConf: 0.7,
			KnownWidthCM:    8.0,
			FocalLengthPX:   500,
			ThresholdCM:     20,
			AlertCooldownMS: 500,
			DisplayWidth:    640,
		},
		Storage: StorageConfig{
			DataDir:           dataDir,
			EncryptionEnabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "camsight.log"),
		},
	}
}

// Load loads configuration from the specified file.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, err
	}

	return config, nil
}

// LoadDefault tries to load configuration from default locations.
func LoadDefault() (*Config, error) {
	// Try system config first
	if _, err := os.Stat("/etc/camsight/camsight.yaml"); err == nil {
		return Load("/etc/camsight/camsight.yaml")
	}

	// Try user config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	userConfig := filepath.Join(homeDir, ".config/camsight/camsight.yaml")
	if _, err := os.Stat(userConfig); err == nil {
		return Load(userConfig)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Validate camera settings
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("invalid camera resolution: %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("invalid camera FPS: %d", c.Camera.FPS)
	}

	// Validate face mesh settings
	if c.FaceMesh.MinConfidence < 0 || c.FaceMesh.MinConfidence > 1 {
		return fmt.Errorf("min_detection_confidence must be between 0 and 1, got %f", c.FaceMesh.MinConfidence)
	}
	if c.FaceMesh.MaxFaces <= 0 {
		return fmt.Errorf("max_faces must be positive, got %d", c.FaceMesh.MaxFaces)
	}

	// Validate emotion settings
	if len(c.Emotion.Labels) == 0 {
		return fmt.Errorf("emotion labels must not be empty")
	}

	// Validate hand distance settings
	if c.HandDist.MinConfidence < 0 || c.HandDist.MinConfidence > 1 {
		return fmt.Errorf("min_detection_confidence must be between 0 and 1, got %f", c.HandDist.MinConfidence)
	}
	if c.HandDist.KnownWidthCM <= 0 {
		return fmt.Errorf("known_width_cm must be positive, got %f", c.HandDist.KnownWidthCM)
	}
	if c.HandDist.FocalLengthPX <= 0 {
		return fmt.Errorf("focal_length_pixels must be positive, got %f", c.HandDist.FocalLengthPX)
	}
	if c.HandDist.ThresholdCM <= 0 {
		return fmt.Errorf("proximity_threshold_cm must be positive, got %f", c.HandDist.ThresholdCM)
	}
	if c.HandDist.AlertCooldownMS < 0 {
		return fmt.Errorf("alert_cooldown_ms must not be negative, got %d", c.HandDist.AlertCooldownMS)
	}

	// Validate display widths
	for _, w := range []int{c.FaceMesh.DisplayWidth, c.Emotion.DisplayWidth, c.HandDist.DisplayWidth} {
		if w <= 0 {
			return fmt.Errorf("display_width must be positive, got %d", w)
		}
	}

	// Validate logging level
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// ExpandPaths expands all paths in the configuration.
func (c *Config) ExpandPaths() {
	c.Camera.Device = ExpandPath(c.Camera.Device)
	c.FaceMesh.ModelPath = ExpandPath(c.FaceMesh.ModelPath)
	c.Emotion.ModelFile = ExpandPath(c.Emotion.ModelFile)
	c.HandDist.ModelFile = ExpandPath(c.HandDist.ModelFile)
	c.Storage.DataDir = ExpandPath(c.Storage.DataDir)
	c.Logging.File = ExpandPath(c.Logging.File)
}

// EnsureDirectories creates necessary directories for storage and logging.
func (c *Config) EnsureDirectories() error {
	// Create storage directory
	if err := os.MkdirAll(c.Storage.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Create profiles subdirectory
	profilesDir := filepath.Join(c.Storage.DataDir, "profiles")
	if err := os.MkdirAll(profilesDir, 0700); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	// Create models directory
	if err := os.MkdirAll(c.FaceMesh.ModelPath, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	// Create log directory
	logDir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	return nil
}

// GetProfilePath returns the path for a named calibration profile.
func (c *Config) GetProfilePath(name string) string {
	return filepath.Join(c.Storage.DataDir, "profiles", name+".json")
}
