package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	// Check camera defaults
	if cfg.Camera.Device != "/dev/video0" {
		t.Errorf("expected camera device /dev/video0, got %s", cfg.Camera.Device)
	}
	if cfg.Camera.Width != 640 {
		t.Errorf("expected camera width 640, got %d", cfg.Camera.Width)
	}
	if cfg.Camera.Height != 480 {
		t.Errorf("expected camera height 480, got %d", cfg.Camera.Height)
	}
	if cfg.Camera.FPS != 30 {
		t.Errorf("expected camera FPS 30, got %d", cfg.Camera.FPS)
	}

	// Check hand distance defaults (the calibration constants)
	if cfg.HandDist.KnownWidthCM != 8.0 {
		t.Errorf("expected known width 8.0, got %f", cfg.HandDist.KnownWidthCM)
	}
	if cfg.HandDist.FocalLengthPX != 500 {
		t.Errorf("expected focal length 500, got %f", cfg.HandDist.FocalLengthPX)
	}
	if cfg.HandDist.ThresholdCM != 20 {
		t.Errorf("expected proximity threshold 20, got %f", cfg.HandDist.ThresholdCM)
	}
	if cfg.HandDist.MinConfidence != 0.7 {
		t.Errorf("expected min confidence 0.7, got %f", cfg.HandDist.MinConfidence)
	}
	if cfg.HandDist.DisplayWidth != 640 {
		t.Errorf("expected display width 640, got %d", cfg.HandDist.DisplayWidth)
	}

	// Check face mesh defaults
	if cfg.FaceMesh.MinConfidence != 0.5 {
		t.Errorf("expected min confidence 0.5, got %f", cfg.FaceMesh.MinConfidence)
	}
	if cfg.FaceMesh.MaxFaces != 1 {
		t.Errorf("expected max faces 1, got %d", cfg.FaceMesh.MaxFaces)
	}

	// Check emotion defaults
	if len(cfg.Emotion.Labels) != 8 {
		t.Errorf("expected 8 emotion labels, got %d", len(cfg.Emotion.Labels))
	}
	if cfg.Emotion.DisplayWidth != 800 {
		t.Errorf("expected display width 800, got %d", cfg.Emotion.DisplayWidth)
	}

	// Check logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	configContent := `
camera:
  device: /dev/video1
  width: 1280
  height: 720
  fps: 60

hand_distance:
  known_width_cm: 9.5
  focal_length_pixels: 620
  proximity_threshold_cm: 25
  min_detection_confidence: 0.8
  calibration_profile: laptop-cam

emotion:
  display_width: 1024

storage:
  data_dir: /custom/data
  encryption_enabled: true

logging:
  level: debug
  file: /var/log/camsight.log
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Test loading
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Camera.Device != "/dev/video1" {
		t.Errorf("expected camera device /dev/video1, got %s", cfg.Camera.Device)
	}
	if cfg.Camera.Width != 1280 {
		t.Errorf("expected camera width 1280, got %d", cfg.Camera.Width)
	}
	if cfg.HandDist.KnownWidthCM != 9.5 {
		t.Errorf("expected known width 9.5, got %f", cfg.HandDist.KnownWidthCM)
	}
	if cfg.HandDist.FocalLengthPX != 620 {
		t.Errorf("expected focal length 620, got %f", cfg.HandDist.FocalLengthPX)
	}
	if cfg.HandDist.Profile != "laptop-cam" {
		t.Errorf("expected profile laptop-cam, got %s", cfg.HandDist.Profile)
	}
	if cfg.Emotion.DisplayWidth != 1024 {
		t.Errorf("expected display width 1024, got %d", cfg.Emotion.DisplayWidth)
	}
	if !cfg.Storage.EncryptionEnabled {
		t.Error("expected encryption to be enabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	// Values not present in the file keep defaults
	if cfg.HandDist.AlertCooldownMS != 500 {
		t.Errorf("expected default alert cooldown 500, got %d", cfg.HandDist.AlertCooldownMS)
	}
	if len(cfg.Emotion.Labels) != 8 {
		t.Errorf("expected default emotion labels, got %d", len(cfg.Emotion.Labels))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
	// Should still return defaults
	if cfg == nil {
		t.Fatal("expected default config even on error")
	}
	if cfg.HandDist.KnownWidthCM != 8.0 {
		t.Errorf("expected default known width, got %f", cfg.HandDist.KnownWidthCM)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")

	if err := os.WriteFile(configPath, []byte("camera: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero camera width", func(c *Config) { c.Camera.Width = 0 }, true},
		{"negative camera FPS", func(c *Config) { c.Camera.FPS = -1 }, true},
		{"confidence above 1", func(c *Config) { c.FaceMesh.MinConfidence = 1.5 }, true},
		{"zero max faces", func(c *Config) { c.FaceMesh.MaxFaces = 0 }, true},
		{"empty emotion labels", func(c *Config) { c.Emotion.Labels = nil }, true},
		{"zero known width", func(c *Config) { c.HandDist.KnownWidthCM = 0 }, true},
		{"negative focal length", func(c *Config) { c.HandDist.FocalLengthPX = -10 }, true},
		{"zero threshold", func(c *Config) { c.HandDist.ThresholdCM = 0 }, true},
		{"negative cooldown", func(c *Config) { c.HandDist.AlertCooldownMS = -1 }, true},
		{"zero display width", func(c *Config) { c.Emotion.DisplayWidth = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	expanded := ExpandPath("~/models")
	expected := filepath.Join(homeDir, "models")
	if expanded != expected {
		t.Errorf("expected %s, got %s", expected, expanded)
	}

	// Environment variables
	os.Setenv("CAMSIGHT_TEST_DIR", "/tmp/camsight")
	defer os.Unsetenv("CAMSIGHT_TEST_DIR")
	expanded = ExpandPath("$CAMSIGHT_TEST_DIR/models")
	if expanded != "/tmp/camsight/models" {
		t.Errorf("expected /tmp/camsight/models, got %s", expanded)
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Storage.DataDir = filepath.Join(tmpDir, "data")
	cfg.FaceMesh.ModelPath = filepath.Join(tmpDir, "models")
	cfg.Logging.File = filepath.Join(tmpDir, "logs", "camsight.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{
		cfg.Storage.DataDir,
		filepath.Join(cfg.Storage.DataDir, "profiles"),
		cfg.FaceMesh.ModelPath,
		filepath.Join(tmpDir, "logs"),
	} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory %s was not created", dir)
		}
	}
}

func TestGetProfilePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/data"

	path := cfg.GetProfilePath("laptop-cam")
	expected := filepath.Join("/data", "profiles", "laptop-cam.json")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
