package hand

import (
	"errors"

	"gocv.io/x/gocv"
)

// Detector analyzes a video frame and returns detected hand landmarks.
type Detector interface {
	// Detect returns all hands found in the frame (RGB order expected).
	// An empty slice means no hands; that is not an error.
	Detect(frame *gocv.Mat) ([]Landmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to report.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
	}
}

// ErrModelNotLoaded is returned when the landmark model is not loaded.
var ErrModelNotLoaded = errors.New("hand landmark model not loaded")

// ErrInference is returned when the landmark network fails on a frame.
var ErrInference = errors.New("hand landmark inference failed")
